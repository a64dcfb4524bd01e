package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-daas/pkg/form"
	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/repeater"
	"github.com/goliatone/go-daas/pkg/schema"
)

// fakeDriver answers prompts by message and records what it was asked.
type fakeDriver struct {
	inputs   map[string]string
	texts    map[string]string
	confirms map[string]bool
	selects  map[string]int
	multi    map[string][]int
	err      error

	asked    []string
	defaults map[string]any
}

func (f *fakeDriver) record(msg string, def any) {
	f.asked = append(f.asked, msg)
	if f.defaults == nil {
		f.defaults = map[string]any{}
	}
	f.defaults[msg] = def
}

func (f *fakeDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	f.record(cfg.Message, cfg.Default)
	if f.err != nil {
		return "", f.err
	}
	return f.inputs[cfg.Message], nil
}

func (f *fakeDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	f.record(cfg.Message, cfg.Default)
	return f.confirms[cfg.Message], f.err
}

func (f *fakeDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	f.record(cfg.Message, cfg.DefaultIndex)
	idx, ok := f.selects[cfg.Message]
	if !ok {
		return cfg.DefaultIndex, f.err
	}
	return idx, f.err
}

func (f *fakeDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	f.record(cfg.Message, cfg.Defaults)
	return f.multi[cfg.Message], f.err
}

func (f *fakeDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	f.record(cfg.Message, cfg.Default)
	return f.texts[cfg.Message], f.err
}

func (f *fakeDriver) Info(context.Context, string) error { return nil }

func promptSchema() *schema.Schema {
	return schema.New([]schema.Field{
		{Key: "title", Label: "Title", Required: true},
		{Key: "subtitle", Label: "Subtitle"},
		{Key: "body", Label: "Body", Type: schema.FieldTypeRichText},
		{Key: "published", Label: "Published", Type: schema.FieldTypeBoolean},
		{Key: "theme", Label: "Theme", Type: schema.FieldTypeSelect, Options: []string{"light", "dark"}, Default: "dark"},
		{Key: "tags", Label: "Tags", Type: schema.FieldTypeSelect, Multiple: true, Options: []string{"go", "html", "cms"}},
		{Key: "logo", Label: "Logo", Type: schema.FieldTypeImage},
	})
}

func TestFillStoresAnswers(t *testing.T) {
	registry := form.NewRegistry(promptSchema(), repeater.Counts{})
	registry.Fill(formdata.Data{"logo": formdata.ExistingImage("/old.png", "Old logo")})

	driver := &fakeDriver{
		inputs:   map[string]string{"Title": "Hello", "Logo (image URL)": " /new.png "},
		texts:    map[string]string{"Body": "<p>Hi</p>"},
		confirms: map[string]bool{"Published": true},
		multi:    map[string][]int{"Tags": {0, 2}},
	}

	filled, err := Fill(context.Background(), driver, registry)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if filled != 6 {
		t.Fatalf("expected 6 fields filled, got %d", filled)
	}

	want := formdata.Data{
		"title":     formdata.Text("Hello"),
		"body":      formdata.Text("<p>Hi</p>"),
		"published": formdata.Text("true"),
		"theme":     formdata.Text("dark"),
		"tags":      formdata.List("go", "cms"),
		"logo":      formdata.ExistingImage("/new.png", "Old logo"),
	}
	if diff := cmp.Diff(want, registry.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	wantAsked := []string{"Title", "Subtitle", "Body", "Published", "Theme", "Tags", "Logo (image URL)"}
	if diff := cmp.Diff(wantAsked, driver.asked); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if got := driver.defaults["Theme"]; got != 1 {
		t.Fatalf("expected the declared default preselected, got %v", got)
	}
	if got := driver.defaults["Logo (image URL)"]; got != "/old.png" {
		t.Fatalf("expected the current value offered as default, got %v", got)
	}
}

func TestFillPropagatesAbort(t *testing.T) {
	registry := form.NewRegistry(promptSchema(), repeater.Counts{})
	driver := &fakeDriver{err: ErrAborted}

	filled, err := Fill(context.Background(), driver, registry)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if filled != 0 {
		t.Fatalf("expected nothing filled, got %d", filled)
	}
}

func TestFillRejectsNilArguments(t *testing.T) {
	if _, err := Fill(context.Background(), nil, form.NewRegistry(promptSchema(), nil)); err == nil {
		t.Fatalf("expected error for nil driver")
	}
	if _, err := Fill(context.Background(), &fakeDriver{}, nil); err == nil {
		t.Fatalf("expected error for nil registry")
	}
}

func TestValidator(t *testing.T) {
	cases := []struct {
		name    string
		field   schema.Field
		answer  string
		wantErr bool
	}{
		{name: "optional empty", field: schema.Field{}, answer: " "},
		{name: "required empty", field: schema.Field{Required: true}, answer: "", wantErr: true},
		{name: "pattern match", field: schema.Field{Pattern: "[a-z]+"}, answer: "abc"},
		{name: "pattern anchored", field: schema.Field{Pattern: "[a-z]+"}, answer: "abc1", wantErr: true},
		{name: "number", field: schema.Field{Type: schema.FieldTypeNumber, Min: 1, Max: "10"}, answer: "5"},
		{name: "not a number", field: schema.Field{Type: schema.FieldTypeNumber}, answer: "five", wantErr: true},
		{name: "below min", field: schema.Field{Type: schema.FieldTypeNumber, Min: 1}, answer: "0", wantErr: true},
		{name: "above max", field: schema.Field{Type: schema.FieldTypeNumber, Max: 10.5}, answer: "11", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validator(tc.field)(tc.answer)
			if (err != nil) != tc.wantErr {
				t.Fatalf("validator(%q) error = %v, wantErr %v", tc.answer, err, tc.wantErr)
			}
		})
	}
}

func TestIndexHelpers(t *testing.T) {
	options := []string{"a", "b", "c"}
	if got := indexOf(options, "c"); got != 2 {
		t.Fatalf("indexOf = %d", got)
	}
	if got := indexOf(options, "z"); got != -1 {
		t.Fatalf("indexOf missing = %d", got)
	}
	if diff := cmp.Diff([]int{0, 2}, indicesOf(options, []string{"c", "a"})); diff != "" {
		t.Fatalf("indicesOf mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b"}, defaultsFromIndices(options, []int{1, 7})); diff != "" {
		t.Fatalf("defaultsFromIndices mismatch (-want +got):\n%s", diff)
	}
}
