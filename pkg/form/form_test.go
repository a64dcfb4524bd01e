package form

import (
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/repeater"
	"github.com/goliatone/go-daas/pkg/schema"
)

func formSchema() *schema.Schema {
	return schema.New([]schema.Field{
		{Key: "title", Label: "Page title", Required: true},
		{Key: "body", Type: schema.FieldTypeRichText},
		{Key: "hero.image", Type: schema.FieldTypeImage},
		{Key: "hero.theme", Type: schema.FieldTypeSelect, Options: []string{"light", "dark"}, Default: "light"},
		{Key: "tags", Type: schema.FieldTypeSelect, Multiple: true, Options: []string{"go", "html", "cms"}},
		{Key: "published", Type: schema.FieldTypeBoolean},
		{Key: "faq[].q"},
	})
}

func TestRenderForm(t *testing.T) {
	r, err := New(WithAction("/save"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	data := formdata.Data{
		"title":      formdata.Text("<b>Hi</b>"),
		"hero.image": formdata.ExistingImage("/cat.png", "Cat"),
		"tags":       formdata.List("go", "cms"),
		"published":  formdata.Text("true"),
	}
	out, err := r.Render(formSchema(), repeater.Counts{"faq": 2}, data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		`action="/save"`,
		`<span>Page title *</span>`,
		`name="title" value="&lt;b&gt;Hi&lt;/b&gt;" required`,
		`<textarea name="body" data-richtext>`,
		`<input type="hidden" name="hero.image" value="/cat.png">`,
		`name="hero.image@alt" value="Cat"`,
		`<option value="light" selected>light</option>`,
		`<select name="tags" multiple>`,
		`<option value="go" selected>go</option>`,
		`<option value="html">html</option>`,
		`<input type="checkbox" name="published" value="true" checked>`,
		`data-repeater="faq" data-index="1"`,
		`name="faq[0].q"`,
		`name="faq[1].q"`,
		`data-action="add-item"`,
		`id="daas-field-faq-1-q"`,
		`id="daas-field-hero-image"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in form:\n%s", want, out)
		}
	}
}

func TestRenderWithCustomTemplates(t *testing.T) {
	files := fstest.MapFS{
		"form.tpl":  {Data: []byte(`{% for section in view.Sections %}[{{ section.Title }}]{% endfor %}`)},
		"field.tpl": {Data: []byte(``)},
	}
	r, err := New(WithTemplates(files))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	s := schema.New([]schema.Field{{Key: "title"}, {Key: "hero.title"}, {Key: "faq[].q"}})
	out, err := r.Render(s, repeater.Counts{}, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "[General][Hero][Faq]" {
		t.Fatalf("unexpected sections %q", out)
	}
}

func TestNewFailsWithoutTemplate(t *testing.T) {
	if _, err := New(WithTemplates(fstest.MapFS{})); err == nil {
		t.Fatalf("expected missing form.tpl to fail")
	}
}

func TestFieldID(t *testing.T) {
	cases := map[string]string{
		"title":           "title",
		"hero.image":      "hero-image",
		"faq[1].q":        "faq-1-q",
		"faq[0].items[2]": "faq-0-items-2",
		"":                "",
	}
	for key, want := range cases {
		if got := FieldID(key); got != want {
			t.Fatalf("FieldID(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestRegistryNamesFollowCounts(t *testing.T) {
	s := schema.New([]schema.Field{{Key: "title"}, {Key: "faq[].q"}, {Key: "faq[].a"}})
	r := NewRegistry(s, repeater.Counts{"faq": 2})

	want := []string{"title", "faq[0].q", "faq[1].q", "faq[0].a", "faq[1].a"}
	if diff := cmp.Diff(want, r.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if f, ok := r.Field("faq[1].a"); !ok || f.Key != "faq[].a" {
		t.Fatalf("expected base declaration behind faq[1].a, got %+v", f)
	}
}

func TestRegistryFillAndSet(t *testing.T) {
	r := NewRegistry(schema.New([]schema.Field{{Key: "title"}}), nil)

	filled := r.Fill(formdata.Data{"title": formdata.Text("Hi"), "other": formdata.Text("x")})
	if filled != 1 {
		t.Fatalf("expected one field filled, got %d", filled)
	}
	if r.Set("other", formdata.Text("x")) {
		t.Fatalf("expected unknown name to be ignored")
	}
	if !r.Set("title", formdata.Text("Hey")) {
		t.Fatalf("expected title to be set")
	}
	if diff := cmp.Diff(formdata.Data{"title": formdata.Text("Hey")}, r.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryCollect(t *testing.T) {
	r := NewRegistry(formSchema(), repeater.Counts{})
	submitted := url.Values{
		"title":           {"Hello"},
		"hero.image":      {"/old.png"},
		"hero.image@data": {"data:image/png;base64,AAAA"},
		"hero.image@file": {"new.png"},
		"hero.image@alt":  {" New "},
		"tags":            {"go", " ", "cms"},
		"faq[0].q":        {"Why?"},
	}

	got := r.Collect(submitted)

	want := formdata.Data{
		"title":      formdata.Text("Hello"),
		"hero.image": {Image: &formdata.Image{DataURL: "data:image/png;base64,AAAA", FileName: "new.png", Alt: "New"}},
		"tags":       formdata.List("go", "cms"),
		"published":  formdata.Text("false"),
		"faq[0].q":   formdata.Text("Why?"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("collect mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryCollectExistingImage(t *testing.T) {
	r := NewRegistry(schema.New([]schema.Field{{Key: "logo", Type: schema.FieldTypeImage}}), nil)
	got := r.Collect(url.Values{"logo": {"/logo.png"}, "logo@alt": {"Logo"}})
	if diff := cmp.Diff(formdata.Data{"logo": formdata.ExistingImage("/logo.png", "Logo")}, got); diff != "" {
		t.Fatalf("collect mismatch (-want +got):\n%s", diff)
	}
}
