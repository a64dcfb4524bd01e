package session

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/remote"
	"github.com/goliatone/go-daas/pkg/schema"
	"github.com/goliatone/go-daas/pkg/testsupport"
)

const templatePath = "templates/home.html"

const templateSource = `<h1>[[title]]</h1>` +
	`<ul><li>[[@repeat(faq)]]</li><li>[[faq[].q]]</li><li>[[@repeatend(faq)]]</li></ul>` +
	`<img src="/p.png" alt="[[hero.image]]">`

func testSchema() *schema.Schema {
	return schema.New([]schema.Field{
		{Key: "title"},
		{Key: "faq[].q"},
		{Key: "hero.image", Type: schema.FieldTypeImage},
	})
}

func newSession(t *testing.T, store *testsupport.MemoryStore, options ...Option) *Session {
	t.Helper()
	options = append([]Option{WithSchema(testSchema())}, options...)
	s := New(templatePath, store, options...)
	if err := s.Load(context.Background(), ""); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func preview(t *testing.T, s *Session) string {
	t.Helper()
	out, err := s.Preview()
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	return out
}

func newStore() *testsupport.MemoryStore {
	return testsupport.NewMemoryStore(map[string]string{templatePath: templateSource})
}

func TestLoadRendersPreview(t *testing.T) {
	s := newSession(t, newStore())

	if s.State() != Idle {
		t.Fatalf("expected idle after load, got %s", s.State())
	}
	if got := s.Counts().Count("", "faq"); got != 1 {
		t.Fatalf("expected one faq item, got %d", got)
	}
	if out := preview(t, s); !strings.Contains(out, "<li>[[faq[0].q]]</li>") {
		t.Fatalf("expected expanded row in preview, got %s", out)
	}
}

func TestLoadMissingSource(t *testing.T) {
	s := New("missing.html", newStore())
	if err := s.Load(context.Background(), ""); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
	if err := s.Render(); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource from render, got %v", err)
	}
	if err := s.Restore(formdata.Data{}); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource from restore, got %v", err)
	}
}

func TestLoadSeedsFromExistingDocument(t *testing.T) {
	store := newStore()
	s := New(templatePath, store, WithSchema(testSchema()))
	existing := `<h1 data-daas-key="title" data-daas-type="text">Old</h1>` +
		`<ul><li data-daas-key="faq[0].q" data-daas-type="text">A</li><li data-daas-key="faq[1].q" data-daas-type="text">B</li></ul>`
	if err := s.Load(context.Background(), existing); err != nil {
		t.Fatalf("load: %v", err)
	}

	data := s.Data()
	if got := data["title"].Text; got != "Old" {
		t.Fatalf("expected seeded title, got %q", got)
	}
	if got := s.Counts().Count("", "faq"); got != 2 {
		t.Fatalf("expected two faq items from the existing page, got %d", got)
	}
	out := preview(t, s)
	for _, want := range []string{`<h1 data-daas-bind="title">Old</h1>`, `>A</li>`, `>B</li>`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in preview, got %s", want, out)
		}
	}
}

func TestUpdateBindsIntoPreview(t *testing.T) {
	s := newSession(t, newStore())

	if !s.Update("title", formdata.Text("Hello")) {
		t.Fatalf("expected update to change the preview")
	}
	if out := preview(t, s); !strings.Contains(out, `<h1 data-daas-bind="title">Hello</h1>`) {
		t.Fatalf("expected bound title, got %s", out)
	}
	if s.Update("unknown", formdata.Text("x")) {
		t.Fatalf("expected update without placeholder to report false")
	}
	if got := s.Data()["unknown"].Text; got != "x" {
		t.Fatalf("expected value recorded anyway, got %q", got)
	}
}

func TestRestoreSuppressesLiveUpdatesUntilSettled(t *testing.T) {
	clock := testsupport.NewManualClock()
	s := newSession(t, newStore(), WithClock(clock.Now))

	if err := s.Restore(formdata.Data{"title": formdata.Text("Draft")}); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if s.State() != RestoringData {
		t.Fatalf("expected restoring state, got %s", s.State())
	}
	if out := preview(t, s); !strings.Contains(out, ">Draft</h1>") {
		t.Fatalf("expected restored value in preview, got %s", out)
	}

	if s.Update("title", formdata.Text("Echo")) {
		t.Fatalf("expected update during restore to be suppressed")
	}
	if got := s.Data()["title"].Text; got != "Echo" {
		t.Fatalf("expected suppressed value recorded, got %q", got)
	}
	if err := s.Render(); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy while restoring, got %v", err)
	}
	if err := s.AddItem("faq"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy from AddItem, got %v", err)
	}
	if err := s.Restore(formdata.Data{}); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy from a second restore, got %v", err)
	}

	clock.Advance(DefaultSettleWindow)
	if s.State() != Idle {
		t.Fatalf("expected idle after the settle window, got %s", s.State())
	}
	if !s.Update("title", formdata.Text("Live")) {
		t.Fatalf("expected update after settling to bind")
	}
	if out := preview(t, s); !strings.Contains(out, ">Live</h1>") {
		t.Fatalf("expected live value in preview, got %s", out)
	}
}

func TestRenderDuringRenderIsDropped(t *testing.T) {
	var armed atomic.Bool
	entered := make(chan struct{})
	hold := make(chan struct{})
	s := newSession(t, newStore(), WithRenderHook(func() {
		if armed.CompareAndSwap(true, false) {
			close(entered)
			<-hold
		}
	}))

	armed.Store(true)
	done := make(chan error, 1)
	go func() { done <- s.Render() }()
	<-entered

	if got := s.State(); got != Rendering {
		t.Fatalf("expected rendering, got %s", got)
	}
	if err := s.Render(); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected concurrent render to be dropped, got %v", err)
	}
	if err := s.AddItem("faq"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected add during render to be dropped, got %v", err)
	}
	if err := s.RemoveItem("faq", 0); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected remove during render to be dropped, got %v", err)
	}
	if got := s.Counts().Count("", "faq"); got != 1 {
		t.Fatalf("expected counts untouched, got %d", got)
	}

	close(hold)
	if err := <-done; err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := s.State(); got != Idle {
		t.Fatalf("expected idle after render, got %s", got)
	}
	if err := s.AddItem("faq"); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if got := s.Counts().Count("", "faq"); got != 2 {
		t.Fatalf("expected two faq items, got %d", got)
	}
}

func TestRestoreRaisesCounts(t *testing.T) {
	clock := testsupport.NewManualClock()
	s := newSession(t, newStore(), WithClock(clock.Now), WithSettleWindow(0))

	data := formdata.Data{
		"faq[0].q": formdata.Text("One"),
		"faq[2].q": formdata.Text("Three"),
	}
	if err := s.Restore(data); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := s.Counts().Count("", "faq"); got != 3 {
		t.Fatalf("expected counts raised to 3, got %d", got)
	}
	if s.State() != Idle {
		t.Fatalf("expected zero settle window to leave the session idle, got %s", s.State())
	}
}

func TestAddAndRemoveItems(t *testing.T) {
	s := newSession(t, newStore())

	if err := s.AddItem("faq"); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if got := s.Counts().Count("", "faq"); got != 2 {
		t.Fatalf("expected two items, got %d", got)
	}
	s.Update("faq[0].q", formdata.Text("First"))
	if !s.Update("faq[1].q", formdata.Text("Second")) {
		t.Fatalf("expected the new row to bind")
	}

	if err := s.RemoveItem("faq", 0); err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if got := s.Counts().Count("", "faq"); got != 1 {
		t.Fatalf("expected one item after removal, got %d", got)
	}
	data := s.Data()
	if got := data["faq[0].q"].Text; got != "Second" {
		t.Fatalf("expected later item shifted down, got %q", got)
	}
	if _, ok := data["faq[1].q"]; ok {
		t.Fatalf("expected faq[1].q removed, got %v", data)
	}
	if out := preview(t, s); !strings.Contains(out, ">Second</li>") || strings.Contains(out, "First") {
		t.Fatalf("unexpected preview after removal: %s", out)
	}
}

func TestPublishRunsStepsInOrder(t *testing.T) {
	store := newStore()
	s := newSession(t, store, WithSaver(store), WithUploader(store), WithPreview(store))

	s.Update("title", formdata.Text("Hello"))
	s.Update("hero.image", formdata.UploadImage("data:image/png;base64,AAAA", "cat.png"))

	result, err := s.Publish(context.Background(), "pages/home.html")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	var steps []string
	for _, call := range store.CallLog() {
		if !strings.HasPrefix(call, "fetch ") {
			steps = append(steps, call)
		}
	}
	want := []string{"upload cat.png", "save pages/home.html", "preview pages/home.html"}
	if diff := cmp.Diff(want, steps); diff != "" {
		t.Fatalf("call order mismatch (-want +got):\n%s", diff)
	}

	url := "https://cdn.test/pages/assets/cat.png"
	if diff := cmp.Diff(map[string]string{"hero.image": url}, result.Uploaded); diff != "" {
		t.Fatalf("uploaded mismatch (-want +got):\n%s", diff)
	}
	if !result.Previewed {
		t.Fatalf("expected preview to be triggered")
	}
	saved := store.Documents["pages/home.html"]
	if saved != result.HTML {
		t.Fatalf("expected saved document to equal the result html")
	}
	for _, want := range []string{`src="` + url + `"`, ">Hello</h1>"} {
		if !strings.Contains(saved, want) {
			t.Fatalf("expected %q in saved document, got %s", want, saved)
		}
	}
	if strings.Contains(saved, "[[") {
		t.Fatalf("expected no leftover placeholders, got %s", saved)
	}
	if img := s.Data()["hero.image"].Image; img == nil || img.ExistingURL != url || img.DataURL != "" {
		t.Fatalf("expected image value to point at the upload, got %+v", img)
	}
}

func TestPublishUploadFailureLeavesImageUnfilled(t *testing.T) {
	store := newStore()
	store.UploadErrs["cat.png"] = errors.New("boom")
	s := newSession(t, store, WithSaver(store), WithUploader(store))

	s.Update("hero.image", formdata.UploadImage("data:image/png;base64,AAAA", "cat.png"))

	result, err := s.Publish(context.Background(), "pages/home.html")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if diff := cmp.Diff([]string{"hero.image"}, result.FailedUploads); diff != "" {
		t.Fatalf("failed uploads mismatch (-want +got):\n%s", diff)
	}
	if result.Previewed {
		t.Fatalf("expected no preview without a trigger")
	}
	saved := store.Documents["pages/home.html"]
	if strings.Contains(saved, "cdn.test") || strings.Contains(saved, "data:image") {
		t.Fatalf("expected image left unfilled, got %s", saved)
	}
}

func TestPublishSaveFailureStopsBeforePreview(t *testing.T) {
	store := newStore()
	store.SaveErr = &remote.StatusError{Op: "save", Path: "pages/home.html", Status: 401}
	s := newSession(t, store, WithSaver(store), WithPreview(store))

	_, err := s.Publish(context.Background(), "pages/home.html")
	if !remote.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if len(store.Previews) != 0 {
		t.Fatalf("expected no preview after a failed save, got %v", store.Previews)
	}
}

func TestPublishWithoutSaver(t *testing.T) {
	s := newSession(t, newStore())
	if _, err := s.Publish(context.Background(), "pages/home.html"); err == nil {
		t.Fatalf("expected error without a saver")
	}
}

func TestPublishHonoursCancelledContext(t *testing.T) {
	store := newStore()
	s := newSession(t, store, WithSaver(store))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Publish(ctx, "pages/home.html"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(store.Documents) != 0 {
		t.Fatalf("expected nothing saved, got %v", store.Documents)
	}
}

type recordingRegistry struct {
	filled []formdata.Data
	values formdata.Data
}

func (r *recordingRegistry) Fill(data formdata.Data) int {
	r.filled = append(r.filled, data.Clone())
	return len(data)
}

func (r *recordingRegistry) Values() formdata.Data {
	return r.values.Clone()
}

func TestRegistryIsFilledAndSynced(t *testing.T) {
	registry := &recordingRegistry{values: formdata.Data{"title": formdata.Text("From form")}}
	store := newStore()
	s := New(templatePath, store, WithSchema(testSchema()), WithRegistry(registry), WithSaver(store))
	if err := s.Load(context.Background(), ""); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(registry.filled) != 1 {
		t.Fatalf("expected registry filled on load, got %d fills", len(registry.filled))
	}

	if got := s.Sync()["title"].Text; got != "From form" {
		t.Fatalf("expected synced title, got %q", got)
	}
	result, err := s.Publish(context.Background(), "pages/home.html")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !strings.Contains(result.HTML, ">From form</h1>") {
		t.Fatalf("expected form value composed, got %s", result.HTML)
	}
}

func TestStateString(t *testing.T) {
	got := []string{Idle.String(), Rendering.String(), RestoringData.String()}
	if diff := cmp.Diff([]string{"idle", "rendering", "restoring-data"}, got); diff != "" {
		t.Fatalf("state names mismatch (-want +got):\n%s", diff)
	}
}
