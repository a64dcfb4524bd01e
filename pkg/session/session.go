package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/goliatone/go-daas/pkg/binder"
	"github.com/goliatone/go-daas/pkg/compose"
	"github.com/goliatone/go-daas/pkg/dom"
	"github.com/goliatone/go-daas/pkg/extract"
	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/remote"
	"github.com/goliatone/go-daas/pkg/repeater"
	"github.com/goliatone/go-daas/pkg/schema"
)

// Session holds the authoring state of one template: the cached pristine
// source, repeater counts, form data and the live preview document. Methods
// are safe for concurrent use; the mutex guards state while DOM work on a new
// preview happens outside of it.
type Session struct {
	mu       sync.Mutex
	state    State
	settleAt time.Time

	path       string
	fetcher    remote.SourceFetcher
	source     string
	schema     *schema.Schema
	blockClass string
	counts     repeater.Counts
	data       formdata.Data
	doc        *dom.Document
	binder     *binder.Binder

	registry      FieldRegistry
	composer      *compose.Composer
	uploader      remote.AssetUploader
	saver         remote.DocumentSaver
	preview       remote.PreviewTrigger
	binderOptions []binder.Option
	expander      *repeater.Expander
	onRender      func()

	logger *slog.Logger
	now    func() time.Time
	settle time.Duration
}

// New creates a session for the template at path.
func New(path string, fetcher remote.SourceFetcher, options ...Option) *Session {
	s := &Session{
		path:       path,
		fetcher:    fetcher,
		blockClass: schema.DefaultBlockClass,
		counts:     repeater.Counts{},
		data:       formdata.Data{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
		settle:     DefaultSettleWindow,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.composer == nil {
		s.composer = compose.New(fetcher, compose.WithLogger(s.logger), compose.WithBlockClass(s.blockClass))
	}
	s.expander = repeater.New(repeater.WithLogger(s.logger))
	return s
}

// Path returns the template path.
func (s *Session) Path() string {
	return s.path
}

// Load fetches the template, resolves the schema and renders the preview.
// existing is previously composed HTML for edit sessions; its values and
// repeater counts seed the session. Pass "" for a fresh page.
func (s *Session) Load(ctx context.Context, existing string) error {
	if s.fetcher == nil {
		return ErrNoSource
	}
	src, err := s.fetcher.FetchSource(ctx, s.path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNoSource, s.path, err)
	}

	sc := s.schema
	if sc == nil {
		if sc, err = schema.FromTemplate(src, s.blockClass); err != nil {
			return fmt.Errorf("session: %w", err)
		}
	}

	var seeded extract.Result
	if existing != "" {
		seeded, err = extract.New(extract.WithSchema(sc), extract.WithLogger(s.logger)).Extract(existing)
		if err != nil {
			return fmt.Errorf("session: %w", err)
		}
	}

	s.mu.Lock()
	s.source = src
	s.schema = sc
	if seeded.Data != nil {
		s.data.Merge(seeded.Data)
	}
	for name, n := range seeded.Counts {
		s.counts.Raise(name, n)
	}
	data := s.data.Clone()
	s.mu.Unlock()

	s.logger.Debug("session loaded",
		slog.String("path", s.path),
		slog.Int("fields", sc.Len()),
		slog.Int("values", len(data)))

	if err := s.Render(); err != nil {
		return err
	}
	if s.registry != nil {
		s.registry.Fill(data)
	}
	return nil
}

// State returns the current state, resolving an elapsed settle window.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Session) currentLocked() State {
	if s.state == RestoringData && !s.now().Before(s.settleAt) {
		s.state = Idle
	}
	return s.state
}

// Schema returns the resolved schema.
func (s *Session) Schema() *schema.Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema
}

// Counts returns a copy of the repeater counts.
func (s *Session) Counts() repeater.Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts.Clone()
}

// Data returns a copy of the form data.
func (s *Session) Data() formdata.Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Preview renders the live preview document.
func (s *Session) Preview() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return "", ErrNoSource
	}
	return s.doc.Render()
}

// Render rebuilds the preview from the pristine source and current counts.
// It fails with ErrBusy unless the session is idle.
func (s *Session) Render() error {
	s.mu.Lock()
	if s.source == "" {
		s.mu.Unlock()
		return ErrNoSource
	}
	if state := s.currentLocked(); state != Idle {
		s.mu.Unlock()
		s.logger.Debug("render dropped", slog.String("state", state.String()))
		return ErrBusy
	}
	s.state = Rendering
	s.mu.Unlock()

	err := s.rebuild()

	s.mu.Lock()
	s.state = Idle
	s.mu.Unlock()
	return err
}

// AddItem grows repeater name (a bare name or a scoped `faq[0].items`) by one
// item and re-renders.
func (s *Session) AddItem(name string) error {
	s.mu.Lock()
	if state := s.currentLocked(); state != Idle {
		s.mu.Unlock()
		return ErrBusy
	}
	s.counts.Set(name, s.counts.Count("", name)+1)
	s.mu.Unlock()
	return s.Render()
}

// RemoveItem deletes item index of repeater name, shifting later items down,
// and re-renders. A repeater never shrinks below one item.
func (s *Session) RemoveItem(name string, index int) error {
	s.mu.Lock()
	if state := s.currentLocked(); state != Idle {
		s.mu.Unlock()
		return ErrBusy
	}
	s.data.RemoveItem(name, index)
	s.counts.RemoveItem(name, index)
	data := s.data.Clone()
	s.mu.Unlock()

	if err := s.Render(); err != nil {
		return err
	}
	if s.registry != nil {
		s.registry.Fill(data)
	}
	return nil
}

// Restore replaces the form state with data, typically a saved draft. Live
// updates are suppressed until the settle window elapses so the form writes
// triggered by the restore do not echo back.
func (s *Session) Restore(data formdata.Data) error {
	s.mu.Lock()
	if s.source == "" {
		s.mu.Unlock()
		return ErrNoSource
	}
	if state := s.currentLocked(); state != Idle {
		s.mu.Unlock()
		return ErrBusy
	}
	s.state = RestoringData
	s.settleAt = s.now().Add(s.settle)
	s.data = data.Clone()
	if s.data == nil {
		s.data = formdata.Data{}
	}
	for name, n := range extract.CountsFrom(s.data) {
		s.counts.Raise(name, n)
	}
	filled := s.data.Clone()
	s.mu.Unlock()

	if err := s.rebuild(); err != nil {
		return err
	}
	if s.registry != nil {
		s.registry.Fill(filled)
	}
	return nil
}

// Update records a single field edit and pushes it onto the preview. It
// reports whether the preview changed; edits during a restore are recorded
// but not bound.
func (s *Session) Update(key string, value formdata.Value) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	if s.currentLocked() != Idle || s.binder == nil {
		return false
	}
	return s.binder.Bind(key, previewValue(value), s.schema.Type(key))
}

// Sync pulls the current values out of the registry into the session data.
func (s *Session) Sync() formdata.Data {
	if s.registry == nil {
		return s.Data()
	}
	values := s.registry.Values()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Merge(values)
	return s.data.Clone()
}

// rebuild renders a fresh preview outside the lock and installs it. Values
// edited while the preview was being built are bound on install.
func (s *Session) rebuild() error {
	s.mu.Lock()
	src, counts, data, sc := s.source, s.counts.Clone(), s.data.Clone(), s.schema
	s.mu.Unlock()
	if s.onRender != nil {
		s.onRender()
	}

	doc, err := dom.Parse(src)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	s.expander.ExpandNode(doc.Root, counts)
	b := binder.New(doc, s.binderOptions...)
	for _, key := range data.Keys() {
		b.Bind(key, previewValue(data[key]), sc.Type(key))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, value := range s.data {
		if prev, ok := data[key]; !ok || !prev.Equal(value) {
			b.Bind(key, previewValue(value), s.schema.Type(key))
		}
	}
	s.doc = doc
	s.binder = b
	return nil
}

// previewValue is the text bound into the preview; images awaiting upload
// show their data URL.
func previewValue(v formdata.Value) string {
	if v.Image != nil && v.Image.ExistingURL == "" {
		return v.Image.DataURL
	}
	return v.String()
}

// Compose produces the final HTML from the current state.
func (s *Session) Compose(ctx context.Context) (string, error) {
	return s.compose(ctx, nil)
}

func (s *Session) compose(ctx context.Context, imageURLs map[string]string) (string, error) {
	s.Sync()
	s.mu.Lock()
	req := compose.Request{
		Path:      s.path,
		Schema:    s.schema,
		Data:      s.data.Clone(),
		Counts:    s.counts.Clone(),
		ImageURLs: imageURLs,
	}
	s.mu.Unlock()
	out, err := s.composer.Compose(ctx, req)
	if err != nil {
		if errors.Is(err, compose.ErrSourceUnavailable) {
			s.logger.Warn("compose skipped", slog.String("path", s.path), slog.Any("error", err))
		}
		return "", err
	}
	return out, nil
}
