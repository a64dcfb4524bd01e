package session

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-daas/pkg/binder"
	"github.com/goliatone/go-daas/pkg/compose"
	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/remote"
	"github.com/goliatone/go-daas/pkg/schema"
)

// DefaultSettleWindow is how long live updates stay suppressed after a
// restore.
const DefaultSettleWindow = 500 * time.Millisecond

// FieldRegistry is the authoring form as seen by the session. Field names
// equal (possibly indexed) keys.
type FieldRegistry interface {
	// Fill writes data into matching fields and reports how many were set.
	Fill(data formdata.Data) int
	// Values reads the current field values.
	Values() formdata.Data
}

// Option customises a Session.
type Option func(*Session)

// WithLogger routes session diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock injects the time source used to evaluate the settle window.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSettleWindow overrides DefaultSettleWindow.
func WithSettleWindow(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.settle = d
		}
	}
}

// WithRenderHook runs fn at the start of every preview rebuild, after the
// session state has been snapshotted and outside the session lock.
func WithRenderHook(fn func()) Option {
	return func(s *Session) {
		s.onRender = fn
	}
}

// WithSchema fixes the schema instead of reading the template's inline block.
func WithSchema(sc *schema.Schema) Option {
	return func(s *Session) {
		s.schema = sc
	}
}

// WithBlockClass overrides the class of the inline schema block.
func WithBlockClass(class string) Option {
	return func(s *Session) {
		if class != "" {
			s.blockClass = class
		}
	}
}

// WithRegistry attaches the authoring form.
func WithRegistry(r FieldRegistry) Option {
	return func(s *Session) {
		s.registry = r
	}
}

// WithComposer supplies the composer used by Compose and Publish.
func WithComposer(c *compose.Composer) Option {
	return func(s *Session) {
		s.composer = c
	}
}

// WithBinderOptions forwards options to every binder the session creates.
func WithBinderOptions(options ...binder.Option) Option {
	return func(s *Session) {
		s.binderOptions = append(s.binderOptions, options...)
	}
}

// WithUploader enables image uploads during Publish.
func WithUploader(u remote.AssetUploader) Option {
	return func(s *Session) {
		s.uploader = u
	}
}

// WithSaver sets where Publish persists composed HTML.
func WithSaver(saver remote.DocumentSaver) Option {
	return func(s *Session) {
		s.saver = saver
	}
}

// WithPreview sets the preview trigger fired after a successful save.
func WithPreview(p remote.PreviewTrigger) Option {
	return func(s *Session) {
		s.preview = p
	}
}
