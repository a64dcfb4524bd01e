package form

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplate "github.com/goliatone/go-template"

	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/repeater"
	"github.com/goliatone/go-daas/pkg/schema"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// Templates exposes the built-in form templates.
func Templates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

const (
	formTemplate  = "form"
	fieldTemplate = "field"
	templateExt   = ".tpl"
)

// Option customises a Renderer.
type Option func(*Renderer)

// WithTemplates overrides the template set. The set must provide form.tpl
// and field.tpl.
func WithTemplates(files fs.FS) Option {
	return func(r *Renderer) {
		if files != nil {
			r.files = files
		}
	}
}

// WithAction sets the form action attribute.
func WithAction(action string) Option {
	return func(r *Renderer) {
		r.action = action
	}
}

// templateEngine is the slice of the go-template engine contract the
// renderer needs.
type templateEngine interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}

// Renderer renders the authoring form of a schema through a go-template
// engine backed by pongo2.
type Renderer struct {
	files  fs.FS
	action string
	engine templateEngine
}

// New constructs a Renderer over its template set.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{files: Templates()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	for _, name := range []string{formTemplate, fieldTemplate} {
		if _, err := fs.Stat(r.files, name+templateExt); err != nil {
			return nil, fmt.Errorf("form: load %s%s: %w", name, templateExt, err)
		}
	}
	registerFilters()

	engine, err := gotemplate.NewRenderer(
		gotemplate.WithFS(r.files),
		gotemplate.WithExtension(templateExt),
	)
	if err != nil {
		return nil, fmt.Errorf("form: template engine: %w", err)
	}
	r.engine = engine
	return r, nil
}

// Render produces the form markup for s with one input per indexed key and
// current values taken from data.
func (r *Renderer) Render(s *schema.Schema, counts repeater.Counts, data formdata.Data) (string, error) {
	view := buildView(s, counts, data)
	view.Action = r.action

	out, err := r.engine.RenderTemplate(formTemplate, map[string]any{"view": view})
	if err != nil {
		return "", fmt.Errorf("form: render: %w", err)
	}
	return out, nil
}

var filtersOnce sync.Once

// registerFilters installs the pongo2 filters the form templates use.
func registerFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("fieldid") {
			_ = pongo2.RegisterFilter("fieldid", filterFieldID)
		}
	})
}

// filterFieldID turns an indexed key such as `faq[1].q` into an id-safe
// `faq-1-q`.
func filterFieldID(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(FieldID(in.String())), nil
}

// FieldID is the DOM id fragment the form uses for the input named key.
func FieldID(key string) string {
	var b strings.Builder
	dash := false
	for _, r := range key {
		if r < 0x80 && (r == '_' || r == '-' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
