package compose

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/goliatone/go-daas/pkg/dom"
	"github.com/goliatone/go-daas/pkg/fieldkind"
	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/remote"
	"github.com/goliatone/go-daas/pkg/repeater"
	"github.com/goliatone/go-daas/pkg/schema"
)

// ErrSourceUnavailable reports that the pristine template could not be
// fetched. Callers treat it as "nothing composed".
var ErrSourceUnavailable = errors.New("compose: source unavailable")

// Request carries everything a compose run needs besides the source.
type Request struct {
	// Path identifies the template; it is fetched and stamped on the output.
	Path   string
	Schema *schema.Schema
	Data   formdata.Data
	Counts repeater.Counts
	// ImageURLs overrides image values with freshly uploaded content URLs.
	ImageURLs map[string]string
}

// Option customises a Composer.
type Option func(*Composer)

// WithLogger routes per-field failures to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSanitizer replaces the richtext sanitiser. Passing nil keeps markup
// untouched.
func WithSanitizer(s fieldkind.Sanitizer) Option {
	return func(c *Composer) {
		c.sanitize = s
	}
}

// WithBlockClass overrides the class of the authoring schema block.
func WithBlockClass(class string) Option {
	return func(c *Composer) {
		if class != "" {
			c.blockClass = class
		}
	}
}

// WithExpander supplies the repeater expander.
func WithExpander(e *repeater.Expander) Option {
	return func(c *Composer) {
		if e != nil {
			c.expander = e
		}
	}
}

// Composer produces final, placeholder free HTML annotated with the metadata
// the extractor reads back.
type Composer struct {
	fetcher    remote.SourceFetcher
	expander   *repeater.Expander
	logger     *slog.Logger
	sanitize   fieldkind.Sanitizer
	blockClass string
}

// New constructs a Composer reading pristine sources from fetcher.
func New(fetcher remote.SourceFetcher, options ...Option) *Composer {
	c := &Composer{
		fetcher:    fetcher,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		sanitize:   fieldkind.SanitizeRichText,
		blockClass: schema.DefaultBlockClass,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.expander == nil {
		c.expander = repeater.New(repeater.WithLogger(c.logger))
	}
	return c
}

// Compose fetches the pristine source of req.Path and composes it.
func (c *Composer) Compose(ctx context.Context, req Request) (string, error) {
	if c.fetcher == nil {
		return "", fmt.Errorf("%w: no source fetcher configured", ErrSourceUnavailable)
	}
	src, err := c.fetcher.FetchSource(ctx, req.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, req.Path, err)
	}
	return c.ComposeSource(src, req)
}

// ComposeSource runs the pipeline over an already fetched source.
func (c *Composer) ComposeSource(src string, req Request) (string, error) {
	doc, err := dom.Parse(src)
	if err != nil {
		return "", fmt.Errorf("compose: %w", err)
	}
	c.expander.ExpandNode(doc.Root, req.Counts)

	run := &pass{
		composer: c,
		doc:      doc,
		schema:   req.Schema,
		data:     req.Data,
		images:   req.ImageURLs,
	}
	if run.data == nil {
		run.data = formdata.Data{}
	}

	run.resolveImages()
	run.annotate()
	run.substitute()
	run.removeDelimiters()
	run.stripLeftovers()
	run.removeEmptyBlocks()
	run.removeSchemaBlock()
	if doc.Full {
		Stamp(doc, req.Path)
	}

	out, err := doc.Render()
	if err != nil {
		return "", fmt.Errorf("compose: %w", err)
	}
	return out, nil
}
