package extract

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-daas/pkg/dom"
	"github.com/goliatone/go-daas/pkg/fieldkind"
	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/meta"
	"github.com/goliatone/go-daas/pkg/repeater"
	"github.com/goliatone/go-daas/pkg/schema"
	"github.com/goliatone/go-daas/pkg/token"
)

// Result is what extraction recovers from composed markup.
type Result struct {
	Data   formdata.Data
	Counts repeater.Counts
	// TemplatePath and TemplateID echo the root stamp of full documents.
	TemplatePath string
	TemplateID   string
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithSchema makes field types come from s instead of the per-element type
// attribute.
func WithSchema(s *schema.Schema) Option {
	return func(e *Extractor) {
		e.schema = s
	}
}

// WithLogger routes template mismatches and other ambiguities to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Extractor recovers form data from HTML previously produced by the composer.
type Extractor struct {
	schema *schema.Schema
	logger *slog.Logger
}

// New constructs an Extractor.
func New(options ...Option) *Extractor {
	e := &Extractor{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Extract is a convenience wrapper around a default Extractor.
func Extract(src string) (Result, error) {
	return New().Extract(src)
}

type collector struct {
	data formdata.Data
	// base keys (`faq[].q`) seen in document order, re-keyed once the walk
	// completes.
	base     map[string][]formdata.Value
	baseSeen []string
}

func (c *collector) put(key string, value formdata.Value) {
	if strings.Contains(key, "[]") {
		if _, ok := c.base[key]; !ok {
			c.baseSeen = append(c.baseSeen, key)
		}
		c.base[key] = append(c.base[key], value)
		return
	}
	c.data.SetIfEmpty(key, value)
}

// Extract parses src and reads back every annotated value.
func (e *Extractor) Extract(src string) (Result, error) {
	captured := captureRichText(src)
	doc, err := dom.Parse(src)
	if err != nil {
		return Result{}, fmt.Errorf("extract: %w", err)
	}

	c := &collector{data: formdata.Data{}, base: map[string][]formdata.Value{}}
	for _, el := range dom.Collect(doc.Root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && dom.HasAttr(n, meta.AttrKey)
	}) {
		e.readElement(el, captured, c)
	}

	for _, key := range c.baseSeen {
		for idx, value := range c.base[key] {
			c.data.SetIfEmpty(indexKey(key, idx), value)
		}
	}

	res := Result{Data: c.data, Counts: CountsFrom(c.data)}
	if root := doc.HTMLElement(); root != nil {
		res.TemplatePath, _ = dom.Attr(root, meta.AttrTemplatePath)
		res.TemplateID, _ = dom.Attr(root, meta.AttrTemplateID)
	}
	return res, nil
}

func (e *Extractor) readElement(el *html.Node, captured map[string]string, c *collector) {
	keys := dom.ListAttr(el, meta.AttrKey)
	carried := map[string]struct{}{}

	for _, attr := range meta.Carriers {
		attrKeys := dom.ListAttr(el, meta.CarrierKey(attr))
		if len(attrKeys) == 0 {
			continue
		}
		for _, key := range attrKeys {
			carried[key] = struct{}{}
		}
		value, _ := dom.Attr(el, attr)
		if tmpl, ok := dom.Attr(el, meta.CarrierTemplate(attr)); ok {
			e.matchTemplate(tmpl, value, attr, c)
			continue
		}
		if len(attrKeys) > 1 {
			e.logger.Debug("attribute carries several keys without a template",
				slog.String("attr", attr), slog.Any("keys", attrKeys))
		}
		c.put(attrKeys[0], formdata.Text(value))
	}

	var remaining []string
	for _, key := range keys {
		if _, ok := carried[key]; !ok {
			remaining = append(remaining, key)
		}
	}
	if len(remaining) == 0 {
		return
	}

	if tmpl, ok := dom.Attr(el, meta.AttrTemplate); ok {
		e.matchTemplate(tmpl, dom.OwnText(el), "text", c)
		return
	}

	if len(remaining) > 1 {
		e.logger.Debug("element holds several keys without a template",
			slog.Any("keys", remaining))
	}
	key := remaining[0]
	field := e.fieldFor(el, key, len(keys) == 1)
	strategy := fieldkind.ForField(field)
	c.put(key, strategy.Read(el, field, captured[key]))
}

func (e *Extractor) matchTemplate(tmpl, value, source string, c *collector) {
	compiled, err := meta.CompileTemplate(tmpl)
	if err != nil {
		e.logger.Debug("unusable template", slog.String("source", source), slog.Any("error", err))
		return
	}
	values, ok := compiled.Match(value)
	if !ok {
		e.logger.Debug("content no longer matches its template",
			slog.String("source", source),
			slog.String("template", tmpl),
			slog.Any("keys", compiled.Keys))
		return
	}
	for _, key := range token.Unique(compiled.Keys) {
		c.put(key, formdata.Text(values[key]))
	}
}

// fieldFor resolves the field definition of key. The element type attribute
// describes the first key written onto it, so it is only trusted when the
// element holds a single key.
func (e *Extractor) fieldFor(el *html.Node, key string, single bool) schema.Field {
	if e.schema != nil {
		if field, ok := e.schema.Field(key); ok {
			return field
		}
	}
	field := schema.Field{Key: key, Type: schema.FieldTypeText}
	if raw, ok := dom.Attr(el, meta.AttrType); ok && single {
		field.Type, field.Multiple = schema.ParseFieldType(raw)
	}
	return field
}

// indexKey replaces the first `[]` of a base key with idx.
func indexKey(key string, idx int) string {
	return strings.Replace(key, "[]", fmt.Sprintf("[%d]", idx), 1)
}

// CountsFrom derives repeater widths from the indexed keys of data: `faq`
// from `faq[2].q` and the scoped `faq[0].items` from `faq[0].items[1].x`.
func CountsFrom(data formdata.Data) repeater.Counts {
	counts := repeater.Counts{}
	for key := range data {
		for _, idx := range token.Indices(key) {
			counts.Raise(idx.Prefix, idx.Value+1)
		}
	}
	return counts
}
