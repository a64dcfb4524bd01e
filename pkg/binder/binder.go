package binder

import (
	"io"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-daas/pkg/dom"
	"github.com/goliatone/go-daas/pkg/fieldkind"
	"github.com/goliatone/go-daas/pkg/meta"
	"github.com/goliatone/go-daas/pkg/schema"
	"github.com/goliatone/go-daas/pkg/token"
)

// Option customises a Binder.
type Option func(*Binder)

// WithLogger routes binding diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Binder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithSanitizer replaces the richtext sanitiser. Passing nil keeps markup
// untouched.
func WithSanitizer(s fieldkind.Sanitizer) Option {
	return func(b *Binder) {
		b.sanitize = s
	}
}

// Binder pushes form edits onto the placeholders of a live preview document.
// The first bind of a key finds its occurrences by scanning for the token
// and tags them; later binds go straight through the indexes.
type Binder struct {
	doc      *dom.Document
	logger   *slog.Logger
	sanitize fieldkind.Sanitizer

	exact   *Index
	partial *Index
	hrefs   *Index
	images  *Index

	pristineText map[*html.Node]string
	pristineHref map[*html.Node]string
	values       map[string]string
	applied      map[string]string
}

// New binds to doc.
func New(doc *dom.Document, options ...Option) *Binder {
	b := &Binder{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		sanitize: fieldkind.SanitizeRichText,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	b.Reset(doc)
	return b
}

// Reset points the binder at a new document and drops every index. Call it
// after structural changes such as adding or removing repeater items.
func (b *Binder) Reset(doc *dom.Document) {
	b.doc = doc
	b.exact = NewIndex()
	b.partial = NewIndex()
	b.hrefs = NewIndex()
	b.images = NewIndex()
	b.pristineText = map[*html.Node]string{}
	b.pristineHref = map[*html.Node]string{}
	b.values = map[string]string{}
	b.applied = map[string]string{}
}

// Document returns the bound document.
func (b *Binder) Document() *dom.Document {
	return b.doc
}

// Bind applies value to every occurrence of key and reports whether any
// occurrence was found. Binding the same value twice is a no-op.
func (b *Binder) Bind(key, value string, fieldType schema.FieldType) bool {
	if b.doc == nil || b.doc.Root == nil || key == "" {
		return false
	}
	if prev, ok := b.applied[key]; ok && prev == value && b.bound(key) {
		return true
	}
	b.values[key] = value

	kind := fieldType.Kind()
	found := false
	switch {
	case kind == schema.KindURL && b.bindHref(key):
		found = true
	case kind == schema.KindImage && b.bindImage(key):
		found = true
	case b.exact.Has(key):
		b.writeExact(key, kind)
		found = true
	case b.partial.Has(key):
		b.renderPartial(key)
		found = true
	default:
		found = b.discover(key, kind)
	}
	if found {
		b.applied[key] = value
	} else {
		b.logger.Debug("no placeholder for key", slog.String("key", key))
	}
	return found
}

func (b *Binder) bound(key string) bool {
	return b.exact.Has(key) || b.partial.Has(key) || b.hrefs.Has(key) || b.images.Has(key)
}

// candidates lists the token keys that stand for key: the key itself and,
// for index-0 repeater keys, the base key an unexpanded row still shows.
func candidates(key string) []string {
	if base, ok := token.ZeroBase(key); ok {
		return []string{key, base}
	}
	return []string{key}
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if token.Contains(s, k) {
			return true
		}
	}
	return false
}

// substitute renders pristine with the current value of every key in keys.
func (b *Binder) substitute(pristine string, keys []string) string {
	out := pristine
	for _, key := range keys {
		value, ok := b.values[key]
		if !ok {
			continue
		}
		for _, k := range candidates(key) {
			out = token.Replace(out, k, value)
		}
	}
	return out
}

func (b *Binder) bindHref(key string) bool {
	if !b.hrefs.Has(key) {
		keys := candidates(key)
		for _, a := range dom.Collect(b.doc.Root, func(n *html.Node) bool {
			return n.Type == html.ElementNode && dom.HasAttr(n, "href")
		}) {
			href, _ := dom.Attr(a, "href")
			if _, seen := b.pristineHref[a]; seen {
				href = b.pristineHref[a]
			}
			if !containsAny(href, keys) {
				continue
			}
			b.pristineHref[a] = href
			dom.AppendListAttr(a, meta.AttrBindHref, key)
			b.hrefs.Add(key, a)
		}
	}
	nodes := b.hrefs.Nodes(key)
	for _, a := range nodes {
		dom.SetAttr(a, "href", b.substitute(b.pristineHref[a], b.hrefs.Keys(a)))
	}
	return len(nodes) > 0
}

func (b *Binder) bindImage(key string) bool {
	if !b.images.Has(key) {
		keys := candidates(key)
		for _, img := range dom.Collect(b.doc.Root, func(n *html.Node) bool { return dom.IsElement(n, atom.Img) }) {
			alt, _ := dom.Attr(img, "alt")
			if sole, ok := token.IsSole(token.Normalize(alt)); !ok || !containsAny(token.Wrap(sole), keys) {
				continue
			}
			dom.SetAttr(img, meta.AttrBindSrc, key)
			b.images.Add(key, img)
		}
	}
	nodes := b.images.Nodes(key)
	for _, img := range nodes {
		dom.SetAttr(img, "src", b.values[key])
	}
	return len(nodes) > 0
}

func (b *Binder) writeExact(key string, kind schema.Kind) {
	value := b.values[key]
	strategy := fieldkind.For(kind)
	if kind == schema.KindRich && b.sanitize != nil {
		value = b.sanitize(value)
	}
	if kind != schema.KindRich {
		strategy = fieldkind.For(schema.KindPlain)
	}
	for _, el := range b.exact.Nodes(key) {
		if err := strategy.Write(el, value); err != nil {
			b.logger.Debug("bind failed", slog.String("key", key), slog.Any("error", err))
		}
	}
}

func (b *Binder) renderPartial(key string) {
	for _, n := range b.partial.Nodes(key) {
		n.Data = b.substitute(b.pristineText[n], b.partial.Keys(n))
	}
}

// discover scans text nodes for the token of key, tagging the parent exact
// when the token is its only content and partial otherwise.
func (b *Binder) discover(key string, kind schema.Kind) bool {
	keys := candidates(key)
	found := false
	for _, n := range dom.TextNodes(b.doc.Root) {
		source := n.Data
		if pristine, ok := b.pristineText[n]; ok {
			source = pristine
		}
		if !containsAny(source, keys) {
			continue
		}
		parent := n.Parent
		if parent == nil || parent.Type != html.ElementNode {
			continue
		}
		found = true
		if isSoleContent(parent, n) {
			dom.AppendListAttr(parent, meta.AttrBind, key)
			b.exact.Add(key, parent)
			continue
		}
		if _, ok := b.pristineText[n]; !ok {
			b.pristineText[n] = n.Data
		}
		dom.AppendListAttr(parent, meta.AttrBindPartial, key)
		b.partial.Add(key, n)
	}
	if b.exact.Has(key) {
		b.writeExact(key, kind)
	}
	if b.partial.Has(key) {
		b.renderPartial(key)
	}
	return found
}

// isSoleContent reports whether text node n is a lone token and the only
// significant child of parent.
func isSoleContent(parent, n *html.Node) bool {
	if _, ok := token.IsSole(token.Normalize(n.Data)); !ok {
		return false
	}
	children := dom.Significant(parent)
	return len(children) == 1 && children[0] == n && strings.TrimSpace(n.Data) != ""
}
