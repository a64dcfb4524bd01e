package compose

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-daas/pkg/dom"
	"github.com/goliatone/go-daas/pkg/fieldkind"
	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/meta"
	"github.com/goliatone/go-daas/pkg/schema"
	"github.com/goliatone/go-daas/pkg/token"
)

// substituted lists the attributes whose placeholders are replaced and, when
// unfilled, stripped.
var substituted = []string{"href", "src", "alt", "srcset"}

// pass holds the state of one compose run over a parsed document.
type pass struct {
	composer *Composer
	doc      *dom.Document
	schema   *schema.Schema
	data     formdata.Data
	images   map[string]string
}

// guard runs fn for key, turning a panic into a logged, skipped field.
func (p *pass) guard(key, step string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			p.composer.logger.Warn("compose step failed",
				slog.String("step", step), slog.String("key", key), slog.Any("panic", r))
		}
	}()
	if err := fn(); err != nil {
		p.composer.logger.Warn("compose step failed",
			slog.String("step", step), slog.String("key", key), slog.Any("error", err))
	}
}

func (p *pass) value(key string) (formdata.Value, bool) {
	if url := p.images[key]; url != "" {
		v, _ := p.data.Get(key)
		alt := ""
		if v.Image != nil {
			alt = v.Image.Alt
		}
		return formdata.ExistingImage(url, alt), true
	}
	v, ok := p.data.Get(key)
	if !ok || v.Empty() {
		return formdata.Value{}, false
	}
	if v.Image != nil && v.Image.ExistingURL == "" {
		// still pending upload
		return formdata.Value{}, false
	}
	return v, true
}

func (p *pass) filled(key string) bool {
	_, ok := p.value(key)
	return ok
}

func (p *pass) field(key string) schema.Field {
	field := p.schema.FieldOrText(key)
	if _, declared := p.schema.Field(key); !declared {
		if v, ok := p.value(key); ok && v.IsImage() {
			field.Type = schema.FieldTypeImage
		}
	}
	field.Key = key
	return field
}

// resolveImages fills <img alt="[[key]]"> placeholders of image fields.
func (p *pass) resolveImages() {
	for _, img := range dom.Collect(p.doc.Root, func(n *html.Node) bool { return dom.IsElement(n, atom.Img) }) {
		alt, _ := dom.Attr(img, "alt")
		key, ok := token.IsSole(token.Normalize(alt))
		if !ok {
			continue
		}
		if p.field(key).Kind() != schema.KindImage {
			continue
		}
		p.guard(key, "image", func() error {
			p.resolveImage(img, key)
			return nil
		})
	}
}

func (p *pass) resolveImage(img *html.Node, key string) {
	v, ok := p.value(key)
	if !ok {
		return
	}
	url, alt := v.String(), ""
	if v.Image != nil {
		alt = v.Image.Alt
	}
	if url == "" {
		return
	}
	dom.SetAttr(img, "src", url)
	dom.SetAttr(img, "alt", alt)
	if picture := img.Parent; dom.IsElement(picture, atom.Picture) {
		for _, source := range dom.ElementChildren(picture) {
			if dom.IsElement(source, atom.Source) && dom.HasAttr(source, "srcset") {
				dom.SetAttr(source, "srcset", url)
			}
		}
	}
	p.annotateKey(img, key)
}

// annotate records key lists, field metadata and templates before any value
// is substituted, while the tokens still show where each key lives.
func (p *pass) annotate() {
	for _, el := range dom.Elements(p.doc.Root) {
		p.annotateText(el)
		for _, attr := range meta.Carriers {
			p.annotateCarrier(el, attr)
		}
	}
}

func (p *pass) annotateText(el *html.Node) {
	own := dom.OwnText(el)
	keys := token.Distinct(own)
	if len(keys) == 0 {
		return
	}
	var filled []string
	for _, key := range keys {
		if p.filled(key) {
			filled = append(filled, key)
		}
	}
	if len(filled) == 0 {
		return
	}
	if p.needsTemplate(el, own, keys) {
		dom.SetAttrOnce(el, meta.AttrTemplate, strings.TrimSpace(own))
	}
	for _, key := range filled {
		p.annotateKey(el, key)
	}
}

// needsTemplate reports whether the text of el cannot be read back as a
// single value: several keys, literal text around the token, or text coming
// from descendants.
func (p *pass) needsTemplate(el *html.Node, own string, keys []string) bool {
	if len(keys) >= 2 {
		return true
	}
	if p.field(keys[0]).Kind() == schema.KindRich {
		return false
	}
	if _, sole := token.IsSole(own); !sole {
		return true
	}
	return strings.TrimSpace(dom.TextContent(el)) != strings.TrimSpace(own)
}

func (p *pass) annotateCarrier(el *html.Node, attr string) {
	v, ok := dom.Attr(el, attr)
	if !ok {
		return
	}
	keys := token.Distinct(v)
	var filled []string
	for _, key := range keys {
		if p.filled(key) {
			filled = append(filled, key)
		}
	}
	if len(filled) == 0 {
		return
	}
	if len(keys) >= 2 || strings.TrimSpace(token.Strip(v)) != "" {
		dom.SetAttrOnce(el, meta.CarrierTemplate(attr), v)
	}
	for _, key := range filled {
		dom.AppendListAttr(el, meta.CarrierKey(attr), key)
		p.annotateKey(el, key)
	}
}

// annotateKey lists key on el and stamps its field metadata. Each metadata
// attribute keeps the first value written.
func (p *pass) annotateKey(el *html.Node, key string) {
	dom.AppendListAttr(el, meta.AttrKey, key)
	for _, attr := range p.field(key).Attributes() {
		dom.SetAttrOnce(el, meta.FieldAttr(attr.Name), attr.Value)
	}
}

// substitute writes every filled value into text nodes and attributes.
func (p *pass) substitute() {
	for _, n := range dom.TextNodes(p.doc.Root) {
		keys := token.Distinct(n.Data)
		if len(keys) == 0 {
			continue
		}
		var rich []string
		for _, key := range keys {
			v, ok := p.value(key)
			if !ok {
				continue
			}
			if p.field(key).Kind() == schema.KindRich {
				rich = append(rich, key)
				continue
			}
			p.guard(key, "text", func() error {
				_, err := fieldkind.For(schema.KindPlain).Inject(n, key, v.String())
				return err
			})
		}
		if len(rich) > 0 && n.Parent != nil {
			p.injectRich(n.Parent, rich)
		}
	}

	for _, el := range dom.Elements(p.doc.Root) {
		for i := range el.Attr {
			if !isSubstituted(el.Attr[i].Key) {
				continue
			}
			for _, key := range token.Distinct(el.Attr[i].Val) {
				v, ok := p.value(key)
				if !ok {
					continue
				}
				el.Attr[i].Val = token.Replace(el.Attr[i].Val, key, v.String())
			}
		}
	}
}

func (p *pass) injectRich(parent *html.Node, keys []string) {
	strategy := fieldkind.For(schema.KindRich)
	for _, key := range keys {
		v, _ := p.value(key)
		markup := v.String()
		if p.composer.sanitize != nil {
			markup = p.composer.sanitize(markup)
		}
		var targets []*html.Node
		for c := parent.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode && token.Contains(c.Data, key) {
				targets = append(targets, c)
			}
		}
		for _, n := range targets {
			p.guard(key, "richtext", func() error {
				if _, err := strategy.Inject(n, key, markup); err != nil {
					return fmt.Errorf("inject: %w", err)
				}
				return nil
			})
		}
	}
}

func isSubstituted(attr string) bool {
	for _, name := range substituted {
		if attr == name {
			return true
		}
	}
	return false
}
