package fieldkind

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-daas/pkg/dom"
	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/schema"
	"github.com/goliatone/go-daas/pkg/token"
)

// Strategy bundles the read, write and inject behaviour of one field kind.
type Strategy interface {
	Kind() schema.Kind
	// Read recovers a value from an annotated element. captured holds the
	// raw inner HTML captured before parsing, if any.
	Read(el *html.Node, field schema.Field, captured string) formdata.Value
	// Write replaces the whole content of a bound element.
	Write(el *html.Node, value string) error
	// Inject substitutes key inside text node n, which may hold other
	// literal text. It returns the element that owns the substituted value.
	Inject(n *html.Node, key, value string) (*html.Node, error)
}

var strategies = map[schema.Kind]Strategy{
	schema.KindPlain: plain{},
	schema.KindRich:  rich{},
	schema.KindImage: image{},
	schema.KindURL:   link{},
}

// For returns the strategy of kind.
func For(kind schema.Kind) Strategy {
	if s, ok := strategies[kind]; ok {
		return s
	}
	return plain{}
}

// ForField returns the strategy of the field's kind.
func ForField(field schema.Field) Strategy {
	return For(field.Kind())
}

type plain struct{}

func (plain) Kind() schema.Kind { return schema.KindPlain }

func (plain) Read(el *html.Node, field schema.Field, _ string) formdata.Value {
	text := strings.TrimSpace(dom.TextContent(el))
	if field.Multiple && text != "" {
		parts := strings.Split(text, strings.TrimSpace(formdata.ListSeparator))
		items := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		return formdata.List(items...)
	}
	return formdata.Text(text)
}

func (plain) Write(el *html.Node, value string) error {
	dom.SetText(el, value)
	return nil
}

func (plain) Inject(n *html.Node, key, value string) (*html.Node, error) {
	n.Data = token.Replace(n.Data, key, value)
	return n.Parent, nil
}

type link struct{ plain }

func (link) Kind() schema.Kind { return schema.KindURL }

func (link) Read(el *html.Node, field schema.Field, captured string) formdata.Value {
	anchor := el
	if !dom.IsElement(anchor, atom.A) {
		anchor = dom.First(el, func(n *html.Node) bool { return dom.IsElement(n, atom.A) })
	}
	if anchor != nil {
		if href, ok := dom.Attr(anchor, "href"); ok && href != "" {
			return formdata.Text(href)
		}
	}
	return plain{}.Read(el, field, captured)
}

type image struct{ plain }

func (image) Kind() schema.Kind { return schema.KindImage }

func (image) Read(el *html.Node, _ schema.Field, _ string) formdata.Value {
	img := ImageElement(el)
	if img == nil {
		return formdata.Value{}
	}
	src, _ := dom.Attr(img, "src")
	if src == "" {
		return formdata.Value{}
	}
	alt, _ := dom.Attr(img, "alt")
	return formdata.ExistingImage(src, alt)
}

func (image) Write(el *html.Node, value string) error {
	if img := ImageElement(el); img != nil {
		dom.SetAttr(img, "src", value)
	}
	return nil
}

// ImageElement returns el when it is an <img>, or the first nested <img>.
func ImageElement(el *html.Node) *html.Node {
	if dom.IsElement(el, atom.Img) {
		return el
	}
	return dom.First(el, func(n *html.Node) bool { return dom.IsElement(n, atom.Img) })
}
