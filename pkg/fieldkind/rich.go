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

type rich struct{}

func (rich) Kind() schema.Kind { return schema.KindRich }

func (rich) Read(el *html.Node, _ schema.Field, captured string) formdata.Value {
	if strings.TrimSpace(captured) != "" {
		return formdata.Text(strings.TrimSpace(captured))
	}
	return formdata.Text(strings.TrimSpace(dom.InnerHTML(el)))
}

func (rich) Write(el *html.Node, value string) error {
	nodes, err := Fragment(el, value)
	if err != nil {
		return err
	}
	dom.RemoveChildren(el)
	for _, n := range nodes {
		el.AppendChild(n)
	}
	return nil
}

// Inject splices the parsed value into the text node at every occurrence of
// key, keeping the literal text around it.
func (rich) Inject(n *html.Node, key, value string) (*html.Node, error) {
	parent := n.Parent
	if parent == nil {
		return nil, nil
	}
	if !token.Contains(n.Data, key) {
		return parent, nil
	}
	nodes, err := Fragment(parent, value)
	if err != nil {
		return parent, err
	}

	const marker = "\x00"
	parts := strings.Split(token.Replace(n.Data, key, marker), marker)
	for i, part := range parts {
		if part != "" {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: part}, n)
		}
		if i == len(parts)-1 {
			break
		}
		for _, c := range nodes {
			parent.InsertBefore(dom.Clone(c), n)
		}
	}
	parent.RemoveChild(n)
	return parent, nil
}

// Fragment parses markup for insertion under host. Paragraph wrappers are
// unwrapped when host only accepts phrasing content, so `<p>[[body]]</p>`
// never ends up holding a nested paragraph.
func Fragment(host *html.Node, markup string) ([]*html.Node, error) {
	nodes, err := dom.ParseInto(nil, markup)
	if err != nil {
		return nil, err
	}
	if !phrasingOnly(host) {
		return nodes, nil
	}

	var out []*html.Node
	paragraphs := 0
	for _, n := range nodes {
		if !dom.IsElement(n, atom.P) {
			out = append(out, n)
			continue
		}
		if paragraphs > 0 {
			out = append(out, &html.Node{Type: html.ElementNode, Data: "br", DataAtom: atom.Br})
		}
		paragraphs++
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			n.RemoveChild(c)
			out = append(out, c)
			c = next
		}
	}
	return out, nil
}

var phrasingHosts = map[atom.Atom]struct{}{
	atom.P: {}, atom.H1: {}, atom.H2: {}, atom.H3: {}, atom.H4: {}, atom.H5: {}, atom.H6: {},
	atom.Span: {}, atom.A: {}, atom.B: {}, atom.Strong: {}, atom.Em: {}, atom.I: {},
	atom.Label: {}, atom.Button: {}, atom.Small: {}, atom.Dt: {}, atom.Caption: {},
}

func phrasingOnly(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	_, ok := phrasingHosts[n.DataAtom]
	return ok
}
