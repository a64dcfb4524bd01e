package compose

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-daas/pkg/dom"
	"github.com/goliatone/go-daas/pkg/token"
)

var blockElements = map[atom.Atom]struct{}{
	atom.Div:     {},
	atom.Section: {},
	atom.Article: {},
	atom.Aside:   {},
	atom.Figure:  {},
	atom.Header:  {},
	atom.Footer:  {},
}

var mediaElements = map[atom.Atom]struct{}{
	atom.Video:  {},
	atom.Audio:  {},
	atom.Iframe: {},
	atom.Svg:    {},
	atom.Embed:  {},
	atom.Object: {},
	atom.Canvas: {},
}

// removeDelimiters drops repeater marker rows. A marker wrapped in its own
// element loses that element too, and unstyled wrapper divs left empty go
// with it.
func (p *pass) removeDelimiters() {
	for _, n := range dom.TextNodes(p.doc.Root) {
		if !token.IsDelimiter(n.Data) {
			if stripped := token.StripDelimiters(n.Data); stripped != n.Data {
				n.Data = stripped
			}
			continue
		}
		target := n
		for parent := target.Parent; parent != nil && parent.Type == html.ElementNode && !p.isBoundary(parent); parent = parent.Parent {
			if !token.IsDelimiter(dom.TextContent(parent)) {
				break
			}
			target = parent
		}
		parent := target.Parent
		dom.Remove(target)
		removeEmptyWrappers(parent)
	}
}

// stripLeftovers removes tokens that received no value.
func (p *pass) stripLeftovers() {
	for _, n := range dom.TextNodes(p.doc.Root) {
		if len(token.Keys(n.Data)) > 0 {
			n.Data = token.Strip(n.Data)
		}
	}
	for _, el := range dom.Elements(p.doc.Root) {
		for i := range el.Attr {
			if isSubstituted(el.Attr[i].Key) {
				el.Attr[i].Val = strings.TrimSpace(token.Strip(el.Attr[i].Val))
			}
		}
	}
}

// removeEmptyBlocks deletes classed blocks under the main content area that
// ended up with nothing to show, innermost first.
func (p *pass) removeEmptyBlocks() {
	area := p.doc.Main()
	blocks := dom.Collect(area, func(n *html.Node) bool {
		if n == area || n.Type != html.ElementNode {
			return false
		}
		if _, ok := blockElements[n.DataAtom]; !ok {
			return false
		}
		return len(dom.Classes(n)) > 0
	})
	for i := len(blocks) - 1; i >= 0; i-- {
		block := blocks[i]
		if !dom.Attached(p.doc.Root, block) || !isEmptyBlock(block) {
			continue
		}
		parent := block.Parent
		dom.Remove(block)
		removeEmptyWrappers(parent)
	}
}

func (p *pass) removeSchemaBlock() {
	for _, block := range dom.Collect(p.doc.Root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && dom.HasClass(n, p.composer.blockClass)
	}) {
		dom.Remove(block)
	}
}

func (p *pass) isBoundary(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Html, atom.Body, atom.Main:
		return true
	}
	return false
}

// isEmptyBlock reports whether n has no text, no media and no real link.
func isEmptyBlock(n *html.Node) bool {
	if strings.TrimSpace(dom.TextContent(n)) != "" {
		return false
	}
	return dom.First(n, hasContent) == nil
}

func hasContent(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if _, ok := mediaElements[n.DataAtom]; ok {
		return true
	}
	switch n.DataAtom {
	case atom.Img:
		src, _ := dom.Attr(n, "src")
		return strings.TrimSpace(src) != ""
	case atom.Source:
		srcset, _ := dom.Attr(n, "srcset")
		return strings.TrimSpace(srcset) != ""
	case atom.A:
		href, _ := dom.Attr(n, "href")
		href = strings.TrimSpace(href)
		return href != "" && !strings.HasPrefix(href, "#")
	}
	return false
}

// removeEmptyWrappers climbs from n removing unstyled divs left without
// significant children.
func removeEmptyWrappers(n *html.Node) {
	for n != nil && isUnstyledDiv(n) && len(dom.Significant(n)) == 0 {
		parent := n.Parent
		dom.Remove(n)
		n = parent
	}
}

func isUnstyledDiv(n *html.Node) bool {
	if !dom.IsElement(n, atom.Div) {
		return false
	}
	for _, attr := range []string{"class", "style", "id"} {
		if v, ok := dom.Attr(n, attr); ok && strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
