package dom

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var fullDocumentPattern = regexp.MustCompile(`(?i)^\s*(?:<!--[\s\S]*?-->\s*)*(?:<!doctype|<html[\s>])`)

// Document wraps a parsed tree. Full documents keep the parser's document
// node; fragments are parented under a synthetic document node so callers can
// walk and mutate both shapes the same way.
type Document struct {
	Root *html.Node
	Full bool
}

// Parse builds a Document from src. Sources starting with a doctype or an
// <html> tag are parsed as full documents, everything else as a body
// fragment.
func Parse(src string) (*Document, error) {
	if fullDocumentPattern.MatchString(src) {
		root, err := html.Parse(strings.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("dom: parse document: %w", err)
		}
		return &Document{Root: root, Full: true}, nil
	}

	nodes, err := html.ParseFragment(strings.NewReader(src), bodyContext())
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &Document{Root: root}, nil
}

// Render serialises the document back to HTML the way a browser writes
// outerHTML: void elements without a slash, U+00A0 as &nbsp;.
func (d *Document) Render() (string, error) {
	if d == nil || d.Root == nil {
		return "", errors.New("dom: document is nil")
	}
	var b strings.Builder
	serialize(&b, d.Root)
	return b.String(), nil
}

// HTMLElement returns the <html> element of a full document, nil otherwise.
func (d *Document) HTMLElement() *html.Node {
	if d == nil || !d.Full {
		return nil
	}
	return First(d.Root, func(n *html.Node) bool { return IsElement(n, atom.Html) })
}

// Body returns the node that holds page content: <body> for full documents,
// the fragment root otherwise.
func (d *Document) Body() *html.Node {
	if d == nil {
		return nil
	}
	if d.Full {
		if body := First(d.Root, func(n *html.Node) bool { return IsElement(n, atom.Body) }); body != nil {
			return body
		}
	}
	return d.Root
}

// Main returns the first <main> element, falling back to Body.
func (d *Document) Main() *html.Node {
	if d == nil {
		return nil
	}
	if main := First(d.Root, func(n *html.Node) bool { return IsElement(n, atom.Main) }); main != nil {
		return main
	}
	return d.Body()
}

func bodyContext() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}

// ParseInto parses src as a fragment in the context of parent and returns the
// resulting nodes, detached.
func ParseInto(parent *html.Node, src string) ([]*html.Node, error) {
	ctx := parent
	if ctx == nil || ctx.Type != html.ElementNode {
		ctx = bodyContext()
	}
	nodes, err := html.ParseFragment(strings.NewReader(src), ctx)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	return nodes, nil
}

// RenderNode serialises a single node.
func RenderNode(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	serialize(&b, n)
	return b.String()
}
