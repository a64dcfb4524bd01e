package repeater

import (
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/goliatone/go-daas/pkg/dom"
	"github.com/goliatone/go-daas/pkg/token"
)

// Option customises an Expander.
type Option func(*Expander)

// WithLogger routes diagnostics (unterminated repeaters) to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Expander) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Expander clones repeater template rows to match a Counts map.
type Expander struct {
	logger *slog.Logger
}

// New constructs an Expander.
func New(options ...Option) *Expander {
	e := &Expander{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

var defaultExpander = New()

// Expand is a convenience wrapper around a default Expander.
func Expand(src string, counts Counts) (string, error) {
	return defaultExpander.Expand(src, counts)
}

// Expand parses src, expands every repeater and renders the result.
func (e *Expander) Expand(src string, counts Counts) (string, error) {
	doc, err := dom.Parse(src)
	if err != nil {
		return "", fmt.Errorf("repeater: %w", err)
	}
	e.ExpandNode(doc.Root, counts)
	out, err := doc.Render()
	if err != nil {
		return "", fmt.Errorf("repeater: %w", err)
	}
	return out, nil
}

// ExpandNode expands repeaters under root in place. Delimiter rows are left
// in the tree; the composer removes them when producing final output.
func (e *Expander) ExpandNode(root *html.Node, counts Counts) {
	if root == nil {
		return
	}
	if counts == nil {
		counts = Counts{}
	}
	e.expandContainer(root, "", counts)
}

// expandContainer expands the repeaters delimited among the direct children
// of container, then descends. Clones carry their item scope down so nested
// repeaters can resolve scoped counts such as `faq[1].items`.
func (e *Expander) expandContainer(container *html.Node, scope string, counts Counts) {
	scopes := e.expandRows(container, scope, counts)
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		childScope := scope
		if s, ok := scopes[c]; ok {
			childScope = s
		}
		e.expandContainer(c, childScope, counts)
	}
}

func (e *Expander) expandRows(container *html.Node, scope string, counts Counts) map[*html.Node]string {
	children := dom.Significant(container)
	if len(children) < 2 {
		return nil
	}

	var scopes map[*html.Node]string
	for i := 0; i < len(children); i++ {
		name, ok := token.RepeatStart(dom.TextContent(children[i]))
		if !ok {
			continue
		}
		end := matchingEnd(children, i, name)
		if end < 0 {
			e.logger.Debug("repeater has no end delimiter", slog.String("repeater", name), slog.String("scope", scope))
			continue
		}

		start, stop := children[i], children[end]
		var rows []*html.Node
		significant := false
		for n := start.NextSibling; n != nil && n != stop; n = n.NextSibling {
			rows = append(rows, n)
			if n.Type == html.ElementNode || !dom.IsBlankText(n) {
				significant = true
			}
		}
		if !significant {
			i = end
			continue
		}

		if scopes == nil {
			scopes = make(map[*html.Node]string)
		}
		count := counts.Count(scope, name)
		for idx := 0; idx < count; idx++ {
			itemScope := fmt.Sprintf("%s%s[%d].", scope, name, idx)
			for _, row := range rows {
				clone := dom.Clone(row)
				rewrite(clone, name, idx)
				container.InsertBefore(clone, stop)
				scopes[clone] = itemScope
			}
		}
		for _, row := range rows {
			container.RemoveChild(row)
		}
		i = end
	}
	return scopes
}

func matchingEnd(children []*html.Node, start int, name string) int {
	for j := start + 1; j < len(children); j++ {
		if endName, ok := token.RepeatEnd(dom.TextContent(children[j])); ok && endName == name {
			return j
		}
	}
	return -1
}

// rewrite indexes every `name[]` token segment in text nodes and attribute
// values of n.
func rewrite(n *html.Node, name string, idx int) {
	dom.Walk(n, func(c *html.Node) bool {
		switch c.Type {
		case html.TextNode:
			c.Data = token.RewriteIndex(c.Data, name, idx)
		case html.ElementNode:
			for i := range c.Attr {
				c.Attr[i].Val = token.RewriteIndex(c.Attr[i].Val, name, idx)
			}
		}
		return true
	})
}
