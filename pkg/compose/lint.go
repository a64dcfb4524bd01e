package compose

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-daas/pkg/dom"
	"github.com/goliatone/go-daas/pkg/schema"
	"github.com/goliatone/go-daas/pkg/token"
)

// IssueKind classifies a lint finding.
type IssueKind string

const (
	// IssueAdjacent flags placeholders with no literal text between them;
	// extraction of such layouts is best-effort.
	IssueAdjacent IssueKind = "adjacent"
	// IssueUnknownKey flags a placeholder the schema does not declare.
	IssueUnknownKey IssueKind = "unknown-key"
	// IssueUnterminated flags a repeat marker with no matching end in the
	// same container.
	IssueUnterminated IssueKind = "unterminated-repeater"
	// IssueEmbeddedMarker flags a repeat marker sharing its row with other
	// content, which the expander ignores.
	IssueEmbeddedMarker IssueKind = "embedded-marker"
)

// Issue is one lint finding.
type Issue struct {
	Kind        IssueKind
	Location    string
	Key         string
	Message     string
	Suggestions []string
}

func (i Issue) String() string {
	msg := fmt.Sprintf("%s: %s", i.Location, i.Message)
	if len(i.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(i.Suggestions, ", "))
	}
	return msg
}

const suggestionLimit = 3

// Lint inspects a template source for layouts the engines cannot round-trip
// reliably. A nil schema skips the unknown-key check.
func Lint(src string, s *schema.Schema) ([]Issue, error) {
	doc, err := dom.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("compose: lint: %w", err)
	}

	var issues []Issue
	seenUnknown := map[string]bool{}
	check := func(location, text string) {
		for _, pair := range token.Adjacent(token.Normalize(text)) {
			issues = append(issues, Issue{
				Kind:     IssueAdjacent,
				Location: location,
				Key:      pair[0],
				Message:  fmt.Sprintf("placeholders %s and %s have no separator", token.Wrap(pair[0]), token.Wrap(pair[1])),
			})
		}
		if s == nil || s.Len() == 0 {
			return
		}
		for _, key := range token.Distinct(text) {
			if s.Has(key) || seenUnknown[key] {
				continue
			}
			seenUnknown[key] = true
			issues = append(issues, Issue{
				Kind:        IssueUnknownKey,
				Location:    location,
				Key:         key,
				Message:     fmt.Sprintf("placeholder %s is not declared", token.Wrap(key)),
				Suggestions: s.Suggest(key, suggestionLimit),
			})
		}
	}

	dom.Walk(doc.Root, func(n *html.Node) bool {
		switch n.Type {
		case html.TextNode:
			if n.Parent != nil && dom.HasClass(n.Parent, schema.DefaultBlockClass) {
				return true
			}
			check(location(n.Parent), n.Data)
			if strings.Contains(n.Data, "[[@repeat") && !token.IsDelimiter(n.Data) && token.StripDelimiters(n.Data) != n.Data {
				issues = append(issues, Issue{
					Kind:     IssueEmbeddedMarker,
					Location: location(n.Parent),
					Message:  "repeat marker must be the only content of its row",
				})
			}
		case html.ElementNode:
			if dom.HasClass(n, schema.DefaultBlockClass) {
				return false
			}
			for _, attr := range n.Attr {
				check(location(n)+"@"+attr.Key, attr.Val)
			}
		}
		return true
	})
	issues = append(issues, unterminated(doc.Root)...)

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Kind == issues[j].Kind {
			return issues[i].Location < issues[j].Location
		}
		return issues[i].Kind < issues[j].Kind
	})
	return issues, nil
}

// unterminated reports every sole repeat marker that the expander would not
// pair at any level of the tree. Each marker is reported once, at the
// container of its innermost row.
func unterminated(root *html.Node) []Issue {
	markers := dom.Collect(root, func(n *html.Node) bool {
		if n.Type != html.TextNode || inSchemaBlock(n) {
			return false
		}
		return token.IsDelimiter(n.Data)
	})
	if len(markers) == 0 {
		return nil
	}

	paired := make(map[*html.Node]bool, len(markers))
	dom.Walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && dom.HasClass(n, schema.DefaultBlockClass) {
			return false
		}
		if n.Type != html.ElementNode && n.Type != html.DocumentNode {
			return true
		}
		children := dom.Significant(n)
		for i := 0; i < len(children); i++ {
			name, ok := token.RepeatStart(dom.TextContent(children[i]))
			if !ok {
				continue
			}
			for j := i + 1; j < len(children); j++ {
				if end, ok := token.RepeatEnd(dom.TextContent(children[j])); ok && end == name {
					paired[markerText(children[i])] = true
					paired[markerText(children[j])] = true
					i = j
					break
				}
			}
		}
		return true
	})

	var issues []Issue
	for _, marker := range markers {
		if paired[marker] {
			continue
		}
		issue := Issue{Kind: IssueUnterminated, Location: location(rowOf(marker).Parent)}
		if name, ok := token.RepeatStart(marker.Data); ok {
			issue.Key = name
			issue.Message = fmt.Sprintf("repeat(%s) has no end marker in the same container", name)
		} else {
			name, _ := token.RepeatEnd(marker.Data)
			issue.Key = name
			issue.Message = fmt.Sprintf("repeatend(%s) has no opening marker", name)
		}
		issues = append(issues, issue)
	}
	return issues
}

// markerText returns the marker text node carried by a row.
func markerText(row *html.Node) *html.Node {
	if row.Type == html.TextNode {
		return row
	}
	return dom.First(row, func(n *html.Node) bool {
		return n.Type == html.TextNode && !dom.IsBlankText(n)
	})
}

// rowOf returns the innermost row holding marker: its element when the
// marker is that element's only content, the text node otherwise.
func rowOf(marker *html.Node) *html.Node {
	parent := marker.Parent
	if parent != nil && parent.Type == html.ElementNode && len(dom.Significant(parent)) == 1 {
		return parent
	}
	return marker
}

func inSchemaBlock(n *html.Node) bool {
	return dom.Closest(n, func(c *html.Node) bool {
		return c.Type == html.ElementNode && dom.HasClass(c, schema.DefaultBlockClass)
	}) != nil
}

// location renders a short CSS-like path for n.
func location(n *html.Node) string {
	var parts []string
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		part := cur.Data
		if id, ok := dom.Attr(cur, "id"); ok && id != "" {
			part += "#" + id
		} else if classes := dom.Classes(cur); len(classes) > 0 {
			part += "." + classes[0]
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return "(root)"
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}
