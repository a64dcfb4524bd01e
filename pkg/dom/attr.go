package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Attr returns the value of the named attribute.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute or fallback when missing.
func AttrOr(n *html.Node, key, fallback string) string {
	if v, ok := Attr(n, key); ok {
		return v
	}
	return fallback
}

// HasAttr reports whether n carries the named attribute.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// SetAttr sets or appends an attribute, keeping the position of an existing
// one so re-rendering does not reorder markup.
func SetAttr(n *html.Node, key, val string) {
	if n == nil {
		return
	}
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// SetAttrOnce sets the attribute only when it is not present yet.
func SetAttrOnce(n *html.Node, key, val string) bool {
	if HasAttr(n, key) {
		return false
	}
	SetAttr(n, key, val)
	return true
}

// RemoveAttr deletes the named attribute.
func RemoveAttr(n *html.Node, key string) {
	if n == nil {
		return
	}
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

// Classes returns the class list of n.
func Classes(n *html.Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

// HasClass reports whether n carries the class name.
func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// ListAttr splits a comma-joined attribute into trimmed, non-empty entries.
func ListAttr(n *html.Node, key string) []string {
	v, ok := Attr(n, key)
	if !ok {
		return nil
	}
	return SplitList(v)
}

// SplitList splits a comma-joined list.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// AppendListAttr adds value to a comma-joined attribute unless already
// present. It reports whether the attribute changed.
func AppendListAttr(n *html.Node, key, value string) bool {
	current := ListAttr(n, key)
	for _, existing := range current {
		if existing == value {
			return false
		}
	}
	SetAttr(n, key, strings.Join(append(current, value), ","))
	return true
}
