package binder

import "golang.org/x/net/html"

// Index is a bidirectional key to node map. A node may be bound to several
// keys (a text node mixing placeholders) and a key to several nodes (the same
// placeholder repeated on the page).
type Index struct {
	byKey  map[string][]*html.Node
	byNode map[*html.Node][]string
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{
		byKey:  map[string][]*html.Node{},
		byNode: map[*html.Node][]string{},
	}
}

// Add binds key to n. Repeated pairs are ignored.
func (i *Index) Add(key string, n *html.Node) {
	for _, existing := range i.byKey[key] {
		if existing == n {
			return
		}
	}
	i.byKey[key] = append(i.byKey[key], n)
	i.byNode[n] = append(i.byNode[n], key)
}

// Nodes returns the nodes bound to key.
func (i *Index) Nodes(key string) []*html.Node {
	return i.byKey[key]
}

// Keys returns the keys bound to n in binding order.
func (i *Index) Keys(n *html.Node) []string {
	return i.byNode[n]
}

// Has reports whether key has at least one node.
func (i *Index) Has(key string) bool {
	return len(i.byKey[key]) > 0
}

// Len reports the number of bound keys.
func (i *Index) Len() int {
	return len(i.byKey)
}
