package repeater

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MinCount is the floor applied to every repeater width. Zero or negative
// counts are clamped so a repeater always renders at least one item.
const MinCount = 1

// Counts maps repeater names to item counts. Nested repeaters may be keyed by
// their scoped prefix (`faq[0].items`), which takes precedence over the bare
// name.
type Counts map[string]int

// Count resolves the width of repeater name inside scope (`faq[0].` or "").
func (c Counts) Count(scope, name string) int {
	if scope != "" {
		if n, ok := c[scope+name]; ok {
			return clamp(n)
		}
	}
	if n, ok := c[name]; ok {
		return clamp(n)
	}
	return MinCount
}

// Set stores a count, clamped to MinCount.
func (c Counts) Set(name string, n int) {
	c[name] = clamp(n)
}

// Raise stores n when it is larger than the current count.
func (c Counts) Raise(name string, n int) {
	if current, ok := c[name]; !ok || n > current {
		c[name] = clamp(n)
	}
}

// Clone returns a copy of c.
func (c Counts) Clone() Counts {
	out := make(Counts, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Names returns the keys sorted.
func (c Counts) Names() []string {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// RemoveItem shrinks repeater prefix by one item and re-keys the scoped
// counts of later items, so `faq[2].items` becomes `faq[1].items` after
// removing item 1. The width never drops below MinCount.
func (c Counts) RemoveItem(prefix string, index int) {
	prefix = strings.TrimSpace(prefix)
	current := c.Count("", prefix)
	c.Set(prefix, current-1)

	marker := prefix + "["
	moved := Counts{}
	for key, n := range c {
		if !strings.HasPrefix(key, marker) {
			continue
		}
		rest := key[len(marker):]
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			continue
		}
		idx, err := strconv.Atoi(rest[:end])
		if err != nil || idx < index {
			continue
		}
		delete(c, key)
		if idx == index {
			continue
		}
		moved[fmt.Sprintf("%s[%d]%s", prefix, idx-1, rest[end+1:])] = n
	}
	for key, n := range moved {
		c[key] = n
	}
}

func clamp(n int) int {
	if n < MinCount {
		return MinCount
	}
	return n
}

// Keys expands a base key into the indexed keys the current counts produce,
// in item order: `faq[].q` with faq=2 yields `faq[0].q` and `faq[1].q`.
// Nested repeaters resolve their scoped count first. Keys without `[]` are
// returned unchanged.
func Keys(base string, counts Counts) []string {
	return expandKeys("", base, counts)
}

func expandKeys(done, rest string, counts Counts) []string {
	i := strings.Index(rest, "[]")
	if i < 0 {
		return []string{done + rest}
	}
	segment := rest[:i]
	scope := done
	name := segment
	if strings.HasPrefix(segment, ".") {
		scope += "."
		name = segment[1:]
	} else if dot := strings.LastIndex(segment, "."); dot >= 0 {
		scope += segment[:dot+1]
		name = segment[dot+1:]
	}
	var out []string
	for idx := 0; idx < counts.Count(scope, name); idx++ {
		out = append(out, expandKeys(fmt.Sprintf("%s%s[%d]", done, segment, idx), rest[i+2:], counts)...)
	}
	return out
}
