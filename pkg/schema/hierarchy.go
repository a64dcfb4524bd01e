package schema

import "regexp"

var (
	repeaterKeyPattern = regexp.MustCompile(`^([^\[]+)\[\]\.(.+)$`)
	groupKeyPattern    = regexp.MustCompile(`^([^.]+)\.(.+)$`)
)

// Hierarchy classifies a flat field list. Group and repeater members keep
// their full keys; order follows the input.
type Hierarchy struct {
	Groups     map[string][]Field
	Repeaters  map[string][]Field
	Standalone []Field

	groupOrder    []string
	repeaterOrder []string
}

// ParseHierarchy sorts fields into repeaters (`name[].field`), groups
// (`name.field`) and standalone fields. The repeater pattern is tested first
// so `faq[].q` never lands in a group; keys matching neither pattern degrade
// to standalone.
func ParseHierarchy(fields []Field) Hierarchy {
	h := Hierarchy{
		Groups:    make(map[string][]Field),
		Repeaters: make(map[string][]Field),
	}
	for _, field := range fields {
		if m := repeaterKeyPattern.FindStringSubmatch(field.Key); m != nil {
			if _, ok := h.Repeaters[m[1]]; !ok {
				h.repeaterOrder = append(h.repeaterOrder, m[1])
			}
			h.Repeaters[m[1]] = append(h.Repeaters[m[1]], field)
			continue
		}
		if m := groupKeyPattern.FindStringSubmatch(field.Key); m != nil {
			if _, ok := h.Groups[m[1]]; !ok {
				h.groupOrder = append(h.groupOrder, m[1])
			}
			h.Groups[m[1]] = append(h.Groups[m[1]], field)
			continue
		}
		h.Standalone = append(h.Standalone, field)
	}
	return h
}

// GroupNames returns group names in first-seen order.
func (h Hierarchy) GroupNames() []string {
	return append([]string(nil), h.groupOrder...)
}

// RepeaterNames returns repeater names in first-seen order.
func (h Hierarchy) RepeaterNames() []string {
	return append([]string(nil), h.repeaterOrder...)
}

// RepeaterField splits a base repeater key into its repeater name and field
// suffix.
func RepeaterField(key string) (name, field string, ok bool) {
	m := repeaterKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
