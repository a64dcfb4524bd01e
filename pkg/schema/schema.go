package schema

import (
	"regexp"
	"sort"
	"strings"
)

var indexSegment = regexp.MustCompile(`\[\d+\]`)

// Schema is an immutable field set with lookups that understand repeater
// keys: `faq[3].q` resolves to the `faq[].q` declaration.
type Schema struct {
	fields    []Field
	index     map[string]int
	hierarchy Hierarchy
}

// New normalises fields and indexes them by key. Later duplicates are
// ignored. Fields with an empty key are dropped.
func New(fields []Field) *Schema {
	s := &Schema{index: make(map[string]int, len(fields))}
	for _, raw := range fields {
		field := raw.Normalize()
		if field.Key == "" {
			continue
		}
		if _, exists := s.index[field.Key]; exists {
			continue
		}
		s.index[field.Key] = len(s.fields)
		s.fields = append(s.fields, field)
	}
	s.hierarchy = ParseHierarchy(s.fields)
	return s
}

// Fields returns a copy of the declared fields in order.
func (s *Schema) Fields() []Field {
	if s == nil {
		return nil
	}
	return append([]Field(nil), s.fields...)
}

// Len reports the number of fields.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// Hierarchy returns the classification computed when the schema was built.
func (s *Schema) Hierarchy() Hierarchy {
	if s == nil {
		return ParseHierarchy(nil)
	}
	return s.hierarchy
}

// Field resolves key, falling back from an indexed repeater key to its base
// declaration.
func (s *Schema) Field(key string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	if idx, ok := s.index[key]; ok {
		return s.fields[idx], true
	}
	base := indexSegment.ReplaceAllString(key, "[]")
	if base != key {
		if idx, ok := s.index[base]; ok {
			field := s.fields[idx]
			return field, true
		}
	}
	return Field{}, false
}

// FieldOrText returns the declared field for key or a text field carrying the
// key when it is not declared.
func (s *Schema) FieldOrText(key string) Field {
	if field, ok := s.Field(key); ok {
		return field
	}
	return Field{Key: key, Type: FieldTypeText}
}

// Type resolves the field type for key, defaulting to text.
func (s *Schema) Type(key string) FieldType {
	return s.FieldOrText(key).Type
}

// Keys returns all declared keys sorted alphabetically.
func (s *Schema) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		keys = append(keys, f.Key)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key (or its base form) is declared.
func (s *Schema) Has(key string) bool {
	_, ok := s.Field(strings.TrimSpace(key))
	return ok
}
