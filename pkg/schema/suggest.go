package schema

import (
	"github.com/sahilm/fuzzy"

	"github.com/goliatone/go-daas/pkg/token"
)

// Suggest returns declared keys that fuzzily match key, best first. Indexed
// keys are compared in their base form so `faq[2].qestion` still suggests
// `faq[].question`.
func (s *Schema) Suggest(key string, limit int) []string {
	if s == nil || len(s.fields) == 0 {
		return nil
	}
	candidates := make([]string, len(s.fields))
	for i, f := range s.fields {
		candidates[i] = f.Key
	}
	matches := fuzzy.Find(token.BaseKey(key), candidates)
	if limit <= 0 || limit > len(matches) {
		limit = len(matches)
	}
	out := make([]string, 0, limit)
	for _, m := range matches[:limit] {
		out = append(out, m.Str)
	}
	return out
}
