package fieldkind

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicyOnce sync.Once
	richPolicy     *bluemonday.Policy
)

// Sanitizer cleans richtext markup before it reaches a document.
type Sanitizer func(string) string

// SanitizeRichText applies the default richtext policy to raw.
func SanitizeRichText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(RichTextPolicy().Sanitize(trimmed))
}

// RichTextPolicy returns the shared policy used for richtext values: the UGC
// baseline plus the presentational attributes editors commonly emit.
func RichTextPolicy() *bluemonday.Policy {
	richPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Globally()
		policy.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
		policy.AllowElements("figure", "figcaption", "mark", "u", "s")
		richPolicy = policy
	})
	return richPolicy
}
