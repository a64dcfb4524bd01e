package meta

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-daas/pkg/token"
)

// Attribute names written by the composer and read back by the extractor.
const (
	Prefix = "data-daas-"

	AttrKey      = Prefix + "key"
	AttrType     = Prefix + "type"
	AttrLabel    = Prefix + "label"
	AttrRequired = Prefix + "required"
	AttrDefault  = Prefix + "default"
	AttrOptions  = Prefix + "options"
	AttrMin      = Prefix + "min"
	AttrMax      = Prefix + "max"
	AttrPattern  = Prefix + "pattern"
	AttrTemplate = Prefix + "template"

	AttrTemplatePath = Prefix + "template-path"
	AttrTemplateID   = Prefix + "template-id"

	// Binder tags on live preview documents.
	AttrBind        = Prefix + "bind"
	AttrBindPartial = Prefix + "bind-partial"
	AttrBindHref    = Prefix + "bind-href"
	AttrBindSrc     = Prefix + "bind-src"
)

// Carriers lists the attributes whose placeholders are recorded in
// attribute-specific key lists.
var Carriers = []string{"href", "src", "alt"}

// CarrierKey is the attribute listing keys carried by attr, e.g.
// data-daas-href-key.
func CarrierKey(attr string) string {
	return Prefix + attr + "-key"
}

// CarrierTemplate is the attribute holding the literal template of attr, e.g.
// data-daas-href-template.
func CarrierTemplate(attr string) string {
	return Prefix + attr + "-template"
}

// FieldAttr maps a schema.Attribute name onto its metadata attribute.
func FieldAttr(name string) string {
	return Prefix + name
}

var tokenLocator = regexp.MustCompile(`\[\[[a-zA-Z0-9_.\[\]]+?\]\]`)

// Template is a compiled multi-placeholder template.
type Template struct {
	Source  string
	Keys    []string
	pattern *regexp.Regexp
}

// CompileTemplate turns a recorded template string into a matcher with one
// capture group per token occurrence. Literal text is matched exactly; the
// whole input must match.
func CompileTemplate(src string) (*Template, error) {
	normalized := strings.TrimSpace(token.Normalize(src))
	var (
		b    strings.Builder
		keys []string
		last int
	)
	b.WriteString(`(?s)^`)
	for _, loc := range tokenLocator.FindAllStringIndex(normalized, -1) {
		b.WriteString(regexp.QuoteMeta(normalized[last:loc[0]]))
		b.WriteString(`(.*?)`)
		keys = append(keys, normalized[loc[0]+2:loc[1]-2])
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(normalized[last:]))
	b.WriteString(`$`)
	if len(keys) == 0 {
		return nil, fmt.Errorf("meta: template %q has no placeholders", src)
	}
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("meta: compile template %q: %w", src, err)
	}
	return &Template{Source: src, Keys: keys, pattern: re}, nil
}

// Match extracts the value of every key from s. Keys occurring more than
// once keep their first non-empty capture. ok is false when s does not fit
// the template.
func (t *Template) Match(s string) (map[string]string, bool) {
	m := t.pattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil, false
	}
	out := make(map[string]string, len(t.Keys))
	for i, key := range t.Keys {
		value := m[i+1]
		if current, ok := out[key]; ok && current != "" {
			continue
		}
		out[key] = value
	}
	return out, true
}
