package schema

import (
	"fmt"
	"strings"
)

// FieldType enumerates the field kinds a schema may declare.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeLongText FieldType = "longtext"
	FieldTypeRichText FieldType = "richtext"
	FieldTypeImage    FieldType = "image"
	FieldTypeURL      FieldType = "url"
	FieldTypeSelect   FieldType = "select"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
)

// multiSuffix marks a multi-valued type in schema documents and in the
// data-daas-type attribute, e.g. `select[]`.
const multiSuffix = "[]"

var knownTypes = map[FieldType]struct{}{
	FieldTypeText:     {},
	FieldTypeLongText: {},
	FieldTypeRichText: {},
	FieldTypeImage:    {},
	FieldTypeURL:      {},
	FieldTypeSelect:   {},
	FieldTypeBoolean:  {},
	FieldTypeNumber:   {},
	FieldTypeDate:     {},
}

// ParseFieldType normalises a raw type string. Unknown types degrade to text;
// a trailing `[]` marks the field as multi-valued.
func ParseFieldType(raw string) (FieldType, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	multi := strings.HasSuffix(value, multiSuffix)
	value = strings.TrimSuffix(value, multiSuffix)
	t := FieldType(value)
	if _, ok := knownTypes[t]; !ok {
		return FieldTypeText, multi
	}
	return t, multi
}

// Kind is the closed set of handling strategies. Every FieldType maps to
// exactly one Kind; engines select behaviour by Kind once per field instead of
// re-checking the raw type at each call site.
type Kind int

const (
	// KindPlain fields are substituted and read as plain text.
	KindPlain Kind = iota
	// KindRich fields carry HTML.
	KindRich
	// KindImage fields bind to <img alt="[[key]]"> and carry a URL.
	KindImage
	// KindURL fields live in anchor hrefs.
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindRich:
		return "rich"
	case KindImage:
		return "image"
	case KindURL:
		return "url"
	default:
		return "plain"
	}
}

// Kind returns the strategy kind for t.
func (t FieldType) Kind() Kind {
	switch t {
	case FieldTypeRichText:
		return KindRich
	case FieldTypeImage:
		return KindImage
	case FieldTypeURL:
		return KindURL
	default:
		return KindPlain
	}
}

// Field describes one authorable value of a template.
type Field struct {
	Key      string    `json:"key" yaml:"key"`
	Type     FieldType `json:"type,omitempty" yaml:"type,omitempty"`
	Multiple bool      `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Label    string    `json:"label,omitempty" yaml:"label,omitempty"`
	Required bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Default  any       `json:"default,omitempty" yaml:"default,omitempty"`
	Options  []string  `json:"options,omitempty" yaml:"options,omitempty"`
	Min      any       `json:"min,omitempty" yaml:"min,omitempty"`
	Max      any       `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern  string    `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// Normalize trims the key, folds `type[]` into Multiple and degrades unknown
// types to text.
func (f Field) Normalize() Field {
	f.Key = strings.TrimSpace(f.Key)
	t, multi := ParseFieldType(string(f.Type))
	f.Type = t
	f.Multiple = f.Multiple || multi
	return f
}

// Kind returns the handling strategy of the field.
func (f Field) Kind() Kind {
	return f.Type.Kind()
}

// TypeName renders the type the way metadata attributes carry it.
func (f Field) TypeName() string {
	t := f.Type
	if t == "" {
		t = FieldTypeText
	}
	if f.Multiple {
		return string(t) + multiSuffix
	}
	return string(t)
}

// DisplayLabel returns the declared label or one derived from the key.
func (f Field) DisplayLabel() string {
	if strings.TrimSpace(f.Label) != "" {
		return f.Label
	}
	return KeyLabel(f.Key)
}

// Attributes returns the schema attributes the composer stamps on value
// holding elements, keyed by attribute suffix. Empty values are omitted.
func (f Field) Attributes() []Attribute {
	out := make([]Attribute, 0, 8)
	add := func(name, value string) {
		if value != "" {
			out = append(out, Attribute{Name: name, Value: value})
		}
	}
	add("type", f.TypeName())
	add("label", f.Label)
	if f.Required {
		add("required", "true")
	}
	add("default", stringify(f.Default))
	add("options", strings.Join(f.Options, ","))
	add("min", stringify(f.Min))
	add("max", stringify(f.Max))
	add("pattern", f.Pattern)
	return out
}

// Attribute is a name/value pair of field metadata.
type Attribute struct {
	Name  string
	Value string
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprint(val)
	default:
		return fmt.Sprint(val)
	}
}
