package form

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/repeater"
	"github.com/goliatone/go-daas/pkg/schema"
)

// Suffixes of the auxiliary inputs an image field renders next to its URL.
const (
	AltSuffix  = "@alt"
	DataSuffix = "@data"
	FileSuffix = "@file"
)

// FieldView is the template model of one input.
type FieldView struct {
	Name      string
	Label     string
	Type      string
	InputType string
	Value     string
	Alt       string
	Checked   bool
	Multiple  bool
	Required  bool
	Min       string
	Max       string
	Pattern   string
	Options   []OptionView
}

// OptionView is one select option.
type OptionView struct {
	Value    string
	Selected bool
}

// ItemView is one repeater item.
type ItemView struct {
	Index  int
	Fields []FieldView
}

// SectionView groups fields the way the schema hierarchy does.
type SectionView struct {
	Name     string
	Title    string
	Repeater bool
	Fields   []FieldView
	Items    []ItemView
}

// View is the template model of the whole form.
type View struct {
	Action   string
	Sections []SectionView
}

func buildView(s *schema.Schema, counts repeater.Counts, data formdata.Data) View {
	h := s.Hierarchy()
	var view View

	if len(h.Standalone) > 0 {
		section := SectionView{Name: "", Title: "General"}
		for _, field := range h.Standalone {
			section.Fields = append(section.Fields, fieldViews(field, counts, data)...)
		}
		view.Sections = append(view.Sections, section)
	}
	for _, name := range h.GroupNames() {
		section := SectionView{Name: name, Title: schema.DefaultLabeler(name)}
		for _, field := range h.Groups[name] {
			section.Fields = append(section.Fields, fieldViews(field, counts, data)...)
		}
		view.Sections = append(view.Sections, section)
	}
	for _, name := range h.RepeaterNames() {
		section := SectionView{Name: name, Title: schema.DefaultLabeler(name), Repeater: true}
		for idx := 0; idx < counts.Count("", name); idx++ {
			item := ItemView{Index: idx}
			for _, field := range h.Repeaters[name] {
				scoped := field
				scoped.Key = strings.Replace(field.Key, name+"[]", name+"["+strconv.Itoa(idx)+"]", 1)
				item.Fields = append(item.Fields, fieldViews(scoped, counts, data)...)
			}
			section.Items = append(section.Items, item)
		}
		view.Sections = append(view.Sections, section)
	}
	return view
}

// fieldViews renders one declared field into one view per indexed key.
func fieldViews(field schema.Field, counts repeater.Counts, data formdata.Data) []FieldView {
	keys := repeater.Keys(field.Key, counts)
	out := make([]FieldView, 0, len(keys))
	for _, key := range keys {
		out = append(out, fieldView(field, key, data[key]))
	}
	return out
}

func fieldView(field schema.Field, key string, value formdata.Value) FieldView {
	attrs := map[string]string{}
	for _, a := range field.Attributes() {
		attrs[a.Name] = a.Value
	}
	v := FieldView{
		Name:      key,
		Label:     schema.KeyLabel(key),
		Type:      string(field.Type),
		InputType: inputType(field.Type),
		Multiple:  field.Multiple,
		Required:  field.Required,
		Min:       attrs["min"],
		Max:       attrs["max"],
		Pattern:   field.Pattern,
	}
	if field.Label != "" {
		v.Label = field.Label
	}

	current := value.String()
	if value.Empty() {
		current = attrs["default"]
	}
	v.Value = current
	if value.Image != nil {
		v.Value = value.Image.ExistingURL
		v.Alt = value.Image.Alt
	}
	if field.Type == schema.FieldTypeBoolean {
		v.Checked = isTruthy(current)
	}

	selected := map[string]bool{}
	if len(value.List) > 0 {
		for _, item := range value.List {
			selected[item] = true
		}
	} else if current != "" {
		selected[current] = true
	}
	for _, opt := range field.Options {
		v.Options = append(v.Options, OptionView{Value: opt, Selected: selected[opt]})
	}
	return v
}

func inputType(t schema.FieldType) string {
	switch t {
	case schema.FieldTypeLongText, schema.FieldTypeRichText:
		return "textarea"
	case schema.FieldTypeSelect:
		return "select"
	case schema.FieldTypeBoolean:
		return "checkbox"
	case schema.FieldTypeNumber:
		return "number"
	case schema.FieldTypeDate:
		return "date"
	case schema.FieldTypeURL:
		return "url"
	case schema.FieldTypeImage:
		return "image"
	default:
		return "text"
	}
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "on", "yes", "1", "checked":
		return true
	}
	return false
}
