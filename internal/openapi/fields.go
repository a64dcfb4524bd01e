package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-daas/pkg/schema"
)

// typeExtensionKey lets an OpenAPI property pin the daas field type
// explicitly, e.g. `x-daas-type: richtext`.
const typeExtensionKey = "x-daas-type"

// Options configures how a component schema is flattened.
type Options struct {
	// ResolveReferences allows external $ref targets to be loaded.
	ResolveReferences bool
}

// Fields loads an OpenAPI document and flattens the named component schema
// into daas fields. Nested objects become dotted group keys and arrays of
// objects become repeater keys (`items[].title`).
func Fields(ctx context.Context, data []byte, component string, opts Options) ([]schema.Field, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	component = strings.TrimSpace(component)
	if component == "" {
		return nil, errors.New("openapi: component name is required")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: opts.ResolveReferences,
	}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if doc.Components == nil || doc.Components.Schemas == nil {
		return nil, errors.New("openapi: document has no component schemas")
	}
	ref, ok := doc.Components.Schemas[component]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("openapi: component %q not found", component)
	}

	var fields []schema.Field
	flatten(&fields, "", ref.Value, 0)
	return fields, nil
}

const maxDepth = 8

func flatten(out *[]schema.Field, prefix string, src *openapi3.Schema, depth int) {
	if src == nil || depth > maxDepth {
		return
	}
	required := make(map[string]bool, len(src.Required))
	for _, name := range src.Required {
		required[name] = true
	}

	names := make([]string, 0, len(src.Properties))
	for name := range src.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop := src.Properties[name]
		if prop == nil || prop.Value == nil {
			continue
		}
		value := prop.Value
		key := prefix + name

		switch {
		case isType(value, "object") && len(value.Properties) > 0:
			flatten(out, key+".", value, depth+1)
		case isType(value, "array") && value.Items != nil && value.Items.Value != nil && isType(value.Items.Value, "object"):
			flatten(out, key+"[].", value.Items.Value, depth+1)
		default:
			*out = append(*out, convertProperty(key, value, required[name]))
		}
	}
}

func convertProperty(key string, src *openapi3.Schema, required bool) schema.Field {
	field := schema.Field{
		Key:      key,
		Label:    src.Title,
		Required: required,
		Default:  src.Default,
		Pattern:  src.Pattern,
		Type:     schema.FieldTypeText,
	}

	target := src
	if isType(src, "array") && src.Items != nil && src.Items.Value != nil {
		field.Multiple = true
		target = src.Items.Value
	}
	if len(target.Enum) > 0 {
		field.Type = schema.FieldTypeSelect
		for _, option := range target.Enum {
			field.Options = append(field.Options, fmt.Sprint(option))
		}
	}

	switch {
	case isType(target, "boolean"):
		field.Type = schema.FieldTypeBoolean
	case isType(target, "integer"), isType(target, "number"):
		field.Type = schema.FieldTypeNumber
		if target.Min != nil {
			field.Min = *target.Min
		}
		if target.Max != nil {
			field.Max = *target.Max
		}
	case isType(target, "string") && len(target.Enum) == 0:
		field.Type = typeFromFormat(target)
	}

	if explicit, ok := src.Extensions[typeExtensionKey].(string); ok && strings.TrimSpace(explicit) != "" {
		field.Type = schema.FieldType(explicit)
	}
	return field.Normalize()
}

func typeFromFormat(src *openapi3.Schema) schema.FieldType {
	switch strings.ToLower(src.Format) {
	case "uri", "url", "uri-reference", "iri":
		return schema.FieldTypeURL
	case "date", "date-time":
		return schema.FieldTypeDate
	case "html":
		return schema.FieldTypeRichText
	case "image", "binary":
		return schema.FieldTypeImage
	case "textarea", "multiline":
		return schema.FieldTypeLongText
	}
	if src.MaxLength != nil && *src.MaxLength > 255 {
		return schema.FieldTypeLongText
	}
	return schema.FieldTypeText
}

func isType(src *openapi3.Schema, typ string) bool {
	if src == nil || src.Type == nil {
		return false
	}
	return src.Type.Is(typ)
}
