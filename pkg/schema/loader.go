package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-daas/pkg/dom"
)

// DefaultBlockClass names the authoring-only block that may carry an inline
// schema inside a template. The composer removes it from published output.
const DefaultBlockClass = "daas-schema"

type documentFile struct {
	Fields []Field `json:"fields" yaml:"fields"`
}

// Parse decodes a JSON or YAML schema document. Both a bare list of fields
// and an object with a `fields` list are accepted.
func Parse(data []byte, source string) ([]Field, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("schema: file %s is empty", source)
	}

	var list []Field
	if err := json.Unmarshal([]byte(trimmed), &list); err == nil {
		return list, nil
	}
	var doc documentFile
	if err := json.Unmarshal([]byte(trimmed), &doc); err == nil && len(doc.Fields) > 0 {
		return doc.Fields, nil
	}
	if err := yaml.Unmarshal([]byte(trimmed), &list); err == nil && len(list) > 0 {
		return list, nil
	}
	doc = documentFile{}
	if err := yaml.Unmarshal([]byte(trimmed), &doc); err == nil && len(doc.Fields) > 0 {
		return doc.Fields, nil
	}

	return nil, fmt.Errorf("schema: parse %s: invalid JSON or YAML", source)
}

// LoadFS reads and parses a schema file from fsys.
func LoadFS(fsys fs.FS, path string) (*Schema, error) {
	if fsys == nil {
		return nil, errors.New("schema: fs is nil")
	}
	if !isSchemaFile(path) {
		return nil, fmt.Errorf("schema: %s is not a JSON or YAML file", path)
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	fields, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	return New(fields), nil
}

// FromTemplate reads the inline schema block of a template. The block holds
// either a JSON/YAML document or one row per field whose cells are key, type,
// label, required, default, options, min, max and pattern. A template without
// a block yields an empty schema.
func FromTemplate(src, blockClass string) (*Schema, error) {
	if blockClass == "" {
		blockClass = DefaultBlockClass
	}
	doc, err := dom.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	block := dom.First(doc.Root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && dom.HasClass(n, blockClass)
	})
	if block == nil {
		return New(nil), nil
	}

	if text := strings.TrimSpace(dom.TextContent(block)); strings.HasPrefix(text, "[") || strings.HasPrefix(text, "{") || strings.HasPrefix(text, "fields:") || strings.HasPrefix(text, "- ") {
		fields, err := Parse([]byte(text), "template block")
		if err == nil {
			return New(fields), nil
		}
	}

	var fields []Field
	for _, row := range dom.ElementChildren(block) {
		cells := dom.ElementChildren(row)
		if len(cells) == 0 {
			continue
		}
		values := make([]string, len(cells))
		for i, cell := range cells {
			values[i] = strings.TrimSpace(dom.TextContent(cell))
		}
		if field, ok := fieldFromRow(values); ok {
			fields = append(fields, field)
		}
	}
	return New(fields), nil
}

func fieldFromRow(cells []string) (Field, bool) {
	cell := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}
	key := cell(0)
	if key == "" || strings.EqualFold(key, "key") {
		return Field{}, false
	}
	field := Field{
		Key:     key,
		Type:    FieldType(cell(1)),
		Label:   cell(2),
		Pattern: cell(8),
	}
	if required, err := strconv.ParseBool(cell(3)); err == nil {
		field.Required = required
	}
	if v := cell(4); v != "" {
		field.Default = v
	}
	if v := cell(5); v != "" {
		field.Options = dom.SplitList(v)
	}
	if v := cell(6); v != "" {
		field.Min = v
	}
	if v := cell(7); v != "" {
		field.Max = v
	}
	return field, true
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
