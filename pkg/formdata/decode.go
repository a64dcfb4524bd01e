package formdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Decode parses a JSON or YAML data document into Data. Values may be given
// flat (`"hero.title": "Hi"`) or nested: objects become dotted keys and lists
// of objects become indexed repeater keys (`faq[0].q`). Objects shaped like an
// image (`existingUrl`, `dataUrl`) decode to images, and `{markdown: "..."}`
// decodes to HTML for richtext fields.
func Decode(data []byte) (Data, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Data{}, nil
	}
	var raw map[string]any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		if yerr := yaml.Unmarshal(trimmed, &raw); yerr != nil {
			return nil, fmt.Errorf("formdata: decode: invalid JSON or YAML: %w", yerr)
		}
	}
	out := Data{}
	if err := flatten(out, "", raw); err != nil {
		return nil, err
	}
	return out, nil
}

// Encode renders Data as a flat YAML document, the inverse of Decode for
// flat keys.
func Encode(d Data) ([]byte, error) {
	doc := make(map[string]any, len(d))
	for _, key := range d.Keys() {
		v := d[key]
		switch {
		case v.Image != nil:
			doc[key] = v.Image
		case len(v.List) > 0:
			doc[key] = v.List
		default:
			doc[key] = v.Text
		}
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("formdata: encode: %w", err)
	}
	return out, nil
}

func flatten(out Data, prefix string, raw map[string]any) error {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := assign(out, prefix+key, raw[key]); err != nil {
			return err
		}
	}
	return nil
}

func assign(out Data, key string, raw any) error {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		out[key] = Text(v)
	case bool:
		out[key] = Text(strconv.FormatBool(v))
	case int:
		out[key] = Text(strconv.Itoa(v))
	case float64:
		out[key] = Text(strconv.FormatFloat(v, 'f', -1, 64))
	case map[string]any:
		return assignObject(out, key, v)
	case []any:
		return assignList(out, key, v)
	default:
		out[key] = Text(fmt.Sprint(v))
	}
	return nil
}

func assignObject(out Data, key string, v map[string]any) error {
	if md, ok := v["markdown"].(string); ok && len(v) == 1 {
		html, err := RenderMarkdown(md)
		if err != nil {
			return fmt.Errorf("formdata: %s: %w", key, err)
		}
		out[key] = Text(html)
		return nil
	}
	if img, ok := imageFrom(v); ok {
		out[key] = Value{Image: &img}
		return nil
	}
	return flatten(out, key+".", v)
}

func assignList(out Data, key string, items []any) error {
	if len(items) == 0 {
		return nil
	}
	if _, objects := items[0].(map[string]any); objects {
		for i, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				return fmt.Errorf("formdata: %s[%d]: mixed list items", key, i)
			}
			if err := flatten(out, fmt.Sprintf("%s[%d].", key, i), obj); err != nil {
				return err
			}
		}
		return nil
	}
	list := make([]string, 0, len(items))
	for _, item := range items {
		list = append(list, fmt.Sprint(item))
	}
	out[key] = List(list...)
	return nil
}

func imageFrom(v map[string]any) (Image, bool) {
	var img Image
	found := false
	for field, raw := range v {
		s, ok := raw.(string)
		if !ok {
			return Image{}, false
		}
		switch strings.ToLower(field) {
		case "existingurl", "url", "src":
			img.ExistingURL = s
			found = true
		case "dataurl":
			img.DataURL = s
			found = true
		case "filename":
			img.FileName = s
		case "alt":
			img.Alt = s
		default:
			return Image{}, false
		}
	}
	return img, found
}

// RenderMarkdown converts Markdown into HTML for richtext values.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
