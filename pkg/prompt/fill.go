package prompt

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-daas/pkg/form"
	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/schema"
)

// Fill prompts for every field of registry in order, storing answers back
// into it. Empty answers to optional fields leave the field untouched.
func Fill(ctx context.Context, driver Driver, registry *form.Registry) (int, error) {
	if driver == nil {
		return 0, errors.New("prompt: driver is nil")
	}
	if registry == nil {
		return 0, errors.New("prompt: registry is nil")
	}
	current := registry.Values()
	filled := 0
	for _, name := range registry.Names() {
		field, _ := registry.Field(name)
		value, ok, err := promptField(ctx, driver, name, field, current[name])
		if err != nil {
			return filled, fmt.Errorf("prompt: %s: %w", name, err)
		}
		if !ok {
			continue
		}
		if registry.Set(name, value) {
			filled++
		}
	}
	return filled, nil
}

func promptField(ctx context.Context, driver Driver, name string, field schema.Field, current formdata.Value) (formdata.Value, bool, error) {
	label := field.Label
	if label == "" {
		label = schema.KeyLabel(name)
	}
	def := current.String()
	if current.Empty() {
		def = fmt.Sprint(orEmpty(field.Default))
	}

	switch {
	case field.Type == schema.FieldTypeBoolean:
		yes, err := driver.Confirm(ctx, ConfirmConfig{Message: label, Default: def == "true"})
		if err != nil {
			return formdata.Value{}, false, err
		}
		return formdata.Text(strconv.FormatBool(yes)), true, nil

	case len(field.Options) > 0 && field.Multiple:
		var defaults []int
		for _, item := range current.List {
			if i := indexOf(field.Options, item); i >= 0 {
				defaults = append(defaults, i)
			}
		}
		picked, err := driver.MultiSelect(ctx, SelectConfig{Message: label, Options: field.Options, Defaults: defaults})
		if err != nil {
			return formdata.Value{}, false, err
		}
		items := make([]string, 0, len(picked))
		for _, i := range picked {
			if i >= 0 && i < len(field.Options) {
				items = append(items, field.Options[i])
			}
		}
		return formdata.List(items...), len(items) > 0, nil

	case len(field.Options) > 0:
		idx, err := driver.Select(ctx, SelectConfig{Message: label, Options: field.Options, DefaultIndex: indexOf(field.Options, def)})
		if err != nil {
			return formdata.Value{}, false, err
		}
		if idx < 0 || idx >= len(field.Options) {
			return formdata.Value{}, false, nil
		}
		return formdata.Text(field.Options[idx]), true, nil

	case field.Type == schema.FieldTypeLongText || field.Type == schema.FieldTypeRichText:
		text, err := driver.TextArea(ctx, TextAreaConfig{Message: label, Default: def})
		if err != nil {
			return formdata.Value{}, false, err
		}
		return textValue(field, text)

	case field.Type == schema.FieldTypeImage:
		url, err := driver.Input(ctx, InputConfig{Message: label + " (image URL)", Default: def, Validator: validator(field)})
		if err != nil {
			return formdata.Value{}, false, err
		}
		url = strings.TrimSpace(url)
		if url == "" {
			return formdata.Value{}, false, nil
		}
		alt := ""
		if current.Image != nil {
			alt = current.Image.Alt
		}
		return formdata.ExistingImage(url, alt), true, nil

	default:
		text, err := driver.Input(ctx, InputConfig{Message: label, Default: def, Validator: validator(field)})
		if err != nil {
			return formdata.Value{}, false, err
		}
		return textValue(field, text)
	}
}

func textValue(field schema.Field, text string) (formdata.Value, bool, error) {
	if strings.TrimSpace(text) == "" && !field.Required {
		return formdata.Value{}, false, nil
	}
	return formdata.Text(text), true, nil
}

func orEmpty(v any) any {
	if v == nil {
		return ""
	}
	return v
}

// validator enforces required, pattern, and numeric bounds.
func validator(field schema.Field) func(string) error {
	var pattern *regexp.Regexp
	if field.Pattern != "" {
		pattern, _ = regexp.Compile("^(?:" + field.Pattern + ")$")
	}
	return func(answer string) error {
		answer = strings.TrimSpace(answer)
		if answer == "" {
			if field.Required {
				return errors.New("value is required")
			}
			return nil
		}
		if pattern != nil && !pattern.MatchString(answer) {
			return fmt.Errorf("value must match %s", field.Pattern)
		}
		if field.Type == schema.FieldTypeNumber {
			n, err := strconv.ParseFloat(answer, 64)
			if err != nil {
				return errors.New("value must be a number")
			}
			if lo, ok := bound(field.Min); ok && n < lo {
				return fmt.Errorf("value must be at least %v", field.Min)
			}
			if hi, ok := bound(field.Max); ok && n > hi {
				return fmt.Errorf("value must be at most %v", field.Max)
			}
		}
		return nil
	}
}

func bound(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
