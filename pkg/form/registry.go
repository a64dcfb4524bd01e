package form

import (
	"net/url"
	"strings"
	"sync"

	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/repeater"
	"github.com/goliatone/go-daas/pkg/schema"
)

// Registry tracks the fields of an authoring form by name. Names are the
// (possibly indexed) field keys, so the registry plugs straight into a
// session as its FieldRegistry.
type Registry struct {
	mu     sync.RWMutex
	fields map[string]schema.Field
	values formdata.Data
	order  []string
}

// NewRegistry registers one field per indexed key of s under counts.
func NewRegistry(s *schema.Schema, counts repeater.Counts) *Registry {
	r := &Registry{fields: map[string]schema.Field{}, values: formdata.Data{}}
	for _, field := range s.Fields() {
		for _, key := range repeater.Keys(field.Key, counts) {
			r.register(key, field)
		}
	}
	return r
}

func (r *Registry) register(key string, field schema.Field) {
	if _, ok := r.fields[key]; ok {
		return
	}
	r.fields[key] = field
	r.order = append(r.order, key)
}

// Names returns the registered field names in schema order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Field returns the declaration behind name.
func (r *Registry) Field(name string) (schema.Field, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fields[name]
	return f, ok
}

// Set stores a single value. Unknown names are ignored.
func (r *Registry) Set(name string, value formdata.Value) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fields[name]; !ok {
		return false
	}
	r.values[name] = value
	return true
}

// Fill writes every entry of data whose key names a registered field and
// reports how many fields were set.
func (r *Registry) Fill(data formdata.Data) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	filled := 0
	for key, value := range data {
		if _, ok := r.fields[key]; !ok {
			continue
		}
		r.values[key] = value
		filled++
	}
	return filled
}

// Values returns the current field values.
func (r *Registry) Values() formdata.Data {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.values.Clone()
}

// Collect reads a submitted form into the registry, interpreting each input
// by its field type, and returns the resulting values.
func (r *Registry) Collect(form url.Values) formdata.Data {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range r.order {
		field := r.fields[name]
		value, ok := collectField(field, name, form)
		if !ok {
			continue
		}
		r.values[name] = value
	}
	return r.values.Clone()
}

func collectField(field schema.Field, name string, form url.Values) (formdata.Value, bool) {
	switch {
	case field.Type == schema.FieldTypeImage:
		existing := strings.TrimSpace(form.Get(name))
		alt := strings.TrimSpace(form.Get(name + AltSuffix))
		if data := strings.TrimSpace(form.Get(name + DataSuffix)); data != "" {
			v := formdata.UploadImage(data, form.Get(name+FileSuffix))
			v.Image.Alt = alt
			return v, true
		}
		if _, present := form[name]; !present {
			return formdata.Value{}, false
		}
		return formdata.ExistingImage(existing, alt), true
	case field.Type == schema.FieldTypeBoolean:
		if isTruthy(form.Get(name)) {
			return formdata.Text("true"), true
		}
		return formdata.Text("false"), true
	case field.Multiple:
		items, present := form[name]
		if !present {
			return formdata.Value{}, false
		}
		var kept []string
		for _, item := range items {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				kept = append(kept, trimmed)
			}
		}
		return formdata.List(kept...), true
	default:
		if _, present := form[name]; !present {
			return formdata.Value{}, false
		}
		return formdata.Text(form.Get(name)), true
	}
}
