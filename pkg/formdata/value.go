package formdata

import (
	"sort"
	"strings"
)

// ListSeparator joins multi-valued entries when they are written into text.
const ListSeparator = ", "

// Image is the value of an image field. Edit sessions carry ExistingURL;
// fresh uploads carry DataURL and FileName until the publish step swaps them
// for a content URL.
type Image struct {
	ExistingURL string `json:"existingUrl,omitempty" yaml:"existingUrl,omitempty"`
	Alt         string `json:"alt,omitempty" yaml:"alt,omitempty"`
	DataURL     string `json:"dataUrl,omitempty" yaml:"dataUrl,omitempty"`
	FileName    string `json:"fileName,omitempty" yaml:"fileName,omitempty"`
}

// Pending reports whether the image still needs to be uploaded.
func (i Image) Pending() bool {
	return i.DataURL != "" && i.ExistingURL == ""
}

// Value holds one form value: text, an image, or a list for multi-selects.
// Exactly one of the representations is meaningful; Text is used when Image
// and List are empty.
type Value struct {
	Text  string   `json:"text,omitempty" yaml:"text,omitempty"`
	Image *Image   `json:"image,omitempty" yaml:"image,omitempty"`
	List  []string `json:"list,omitempty" yaml:"list,omitempty"`
}

// Text builds a text value.
func Text(s string) Value {
	return Value{Text: s}
}

// List builds a multi-valued value.
func List(items ...string) Value {
	return Value{List: append([]string(nil), items...)}
}

// ExistingImage builds an image value pointing at an already published asset.
func ExistingImage(url, alt string) Value {
	return Value{Image: &Image{ExistingURL: url, Alt: alt}}
}

// UploadImage builds an image value awaiting upload.
func UploadImage(dataURL, fileName string) Value {
	return Value{Image: &Image{DataURL: dataURL, FileName: fileName}}
}

// IsImage reports whether the value carries an image.
func (v Value) IsImage() bool {
	return v.Image != nil
}

// IsList reports whether the value is multi-valued.
func (v Value) IsList() bool {
	return len(v.List) > 0
}

// String renders the value as the text substituted into templates.
func (v Value) String() string {
	switch {
	case v.Image != nil:
		return v.Image.ExistingURL
	case len(v.List) > 0:
		return strings.Join(v.List, ListSeparator)
	default:
		return v.Text
	}
}

// Empty reports whether the value carries nothing worth substituting.
func (v Value) Empty() bool {
	if v.Image != nil {
		return v.Image.ExistingURL == "" && v.Image.DataURL == ""
	}
	if len(v.List) > 0 {
		for _, item := range v.List {
			if item != "" {
				return false
			}
		}
		return true
	}
	return v.Text == ""
}

// Equal compares two values.
func (v Value) Equal(other Value) bool {
	if (v.Image == nil) != (other.Image == nil) {
		return false
	}
	if v.Image != nil && *v.Image != *other.Image {
		return false
	}
	if len(v.List) != len(other.List) {
		return false
	}
	for i := range v.List {
		if v.List[i] != other.List[i] {
			return false
		}
	}
	return v.Text == other.Text
}

// Data maps (possibly indexed) field keys to values.
type Data map[string]Value

// Keys returns the keys sorted so iteration is deterministic.
func (d Data) Keys() []string {
	keys := make([]string, 0, len(d))
	for key := range d {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value for key.
func (d Data) Get(key string) (Value, bool) {
	v, ok := d[key]
	return v, ok
}

// SetIfEmpty stores value unless key already holds a non-empty value. It
// reports whether the value was stored.
func (d Data) SetIfEmpty(key string, value Value) bool {
	if value.Empty() {
		return false
	}
	if current, ok := d[key]; ok && !current.Empty() {
		return false
	}
	d[key] = value
	return true
}

// Clone returns a deep copy.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	out := make(Data, len(d))
	for key, value := range d {
		out[key] = value.clone()
	}
	return out
}

// Merge copies every entry of other into d, overwriting existing keys.
func (d Data) Merge(other Data) {
	for key, value := range other {
		d[key] = value.clone()
	}
}

func (v Value) clone() Value {
	out := Value{Text: v.Text}
	if v.Image != nil {
		img := *v.Image
		out.Image = &img
	}
	if len(v.List) > 0 {
		out.List = append([]string(nil), v.List...)
	}
	return out
}
