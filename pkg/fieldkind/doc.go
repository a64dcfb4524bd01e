// Package fieldkind holds the per-kind behaviour of schema fields. Each
// schema.Kind maps to one Strategy that knows how to read a value back from
// composed markup, overwrite a bound element, and splice a value into a text
// node. Engines pick the strategy once per field.
package fieldkind
