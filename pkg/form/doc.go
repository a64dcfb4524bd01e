// Package form renders the authoring form of a template schema and tracks
// its fields.
//
// Renderer executes pongo2 templates through a go-template engine (embedded
// by default, overridable with WithTemplates) over a view model derived from
// the schema hierarchy: one fieldset per group, one per repeater with an item
// block per counted item, and a general fieldset for standalone fields.
// Registry maps field names, which are the indexed keys, to values and
// satisfies session.FieldRegistry.
package form
