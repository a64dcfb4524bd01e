// Package formdata holds the in-memory form values of an authoring session,
// keyed by (possibly indexed) field key, and decodes them from JSON or YAML
// data files.
package formdata
