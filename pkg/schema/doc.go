// Package schema models the field schema a page template is authored against.
// Keys are dotted for groups (`hero.title`) and bracketed for repeaters
// (`faq[].question`). ParseHierarchy classifies a flat field list; Schema adds
// lookups that resolve indexed repeater keys (`faq[2].question`) back to their
// declaration. Every FieldType maps onto a closed Kind (plain, rich, image,
// url) so the extractor, binder and composer pick a strategy once per field.
//
// Schemas load from JSON or YAML files, from an inline `.daas-schema` block in
// the template, or from an OpenAPI component via FromOpenAPI.
package schema
