// Package extract recovers form data and repeater widths from HTML produced
// by the composer. It reads the data-daas-* metadata, matching recorded
// templates to split multi-placeholder text and attributes, and captures
// richtext markup from the raw source before parsing.
//
// Extraction never fails because of content: values that no longer fit their
// template are logged at debug level and skipped.
package extract
