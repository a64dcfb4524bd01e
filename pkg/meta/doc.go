// Package meta defines the data-daas-* attribute contract shared by the
// composer, which writes it, and the extractor, which reads it back, together
// with the compiled form of multi-placeholder templates.
package meta
