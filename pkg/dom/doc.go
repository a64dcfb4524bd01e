// Package dom holds the small set of golang.org/x/net/html helpers the
// engines share: parsing full documents or body fragments into a uniform
// Document, serialising them back, walking text nodes, and attribute helpers
// for the comma-joined metadata lists written by the composer.
package dom
