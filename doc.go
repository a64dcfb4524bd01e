// Package daas authors pages from placeholder templates. A template is plain
// HTML holding `[[key]]` tokens and `[[@repeat(name)]]` regions; this package
// re-exports the engines that expand repeaters, compose final markup, extract
// values back out of it, and keep a live preview in sync with form edits.
//
// The root package is a thin facade. The engines live under pkg/: schema,
// repeater, extract, binder, compose, session and remote.
package daas
