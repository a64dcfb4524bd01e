// Package compose turns a template plus form data into final HTML.
//
// A compose run fetches the pristine template, expands repeaters to the
// requested counts, resolves image placeholders, records the metadata the
// extract package reads back (keys, field attributes and multi-placeholder
// templates), substitutes values, and finally strips whatever stayed
// unfilled: leftover tokens, repeat markers, empty component blocks and the
// authoring schema block. Full documents are stamped with the template path
// and a djb2 derived template id.
//
// Failures while handling a single field are logged and skipped so one bad
// value never aborts the whole document. Only a missing source is fatal and
// reported as ErrSourceUnavailable.
//
// Richtext values come back from extract in their sanitised form, not as
// submitted: links gain rel="nofollow" under the UGC policy, disallowed
// markup is dropped, and a paragraph wrapper is unwrapped when the host only
// takes phrasing content. Composing that normalised value again yields the
// same document.
//
// Lint reports template layouts that do not round-trip reliably, such as
// adjacent placeholders without a literal separator.
package compose
