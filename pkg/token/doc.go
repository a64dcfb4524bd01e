// Package token implements the placeholder grammar shared by the expander,
// extractor, binder and composer: value tokens `[[key]]` (raw or
// percent-encoded inside URLs), repeat delimiters `[[@repeat(name)]]` /
// `[[@repeatend(name)]]`, and the base (`faq[].q`) versus indexed
// (`faq[2].q`) key forms used by repeaters.
package token
