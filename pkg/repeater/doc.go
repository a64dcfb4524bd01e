// Package repeater expands `[[@repeat(name)]]` ... `[[@repeatend(name)]]`
// regions. Delimiters must be the sole content of a direct child of their
// container and only pair with siblings, so two blocks may reuse a name. The
// rows between a pair are cloned Counts times with `name[]` rewritten to
// `name[i]` in every token.
package repeater
