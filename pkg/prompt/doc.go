// Package prompt fills an authoring form interactively. Fill walks the
// fields of a form.Registry and asks for each value through a Driver; the
// default driver uses survey prompts, tests substitute their own.
package prompt
