// Package cli wires the daas subcommands: expand, extract, compose, form,
// lint, fill and publish.
package cli
