// Package testsupport holds helpers shared by package tests: fixture and
// golden file handling (goldens are rewritten when UPDATE_GOLDENS is set),
// HTML normalisation, an in-memory implementation of the remote contracts
// and a manual clock.
package testsupport
