// Package openapi flattens an OpenAPI component schema into daas fields using
// kin-openapi, so page schemas can be generated from an existing API contract.
package openapi
