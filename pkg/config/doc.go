// Package config loads the CLI configuration from daas.yaml, applying the
// DAAS_ENDPOINT and DAAS_TOKEN environment overrides on top.
package config
