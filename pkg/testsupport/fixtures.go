package testsupport

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/schema"
)

// MustReadFile reads a fixture and fails the test on error.
func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(data)
}

// MustLoadSchema parses a JSON or YAML schema fixture.
func MustLoadSchema(t *testing.T, path string) *schema.Schema {
	t.Helper()
	fields, err := schema.Parse([]byte(MustReadFile(t, path)), path)
	if err != nil {
		t.Fatalf("parse schema fixture: %v", err)
	}
	return schema.New(fields)
}

// MustDecodeData decodes a JSON or YAML form data fixture.
func MustDecodeData(t *testing.T, raw string) formdata.Data {
	t.Helper()
	data, err := formdata.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode form data: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return MustReadFile(t, path)
}

var interTagSpace = regexp.MustCompile(`>\s+<`)

// NormalizeHTML collapses whitespace between tags so golden comparisons
// ignore indentation.
func NormalizeHTML(s string) string {
	return strings.TrimSpace(interTagSpace.ReplaceAllString(s, "><"))
}

// CompareHTML returns a diff of the normalised markup, or "".
func CompareHTML(want, got string) string {
	return cmp.Diff(NormalizeHTML(want), NormalizeHTML(got))
}
