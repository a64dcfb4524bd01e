package daas

import (
	"context"

	"github.com/goliatone/go-daas/pkg/compose"
	"github.com/goliatone/go-daas/pkg/extract"
	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/remote"
	"github.com/goliatone/go-daas/pkg/repeater"
	"github.com/goliatone/go-daas/pkg/schema"
	"github.com/goliatone/go-daas/pkg/session"
)

// Field describes one authorable value of a template.
type Field = schema.Field

// Schema is an indexed field list.
type Schema = schema.Schema

// Hierarchy groups a schema into groups, repeaters and standalone fields.
type Hierarchy = schema.Hierarchy

// Counts maps repeater names to item counts.
type Counts = repeater.Counts

// Data holds form values by key.
type Data = formdata.Data

// Value is one form value.
type Value = formdata.Value

// ExtractResult is what Extract recovers from composed markup.
type ExtractResult = extract.Result

// ComposeRequest describes one compose call.
type ComposeRequest = compose.Request

// Session holds the authoring state of one template.
type Session = session.Session

// NewSession exposes the session constructor from the top-level module.
func NewSession(path string, fetcher remote.SourceFetcher, options ...session.Option) *Session {
	return session.New(path, fetcher, options...)
}

// NewSchema indexes fields.
func NewSchema(fields []Field) *Schema {
	return schema.New(fields)
}

// ParseHierarchy classifies a flat field list.
func ParseHierarchy(fields []Field) Hierarchy {
	return schema.ParseHierarchy(fields)
}

// Expand clones every repeater region of src to match counts.
func Expand(src string, counts Counts) (string, error) {
	return repeater.Expand(src, counts)
}

// Extract recovers form data and repeater counts from composed HTML. A nil
// schema falls back to the type metadata carried by the markup.
func Extract(src string, s *Schema) (ExtractResult, error) {
	return extract.New(extract.WithSchema(s)).Extract(src)
}

// Compose fetches the template named by req.Path and produces final HTML.
func Compose(ctx context.Context, fetcher remote.SourceFetcher, req ComposeRequest, options ...compose.Option) (string, error) {
	return compose.New(fetcher, options...).Compose(ctx, req)
}

// ComposeSource composes an already loaded template source.
func ComposeSource(src string, req ComposeRequest, options ...compose.Option) (string, error) {
	return compose.New(nil, options...).ComposeSource(src, req)
}
