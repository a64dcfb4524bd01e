package daas

import (
	"context"
	"io/fs"

	internalopenapi "github.com/goliatone/go-daas/internal/openapi"
	"github.com/goliatone/go-daas/pkg/schema"
)

// LoadSchema reads a JSON or YAML schema file from fsys.
func LoadSchema(fsys fs.FS, path string) (*Schema, error) {
	return schema.LoadFS(fsys, path)
}

// SchemaFromTemplate reads the inline schema block of a template. An empty
// blockClass selects schema.DefaultBlockClass.
func SchemaFromTemplate(src, blockClass string) (*Schema, error) {
	return schema.FromTemplate(src, blockClass)
}

// SchemaFromOpenAPI flattens the named component schema of an OpenAPI
// document into a schema, keeping the concrete importer internal.
func SchemaFromOpenAPI(ctx context.Context, document []byte, component string) (*Schema, error) {
	fields, err := internalopenapi.Fields(ctx, document, component, internalopenapi.Options{})
	if err != nil {
		return nil, err
	}
	return schema.New(fields), nil
}
