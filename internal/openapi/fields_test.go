package openapi

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-daas/pkg/schema"
)

const pageDocument = `openapi: 3.0.3
info:
  title: Pages
  version: "1"
paths: {}
components:
  schemas:
    Page:
      type: object
      required: [title]
      properties:
        title:
          type: string
          title: Page title
        body:
          type: string
          x-daas-type: richtext
        link:
          type: string
          format: uri
        published:
          type: boolean
        rating:
          type: integer
          minimum: 1
          maximum: 5
        theme:
          type: string
          enum: [light, dark]
          default: light
        tags:
          type: array
          items:
            type: string
            enum: [go, cms]
        hero:
          type: object
          properties:
            image:
              type: string
              format: image
        faq:
          type: array
          items:
            type: object
            properties:
              q:
                type: string
              a:
                type: string
                maxLength: 1000
`

func TestFieldsFlattensComponent(t *testing.T) {
	fields, err := Fields(context.Background(), []byte(pageDocument), "Page", Options{})
	if err != nil {
		t.Fatalf("fields: %v", err)
	}

	want := []schema.Field{
		{Key: "body", Type: schema.FieldTypeRichText},
		{Key: "faq[].a", Type: schema.FieldTypeLongText},
		{Key: "faq[].q", Type: schema.FieldTypeText},
		{Key: "hero.image", Type: schema.FieldTypeImage},
		{Key: "link", Type: schema.FieldTypeURL},
		{Key: "published", Type: schema.FieldTypeBoolean},
		{Key: "rating", Type: schema.FieldTypeNumber, Min: float64(1), Max: float64(5)},
		{Key: "tags", Type: schema.FieldTypeSelect, Multiple: true, Options: []string{"go", "cms"}},
		{Key: "theme", Type: schema.FieldTypeSelect, Options: []string{"light", "dark"}, Default: "light"},
		{Key: "title", Type: schema.FieldTypeText, Label: "Page title", Required: true},
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldsErrors(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name      string
		data      string
		component string
	}{
		{name: "empty payload", data: "", component: "Page"},
		{name: "missing component name", data: pageDocument, component: " "},
		{name: "unknown component", data: pageDocument, component: "Missing"},
		{name: "no components", data: "openapi: 3.0.3\ninfo: {title: x, version: \"1\"}\npaths: {}\n", component: "Page"},
		{name: "invalid document", data: "openapi: [", component: "Page"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Fields(ctx, []byte(tc.data), tc.component, Options{}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestFieldsHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Fields(ctx, []byte(pageDocument), "Page", Options{}); err == nil {
		t.Fatalf("expected cancelled context to fail")
	}
}
