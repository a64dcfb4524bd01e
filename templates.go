package daas

import (
	"io/fs"

	"github.com/goliatone/go-daas/pkg/form"
)

// EmbeddedFormTemplates exposes the built-in authoring form templates so
// callers can extend them and pass the result to form.WithTemplates.
func EmbeddedFormTemplates() fs.FS {
	return form.Templates()
}
