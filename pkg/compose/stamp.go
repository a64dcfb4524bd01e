package compose

import (
	"strconv"

	"github.com/goliatone/go-daas/pkg/dom"
	"github.com/goliatone/go-daas/pkg/meta"
)

// TemplateID derives the grouping id stamped on composed documents: the
// absolute value of a 32-bit djb2 hash of path, in hex. It is not meant to
// be unique.
func TemplateID(path string) string {
	var hash int32 = 5381
	for _, r := range path {
		hash = (hash << 5) + hash + int32(r)
	}
	n := int64(hash)
	if n < 0 {
		n = -n
	}
	return strconv.FormatInt(n, 16)
}

// Stamp records the template path and id on the <html> element of doc.
func Stamp(doc *dom.Document, path string) {
	root := doc.HTMLElement()
	if root == nil || path == "" {
		return
	}
	dom.SetAttr(root, meta.AttrTemplatePath, path)
	dom.SetAttr(root, meta.AttrTemplateID, TemplateID(path))
}
