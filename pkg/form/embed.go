package form

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded input templates so callers can copy and
// customise them, or mount them behind their own engine.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
