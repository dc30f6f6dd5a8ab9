package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// DefaultTemplateName is the embedded template New uses when no other
// template is configured. It receives the context documented on
// Renderer.Render.
const DefaultTemplateName = "templates/form.tpl"

// TemplatesFS exposes the embedded template bundle so callers can extend
// the default form template.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
