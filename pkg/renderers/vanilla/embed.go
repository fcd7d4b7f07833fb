package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

// TemplatesFS exposes the built-in template bundle so callers can reuse or
// extend it.
func TemplatesFS() fs.FS {
	return templateFiles
}
