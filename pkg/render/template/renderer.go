// Package template defines the contract renderers use to execute template
// bundles, decoupling them from the concrete engine.
package template

import "io"

// TemplateRenderer executes named templates or inline template strings
// against arbitrary data.
type TemplateRenderer interface {
	// Render dispatches to RenderString when name looks like inline template
	// content, RenderTemplate otherwise.
	Render(name string, data any, out ...io.Writer) (string, error)

	// RenderTemplate executes a template file from the configured source.
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)

	// RenderString executes inline template content.
	RenderString(content string, data any, out ...io.Writer) (string, error)
}
