package render

import theme "github.com/goliatone/go-theme"

// RenderOptions carries per-request data renderers can surface without
// touching the form pipeline.
type RenderOptions struct {
	// Message is a status line to show near the form (load confirmations,
	// print receipts).
	Message string

	// Errors are user-visible problems attached to the whole form, e.g. a
	// rejected upload or a failed print submission.
	Errors []string

	// Theme optionally contributes CSS variables and asset URLs to renderers
	// that understand them.
	Theme *theme.RendererConfig
}
