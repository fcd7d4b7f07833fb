package render

import (
	"context"

	"github.com/goliatone/go-labelform/pkg/form"
)

// ControlView is the renderer-facing snapshot of one form control.
type ControlView struct {
	Name    string `json:"name"`
	Shape   string `json:"shape"`
	Value   string `json:"value,omitempty"`
	Checked bool   `json:"checked,omitempty"`
}

// FormView is the top-level structure renderers consume.
type FormView struct {
	Template string        `json:"template"`
	Controls []ControlView `json:"controls"`
}

// ViewFromForm snapshots a live form into a renderer-friendly view.
func ViewFromForm(templateName string, f *form.Form) FormView {
	view := FormView{Template: templateName}
	if f == nil {
		return view
	}
	for _, control := range f.Controls() {
		view.Controls = append(view.Controls, ControlView{
			Name:    control.Name,
			Shape:   control.Shape.String(),
			Value:   control.Text,
			Checked: control.Checked,
		})
	}
	return view
}

// Renderer converts a FormView into a byte representation (HTML for the
// default vanilla renderer).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view FormView, options RenderOptions) ([]byte, error)
}
