// Package vanilla renders a form view as dependency-free HTML suitable for
// embedding in the editor page.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-labelform/pkg/render"
	rendertemplate "github.com/goliatone/go-labelform/pkg/render/template"
	gotemplate "github.com/goliatone/go-labelform/pkg/render/template/gotemplate"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
	policy    *bluemonday.Policy
}

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates: renderer,
		policy:    bluemonday.StrictPolicy(),
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the form HTML fragment. Field names and values pass
// through a strict sanitizing policy before interpolation; template text can
// carry arbitrary payloads and must never become markup.
func (r *Renderer) Render(ctx context.Context, view render.FormView, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, fmt.Errorf("vanilla renderer: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	result, err := r.templates.RenderTemplate("templates/form.tmpl", map[string]any{
		"form":      r.sanitizeView(view),
		"message":   r.policy.Sanitize(options.Message),
		"errors":    r.sanitizeAll(options.Errors),
		"theme_css": themeCSS(options.Theme),
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) sanitizeView(view render.FormView) render.FormView {
	out := render.FormView{
		Template: r.policy.Sanitize(view.Template),
		Controls: make([]render.ControlView, 0, len(view.Controls)),
	}
	for _, control := range view.Controls {
		out.Controls = append(out.Controls, render.ControlView{
			Name:    r.policy.Sanitize(control.Name),
			Shape:   control.Shape,
			Value:   r.policy.Sanitize(control.Value),
			Checked: control.Checked,
		})
	}
	return out
}

func (r *Renderer) sanitizeAll(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	for _, message := range messages {
		out = append(out, r.policy.Sanitize(message))
	}
	return out
}
