// Package labelform re-exports the editor core so callers can wire a label
// form without importing the sub-packages individually.
package labelform

import (
	"context"

	"github.com/goliatone/go-labelform/internal/dymo"
	"github.com/goliatone/go-labelform/pkg/form"
	"github.com/goliatone/go-labelform/pkg/labelsvc"
	"github.com/goliatone/go-labelform/pkg/orchestrator"
	"github.com/goliatone/go-labelform/pkg/render"
)

// Service is the printing collaborator contract.
type Service = labelsvc.Service

// Document is an opened template handle exposed by a Service.
type Document = labelsvc.Document

// Printer describes one print target.
type Printer = labelsvc.Printer

// Environment reports the collaborator's availability probes.
type Environment = labelsvc.Environment

// Form binds a template document to editable controls.
type Form = form.Form

// Control is a read-only snapshot of one form control.
type Control = form.Control

// PrintRequest carries raw user input for a print submission.
type PrintRequest = orchestrator.PrintRequest

// PrintReceipt reports a successful print submission.
type PrintReceipt = orchestrator.PrintReceipt

// Status is the service indicator state.
type Status = orchestrator.Status

// RenderOptions describes per-request renderer overrides.
type RenderOptions = render.RenderOptions

const (
	StatusChecking     = orchestrator.StatusChecking
	StatusConnected    = orchestrator.StatusConnected
	StatusDisconnected = orchestrator.StatusDisconnected
)

// New exposes the orchestrator constructor from the top-level module.
func New(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// WithService injects the printing collaborator.
func WithService(service Service) orchestrator.Option {
	return orchestrator.WithService(service)
}

// DYMOService returns a Service backed by the local DYMO label web service.
// An empty baseURL uses the standard loopback endpoint.
func DYMOService(baseURL string) Service {
	return dymo.New(dymo.WithBaseURL(baseURL))
}

// Preview loads the template and renders a raster in one call, the simplest
// entry point for callers that just want an image.
func Preview(ctx context.Context, service Service, filename string, payload []byte) ([]byte, error) {
	o := orchestrator.New(orchestrator.WithService(service))
	if _, err := o.Load(ctx, filename, payload); err != nil {
		return nil, err
	}
	return o.Preview(ctx)
}
