package labelsvc

import (
	"context"
	"errors"
)

// Sentinel errors implementations wrap so callers can classify failures
// without depending on a concrete service.
var (
	// ErrServiceUnavailable indicates the label service could not be reached
	// or refused the request.
	ErrServiceUnavailable = errors.New("labelsvc: service unavailable")

	// ErrParse indicates the service rejected the template markup.
	ErrParse = errors.New("labelsvc: template markup rejected")

	// ErrFieldNotFound indicates a field accessor was invoked with a name the
	// document does not know about.
	ErrFieldNotFound = errors.New("labelsvc: field not found")
)

// Environment reports what the service discovered about its host during a
// health check.
type Environment struct {
	FrameworkPresent bool
	ServicePresent   bool
}

// Printer identifies a print target exposed by the service.
type Printer struct {
	Name string
	Type string
}

// Service is the capability contract the editor requires from the external
// rendering/printing collaborator. Implementations live behind this interface
// so the core can run against a fake in tests.
type Service interface {
	// Initialize performs any handshake the service needs before use.
	Initialize(ctx context.Context) error

	// CheckEnvironment probes for the rendering framework and the service
	// itself without failing hard; transport errors map to a disconnected
	// environment rather than an error where possible.
	CheckEnvironment(ctx context.Context) (Environment, error)

	// Printers enumerates the print targets currently visible to the service.
	Printers(ctx context.Context) ([]Printer, error)

	// Open parses template markup into a live document. Markup the service
	// cannot parse yields an error wrapping ErrParse.
	Open(ctx context.Context, markup string) (Document, error)
}

// Document is a template loaded into the collaborator. Field accessors are
// in-memory operations; rendering and printing hit the service.
type Document interface {
	// FieldNames enumerates the editable field names the collaborator knows
	// about, in document order.
	FieldNames() []string

	// FieldText returns the current text of a named field.
	FieldText(name string) (string, error)

	// SetFieldText replaces the current text of a named field.
	SetFieldText(name, value string) error

	// RenderPreview rasterizes the document in its current state and returns
	// the encoded image bytes.
	RenderPreview(ctx context.Context) ([]byte, error)

	// Print submits the document to the named printer. params carries the
	// print-parameter markup and labelSet the per-field record markup.
	Print(ctx context.Context, printer, params, labelSet string) error
}
