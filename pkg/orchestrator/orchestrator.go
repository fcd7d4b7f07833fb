// Package orchestrator coordinates the full editing pipeline: template load,
// form derivation, preview, and print submission against the injected label
// service.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/goliatone/go-labelform/pkg/form"
	"github.com/goliatone/go-labelform/pkg/labelsvc"
	"github.com/goliatone/go-labelform/pkg/render"
	"github.com/goliatone/go-labelform/pkg/renderers/vanilla"
	"github.com/goliatone/go-labelform/pkg/template"
)

const defaultRendererName = "vanilla"

// DefaultExtensions are the template file extensions accepted by Load,
// matched case-insensitively.
var DefaultExtensions = []string{".label", ".dymo"}

var (
	// ErrNoTemplate signals an action that needs a loaded template.
	ErrNoTemplate = errors.New("orchestrator: no template loaded")

	// ErrBadExtension signals an upload with an unrecognized file extension.
	ErrBadExtension = errors.New("orchestrator: unrecognized template extension")

	// ErrInvalidCopies signals a print request whose quantity is not a
	// positive integer.
	ErrInvalidCopies = errors.New("orchestrator: copies must be a positive integer")

	// ErrNoPrinter signals a print request without a target printer.
	ErrNoPrinter = errors.New("orchestrator: printer is required")
)

// Status mirrors the three states of the service indicator.
type Status string

const (
	StatusChecking     Status = "checking"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithService injects the label service collaborator. Required.
func WithService(service labelsvc.Service) Option {
	return func(o *Orchestrator) {
		o.service = service
	}
}

// WithSession injects a template session; one is created when omitted.
func WithSession(session *template.Session) Option {
	return func(o *Orchestrator) {
		if session != nil {
			o.session = session
		}
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit renderer name.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithDebounce overrides the edit quiescence window applied to forms.
func WithDebounce(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithLanguage sets the collation language for field ordering.
func WithLanguage(tag language.Tag) Option {
	return func(o *Orchestrator) {
		o.lang = tag
	}
}

// WithExtensions replaces the recognized template file extensions.
func WithExtensions(exts ...string) Option {
	return func(o *Orchestrator) {
		if len(exts) > 0 {
			o.extensions = exts
		}
	}
}

// WithLogger overrides the logger handed to documents and forms.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator owns the session and the live form, and drives the service
// for preview and print. All mutating entry points are serialized.
type Orchestrator struct {
	service         labelsvc.Service
	session         *template.Session
	registry        *render.Registry
	defaultRenderer string
	debounce        time.Duration
	lang            language.Tag
	extensions      []string
	logger          *slog.Logger
	initialiseErr   error

	mu           sync.Mutex
	form         *form.Form
	templateName string
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with built-in implementations so callers can
// start with a single constructor call; the service has no default.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		debounce:        form.DefaultDebounce,
		lang:            language.English,
		extensions:      DefaultExtensions,
		logger:          slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}

	if o.service == nil {
		o.initialiseErr = errors.New("orchestrator: label service is required")
	}
	if o.session == nil {
		o.session = template.NewSession()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}

	return o
}

// Load validates the file name, opens the markup through the service, and
// replaces the live template wholesale. The previous form and all of its
// bindings are invalidated atomically; the returned form is freshly built.
func (o *Orchestrator) Load(ctx context.Context, filename string, payload []byte) (*form.Form, error) {
	if err := o.ready(ctx); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !o.recognized(ext) {
		return nil, fmt.Errorf("%w: %q", ErrBadExtension, filename)
	}

	markup := string(payload)
	handle, err := o.service.Open(ctx, markup)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: open template: %w", err)
	}

	doc := template.NewDocument(handle, markup, template.WithDocumentLogger(o.logger))

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.form != nil {
		o.form.Close()
	}
	o.session.Replace(doc)
	o.form = form.Build(doc,
		form.WithSession(o.session),
		form.WithDebounce(o.debounce),
		form.WithLanguage(o.lang),
		form.WithLogger(o.logger),
	)
	o.templateName = filepath.Base(filename)
	return o.form, nil
}

// Clear discards the template document and all bound UI state.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.form != nil {
		o.form.Close()
		o.form = nil
	}
	o.templateName = ""
	o.session.Clear()
}

// Form returns the live form, or nil when nothing is loaded.
func (o *Orchestrator) Form() *form.Form {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.form
}

// TemplateName returns the base name of the loaded template file.
func (o *Orchestrator) TemplateName() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.templateName
}

// Preview flushes pending edits and asks the service for a raster of the
// document's current state. It has no side effects beyond the returned image
// and may be invoked repeatedly.
func (o *Orchestrator) Preview(ctx context.Context) ([]byte, error) {
	if err := o.ready(ctx); err != nil {
		return nil, err
	}

	f, doc, err := o.current()
	if err != nil {
		return nil, err
	}
	if err := f.Flush(); err != nil {
		return nil, fmt.Errorf("orchestrator: flush edits: %w", err)
	}

	image, err := doc.Handle().RenderPreview(ctx)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render preview: %w", err)
	}
	return image, nil
}

// PrintRequest carries the raw user input for a print submission.
type PrintRequest struct {
	Printer string
	Copies  string
}

// PrintReceipt reports a successful submission.
type PrintReceipt struct {
	Printer string
	Copies  int
}

// Print validates the request, flushes pending edits, and submits the
// document to the service. Validation failures abort before the service is
// touched.
func (o *Orchestrator) Print(ctx context.Context, req PrintRequest) (PrintReceipt, error) {
	if err := o.ready(ctx); err != nil {
		return PrintReceipt{}, err
	}

	printer := strings.TrimSpace(req.Printer)
	if printer == "" {
		return PrintReceipt{}, ErrNoPrinter
	}
	copies, err := strconv.Atoi(strings.TrimSpace(req.Copies))
	if err != nil || copies < 1 {
		return PrintReceipt{}, fmt.Errorf("%w: %q", ErrInvalidCopies, req.Copies)
	}

	f, doc, err := o.current()
	if err != nil {
		return PrintReceipt{}, err
	}
	if err := f.Flush(); err != nil {
		return PrintReceipt{}, fmt.Errorf("orchestrator: flush edits: %w", err)
	}

	params := labelsvc.PrintParamsXML(copies)
	labelSet := labelsvc.LabelSetXML(doc.Values())
	if err := doc.Handle().Print(ctx, printer, params, labelSet); err != nil {
		return PrintReceipt{}, fmt.Errorf("orchestrator: print: %w", err)
	}
	return PrintReceipt{Printer: printer, Copies: copies}, nil
}

// Status initializes the service if needed and maps the environment probe to
// an indicator state. Probe failures mean disconnected, never an error that
// could crash the surface.
func (o *Orchestrator) Status(ctx context.Context) Status {
	if o.service == nil || ctx == nil {
		return StatusDisconnected
	}
	if err := o.service.Initialize(ctx); err != nil {
		o.logger.Warn("orchestrator: service initialization failed", "error", err)
		return StatusDisconnected
	}
	env, err := o.service.CheckEnvironment(ctx)
	if err != nil {
		o.logger.Warn("orchestrator: environment check failed", "error", err)
		return StatusDisconnected
	}
	if !env.FrameworkPresent || !env.ServicePresent {
		return StatusDisconnected
	}
	return StatusConnected
}

// Printers enumerates print targets through the service.
func (o *Orchestrator) Printers(ctx context.Context) ([]labelsvc.Printer, error) {
	if err := o.ready(ctx); err != nil {
		return nil, err
	}
	printers, err := o.service.Printers(ctx)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: list printers: %w", err)
	}
	return printers, nil
}

// Render produces the current form through a named renderer; an empty name
// selects the configured default. A missing template renders as an empty
// view so surfaces can show their blank state.
func (o *Orchestrator) Render(ctx context.Context, rendererName string, options render.RenderOptions) ([]byte, string, error) {
	if err := o.ready(ctx); err != nil {
		return nil, "", err
	}

	target := rendererName
	if target == "" {
		target = o.defaultRenderer
	}
	renderer, err := o.registry.Get(target)
	if err != nil {
		return nil, "", fmt.Errorf("orchestrator: %w", err)
	}

	o.mu.Lock()
	view := render.ViewFromForm(o.templateName, o.form)
	o.mu.Unlock()

	out, err := renderer.Render(ctx, view, options)
	if err != nil {
		return nil, "", fmt.Errorf("orchestrator: render output: %w", err)
	}
	return out, renderer.ContentType(), nil
}

func (o *Orchestrator) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return o.initialiseErr
}

func (o *Orchestrator) recognized(ext string) bool {
	for _, allowed := range o.extensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

func (o *Orchestrator) current() (*form.Form, *template.Document, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	doc, _ := o.session.Current()
	if o.form == nil || doc == nil {
		return nil, nil, ErrNoTemplate
	}
	return o.form, doc, nil
}
