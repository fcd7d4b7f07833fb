// Package testsupport provides a scriptable in-memory collaborator so the
// editor core can be exercised without a running label service.
package testsupport

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-labelform/internal/markup"
	"github.com/goliatone/go-labelform/pkg/labelsvc"
)

// PrintCall records one Print invocation on a fake document.
type PrintCall struct {
	Printer  string
	Params   string
	LabelSet string
}

// FakeDocument implements labelsvc.Document with scriptable failures.
type FakeDocument struct {
	mu sync.Mutex

	Names []string
	Texts map[string]string

	// FieldErrs makes FieldText/SetFieldText fail for specific names.
	FieldErrs map[string]error

	PreviewPNG []byte
	PreviewErr error
	PrintErr   error

	PrintCalls   []PrintCall
	PreviewCalls int
	SetCalls     map[string][]string
}

var _ labelsvc.Document = (*FakeDocument)(nil)

// NewFakeDocument seeds a document from markup using the same extractor the
// real client uses, so fixtures stay single-sourced.
func NewFakeDocument(raw string) *FakeDocument {
	doc := &FakeDocument{
		Texts:    make(map[string]string),
		SetCalls: make(map[string][]string),
	}
	for _, def := range markup.ExtractFields(raw) {
		doc.Names = append(doc.Names, def.Name)
		doc.Texts[def.Name] = def.Text
	}
	return doc
}

func (d *FakeDocument) FieldNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.Names...)
}

func (d *FakeDocument) FieldText(name string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.FieldErrs[name]; err != nil {
		return "", err
	}
	value, ok := d.Texts[name]
	if !ok {
		return "", fmt.Errorf("fake document: %q: %w", name, labelsvc.ErrFieldNotFound)
	}
	return value, nil
}

func (d *FakeDocument) SetFieldText(name, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.SetCalls == nil {
		d.SetCalls = make(map[string][]string)
	}
	d.SetCalls[name] = append(d.SetCalls[name], value)
	if err := d.FieldErrs[name]; err != nil {
		return err
	}
	if _, ok := d.Texts[name]; !ok {
		return fmt.Errorf("fake document: %q: %w", name, labelsvc.ErrFieldNotFound)
	}
	d.Texts[name] = value
	return nil
}

func (d *FakeDocument) RenderPreview(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.PreviewCalls++
	if d.PreviewErr != nil {
		return nil, d.PreviewErr
	}
	if d.PreviewPNG != nil {
		return d.PreviewPNG, nil
	}
	return []byte("png"), nil
}

func (d *FakeDocument) Print(ctx context.Context, printer, params, labelSet string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.PrintCalls = append(d.PrintCalls, PrintCall{Printer: printer, Params: params, LabelSet: labelSet})
	return d.PrintErr
}

// FakeService implements labelsvc.Service, handing out FakeDocuments built
// from the supplied markup.
type FakeService struct {
	mu sync.Mutex

	InitErr     error
	Env         labelsvc.Environment
	EnvErr      error
	PrinterList []labelsvc.Printer
	PrintersErr error
	OpenErr     error

	// OpenHook, when set, replaces the default document construction.
	OpenHook func(markup string) (labelsvc.Document, error)

	Opened []*FakeDocument
}

var _ labelsvc.Service = (*FakeService)(nil)

// NewFakeService returns a connected-looking service with one printer.
func NewFakeService() *FakeService {
	return &FakeService{
		Env:         labelsvc.Environment{FrameworkPresent: true, ServicePresent: true},
		PrinterList: []labelsvc.Printer{{Name: "LabelWriter 450", Type: "LabelWriterPrinter"}},
	}
}

func (s *FakeService) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.InitErr
}

func (s *FakeService) CheckEnvironment(ctx context.Context) (labelsvc.Environment, error) {
	if err := ctx.Err(); err != nil {
		return labelsvc.Environment{}, err
	}
	return s.Env, s.EnvErr
}

func (s *FakeService) Printers(ctx context.Context) ([]labelsvc.Printer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]labelsvc.Printer(nil), s.PrinterList...), s.PrintersErr
}

func (s *FakeService) Open(ctx context.Context, raw string) (labelsvc.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	if s.OpenHook != nil {
		return s.OpenHook(raw)
	}
	doc := NewFakeDocument(raw)
	if len(doc.Names) == 0 && len(raw) > 0 && raw[0] != '<' {
		return nil, fmt.Errorf("fake service: %w", labelsvc.ErrParse)
	}
	s.Opened = append(s.Opened, doc)
	return doc, nil
}
