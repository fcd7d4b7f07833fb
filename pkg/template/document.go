// Package template holds the in-memory model of a loaded label template: the
// raw markup, the discovered fields with their current and original values,
// and the handle to the collaborator document the markup was loaded into.
package template

import (
	"fmt"
	"log/slog"

	"github.com/goliatone/go-labelform/internal/markup"
	"github.com/goliatone/go-labelform/pkg/labelsvc"
)

// Field is a named editable unit within a template. OriginalValue is the
// snapshot captured at load time and never changes afterwards.
type Field struct {
	Name          string
	Kind          markup.Kind
	CurrentValue  string
	OriginalValue string
}

// Document owns all mutable label state for one loaded template. It is not
// safe for concurrent mutation; callers serialize access (the form layer
// does).
type Document struct {
	raw    string
	handle labelsvc.Document
	fields []Field
	byName map[string]int
	logger *slog.Logger
}

// DocumentOption customises document construction.
type DocumentOption func(*Document)

// WithDocumentLogger overrides the logger used for per-field accessor
// warnings.
func WithDocumentLogger(logger *slog.Logger) DocumentOption {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDocument builds the document model for a template the collaborator has
// already opened. The collaborator's field enumeration is the authoritative
// name list; the markup extractor supplies kinds, with unknown names treated
// as text. Per-field accessor failures are logged and leave an empty
// snapshot; they never fail construction.
func NewDocument(handle labelsvc.Document, raw string, options ...DocumentOption) *Document {
	doc := &Document{
		raw:    raw,
		handle: handle,
		byName: make(map[string]int),
		logger: slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(doc)
		}
	}

	kinds := markup.ExtractFieldKinds(raw)
	for _, name := range handle.FieldNames() {
		if _, seen := doc.byName[name]; seen {
			continue
		}
		field := Field{Name: name, Kind: kinds[name]}
		value, err := handle.FieldText(name)
		if err != nil {
			doc.logger.Warn("template: field text unavailable at load", "field", name, "error", err)
		} else {
			field.CurrentValue = value
			field.OriginalValue = value
		}
		doc.byName[name] = len(doc.fields)
		doc.fields = append(doc.fields, field)
	}

	return doc
}

// Markup returns the raw template markup as loaded.
func (d *Document) Markup() string {
	return d.raw
}

// Handle returns the collaborator document this model was loaded into.
func (d *Document) Handle() labelsvc.Document {
	return d.handle
}

// Fields returns a copy of the field entities in enumeration order.
func (d *Document) Fields() []Field {
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// Field looks up a field by exact name.
func (d *Document) Field(name string) (Field, bool) {
	at, ok := d.byName[name]
	if !ok {
		return Field{}, false
	}
	return d.fields[at], true
}

// SetValue updates a field's current value in the model and pushes it through
// the collaborator's accessor. An accessor failure is returned for the caller
// to log; the in-memory value is updated regardless so the model reflects the
// user's latest edit.
func (d *Document) SetValue(name, value string) error {
	at, ok := d.byName[name]
	if !ok {
		return fmt.Errorf("template: set %q: %w", name, labelsvc.ErrFieldNotFound)
	}
	d.fields[at].CurrentValue = value
	if err := d.handle.SetFieldText(name, value); err != nil {
		return fmt.Errorf("template: set %q: %w", name, err)
	}
	return nil
}

// RestoreOriginal resets a field to its load-time snapshot. Restoring is a
// no-op when the snapshot is empty; the field keeps whatever value it has.
func (d *Document) RestoreOriginal(name string) error {
	at, ok := d.byName[name]
	if !ok {
		return fmt.Errorf("template: restore %q: %w", name, labelsvc.ErrFieldNotFound)
	}
	original := d.fields[at].OriginalValue
	if original == "" {
		return nil
	}
	return d.SetValue(name, original)
}

// Values returns the current name/value pairs in enumeration order, ready for
// a label-set payload.
func (d *Document) Values() []labelsvc.FieldValue {
	out := make([]labelsvc.FieldValue, 0, len(d.fields))
	for _, field := range d.fields {
		out = append(out, labelsvc.FieldValue{Name: field.Name, Value: field.CurrentValue})
	}
	return out
}
