// Package form derives an editable form from a template document and keeps
// the document synchronized with control edits. The whole control set is
// rebuilt from scratch on every template load; there is no incremental
// reconciliation.
package form

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/goliatone/go-labelform/internal/markup"
	"github.com/goliatone/go-labelform/pkg/template"
)

// DefaultDebounce is the quiescence window applied to control edits before a
// synchronization pass runs.
const DefaultDebounce = 300 * time.Millisecond

// ignoreMarker excludes fields from the editable form when it prefixes the
// field name, in any casing. Excluded fields stay in the document untouched.
const ignoreMarker = "IGNORE"

var (
	// ErrStaleForm signals that the document this form was built against has
	// been replaced or cleared; edits are refused.
	ErrStaleForm = errors.New("form: document replaced, form is stale")

	// ErrUnknownControl signals an edit addressed to a control the form does
	// not carry.
	ErrUnknownControl = errors.New("form: unknown control")
)

// ControlShape selects the UI control rendered for a field.
type ControlShape int

const (
	// ControlTextArea is a free multi-line text input.
	ControlTextArea ControlShape = iota
	// ControlToggle is a boolean inclusion toggle used for image-bearing
	// fields whose payloads are unsuitable for direct text editing.
	ControlToggle
)

func (s ControlShape) String() string {
	if s == ControlToggle {
		return "toggle"
	}
	return "textarea"
}

// Control is a read-only snapshot of one binding's state.
type Control struct {
	Name    string
	Shape   ControlShape
	Text    string
	Checked bool
}

// binding holds the live control state plus the staged edit flag.
type binding struct {
	name    string
	shape   ControlShape
	text    string
	checked bool
	dirty   bool
}

// Option customises form construction.
type Option func(*settings)

type settings struct {
	debounce time.Duration
	lang     language.Tag
	session  *template.Session
	logger   *slog.Logger
}

// WithDebounce overrides the edit quiescence window.
func WithDebounce(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithLanguage sets the collation language used to order field names.
func WithLanguage(tag language.Tag) Option {
	return func(s *settings) {
		s.lang = tag
	}
}

// WithSession ties the form to a session so it can detect that its document
// has been replaced.
func WithSession(session *template.Session) Option {
	return func(s *settings) {
		s.session = session
	}
}

// WithLogger overrides the logger for per-field synchronization warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Form owns the control bindings for one document generation.
type Form struct {
	mu         sync.Mutex
	doc        *template.Document
	session    *template.Session
	generation uint64
	order      []string
	bindings   map[string]*binding
	debouncer  *Debouncer
	logger     *slog.Logger
}

// Build derives the editable form for a document: IGNORE-prefixed fields are
// excluded, the rest are ordered by locale-aware lexical comparison, and each
// gets a control shaped by its kind. Text controls start with the field's
// current value; toggles start checked iff the current value is non-empty.
func Build(doc *template.Document, options ...Option) *Form {
	cfg := settings{
		debounce: DefaultDebounce,
		lang:     language.English,
		logger:   slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	f := &Form{
		doc:       doc,
		session:   cfg.session,
		bindings:  make(map[string]*binding),
		debouncer: NewDebouncer(cfg.debounce),
		logger:    cfg.logger,
	}
	if cfg.session != nil {
		f.generation = cfg.session.Generation()
	}

	for _, field := range doc.Fields() {
		if strings.HasPrefix(strings.ToUpper(field.Name), ignoreMarker) {
			continue
		}
		b := &binding{name: field.Name}
		if field.Kind == markup.KindImage {
			b.shape = ControlToggle
			b.checked = field.CurrentValue != ""
		} else {
			b.shape = ControlTextArea
			b.text = field.CurrentValue
		}
		f.bindings[field.Name] = b
		f.order = append(f.order, field.Name)
	}

	collator := collate.New(cfg.lang)
	sort.SliceStable(f.order, func(i, j int) bool {
		return collator.CompareString(f.order[i], f.order[j]) < 0
	})

	return f
}

// Document returns the document this form edits.
func (f *Form) Document() *template.Document {
	return f.doc
}

// Controls returns ordered snapshots of every binding.
func (f *Form) Controls() []Control {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Control, 0, len(f.order))
	for _, name := range f.order {
		b := f.bindings[name]
		out = append(out, Control{Name: b.name, Shape: b.shape, Text: b.text, Checked: b.checked})
	}
	return out
}

// SetText stages a text edit and (re)arms the debounce timer. Empty string is
// a valid value and clears the field on the next pass.
func (f *Form) SetText(name, value string) error {
	f.mu.Lock()
	b, ok := f.bindings[name]
	if !ok {
		f.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownControl, name)
	}
	if b.shape != ControlTextArea {
		f.mu.Unlock()
		return fmt.Errorf("form: %q is not a text control", name)
	}
	b.text = value
	b.dirty = true
	f.mu.Unlock()

	f.debouncer.Schedule(f.syncPass)
	return nil
}

// SetChecked stages a toggle edit and (re)arms the debounce timer.
func (f *Form) SetChecked(name string, checked bool) error {
	f.mu.Lock()
	b, ok := f.bindings[name]
	if !ok {
		f.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownControl, name)
	}
	if b.shape != ControlToggle {
		f.mu.Unlock()
		return fmt.Errorf("form: %q is not a toggle control", name)
	}
	b.checked = checked
	b.dirty = true
	f.mu.Unlock()

	f.debouncer.Schedule(f.syncPass)
	return nil
}

// Flush cancels any pending debounce timer and applies every staged edit
// right away. Preview and print call this so the collaborator never sees
// values staler than the last keystroke.
func (f *Form) Flush() error {
	f.debouncer.Flush()
	return f.sync()
}

// Close drops any pending edit without applying it.
func (f *Form) Close() {
	f.debouncer.Stop()
}

// syncPass is the timer callback; errors surface only through the logger.
func (f *Form) syncPass() {
	if err := f.sync(); err != nil {
		f.logger.Warn("form: synchronization pass skipped", "error", err)
	}
}

// sync writes all dirty control values into the document. Text controls copy
// their literal text. A checked toggle restores the original snapshot, but
// only when that snapshot is non-empty; otherwise the field is left as-is.
// An unchecked toggle forces the field empty. Per-field failures are logged
// and never abort the pass.
func (f *Form) sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.session != nil && f.session.Generation() != f.generation {
		for _, b := range f.bindings {
			b.dirty = false
		}
		return ErrStaleForm
	}

	for _, name := range f.order {
		b := f.bindings[name]
		if !b.dirty {
			continue
		}
		b.dirty = false

		var err error
		switch b.shape {
		case ControlToggle:
			if b.checked {
				err = f.doc.RestoreOriginal(name)
			} else {
				err = f.doc.SetValue(name, "")
			}
		default:
			err = f.doc.SetValue(name, b.text)
		}
		if err != nil {
			f.logger.Warn("form: field sync failed", "field", name, "error", err)
		}
	}
	return nil
}
