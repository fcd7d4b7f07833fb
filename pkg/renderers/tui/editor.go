package tui

import (
	"context"
	"fmt"

	"github.com/goliatone/go-labelform/pkg/form"
	"github.com/goliatone/go-labelform/pkg/labelsvc"
)

// Editor walks a form's controls in order, prompting for each one, then
// flushes the collected edits in a single pass.
type Editor struct {
	driver PromptDriver
}

// NewEditor builds an Editor; a nil driver falls back to survey prompts.
func NewEditor(driver PromptDriver) *Editor {
	if driver == nil {
		driver = &SurveyDriver{}
	}
	return &Editor{driver: driver}
}

// Run prompts for every control once. Cancelling any prompt abandons the
// session without applying the edits collected so far.
func (e *Editor) Run(ctx context.Context, f *form.Form) error {
	if f == nil {
		return fmt.Errorf("tui: no form to edit")
	}

	for _, control := range f.Controls() {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch control.Shape {
		case form.ControlToggle:
			checked, err := e.driver.Confirm(fmt.Sprintf("Include %s?", control.Name), control.Checked)
			if err != nil {
				return err
			}
			if checked != control.Checked {
				if err := f.SetChecked(control.Name, checked); err != nil {
					return fmt.Errorf("tui: %s: %w", control.Name, err)
				}
			}
		default:
			text, err := e.driver.Multiline(control.Name, control.Text)
			if err != nil {
				return err
			}
			if text != control.Text {
				if err := f.SetText(control.Name, text); err != nil {
					return fmt.Errorf("tui: %s: %w", control.Name, err)
				}
			}
		}
	}

	if err := f.Flush(); err != nil {
		return fmt.Errorf("tui: apply edits: %w", err)
	}
	return nil
}

// ChoosePrinter presents the available printers and returns the selection.
func (e *Editor) ChoosePrinter(printers []labelsvc.Printer) (string, error) {
	if len(printers) == 0 {
		return "", fmt.Errorf("tui: no printers available")
	}
	if len(printers) == 1 {
		return printers[0].Name, nil
	}
	names := make([]string, len(printers))
	for i, p := range printers {
		names[i] = p.Name
	}
	return e.driver.Select("Print to", names)
}
