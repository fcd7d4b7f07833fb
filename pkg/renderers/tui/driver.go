// Package tui provides an interactive terminal editor over a form, walking
// its controls with survey prompts.
package tui

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted signals that the user cancelled the interactive session.
var ErrAborted = errors.New("tui: aborted")

// PromptDriver abstracts the terminal interaction so the editor can be
// exercised with a scripted driver in tests.
type PromptDriver interface {
	// Multiline collects free text for a field, seeded with its current value.
	Multiline(prompt, initial string) (string, error)
	// Confirm collects a yes/no answer, seeded with the current state.
	Confirm(prompt string, initial bool) (bool, error)
	// Select picks one entry from a list.
	Select(prompt string, options []string) (string, error)
}

// SurveyDriver implements PromptDriver on top of survey prompts.
type SurveyDriver struct {
	// AskOpts are passed through to every survey invocation.
	AskOpts []survey.AskOpt
}

var _ PromptDriver = (*SurveyDriver)(nil)

func (d *SurveyDriver) Multiline(prompt, initial string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Multiline{
		Message: prompt,
		Default: initial,
	}, &answer, d.AskOpts...)
	return answer, translate(err)
}

func (d *SurveyDriver) Confirm(prompt string, initial bool) (bool, error) {
	answer := initial
	err := survey.AskOne(&survey.Confirm{
		Message: prompt,
		Default: initial,
	}, &answer, d.AskOpts...)
	return answer, translate(err)
}

func (d *SurveyDriver) Select(prompt string, options []string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Select{
		Message: prompt,
		Options: options,
	}, &answer, d.AskOpts...)
	return answer, translate(err)
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return fmt.Errorf("tui: prompt: %w", err)
}
