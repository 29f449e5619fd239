// Package prompt edits data bags interactively. The Driver seam keeps the
// editing flow testable without a terminal; the default driver uses survey.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-formfill/pkg/model"
)

// ErrAborted signals the user aborted input (e.g. Ctrl+C).
var ErrAborted = errors.New("prompt: aborted")

// Change is one edited field as shown before confirmation. An empty New
// means the value was cleared.
type Change struct {
	FieldType model.FieldType
	Old       string
	New       string
}

// Driver asks the questions of one editing session. Implementations may
// re-ask until ValidateValue accepts an answer; EditDataBag validates again.
type Driver interface {
	// PickFields returns the field types to edit, chosen from types.
	PickFields(ctx context.Context, types []model.FieldType, bag model.DataBag) ([]model.FieldType, error)
	// FieldValue asks for the value of ft, offering current as the default.
	FieldValue(ctx context.Context, ft model.FieldType, current string) (string, error)
	// ConfirmChanges asks whether to keep changes.
	ConfirmChanges(ctx context.Context, changes []Change) (bool, error)
}

// fieldHelp documents the accepted shape of the field types ValidateValue
// checks.
var fieldHelp = map[model.FieldType]string{
	model.FieldTypeEmail:       "An address such as anna@example.test.",
	model.FieldTypePhone:       "At least 10 digits, e.g. +7 (915) 123-45-67.",
	model.FieldTypeDateOfBirth: "DD.MM.YYYY or YYYY-MM-DD.",
	model.FieldTypeAge:         "Whole years, 1 to 150.",
	model.FieldTypePostalCode:  "Digits only, e.g. 101000.",
}

// FieldHelp returns the prompt help for ft.
func FieldHelp(ft model.FieldType) string {
	const clear = "Leave empty to use a generated value."
	if help, ok := fieldHelp[ft]; ok {
		return help + " " + clear
	}
	return clear
}

type surveyDriver struct{}

// NewSurveyDriver returns a Driver reading from the controlling terminal.
func NewSurveyDriver() Driver {
	return surveyDriver{}
}

func (surveyDriver) PickFields(ctx context.Context, types []model.FieldType, bag model.DataBag) ([]model.FieldType, error) {
	names := make([]string, len(types))
	for i, ft := range types {
		names[i] = string(ft)
	}
	var picked []string
	err := ask(ctx, &survey.MultiSelect{
		Message:  "Fields to edit",
		Options:  names,
		Help:     "Space toggles a field, enter continues.",
		PageSize: 12,
		Description: func(_ string, index int) string {
			if value, ok := bag.Lookup(types[index]); ok {
				return value
			}
			return "(generated)"
		},
	}, &picked)
	if err != nil {
		return nil, err
	}
	out := make([]model.FieldType, 0, len(picked))
	for _, name := range picked {
		if ft, ok := model.ParseFieldType(name); ok {
			out = append(out, ft)
		}
	}
	return out, nil
}

func (surveyDriver) FieldValue(ctx context.Context, ft model.FieldType, current string) (string, error) {
	var value string
	err := ask(ctx, &survey.Input{
		Message: string(ft),
		Default: current,
		Help:    FieldHelp(ft),
	}, &value, survey.WithValidator(func(ans any) error {
		s, _ := ans.(string)
		return ValidateValue(ft, s)
	}))
	return value, err
}

func (surveyDriver) ConfirmChanges(ctx context.Context, changes []Change) (bool, error) {
	lines := make([]string, 0, len(changes))
	for _, change := range changes {
		next := change.New
		if next == "" {
			next = "(generated)"
		}
		lines = append(lines, fmt.Sprintf("%s: %q -> %q", change.FieldType, change.Old, next))
	}
	var ok bool
	err := ask(ctx, &survey.Confirm{
		Message: fmt.Sprintf("Use these values? (%d changed)", len(changes)),
		Help:    strings.Join(lines, "\n"),
		Default: true,
	}, &ok)
	return ok, err
}

// ask runs one survey prompt unless ctx is already done and maps Ctrl+C onto
// ErrAborted.
func ask(ctx context.Context, p survey.Prompt, out any, opts ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := survey.AskOne(p, out, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
