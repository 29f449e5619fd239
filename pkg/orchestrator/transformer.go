package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-formfill/pkg/discovery"
	"github.com/goliatone/go-formfill/pkg/model"
)

// Transformer mutates a discovered page before planning. Implementations can
// add label hints, drop controls or perform arbitrary rewrites.
type Transformer interface {
	Transform(ctx context.Context, page *discovery.Page) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, page *discovery.Page) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, page *discovery.Page) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, page)
}

// Decorator edits a plan after planning. Step eligibility should be kept
// accurate; the orchestrator recounts the plan afterwards.
type Decorator interface {
	Decorate(ctx context.Context, plan *model.Plan) error
}

// DecoratorFunc adapts plain functions to the Decorator interface.
type DecoratorFunc func(ctx context.Context, plan *model.Plan) error

// Decorate executes the wrapped function when non-nil.
func (fn DecoratorFunc) Decorate(ctx context.Context, plan *model.Plan) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, plan)
}

// JSONOverrides applies declarative per-control hints and overrides loaded
// from a JSON document. Controls are addressed by id, then name, then "#ref":
//
//	{
//	  "labels": {"f_17": "Фамилия"},
//	  "controls": {
//	    "promo": {"skip": true},
//	    "contact": {"value": "me@example.test"},
//	    "country": {"value": "RU"},
//	    "agree": {"checked": true}
//	  }
//	}
//
// Labels fill the label of unlabelled controls before planning, so cryptic
// forms classify correctly. Control overrides replace the planned action;
// non-data controls and controls already skipped as disabled or excluded
// only honour skip.
// Keys that match nothing on the page are ignored, so one document may cover
// several pages.
type JSONOverrides struct {
	document overridesDocument
}

type overridesDocument struct {
	Labels   map[string]string          `json:"labels"`
	Controls map[string]controlOverride `json:"controls"`
}

type controlOverride struct {
	Skip    bool    `json:"skip"`
	Value   *string `json:"value"`
	Checked *bool   `json:"checked"`
}

// NewJSONOverrides constructs overrides from raw JSON bytes.
func NewJSONOverrides(data []byte) (*JSONOverrides, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json overrides: document is empty")
	}
	var document overridesDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json overrides: parse document: %w", err)
	}
	for key, override := range document.Controls {
		if override.Skip && (override.Value != nil || override.Checked != nil) {
			return nil, fmt.Errorf("json overrides: control %q combines skip with a value", key)
		}
	}
	return &JSONOverrides{document: document}, nil
}

// NewJSONOverridesFromFS loads an overrides document from the provided
// filesystem path.
func NewJSONOverridesFromFS(fsys fs.FS, path string) (*JSONOverrides, error) {
	if fsys == nil {
		return nil, errors.New("json overrides: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json overrides: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json overrides: read %s: %w", path, err)
	}
	return NewJSONOverrides(data)
}

// Transform fills missing labels from the document.
func (o *JSONOverrides) Transform(ctx context.Context, page *discovery.Page) error {
	if page == nil {
		return errors.New("json overrides: page is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(o.document.Labels) == 0 {
		return nil
	}
	for idx := range page.Controls {
		control := &page.Controls[idx]
		if strings.TrimSpace(control.Label) != "" {
			continue
		}
		if label, ok := lookupControl(o.document.Labels, *control); ok {
			control.Label = label
		}
	}
	return nil
}

// Decorate replaces the planned action of every addressed control.
func (o *JSONOverrides) Decorate(ctx context.Context, plan *model.Plan) error {
	if plan == nil {
		return errors.New("json overrides: plan is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for idx := range plan.Steps {
		step := &plan.Steps[idx]
		override, ok := lookupControl(o.document.Controls, step.Control)
		if !ok {
			continue
		}
		applyOverride(step, override)
	}
	return nil
}

func applyOverride(step *model.Step, override controlOverride) {
	if override.Skip {
		step.Action = model.Skip(model.SkipExcluded)
		step.Eligible = false
		return
	}
	if step.Control.Kind.IsNonData() || protected(step.Action) {
		return
	}
	switch step.Control.Kind {
	case model.KindCheckbox, model.KindRadio:
		if override.Checked == nil {
			return
		}
		step.Action = model.Check(*override.Checked)
	case model.KindSelect:
		if override.Value == nil {
			return
		}
		step.Action = model.SelectOption(*override.Value)
	default:
		if override.Value == nil {
			return
		}
		step.Action = model.SetText(*override.Value)
	}
	step.Eligible = true
}

// protected reports actions that no override may turn into a fill.
func protected(action model.Action) bool {
	return action.IsSkip() && (action.Reason == model.SkipDisabled || action.Reason == model.SkipExcluded)
}

func lookupControl[T any](entries map[string]T, control model.Control) (T, bool) {
	var zero T
	if len(entries) == 0 {
		return zero, false
	}
	for _, key := range []string{control.ID, control.Name} {
		if key == "" {
			continue
		}
		if entry, ok := entries[key]; ok {
			return entry, true
		}
	}
	if control.Ref != "" {
		if entry, ok := entries["#"+control.Ref]; ok {
			return entry, true
		}
	}
	return zero, false
}

var (
	_ Transformer = (*JSONOverrides)(nil)
	_ Decorator   = (*JSONOverrides)(nil)
)
