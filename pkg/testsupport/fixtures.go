package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/discovery"
	"github.com/goliatone/go-formfill/pkg/discovery/htmldoc"
	"github.com/goliatone/go-formfill/pkg/model"
)

// LoadPage parses an HTML fixture into a page snapshot. Testing helpers fail
// the test on error to keep contract tests concise.
func LoadPage(t *testing.T, path string) discovery.Page {
	t.Helper()

	page, err := LoadPageFromPath(path)
	if err != nil {
		t.Fatalf("load page: %v", err)
	}
	return page
}

// LoadPageFromPath returns a page without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadPageFromPath(path string) (discovery.Page, error) {
	if path == "" {
		return discovery.Page{}, errors.New("testsupport: page path is required")
	}
	page, err := htmldoc.FileSource(path).Discover(context.Background())
	if err != nil && !errors.Is(err, discovery.ErrNoControls) {
		return discovery.Page{}, fmt.Errorf("testsupport: discover %s: %w", path, err)
	}
	return page, nil
}

// StepView is the stable projection of a plan step used in plan goldens.
// Check states are left out because they are random by contract.
type StepView struct {
	Ref       string           `json:"ref"`
	FieldType model.FieldType  `json:"fieldType,omitempty"`
	Action    model.ActionKind `json:"action"`
	Value     string           `json:"value,omitempty"`
	Reason    model.SkipReason `json:"reason,omitempty"`
	Eligible  bool             `json:"eligible"`
}

// PlanView is the stable projection of a plan used in plan goldens.
type PlanView struct {
	Steps   []StepView    `json:"steps"`
	Summary model.Summary `json:"summary"`
}

// ProjectPlan builds the golden projection of plan.
func ProjectPlan(plan model.Plan) PlanView {
	view := PlanView{Summary: plan.Summary(), Steps: make([]StepView, 0, len(plan.Steps))}
	for _, step := range plan.Steps {
		view.Steps = append(view.Steps, StepView{
			Ref:       step.Control.Ref,
			FieldType: step.FieldType,
			Action:    step.Action.Kind,
			Value:     step.Action.Value,
			Reason:    step.Action.Reason,
			Eligible:  step.Eligible,
		})
	}
	return view
}

// MustLoadPlanView loads a JSON golden file into a PlanView.
func MustLoadPlanView(t *testing.T, path string) PlanView {
	t.Helper()

	var out PlanView
	MustLoadGolden(t, path, &out)
	return out
}

// MustLoadGolden decodes a JSON golden file into out.
func MustLoadGolden(t *testing.T, path string, out any) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load golden: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshal golden: %v", err)
	}
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
