package orchestrator_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/discovery"
	"github.com/goliatone/go-formfill/pkg/discovery/htmldoc"
	"github.com/goliatone/go-formfill/pkg/executor"
	"github.com/goliatone/go-formfill/pkg/model"
	"github.com/goliatone/go-formfill/pkg/orchestrator"
	"github.com/goliatone/go-formfill/pkg/planner"
	"github.com/goliatone/go-formfill/pkg/synth"
)

const checkoutPage = `<!doctype html><html><body>
<header><input name="q" placeholder="Search"></header>
<form>
  <label for="fn">Имя</label><input id="fn" name="first_name">
  <input id="mail" type="email" name="contact">
  <input name="promo" placeholder="Promo code">
  <input type="hidden" name="csrf" value="x">
</form>
</body></html>`

func newOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	base := []orchestrator.Option{
		orchestrator.WithPlannerOptions(planner.WithRand(synth.NewRand(7))),
	}
	return orchestrator.New(append(base, options...)...)
}

func TestRun_ExecutesPlan(t *testing.T) {
	recorder := executor.NewRecorder()
	orch := newOrchestrator(orchestrator.WithExecutor(recorder))

	result, err := orch.Run(context.Background(), orchestrator.Request{
		Source: htmldoc.StringSource(checkoutPage),
		Data:   model.DataBag{model.FieldTypeFirstName: "Анна", model.FieldTypeEmail: "anna@example.test"},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := result.Outcome(); err != nil {
		t.Fatalf("outcome: %v", err)
	}

	want := model.Summary{Success: true, FilledCount: 3, TotalEligible: 3, SkippedCount: 1}
	if diff := cmp.Diff(want, result.Summary); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	if result.Applied == nil || result.Applied.Applied != 3 {
		t.Fatalf("expected three applied steps, got %+v", result.Applied)
	}

	steps := recorder.Steps()
	if got := steps[0].Action; got != model.SetText("Анна") {
		t.Fatalf("first name action = %+v", got)
	}
	if got := steps[1].Action; got != model.SetText("anna@example.test") {
		t.Fatalf("email action = %+v", got)
	}
}

func TestRun_DryRunSkipsExecutor(t *testing.T) {
	called := false
	exec := executor.Func(func(context.Context, model.Plan) (executor.Result, error) {
		called = true
		return executor.Result{}, nil
	})
	orch := newOrchestrator(orchestrator.WithExecutor(exec))

	result, err := orch.Run(context.Background(), orchestrator.Request{
		Source: htmldoc.StringSource(checkoutPage),
		DryRun: true,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if called {
		t.Fatalf("executor must not run on a dry run")
	}
	if result.Applied != nil {
		t.Fatalf("dry run must not report applied steps")
	}
	if result.Plan.TotalEligible != 3 {
		t.Fatalf("expected 3 eligible controls, got %d", result.Plan.TotalEligible)
	}
}

func TestRun_NoFillableSurface(t *testing.T) {
	exec := executor.Func(func(context.Context, model.Plan) (executor.Result, error) {
		t.Fatalf("executor must not run without eligible controls")
		return executor.Result{}, nil
	})
	orch := newOrchestrator(orchestrator.WithExecutor(exec))

	tests := map[string]orchestrator.Request{
		"no controls": {Source: htmldoc.StringSource(`<p>nothing here</p>`)},
		"only hidden": {Source: htmldoc.StringSource(`<form><input type="hidden" name="a"><button>Go</button></form>`)},
		"all excluded": {Page: &discovery.Page{Controls: []model.Control{
			{Ref: "0", Name: "q", Kind: model.KindText, Ancestors: []string{"nav"}},
		}}},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			result, err := orch.Run(context.Background(), req)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if !errors.Is(result.Outcome(), orchestrator.ErrNoFillableSurface) {
				t.Fatalf("expected ErrNoFillableSurface, got %v", result.Outcome())
			}
			if result.Summary.Success {
				t.Fatalf("summary must not report success")
			}
		})
	}
}

func TestRun_SourceErrorsAreWrapped(t *testing.T) {
	boom := errors.New("boom")
	orch := newOrchestrator()

	_, err := orch.Run(context.Background(), orchestrator.Request{
		Source: discovery.SourceFunc(func(context.Context) (discovery.Page, error) {
			return discovery.Page{}, boom
		}),
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}

	if _, err := orch.Run(context.Background(), orchestrator.Request{}); err == nil {
		t.Fatalf("expected error when neither source nor page is given")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := orch.Run(ctx, orchestrator.Request{Source: htmldoc.StringSource(checkoutPage)}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRun_ExecutorFailuresAreReported(t *testing.T) {
	recorder := executor.NewRecorder().FailRef("1", errors.New("detached"))
	orch := newOrchestrator(orchestrator.WithExecutor(recorder))

	result, err := orch.Run(context.Background(), orchestrator.Request{Source: htmldoc.StringSource(checkoutPage)})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := &executor.Result{
		Applied:  2,
		Failures: []executor.Failure{{Ref: "1", Action: model.ActionSetText, Error: "detached"}},
	}
	if diff := cmp.Diff(want, result.Applied); diff != "" {
		t.Fatalf("applied mismatch (-want +got):\n%s", diff)
	}

	broken := executor.Func(func(context.Context, model.Plan) (executor.Result, error) {
		return executor.Result{}, errors.New("browser gone")
	})
	orch = newOrchestrator(orchestrator.WithExecutor(broken))
	if _, err := orch.Run(context.Background(), orchestrator.Request{Source: htmldoc.StringSource(checkoutPage)}); err == nil {
		t.Fatalf("expected executor error")
	}
}

func TestRun_DecoratorsRecountPlan(t *testing.T) {
	skipAll := orchestrator.DecoratorFunc(func(_ context.Context, plan *model.Plan) error {
		for idx := range plan.Steps {
			plan.Steps[idx].Action = model.Skip(model.SkipExcluded)
			plan.Steps[idx].Eligible = false
		}
		plan.TotalEligible = 42
		return nil
	})
	orch := newOrchestrator(orchestrator.WithPlanDecorators(skipAll))

	result, err := orch.Run(context.Background(), orchestrator.Request{Source: htmldoc.StringSource(checkoutPage)})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := model.Summary{Success: false, FilledCount: 0, TotalEligible: 0, SkippedCount: 4}
	if diff := cmp.Diff(want, result.Summary); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}

	failing := orchestrator.DecoratorFunc(func(context.Context, *model.Plan) error {
		return errors.New("nope")
	})
	orch = newOrchestrator(orchestrator.WithPlanDecorators(failing))
	if _, err := orch.Run(context.Background(), orchestrator.Request{Source: htmldoc.StringSource(checkoutPage)}); err == nil {
		t.Fatalf("expected decorator error")
	}
}

func TestJSONOverrides(t *testing.T) {
	fsys := fstest.MapFS{
		"overrides.json": &fstest.MapFile{Data: []byte(`{
			"labels": {"#3": "Фамилия"},
			"controls": {
				"mail": {"value": "fixed@example.test"},
				"csrf": {"value": "ignored"},
				"unknown": {"skip": true},
				"first_name": {"skip": true}
			}
		}`)},
	}
	overrides, err := orchestrator.NewJSONOverridesFromFS(fsys, "overrides.json")
	if err != nil {
		t.Fatalf("load overrides: %v", err)
	}

	orch := newOrchestrator(
		orchestrator.WithPageTransformer(overrides),
		orchestrator.WithPlanDecorators(overrides),
	)
	result, err := orch.Run(context.Background(), orchestrator.Request{
		Source: htmldoc.StringSource(checkoutPage),
		Data:   model.DataBag{model.FieldTypeLastName: "Иванова"},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	type row struct {
		Ref       string
		FieldType model.FieldType
		Action    model.Action
		Eligible  bool
	}
	got := make([]row, 0, len(result.Plan.Steps))
	for _, step := range result.Plan.Steps {
		got = append(got, row{step.Control.Ref, step.FieldType, step.Action, step.Eligible})
	}
	want := []row{
		{"1", model.FieldTypeFirstName, model.Skip(model.SkipExcluded), false},
		{"2", model.FieldTypeEmail, model.SetText("fixed@example.test"), true},
		{"3", model.FieldTypeLastName, model.SetText("Иванова"), true},
		{"4", model.FieldTypeUnclassified, model.Skip(model.SkipNonDataControl), false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
	if result.Plan.TotalEligible != 2 || result.Plan.Skipped != 2 {
		t.Fatalf("counters not recounted: %+v", result.Summary)
	}
}

func TestJSONOverrides_DoNotFillDisabledOrExcluded(t *testing.T) {
	overrides, err := orchestrator.NewJSONOverrides([]byte(`{"controls": {
		"q": {"value": "x"},
		"locked": {"value": "y"},
		"#2": {"checked": true},
		"promo": {"skip": true}
	}}`))
	if err != nil {
		t.Fatalf("load overrides: %v", err)
	}
	page := discovery.Page{FormCount: 1, Controls: []model.Control{
		{Ref: "0", Name: "q", Kind: model.KindText, Ancestors: []string{"form", "nav"}, InForm: true},
		{Ref: "1", Name: "locked", Kind: model.KindText, Disabled: true, InForm: true},
		{Ref: "2", Name: "agree", Kind: model.KindCheckbox, ReadOnly: true, InForm: true},
		{Ref: "3", Name: "promo", Kind: model.KindText, Disabled: true, InForm: true},
	}}

	result, err := newOrchestrator(orchestrator.WithPlanDecorators(overrides)).Run(context.Background(), orchestrator.Request{Page: &page})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []model.Action{
		model.Skip(model.SkipExcluded),
		model.Skip(model.SkipDisabled),
		model.Skip(model.SkipDisabled),
		model.Skip(model.SkipExcluded),
	}
	for i, step := range result.Plan.Steps {
		if step.Action != want[i] || step.Eligible {
			t.Errorf("ref %s: got %+v eligible=%v, want %+v not eligible", step.Control.Ref, step.Action, step.Eligible, want[i])
		}
	}
	if !errors.Is(result.Outcome(), orchestrator.ErrNoFillableSurface) {
		t.Fatalf("expected no fillable surface, got %v", result.Outcome())
	}
}

func TestJSONOverrides_Errors(t *testing.T) {
	tests := map[string][]byte{
		"empty":        []byte("  "),
		"invalid":      []byte("{"),
		"skip + value": []byte(`{"controls": {"a": {"skip": true, "value": "x"}}}`),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := orchestrator.NewJSONOverrides(data); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	if _, err := orchestrator.NewJSONOverridesFromFS(nil, "x.json"); err == nil {
		t.Fatalf("expected nil filesystem error")
	}
	if _, err := orchestrator.NewJSONOverridesFromFS(fstest.MapFS{}, "missing.json"); err == nil {
		t.Fatalf("expected missing file error")
	}
}
