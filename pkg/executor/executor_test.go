package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/model"
)

func samplePlan() model.Plan {
	return model.Plan{Steps: []model.Step{
		{Control: model.Control{Ref: "0"}, Action: model.SetText("Анна")},
		{Control: model.Control{Ref: "1"}, Action: model.Skip(model.SkipExcluded)},
		{Control: model.Control{Ref: "2"}, Action: model.Check(true)},
		{Control: model.Control{Ref: "3"}, Action: model.SelectOption("RU")},
	}}
}

func TestRecorder_AppliesNonSkipStepsInOrder(t *testing.T) {
	rec := NewRecorder()
	result, err := rec.Apply(context.Background(), samplePlan())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if result.Applied != 3 || result.Failed() != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	var refs []string
	for _, step := range rec.Steps() {
		refs = append(refs, step.Control.Ref)
	}
	if diff := cmp.Diff([]string{"0", "2", "3"}, refs); diff != "" {
		t.Fatalf("applied refs mismatch (-want +got):\n%s", diff)
	}
}

func TestRecorder_CollectsFailures(t *testing.T) {
	rec := NewRecorder().FailRef("2", errors.New("element detached"))
	result, err := rec.Apply(context.Background(), samplePlan())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	want := Result{
		Applied:  2,
		Failures: []Failure{{Ref: "2", Action: model.ActionCheck, Error: "element detached"}},
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Apply(ctx, samplePlan(), func(context.Context, model.Step) error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("no step should run after cancellation, ran %d", calls)
	}
}

func TestFunc_Adapter(t *testing.T) {
	exec := Func(func(context.Context, model.Plan) (Result, error) {
		return Result{Applied: 7}, nil
	})
	result, err := exec.Apply(context.Background(), model.Plan{})
	if err != nil || result.Applied != 7 {
		t.Fatalf("unexpected adapter result %+v %v", result, err)
	}
}
