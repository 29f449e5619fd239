// Package executor defines how a fill plan is carried out against a page.
//
// An Executor receives the full plan and applies every non-skip step, in
// order. Failures on individual steps are collected in Result rather than
// aborting the run; a returned error means the executor itself could not
// operate (lost connection, cancelled context).
package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-formfill/pkg/model"
)

// Executor applies a plan.
type Executor interface {
	Apply(ctx context.Context, plan model.Plan) (Result, error)
}

// Func adapts a function into an Executor.
type Func func(ctx context.Context, plan model.Plan) (Result, error)

// Apply calls the underlying function.
func (fn Func) Apply(ctx context.Context, plan model.Plan) (Result, error) {
	return fn(ctx, plan)
}

// Failure records a step that could not be applied.
type Failure struct {
	Ref    string           `json:"ref"`
	Action model.ActionKind `json:"action"`
	Error  string           `json:"error"`
}

// Result summarises an execution.
type Result struct {
	Applied  int       `json:"applied"`
	Failures []Failure `json:"failures,omitempty"`
}

// Failed reports the number of steps that could not be applied.
func (r Result) Failed() int {
	return len(r.Failures)
}

// StepFunc applies a single step.
type StepFunc func(ctx context.Context, step model.Step) error

// Apply runs fn over each non-skip step of plan and aggregates the outcome.
// It stops early only when ctx is done.
func Apply(ctx context.Context, plan model.Plan, fn StepFunc) (Result, error) {
	var result Result
	for _, step := range plan.Steps {
		if step.Action.IsSkip() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("executor: apply: %w", err)
		}
		if err := fn(ctx, step); err != nil {
			result.Failures = append(result.Failures, Failure{
				Ref:    step.Control.Ref,
				Action: step.Action.Kind,
				Error:  err.Error(),
			})
			continue
		}
		result.Applied++
	}
	return result, nil
}

// Recorder is an Executor that keeps the steps it was asked to apply. It is
// used for dry runs and tests.
type Recorder struct {
	mu    sync.Mutex
	steps []model.Step
	fail  map[string]error
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{fail: map[string]error{}}
}

// FailRef makes every step targeting ref fail with err.
func (r *Recorder) FailRef(ref string, err error) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[ref] = err
	return r
}

// Apply implements Executor.
func (r *Recorder) Apply(ctx context.Context, plan model.Plan) (Result, error) {
	return Apply(ctx, plan, func(_ context.Context, step model.Step) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		if err, ok := r.fail[step.Control.Ref]; ok {
			return err
		}
		r.steps = append(r.steps, step)
		return nil
	})
}

// Steps returns a copy of the applied steps.
func (r *Recorder) Steps() []model.Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Step(nil), r.steps...)
}
