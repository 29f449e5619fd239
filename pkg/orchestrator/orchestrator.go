package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formfill/pkg/discovery"
	"github.com/goliatone/go-formfill/pkg/executor"
	"github.com/goliatone/go-formfill/pkg/model"
	"github.com/goliatone/go-formfill/pkg/planner"
)

// ErrNoFillableSurface reports a page without a single eligible control. It is
// an outcome, not a failure: Run returns it through Result.Outcome.
var ErrNoFillableSurface = errors.New("orchestrator: no fillable surface")

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithPlanner injects a preconfigured planner.
func WithPlanner(p *planner.Planner) Option {
	return func(o *Orchestrator) {
		o.planner = p
	}
}

// WithPlannerOptions configures the default planner. Ignored when WithPlanner
// is also supplied.
func WithPlannerOptions(options ...planner.Option) Option {
	return func(o *Orchestrator) {
		o.plannerOptions = append(o.plannerOptions, options...)
	}
}

// WithExecutor sets the executor used when a request is not a dry run.
func WithExecutor(exec executor.Executor) Option {
	return func(o *Orchestrator) {
		o.executor = exec
	}
}

// WithPageTransformer registers a Transformer that can rewrite the
// discovered page before planning.
func WithPageTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithPlanDecorators registers decorators that run against the plan after
// planning and before execution.
func WithPlanDecorators(decorators ...Decorator) Option {
	return func(o *Orchestrator) {
		if len(decorators) == 0 {
			return
		}
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates the full pipeline from page discovery to an
// applied fill plan. It applies sensible defaults (embedded dictionary,
// time-seeded random source) while remaining open to dependency injection.
type Orchestrator struct {
	mu             sync.Mutex
	planner        *planner.Planner
	plannerOptions []planner.Option
	executor       executor.Executor
	transformer    Transformer
	decorators     []Decorator
	logger         *zap.SugaredLogger
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{logger: zap.NewNop().Sugar()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.planner == nil {
		o.planner = planner.New(o.plannerOptions...)
	}
	return o
}

// Request describes one fill run.
type Request struct {
	// Source discovers the page. Optional when Page is supplied.
	Source discovery.Source

	// Page bypasses discovery when the caller already holds a snapshot.
	Page *discovery.Page

	// Data holds caller-supplied values keyed by field type.
	Data model.DataBag

	// DryRun plans without executing, even when an executor is configured.
	DryRun bool
}

// Result is the outcome of one run.
type Result struct {
	Page    discovery.Page   `json:"page"`
	Plan    model.Plan       `json:"plan"`
	Summary model.Summary    `json:"summary"`
	Applied *executor.Result `json:"applied,omitempty"`
}

// Outcome returns ErrNoFillableSurface when nothing on the page was eligible
// and nil otherwise.
func (r Result) Outcome() error {
	if r.Plan.Empty() {
		return ErrNoFillableSurface
	}
	return nil
}

// Run executes discovery, planning and, unless the request is a dry run or no
// executor is configured, execution.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	page, err := o.resolvePage(ctx, req)
	if err != nil {
		return Result{}, err
	}
	if err := o.applyTransformer(ctx, &page); err != nil {
		return Result{}, err
	}

	plan := o.plan(page, req.Data)
	if err := o.applyDecorators(ctx, &plan); err != nil {
		return Result{}, err
	}

	result := Result{Page: page, Plan: plan, Summary: plan.Summary()}
	o.logger.Infow("plan ready",
		"url", page.URL,
		"controls", len(page.Controls),
		"eligible", plan.TotalEligible,
		"filled", plan.Filled,
		"skipped", plan.Skipped,
		"fallback_pass", plan.FallbackPass,
	)

	if plan.Empty() {
		o.logger.Warnw("no fillable surface", "url", page.URL)
		return result, nil
	}
	if req.DryRun || o.executor == nil {
		return result, nil
	}

	applied, err := o.executor.Apply(ctx, plan)
	if err != nil {
		return result, fmt.Errorf("orchestrator: execute plan: %w", err)
	}
	result.Applied = &applied
	for _, failure := range applied.Failures {
		o.logger.Warnw("step failed", "ref", failure.Ref, "action", failure.Action, "error", failure.Error)
	}
	o.logger.Infow("plan applied", "applied", applied.Applied, "failed", applied.Failed())
	return result, nil
}

func (o *Orchestrator) resolvePage(ctx context.Context, req Request) (discovery.Page, error) {
	if req.Page != nil {
		return *req.Page, nil
	}
	if req.Source == nil {
		return discovery.Page{}, errors.New("orchestrator: source or page is required")
	}
	page, err := req.Source.Discover(ctx)
	if errors.Is(err, discovery.ErrNoControls) {
		o.logger.Debugw("page has no controls", "url", page.URL)
		return page, nil
	}
	if err != nil {
		return discovery.Page{}, fmt.Errorf("orchestrator: discover page: %w", err)
	}
	return page, nil
}

// plan serialises access to the planner, which owns a random source.
func (o *Orchestrator) plan(page discovery.Page, data model.DataBag) model.Plan {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.planner.PlanPage(page, data)
}

func (o *Orchestrator) applyTransformer(ctx context.Context, page *discovery.Page) error {
	if o.transformer == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, page); err != nil {
		return fmt.Errorf("orchestrator: transform page: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDecorators(ctx context.Context, plan *model.Plan) error {
	if len(o.decorators) == 0 {
		return nil
	}
	for _, decorator := range o.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(ctx, plan); err != nil {
			return fmt.Errorf("orchestrator: decorate plan: %w", err)
		}
	}
	plan.Recount()
	return nil
}
