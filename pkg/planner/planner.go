package planner

import (
	"math/rand/v2"

	"github.com/goliatone/go-formfill/pkg/classifier"
	"github.com/goliatone/go-formfill/pkg/discovery"
	"github.com/goliatone/go-formfill/pkg/exclusion"
	"github.com/goliatone/go-formfill/pkg/model"
	"github.com/goliatone/go-formfill/pkg/synth"
)

// FieldClassifier resolves the semantic type of a control.
type FieldClassifier interface {
	Classify(control model.Control) model.FieldType
}

// ExclusionPolicy reports why a control must be left untouched.
type ExclusionPolicy interface {
	Reason(control model.Control) (model.SkipReason, bool)
}

// ValueSynthesizer produces a fallback value for a control.
type ValueSynthesizer interface {
	Synthesize(control model.Control) string
}

// Option customises a Planner.
type Option func(*Planner)

// WithClassifier replaces the default classifier.
func WithClassifier(c FieldClassifier) Option {
	return func(p *Planner) {
		if c != nil {
			p.classifier = c
		}
	}
}

// WithPolicy replaces the default exclusion policy.
func WithPolicy(policy ExclusionPolicy) Option {
	return func(p *Planner) {
		if policy != nil {
			p.policy = policy
		}
	}
}

// WithSynthesizer replaces the default synthetic value generator.
func WithSynthesizer(s ValueSynthesizer) Option {
	return func(p *Planner) {
		if s != nil {
			p.synth = s
		}
	}
}

// WithRand sets the random source used for checkbox and option choices and,
// unless WithSynthesizer is also given, for synthetic values.
func WithRand(rng *rand.Rand) Option {
	return func(p *Planner) {
		if rng != nil {
			p.rng = rng
		}
	}
}

// Planner builds fill plans. It owns a random source and therefore must not
// be shared between goroutines; the classifier and policy it holds may be.
type Planner struct {
	classifier FieldClassifier
	policy     ExclusionPolicy
	synth      ValueSynthesizer
	rng        *rand.Rand
}

// New constructs a Planner, defaulting every collaborator to the built-in
// implementation backed by the embedded dictionary.
func New(options ...Option) *Planner {
	p := &Planner{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	if p.classifier == nil {
		p.classifier = classifier.New()
	}
	if p.policy == nil {
		p.policy = exclusion.New()
	}
	gen := synth.New(p.rng)
	if p.rng == nil {
		p.rng = gen.Rand()
	}
	if p.synth == nil {
		p.synth = gen
	}
	return p
}

// Plan decides an action for every control, in order.
func (p *Planner) Plan(controls []model.Control, data model.DataBag) model.Plan {
	plan := model.Plan{Steps: make([]model.Step, 0, len(controls))}
	for _, control := range controls {
		plan.Steps = append(plan.Steps, p.planControl(control, data))
	}
	plan.Recount()
	return plan
}

// PlanPage plans the controls inside forms. When the page has no in-form
// controls at all, every control on the page is planned instead and the plan
// is flagged as a fallback pass.
func (p *Planner) PlanPage(page discovery.Page, data model.DataBag) model.Plan {
	inForm := page.InFormControls()
	if len(inForm) > 0 {
		return p.Plan(inForm, data)
	}
	plan := p.Plan(page.Controls, data)
	plan.FallbackPass = true
	return plan
}

// planControl is the per-control boundary: a panic while inspecting the
// control skips it rather than aborting the plan.
func (p *Planner) planControl(control model.Control, data model.DataBag) (step model.Step) {
	defer func() {
		if recovered := recover(); recovered != nil {
			step = model.Step{Control: control, Action: model.Skip(model.SkipInspectionError)}
		}
	}()
	return p.decide(control, data)
}

func (p *Planner) decide(control model.Control, data model.DataBag) model.Step {
	step := model.Step{Control: control}

	if reason, skip := p.policy.Reason(control); skip {
		step.Action = model.Skip(reason)
		return step
	}
	if control.Kind.IsNonData() {
		step.Action = model.Skip(model.SkipNonDataControl)
		return step
	}

	step.Eligible = true
	switch control.Kind {
	case model.KindCheckbox:
		step.Action = model.Check(p.rng.IntN(2) == 1)
	case model.KindRadio:
		step.Action = model.Check(true)
	case model.KindSelect:
		step.Action = p.selectAction(control.Options)
	default:
		fieldType := p.classifier.Classify(control)
		step.FieldType = fieldType
		if value, ok := data.Lookup(fieldType); ok {
			step.Action = model.SetText(value)
		} else {
			step.Action = model.SetText(p.synth.Synthesize(control))
		}
	}
	return step
}

func (p *Planner) selectAction(options []model.Option) model.Action {
	valid := make([]string, 0, len(options))
	for _, option := range options {
		if option.Value == "" || option.Disabled {
			continue
		}
		valid = append(valid, option.Value)
	}
	if len(valid) == 0 {
		return model.Skip(model.SkipNoValidOptions)
	}
	return model.SelectOption(valid[p.rng.IntN(len(valid))])
}
