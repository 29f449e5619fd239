package model

// Step pairs a control with the action decided for it. FieldType is the
// classification result for text-like controls and empty otherwise. Eligible
// marks controls that passed the disabled, exclusion and non-data checks.
type Step struct {
	Control   Control   `json:"control"`
	FieldType FieldType `json:"fieldType,omitempty"`
	Action    Action    `json:"action"`
	Eligible  bool      `json:"eligible"`
}

// Plan is the ordered fill plan for one page. Steps mirror the input controls
// one to one and in the same order. Skipped counts every Skip step, including
// controls that were never eligible.
type Plan struct {
	Steps         []Step `json:"steps"`
	TotalEligible int    `json:"totalEligible"`
	Filled        int    `json:"filled"`
	Skipped       int    `json:"skipped"`
	FallbackPass  bool   `json:"fallbackPass,omitempty"`
}

// Summary is the caller-facing outcome of a plan.
type Summary struct {
	Success       bool `json:"success"`
	FilledCount   int  `json:"filledCount"`
	TotalEligible int  `json:"totalEligible"`
	SkippedCount  int  `json:"skippedCount"`
}

// Summary derives the caller-facing counters.
func (p Plan) Summary() Summary {
	return Summary{
		Success:       p.Filled > 0,
		FilledCount:   p.Filled,
		TotalEligible: p.TotalEligible,
		SkippedCount:  p.Skipped,
	}
}

// Recount derives TotalEligible, Filled and Skipped from the steps. Callers
// that edit steps after planning use it to keep the counters consistent.
func (p *Plan) Recount() {
	p.TotalEligible, p.Filled, p.Skipped = 0, 0, 0
	for _, step := range p.Steps {
		if step.Eligible {
			p.TotalEligible++
		}
		if step.Action.IsSkip() {
			p.Skipped++
		} else {
			p.Filled++
		}
	}
}

// Empty reports whether the plan has no eligible controls.
func (p Plan) Empty() bool {
	return p.TotalEligible == 0
}
