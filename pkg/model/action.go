package model

// ActionKind discriminates the Action variants.
type ActionKind string

const (
	ActionSetText      ActionKind = "setText"
	ActionCheck        ActionKind = "check"
	ActionSelectOption ActionKind = "selectOption"
	ActionSkip         ActionKind = "skip"
)

// SkipReason explains why a control was left untouched.
type SkipReason string

const (
	SkipDisabled        SkipReason = "disabled"
	SkipExcluded        SkipReason = "excluded"
	SkipNonDataControl  SkipReason = "non-data-control"
	SkipNoValidOptions  SkipReason = "no-valid-options"
	SkipInspectionError SkipReason = "inspection-error"
)

// Action is the decision taken for one control. Exactly one of the payload
// fields is meaningful, selected by Kind: Value for SetText and SelectOption,
// Checked for Check, Reason for Skip. Use the constructors below rather than
// building the struct by hand.
type Action struct {
	Kind    ActionKind `json:"kind"`
	Value   string     `json:"value,omitempty"`
	Checked bool       `json:"checked,omitempty"`
	Reason  SkipReason `json:"reason,omitempty"`
}

func SetText(value string) Action {
	return Action{Kind: ActionSetText, Value: value}
}

func Check(checked bool) Action {
	return Action{Kind: ActionCheck, Checked: checked}
}

func SelectOption(value string) Action {
	return Action{Kind: ActionSelectOption, Value: value}
}

func Skip(reason SkipReason) Action {
	return Action{Kind: ActionSkip, Reason: reason}
}

// IsSkip reports whether the action leaves the control untouched.
func (a Action) IsSkip() bool {
	return a.Kind == ActionSkip
}
