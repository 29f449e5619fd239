package model

import "strings"

// ControlKind is the normalised kind of a form control.
type ControlKind string

const (
	KindText     ControlKind = "text"
	KindEmail    ControlKind = "email"
	KindTel      ControlKind = "tel"
	KindDate     ControlKind = "date"
	KindNumber   ControlKind = "number"
	KindRange    ControlKind = "range"
	KindCheckbox ControlKind = "checkbox"
	KindRadio    ControlKind = "radio"
	KindSelect   ControlKind = "select"
	KindTextarea ControlKind = "textarea"
	KindHidden   ControlKind = "hidden"
	KindSubmit   ControlKind = "submit"
	KindButton   ControlKind = "button"
	KindReset    ControlKind = "reset"
	KindPassword ControlKind = "password"
	KindOther    ControlKind = "other"
)

// inputKinds maps recognised <input type> values onto control kinds. Types not
// listed here behave like text inputs in browsers, so ParseKind treats them
// the same way.
var inputKinds = map[string]ControlKind{
	"text":     KindText,
	"email":    KindEmail,
	"tel":      KindTel,
	"date":     KindDate,
	"number":   KindNumber,
	"range":    KindRange,
	"checkbox": KindCheckbox,
	"radio":    KindRadio,
	"hidden":   KindHidden,
	"submit":   KindSubmit,
	"button":   KindButton,
	"reset":    KindReset,
	"password": KindPassword,
	"image":    KindSubmit,
	"file":     KindOther,
	"color":    KindOther,
}

// ParseKind derives a ControlKind from an element tag name and its type
// attribute.
func ParseKind(tag, typeAttr string) ControlKind {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "select":
		return KindSelect
	case "textarea":
		return KindTextarea
	case "button":
		return KindButton
	case "input":
		kind, ok := inputKinds[strings.ToLower(strings.TrimSpace(typeAttr))]
		if !ok {
			return KindText
		}
		return kind
	default:
		return KindOther
	}
}

// IsNonData reports whether the kind never carries user data.
func (k ControlKind) IsNonData() bool {
	switch k {
	case KindHidden, KindSubmit, KindButton, KindReset:
		return true
	default:
		return false
	}
}

// Option is a single <option> of a select control.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Control is a read-only snapshot of one form control. Ref is an opaque handle
// assigned by the discovery adapter so an executor can locate the element
// again; it plays no part in classification.
type Control struct {
	Ref         string      `json:"ref,omitempty"`
	ID          string      `json:"id,omitempty"`
	Name        string      `json:"name,omitempty"`
	Placeholder string      `json:"placeholder,omitempty"`
	Label       string      `json:"label,omitempty"`
	Classes     string      `json:"classes,omitempty"`
	Kind        ControlKind `json:"kind"`
	Disabled    bool        `json:"disabled,omitempty"`
	ReadOnly    bool        `json:"readOnly,omitempty"`
	Ancestors   []string    `json:"ancestors,omitempty"`
	InForm      bool        `json:"inForm,omitempty"`
	Options     []Option    `json:"options,omitempty"`
}

// Haystack returns the lowercase text used for pattern matching: id, name,
// placeholder, label and classes joined by single spaces, with runs of
// whitespace collapsed.
func (c Control) Haystack() string {
	joined := strings.Join([]string{c.ID, c.Name, c.Placeholder, c.Label, c.Classes}, " ")
	return strings.Join(strings.Fields(strings.ToLower(joined)), " ")
}

// HasAncestor reports whether any ancestor tag equals tag (case-insensitive).
func (c Control) HasAncestor(tag string) bool {
	for _, ancestor := range c.Ancestors {
		if strings.EqualFold(ancestor, tag) {
			return true
		}
	}
	return false
}
