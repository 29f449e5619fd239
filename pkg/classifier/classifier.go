package classifier

import (
	"github.com/goliatone/go-formfill/pkg/dictionary"
	"github.com/goliatone/go-formfill/pkg/model"
)

// Source describes how a classification was reached.
type Source string

const (
	SourcePattern Source = "pattern"
	SourceKind    Source = "kind"
	SourceNone    Source = "none"
)

// Match explains a classification result.
type Match struct {
	FieldType model.FieldType `json:"fieldType"`
	Pattern   string          `json:"pattern,omitempty"`
	Source    Source          `json:"source"`
	Haystack  string          `json:"haystack"`
}

type extraRule struct {
	fieldType model.FieldType
	priority  int
	patterns  []string
}

// Option customises a Classifier.
type Option func(*config)

type config struct {
	dictionary   *dictionary.Dictionary
	extra        []extraRule
	kindFallback bool
}

// WithDictionary replaces the embedded default dictionary.
func WithDictionary(dict dictionary.Dictionary) Option {
	return func(cfg *config) {
		cfg.dictionary = &dict
	}
}

// WithRule registers an additional rule after the dictionary rules. Use
// PriorityTier or a higher value to have it scanned ahead of the defaults.
func WithRule(fieldType model.FieldType, priority int, patterns ...string) Option {
	return func(cfg *config) {
		cfg.extra = append(cfg.extra, extraRule{
			fieldType: fieldType,
			priority:  priority,
			patterns:  append([]string(nil), patterns...),
		})
	}
}

// WithoutKindFallback disables classification by declared control kind.
func WithoutKindFallback() Option {
	return func(cfg *config) {
		cfg.kindFallback = false
	}
}

// Classifier is immutable after construction and safe for concurrent use.
type Classifier struct {
	registry     *Registry
	kindFallback bool
}

// New builds a classifier from the configured dictionary.
func New(options ...Option) *Classifier {
	cfg := config{kindFallback: true}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	dict := dictionary.Default()
	if cfg.dictionary != nil {
		dict = *cfg.dictionary
	}

	reg := NewRegistry()
	priority := make(map[model.FieldType]struct{})
	for _, ft := range dict.Priority() {
		priority[ft] = struct{}{}
	}
	for _, ft := range dict.Order() {
		tier := DefaultTier
		if _, ok := priority[ft]; ok {
			tier = PriorityTier
		}
		reg.Register(ft, tier, dict.Patterns(ft)...)
	}
	for _, extra := range cfg.extra {
		reg.Register(extra.fieldType, extra.priority, extra.patterns...)
	}

	return &Classifier{
		registry:     reg,
		kindFallback: cfg.kindFallback,
	}
}

// Classify returns the field type for the control, or
// model.FieldTypeUnclassified when nothing matches. It never fails.
func (c *Classifier) Classify(control model.Control) model.FieldType {
	return c.Explain(control).FieldType
}

// Explain classifies the control and reports which pattern or kind decided.
func (c *Classifier) Explain(control model.Control) Match {
	haystack := control.Haystack()
	match := Match{
		FieldType: model.FieldTypeUnclassified,
		Source:    SourceNone,
		Haystack:  haystack,
	}
	if c == nil {
		return match
	}

	if ft, pattern, ok := c.registry.Match(haystack); ok {
		match.FieldType = ft
		match.Pattern = pattern
		match.Source = SourcePattern
		return match
	}

	if !c.kindFallback {
		return match
	}
	if ft := kindFallback(control.Kind); ft.Classified() {
		match.FieldType = ft
		match.Source = SourceKind
	}
	return match
}

// Order reports the scan order of field types.
func (c *Classifier) Order() []model.FieldType {
	if c == nil {
		return nil
	}
	return c.registry.Order()
}

func kindFallback(kind model.ControlKind) model.FieldType {
	switch kind {
	case model.KindEmail:
		return model.FieldTypeEmail
	case model.KindTel:
		return model.FieldTypePhone
	case model.KindDate:
		return model.FieldTypeDateOfBirth
	default:
		return model.FieldTypeUnclassified
	}
}
