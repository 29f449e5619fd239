package dictionary

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formfill/pkg/model"
)

// Spec is the document shape accepted by LoadFS and Apply.
type Spec struct {
	Priority []string            `json:"priority" yaml:"priority"`
	Order    []string            `json:"order" yaml:"order"`
	Fields   map[string][]string `json:"fields" yaml:"fields"`
	Exclude  ExcludeSpec         `json:"exclude" yaml:"exclude"`
}

// ExcludeSpec lists block tokens and ancestor tags for the exclusion policy.
type ExcludeSpec struct {
	Tokens    []string `json:"tokens" yaml:"tokens"`
	Ancestors []string `json:"ancestors" yaml:"ancestors"`
}

// Dictionary is an immutable set of classification patterns and exclusion
// rules. The zero value is empty and classifies nothing.
type Dictionary struct {
	fields    map[model.FieldType][]string
	priority  []model.FieldType
	order     []model.FieldType
	tokens    []string
	ancestors []string
}

// Patterns returns the lowercase patterns registered for the field type.
func (d Dictionary) Patterns(t model.FieldType) []string {
	return append([]string(nil), d.fields[t]...)
}

// Priority returns the field types scanned ahead of every other type.
func (d Dictionary) Priority() []model.FieldType {
	return append([]model.FieldType(nil), d.priority...)
}

// Order returns the full scan order: priority types first, then the
// remaining types. Types missing from the documents' order lists follow in
// model.AllFieldTypes order so every field type with patterns is reachable.
func (d Dictionary) Order() []model.FieldType {
	out := make([]model.FieldType, 0, len(model.AllFieldTypes()))
	seen := make(map[model.FieldType]struct{})
	add := func(t model.FieldType) {
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, t := range d.priority {
		add(t)
	}
	for _, t := range d.order {
		add(t)
	}
	for _, t := range model.AllFieldTypes() {
		add(t)
	}
	return out
}

// ExcludeTokens returns the lowercase block tokens.
func (d Dictionary) ExcludeTokens() []string {
	return append([]string(nil), d.tokens...)
}

// ExcludeAncestors returns the lowercase ancestor tags that exclude a control.
func (d Dictionary) ExcludeAncestors() []string {
	return append([]string(nil), d.ancestors...)
}

// Empty reports whether the dictionary holds no patterns at all.
func (d Dictionary) Empty() bool {
	for _, patterns := range d.fields {
		if len(patterns) > 0 {
			return false
		}
	}
	return true
}

// Apply overlays spec onto the dictionary and returns the result. Patterns
// and exclusion entries are appended (deduplicated, lowercased); a non-empty
// Priority or Order replaces the existing list. source is used in errors.
func (d Dictionary) Apply(spec Spec, source string) (Dictionary, error) {
	next := d.clone()

	if len(spec.Priority) > 0 {
		priority, err := parseTypes(spec.Priority, source, "priority")
		if err != nil {
			return Dictionary{}, err
		}
		next.priority = priority
	}
	if len(spec.Order) > 0 {
		order, err := parseTypes(spec.Order, source, "order")
		if err != nil {
			return Dictionary{}, err
		}
		next.order = order
	}

	for key, patterns := range spec.Fields {
		ft, ok := model.ParseFieldType(key)
		if !ok {
			return Dictionary{}, fmt.Errorf("dictionary: %s: unknown field type %q", source, key)
		}
		for idx, raw := range patterns {
			pattern := normalise(raw)
			if pattern == "" {
				return Dictionary{}, fmt.Errorf("dictionary: %s: field %q has an empty pattern at index %d", source, key, idx)
			}
			next.fields[ft] = appendUnique(next.fields[ft], pattern)
		}
	}

	for idx, raw := range spec.Exclude.Tokens {
		token := normalise(raw)
		if token == "" {
			return Dictionary{}, fmt.Errorf("dictionary: %s: empty exclude token at index %d", source, idx)
		}
		next.tokens = appendUnique(next.tokens, token)
	}
	for idx, raw := range spec.Exclude.Ancestors {
		tag := normalise(raw)
		if tag == "" {
			return Dictionary{}, fmt.Errorf("dictionary: %s: empty exclude ancestor at index %d", source, idx)
		}
		next.ancestors = appendUnique(next.ancestors, tag)
	}

	return next, nil
}

func (d Dictionary) clone() Dictionary {
	out := Dictionary{
		fields:    make(map[model.FieldType][]string, len(d.fields)),
		priority:  append([]model.FieldType(nil), d.priority...),
		order:     append([]model.FieldType(nil), d.order...),
		tokens:    append([]string(nil), d.tokens...),
		ancestors: append([]string(nil), d.ancestors...),
	}
	for key, patterns := range d.fields {
		out.fields[key] = append([]string(nil), patterns...)
	}
	return out
}

func parseTypes(raw []string, source, list string) ([]model.FieldType, error) {
	out := make([]model.FieldType, 0, len(raw))
	seen := make(map[model.FieldType]struct{}, len(raw))
	for _, entry := range raw {
		ft, ok := model.ParseFieldType(entry)
		if !ok {
			return nil, fmt.Errorf("dictionary: %s: %s lists unknown field type %q", source, list, entry)
		}
		if _, dup := seen[ft]; dup {
			return nil, fmt.Errorf("dictionary: %s: %s lists %q twice", source, list, entry)
		}
		seen[ft] = struct{}{}
		out = append(out, ft)
	}
	return out, nil
}

func normalise(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
