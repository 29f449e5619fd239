// Package exclusion decides which controls must never be touched: inactive
// controls (disabled or read-only) and controls that belong to search,
// navigation or security surfaces.
package exclusion

import (
	"strings"

	"github.com/goliatone/go-formfill/pkg/dictionary"
	"github.com/goliatone/go-formfill/pkg/model"
)

// Option customises a Policy.
type Option func(*Policy)

// WithDictionary takes block tokens and ancestor tags from dict instead of
// the embedded defaults.
func WithDictionary(dict dictionary.Dictionary) Option {
	return func(p *Policy) {
		p.tokens = dict.ExcludeTokens()
		p.ancestors = dict.ExcludeAncestors()
	}
}

// WithTokens appends block tokens.
func WithTokens(tokens ...string) Option {
	return func(p *Policy) {
		p.tokens = appendLower(p.tokens, tokens)
	}
}

// WithAncestorTags appends ancestor tags that exclude a control.
func WithAncestorTags(tags ...string) Option {
	return func(p *Policy) {
		p.ancestors = appendLower(p.ancestors, tags)
	}
}

// Policy is immutable after construction and safe for concurrent use.
type Policy struct {
	tokens    []string
	ancestors []string
}

// New builds a policy from the embedded dictionary and the options.
func New(options ...Option) *Policy {
	dict := dictionary.Default()
	p := &Policy{
		tokens:    dict.ExcludeTokens(),
		ancestors: dict.ExcludeAncestors(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

// IsInactive reports whether the control is disabled or read-only.
func (p *Policy) IsInactive(control model.Control) bool {
	return control.Disabled || control.ReadOnly
}

// IsExcluded reports whether the control's haystack contains a block token or
// one of its ancestors is an excluded tag.
func (p *Policy) IsExcluded(control model.Control) bool {
	if p == nil {
		return false
	}
	for _, tag := range p.ancestors {
		if control.HasAncestor(tag) {
			return true
		}
	}
	haystack := control.Haystack()
	if haystack == "" {
		return false
	}
	for _, token := range p.tokens {
		if strings.Contains(haystack, token) {
			return true
		}
	}
	return false
}

// Reason returns the skip reason for a control that must not be filled. The
// cheap inactive check runs before the content scan.
func (p *Policy) Reason(control model.Control) (model.SkipReason, bool) {
	if p.IsInactive(control) {
		return model.SkipDisabled, true
	}
	if p.IsExcluded(control) {
		return model.SkipExcluded, true
	}
	return "", false
}

func appendLower(list []string, values []string) []string {
	out := append([]string(nil), list...)
	for _, value := range values {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
