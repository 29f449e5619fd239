package classifier

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formfill/pkg/model"
)

// Priority tiers used when rules are registered from a dictionary. Priority
// types sit in PriorityTier; every other type sits in DefaultTier. Within a
// tier, registration order decides.
const (
	PriorityTier = 100
	DefaultTier  = 0
)

type rule struct {
	fieldType model.FieldType
	priority  int
	patterns  []string
	order     int
}

// Registry holds pattern rules ordered for first-match-wins scanning. Higher
// priority wins; ties fall back to registration order. An empty registry never
// matches.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a rule mapping any of the patterns to fieldType. Patterns are
// lowercased and blank entries dropped; a rule without usable patterns is
// ignored, as is the unclassified field type.
func (r *Registry) Register(fieldType model.FieldType, priority int, patterns ...string) {
	if r == nil || !fieldType.Classified() {
		return
	}
	cleaned := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		trimmed := strings.ToLower(strings.TrimSpace(pattern))
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		fieldType: fieldType,
		priority:  priority,
		patterns:  cleaned,
		order:     len(r.rules),
	})
	sort.SliceStable(r.rules, func(i, j int) bool {
		if r.rules[i].priority == r.rules[j].priority {
			return r.rules[i].order < r.rules[j].order
		}
		return r.rules[i].priority > r.rules[j].priority
	})
}

// Match scans the rules in order and returns the first rule with a pattern
// contained in haystack, along with that pattern. haystack must already be
// lowercase.
func (r *Registry) Match(haystack string) (model.FieldType, string, bool) {
	if r == nil || haystack == "" {
		return model.FieldTypeUnclassified, "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.rules {
		for _, pattern := range entry.patterns {
			if strings.Contains(haystack, pattern) {
				return entry.fieldType, pattern, true
			}
		}
	}
	return model.FieldTypeUnclassified, "", false
}

// Order returns the field types in scan order. A type registered by several
// rules appears once, at its first position.
func (r *Registry) Order() []model.FieldType {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.FieldType, 0, len(r.rules))
	seen := make(map[model.FieldType]struct{}, len(r.rules))
	for _, entry := range r.rules {
		if _, ok := seen[entry.fieldType]; ok {
			continue
		}
		seen[entry.fieldType] = struct{}{}
		out = append(out, entry.fieldType)
	}
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}
