package classifier

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/goliatone/go-formfill/pkg/model"
)

// Cached memoises Explain results keyed by haystack and control kind, which
// together fully determine the outcome. Useful when the same page is scanned
// repeatedly. Safe for concurrent use.
type Cached struct {
	inner *Classifier
	cache *lru.Cache[string, Match]
}

// NewCached wraps inner with an LRU of the given size.
func NewCached(inner *Classifier, size int) (*Cached, error) {
	if inner == nil {
		return nil, fmt.Errorf("classifier: cached: inner classifier is required")
	}
	cache, err := lru.New[string, Match](size)
	if err != nil {
		return nil, fmt.Errorf("classifier: cached: %w", err)
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// Classify implements the same contract as Classifier.Classify.
func (c *Cached) Classify(control model.Control) model.FieldType {
	return c.Explain(control).FieldType
}

// Explain returns the memoised match, computing it on a miss.
func (c *Cached) Explain(control model.Control) Match {
	key := string(control.Kind) + "\x00" + control.Haystack()
	if match, ok := c.cache.Get(key); ok {
		return match
	}
	match := c.inner.Explain(control)
	c.cache.Add(key, match)
	return match
}

// Len reports the number of cached entries.
func (c *Cached) Len() int {
	return c.cache.Len()
}
