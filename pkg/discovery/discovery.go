// Package discovery defines the boundary between page traversal and the
// planning engine. Adapters (static HTML, live browser) implement Source and
// hand the planner a Page snapshot in document order.
package discovery

import (
	"context"
	"errors"

	"github.com/goliatone/go-formfill/pkg/model"
)

// ErrNoControls is returned by adapters that found no form controls at all.
var ErrNoControls = errors.New("discovery: no form controls found")

// Page is a snapshot of every form control on a page, in document order.
type Page struct {
	URL       string          `json:"url,omitempty"`
	FormCount int             `json:"formCount"`
	Controls  []model.Control `json:"controls"`
}

// InFormControls returns the controls that have a <form> ancestor, in order.
func (p Page) InFormControls() []model.Control {
	out := make([]model.Control, 0, len(p.Controls))
	for _, control := range p.Controls {
		if control.InForm {
			out = append(out, control)
		}
	}
	return out
}

// Source discovers the controls of one page.
type Source interface {
	Discover(ctx context.Context) (Page, error)
}

// SourceFunc adapts a function into a Source.
type SourceFunc func(ctx context.Context) (Page, error)

// Discover calls the underlying function.
func (fn SourceFunc) Discover(ctx context.Context) (Page, error) {
	return fn(ctx)
}

// Static returns a Source that always yields page.
func Static(page Page) Source {
	return SourceFunc(func(context.Context) (Page, error) {
		return page, nil
	})
}
