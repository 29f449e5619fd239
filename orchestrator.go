package formfill

import (
	"context"

	"github.com/goliatone/go-formfill/pkg/discovery/htmldoc"
	"github.com/goliatone/go-formfill/pkg/model"
	"github.com/goliatone/go-formfill/pkg/orchestrator"
)

// Request describes one fill run; alias exported via the root package for
// convenience.
type Request = orchestrator.Request

// Result is the outcome of one run.
type Result = orchestrator.Result

// Option customises the orchestrator.
type Option = orchestrator.Option

// DataBag holds caller-supplied values keyed by field type.
type DataBag = model.DataBag

// ErrNoFillableSurface reports a page without a single eligible control.
var ErrNoFillableSurface = orchestrator.ErrNoFillableSurface

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// PlanHTML parses an HTML document and plans its fill without executing it.
// It is the simplest entry point for callers holding markup in memory.
func PlanHTML(ctx context.Context, doc string, data DataBag, options ...Option) (Result, error) {
	return orchestrator.New(options...).Run(ctx, Request{
		Source: htmldoc.StringSource(doc),
		Data:   data,
		DryRun: true,
	})
}

// PlanFile plans the fill of a saved HTML page.
func PlanFile(ctx context.Context, path string, data DataBag, options ...Option) (Result, error) {
	return orchestrator.New(options...).Run(ctx, Request{
		Source: htmldoc.FileSource(path),
		Data:   data,
		DryRun: true,
	})
}
