// Package report renders fill plans for people. Templates are pongo2 files
// loaded from an fs.FS; the embedded set provides a plain text and an HTML
// rendering.
package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formfill/pkg/discovery"
	"github.com/goliatone/go-formfill/pkg/model"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// TemplatesFS returns the bundled report templates.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Format selects a report template.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// ParseFormat resolves a user supplied format name.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatText, "":
		return FormatText, nil
	case FormatHTML:
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("report: unknown format %q", raw)
	}
}

// ContentType is the media type of a rendered report.
func (f Format) ContentType() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

func (f Format) template() string {
	if f == FormatHTML {
		return "plan.html.tpl"
	}
	return "plan.txt.tpl"
}

// Row is one plan step flattened for display.
type Row struct {
	Ref       string `json:"ref"`
	Control   string `json:"control"`
	Label     string `json:"label"`
	FieldType string `json:"fieldType"`
	Action    string `json:"action"`
	Eligible  bool   `json:"eligible"`
}

// View is the template context for a rendered plan.
type View struct {
	URL          string        `json:"url"`
	FallbackPass bool          `json:"fallbackPass"`
	Summary      model.Summary `json:"summary"`
	Rows         []Row         `json:"rows"`
}

// NewView flattens a planned page.
func NewView(page discovery.Page, plan model.Plan) View {
	view := View{
		URL:          page.URL,
		FallbackPass: plan.FallbackPass,
		Summary:      plan.Summary(),
		Rows:         make([]Row, 0, len(plan.Steps)),
	}
	for _, step := range plan.Steps {
		view.Rows = append(view.Rows, Row{
			Ref:       step.Control.Ref,
			Control:   DescribeControl(step.Control),
			Label:     step.Control.Label,
			FieldType: string(step.FieldType),
			Action:    DescribeAction(step.Action),
			Eligible:  step.Eligible,
		})
	}
	return view
}

// DescribeControl renders a short selector-like name such as
// email#mail or select[name=country].
func DescribeControl(control model.Control) string {
	var b strings.Builder
	b.WriteString(string(control.Kind))
	switch {
	case control.ID != "":
		b.WriteString("#" + control.ID)
	case control.Name != "":
		b.WriteString("[name=" + control.Name + "]")
	case control.Placeholder != "":
		b.WriteString("[placeholder=" + control.Placeholder + "]")
	}
	return b.String()
}

// DescribeAction renders an action as a short phrase.
func DescribeAction(action model.Action) string {
	switch action.Kind {
	case model.ActionSetText:
		return "set " + strconv.Quote(action.Value)
	case model.ActionCheck:
		if action.Checked {
			return "check"
		}
		return "uncheck"
	case model.ActionSelectOption:
		return "select " + strconv.Quote(action.Value)
	case model.ActionSkip:
		return "skip (" + string(action.Reason) + ")"
	default:
		return string(action.Kind)
	}
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFS replaces the embedded templates. The filesystem must provide
// plan.txt.tpl and plan.html.tpl.
func WithFS(fsys fs.FS) Option {
	return func(r *Renderer) {
		if fsys != nil {
			r.fsys = fsys
		}
	}
}

// Renderer executes report templates. Parsed templates are cached; a
// Renderer is safe for concurrent use.
type Renderer struct {
	fsys fs.FS

	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

// New builds a Renderer over the embedded templates unless WithFS is given.
func New(options ...Option) *Renderer {
	r := &Renderer{fsys: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	r.set = pongo2.NewSet("formfill-report", pongo2.NewFSLoader(r.fsys))
	r.templates = make(map[string]*pongo2.Template)
	registerFilters()
	return r
}

// Render writes view to w using the template for format.
func (r *Renderer) Render(w io.Writer, format Format, view View) error {
	if r == nil || r.set == nil {
		return errors.New("report: renderer is nil")
	}
	if w == nil {
		return errors.New("report: writer is nil")
	}
	tmpl, err := r.template(format.template())
	if err != nil {
		return err
	}
	ctx, err := toContext(view)
	if err != nil {
		return fmt.Errorf("report: convert view: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return fmt.Errorf("report: execute %s: %w", format.template(), err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	return nil
}

// RenderString is Render into a string.
func (r *Renderer) RenderString(format Format, view View) (string, error) {
	var b strings.Builder
	if err := r.Render(&b, format, view); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	if tmpl, ok := r.templates[name]; ok {
		r.mu.RUnlock()
		return tmpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("report: load template %q: %w", name, err)
	}
	r.templates[name] = tmpl
	return tmpl, nil
}

// toContext round-trips the view through JSON so templates address fields
// by their JSON names.
func toContext(view View) (pongo2.Context, error) {
	raw, err := json.Marshal(view)
	if err != nil {
		return nil, err
	}
	out := pongo2.Context{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var registerOnce sync.Once

func registerFilters() {
	registerOnce.Do(func() {
		if !pongo2.FilterExists("trim") {
			_ = pongo2.RegisterFilter("trim", filterTrim)
		}
	})
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}
