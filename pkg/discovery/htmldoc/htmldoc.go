// Package htmldoc discovers form controls in a static HTML document.
package htmldoc

import (
	"bytes"
	"context"
	"fmt"
	stdhtml "html"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formfill/pkg/discovery"
	"github.com/goliatone/go-formfill/pkg/model"
)

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy
)

// Option customises parsing.
type Option func(*parser)

// WithURL records the document URL on the resulting page.
func WithURL(url string) Option {
	return func(p *parser) {
		p.url = url
	}
}

type parser struct {
	url string

	labelsFor map[string]string
	formIDs   map[string]struct{}
	formCount int
	controls  []model.Control
}

// Parse reads an HTML document and returns every input, textarea and select
// in document order. Ref is the zero-based document-order index.
func Parse(r io.Reader, options ...Option) (discovery.Page, error) {
	if r == nil {
		return discovery.Page{}, fmt.Errorf("htmldoc: parse: nil reader")
	}
	root, err := html.Parse(r)
	if err != nil {
		return discovery.Page{}, fmt.Errorf("htmldoc: parse: %w", err)
	}

	p := &parser{
		labelsFor: map[string]string{},
		formIDs:   map[string]struct{}{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}

	p.index(root)
	p.walk(root, nil, false)

	return discovery.Page{
		URL:       p.url,
		FormCount: p.formCount,
		Controls:  p.controls,
	}, nil
}

// ParseString is Parse over an in-memory document.
func ParseString(doc string, options ...Option) (discovery.Page, error) {
	return Parse(strings.NewReader(doc), options...)
}

// index collects label[for] text and form ids ahead of the main walk so
// labels and form-associated controls resolve regardless of order.
func (p *parser) index(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "label":
			if target := attr(n, "for"); target != "" {
				if _, exists := p.labelsFor[target]; !exists {
					p.labelsFor[target] = labelText(n)
				}
			}
		case "form":
			p.formCount++
			if id := attr(n, "id"); id != "" {
				p.formIDs[id] = struct{}{}
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		p.index(child)
	}
}

func (p *parser) walk(n *html.Node, ancestors []*html.Node, inForm bool) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "input", "textarea", "select":
			p.controls = append(p.controls, p.control(n, ancestors, inForm))
		case "form":
			inForm = true
		}
		ancestors = append(ancestors, n)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		p.walk(child, ancestors, inForm)
	}
}

func (p *parser) control(n *html.Node, ancestors []*html.Node, inForm bool) model.Control {
	control := model.Control{
		Ref:         strconv.Itoa(len(p.controls)),
		ID:          attr(n, "id"),
		Name:        attr(n, "name"),
		Placeholder: attr(n, "placeholder"),
		Classes:     strings.Join(strings.Fields(attr(n, "class")), " "),
		Kind:        model.ParseKind(n.Data, attr(n, "type")),
		Disabled:    hasAttr(n, "disabled") || disabledFieldset(ancestors),
		ReadOnly:    hasAttr(n, "readonly"),
		InForm:      inForm,
	}
	if owner := attr(n, "form"); owner != "" {
		if _, ok := p.formIDs[owner]; ok {
			control.InForm = true
		}
	}

	control.Label = p.labelsFor[control.ID]
	if control.Label == "" {
		for idx := len(ancestors) - 1; idx >= 0; idx-- {
			if ancestors[idx].Data == "label" {
				control.Label = labelText(ancestors[idx])
				break
			}
		}
	}

	seen := map[string]struct{}{}
	for _, ancestor := range ancestors {
		if _, ok := seen[ancestor.Data]; ok {
			continue
		}
		seen[ancestor.Data] = struct{}{}
		control.Ancestors = append(control.Ancestors, ancestor.Data)
	}

	if control.Kind == model.KindSelect {
		control.Options = selectOptions(n, false)
	}
	return control
}

// disabledFieldset reports whether the control sits inside a disabled
// fieldset, outside that fieldset's first legend.
func disabledFieldset(ancestors []*html.Node) bool {
	for idx, ancestor := range ancestors {
		if ancestor.Data != "fieldset" || !hasAttr(ancestor, "disabled") {
			continue
		}
		if idx+1 < len(ancestors) && ancestors[idx+1] == firstLegend(ancestor) {
			continue
		}
		return true
	}
	return false
}

func firstLegend(fieldset *html.Node) *html.Node {
	for child := fieldset.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == "legend" {
			return child
		}
	}
	return nil
}

func selectOptions(n *html.Node, groupDisabled bool) []model.Option {
	var out []model.Option
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}
		switch child.Data {
		case "optgroup":
			out = append(out, selectOptions(child, groupDisabled || hasAttr(child, "disabled"))...)
		case "option":
			text := strings.Join(strings.Fields(textContent(child)), " ")
			value, ok := attrOK(child, "value")
			if !ok {
				value = text
			}
			out = append(out, model.Option{
				Value:    value,
				Label:    text,
				Disabled: groupDisabled || hasAttr(child, "disabled"),
			})
		}
	}
	return out
}

// labelText renders the label's markup without nested controls, strips every
// tag through the strict policy and unescapes the remaining text.
func labelText(label *html.Node) string {
	var buf bytes.Buffer
	for child := label.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			switch child.Data {
			case "input", "select", "textarea", "button":
				continue
			}
		}
		if err := html.Render(&buf, child); err != nil {
			return ""
		}
	}
	return SanitizeLabel(buf.String())
}

// SanitizeLabel reduces label markup to plain text: tags are stripped by the
// strict policy, entities decoded and whitespace collapsed.
func SanitizeLabel(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}
	cleaned := labelSanitizer().Sanitize(markup)
	return strings.Join(strings.Fields(stdhtml.UnescapeString(cleaned)), " ")
}

func labelSanitizer() *bluemonday.Policy {
	labelPolicyOnce.Do(func() {
		labelPolicy = bluemonday.StrictPolicy()
	})
	return labelPolicy
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(n)
	return sb.String()
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	val, _ := attrOK(n, key)
	return strings.TrimSpace(val)
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := attrOK(n, key)
	return ok
}

// Source discovers controls from a document opened on every call.
type Source struct {
	open    func() (io.ReadCloser, error)
	options []Option
}

// NewSource wraps an opener; each Discover call parses a fresh document.
func NewSource(open func() (io.ReadCloser, error), options ...Option) *Source {
	return &Source{open: open, options: options}
}

// FileSource parses the HTML file at path.
func FileSource(path string, options ...Option) *Source {
	opts := append([]Option{WithURL("file://" + path)}, options...)
	return NewSource(func() (io.ReadCloser, error) {
		return os.Open(path)
	}, opts...)
}

// StringSource parses an in-memory document.
func StringSource(doc string, options ...Option) *Source {
	return NewSource(func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(doc)), nil
	}, options...)
}

// Discover implements discovery.Source. A document without any control
// yields discovery.ErrNoControls alongside the (empty) page.
func (s *Source) Discover(ctx context.Context) (discovery.Page, error) {
	if s == nil || s.open == nil {
		return discovery.Page{}, fmt.Errorf("htmldoc: discover: source not configured")
	}
	if err := ctx.Err(); err != nil {
		return discovery.Page{}, err
	}
	rc, err := s.open()
	if err != nil {
		return discovery.Page{}, fmt.Errorf("htmldoc: open: %w", err)
	}
	defer rc.Close()

	page, err := Parse(rc, s.options...)
	if err != nil {
		return discovery.Page{}, err
	}
	if len(page.Controls) == 0 {
		return page, discovery.ErrNoControls
	}
	return page, nil
}

var _ discovery.Source = (*Source)(nil)
