// Package browser drives a Chrome instance through the DevTools protocol to
// discover form controls on a live page and to carry out fill plans.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/goliatone/go-formfill/pkg/discovery"
	"github.com/goliatone/go-formfill/pkg/discovery/htmldoc"
	"github.com/goliatone/go-formfill/pkg/executor"
	"github.com/goliatone/go-formfill/pkg/model"
)

// DefaultNavigationTimeout bounds page loads.
const DefaultNavigationTimeout = 30 * time.Second

// ErrClosed is returned by a session used after Close.
var ErrClosed = errors.New("browser: session closed")

// Option customises Open.
type Option func(*config)

type config struct {
	controlURL string
	headless   bool
	timeout    time.Duration
	logger     *zap.SugaredLogger
}

// WithControlURL attaches to an already running browser instead of launching
// one.
func WithControlURL(url string) Option {
	return func(c *config) {
		c.controlURL = strings.TrimSpace(url)
	}
}

// WithHeadless toggles headless mode for launched browsers.
func WithHeadless(headless bool) Option {
	return func(c *config) {
		c.headless = headless
	}
}

// WithNavigationTimeout overrides DefaultNavigationTimeout.
func WithNavigationTimeout(timeout time.Duration) Option {
	return func(c *config) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Session owns one browser tab. It implements discovery.Source and
// executor.Executor for that tab.
type Session struct {
	mu      sync.Mutex
	cfg     config
	launch  *launcher.Launcher
	browser *rod.Browser
	page    *rod.Page
	closed  bool
}

// Open connects to (or launches) a browser and opens a blank tab.
func Open(ctx context.Context, options ...Option) (*Session, error) {
	cfg := config{
		headless: true,
		timeout:  DefaultNavigationTimeout,
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	s := &Session{cfg: cfg}
	controlURL := cfg.controlURL
	if controlURL == "" {
		s.launch = launcher.New().Headless(cfg.headless)
		url, err := s.launch.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch chrome: %w", err)
		}
		controlURL = url
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		s.kill()
		return nil, fmt.Errorf("browser: connect to chrome: %w", err)
	}
	s.browser = b

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: open tab: %w", err)
	}
	s.page = page
	cfg.logger.Debugw("browser session opened", "control_url", controlURL, "launched", s.launch != nil)
	return s, nil
}

// Navigate loads url in the session tab and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	page, err := s.activePage()
	if err != nil {
		return err
	}
	scoped := page.Context(ctx).Timeout(s.cfg.timeout)
	if err := scoped.Navigate(url); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if err := scoped.WaitLoad(); err != nil {
		return fmt.Errorf("browser: wait load %s: %w", url, err)
	}
	s.cfg.logger.Infow("page loaded", "url", url)
	return nil
}

// Discover snapshots every control on the current page and tags each element
// with a data-formfill-ref attribute matching the control Ref.
func (s *Session) Discover(ctx context.Context) (discovery.Page, error) {
	page, err := s.activePage()
	if err != nil {
		return discovery.Page{}, err
	}
	res, err := page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      discoverScript,
		ByValue: true,
	})
	if err != nil {
		return discovery.Page{}, fmt.Errorf("browser: discover: %w", err)
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return discovery.Page{}, fmt.Errorf("browser: discover: %w", err)
	}
	snapshot, err := decodeSnapshot(raw)
	if err != nil {
		return discovery.Page{}, err
	}
	s.cfg.logger.Debugw("controls discovered", "url", snapshot.URL, "controls", len(snapshot.Controls), "forms", snapshot.FormCount)
	if len(snapshot.Controls) == 0 {
		return snapshot, discovery.ErrNoControls
	}
	return snapshot, nil
}

// Apply carries out every non-skip step, dispatching input and change events
// after each value change.
func (s *Session) Apply(ctx context.Context, plan model.Plan) (executor.Result, error) {
	page, err := s.activePage()
	if err != nil {
		return executor.Result{}, err
	}
	return executor.Apply(ctx, plan, func(ctx context.Context, step model.Step) error {
		res, err := page.Context(ctx).Evaluate(&rod.EvalOptions{
			JS:      applyScript,
			JSArgs:  []any{step.Control.Ref, step.Action},
			ByValue: true,
		})
		if err != nil {
			return err
		}
		if msg := res.Value.Str(); msg != "" {
			return errors.New(msg)
		}
		return nil
	})
}

// Close shuts the tab and, when the browser was launched by Open, the
// browser process.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.browser != nil {
		if s.launch != nil {
			err = s.browser.Close()
		} else if s.page != nil {
			err = s.page.Close()
		}
	}
	s.kill()
	if err != nil {
		return fmt.Errorf("browser: close: %w", err)
	}
	return nil
}

func (s *Session) kill() {
	if s.launch != nil {
		s.launch.Kill()
	}
}

func (s *Session) activePage() (*rod.Page, error) {
	if s == nil {
		return nil, ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.page == nil {
		return nil, ErrClosed
	}
	return s.page, nil
}

type snapshotJSON struct {
	URL       string           `json:"url"`
	FormCount int              `json:"formCount"`
	Controls  []descriptorJSON `json:"controls"`
}

type descriptorJSON struct {
	Ref         string         `json:"ref"`
	Tag         string         `json:"tag"`
	Type        string         `json:"type"`
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Placeholder string         `json:"placeholder"`
	LabelHTML   string         `json:"labelHTML"`
	Classes     string         `json:"classes"`
	Disabled    bool           `json:"disabled"`
	ReadOnly    bool           `json:"readOnly"`
	Ancestors   []string       `json:"ancestors"`
	InForm      bool           `json:"inForm"`
	Options     []model.Option `json:"options"`
}

// decodeSnapshot turns the discovery script result into a Page.
func decodeSnapshot(raw []byte) (discovery.Page, error) {
	var snap snapshotJSON
	if err := json.Unmarshal(raw, &snap); err != nil {
		return discovery.Page{}, fmt.Errorf("browser: decode snapshot: %w", err)
	}
	page := discovery.Page{
		URL:       snap.URL,
		FormCount: snap.FormCount,
		Controls:  make([]model.Control, 0, len(snap.Controls)),
	}
	for _, d := range snap.Controls {
		page.Controls = append(page.Controls, d.control())
	}
	return page, nil
}

func (d descriptorJSON) control() model.Control {
	control := model.Control{
		Ref:         d.Ref,
		ID:          strings.TrimSpace(d.ID),
		Name:        strings.TrimSpace(d.Name),
		Placeholder: strings.TrimSpace(d.Placeholder),
		Label:       htmldoc.SanitizeLabel(d.LabelHTML),
		Classes:     strings.Join(strings.Fields(d.Classes), " "),
		Kind:        model.ParseKind(d.Tag, d.Type),
		Disabled:    d.Disabled,
		ReadOnly:    d.ReadOnly,
		InForm:      d.InForm,
	}
	seen := make(map[string]struct{}, len(d.Ancestors))
	for _, tag := range d.Ancestors {
		tag = strings.ToLower(tag)
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		control.Ancestors = append(control.Ancestors, tag)
	}
	if control.Kind == model.KindSelect && len(d.Options) > 0 {
		control.Options = append([]model.Option(nil), d.Options...)
	}
	return control
}

var (
	_ discovery.Source  = (*Session)(nil)
	_ executor.Executor = (*Session)(nil)
)
