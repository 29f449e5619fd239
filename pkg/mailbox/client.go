// Package mailbox talks to the temporary mailbox backend: a small REST API for
// accounts and messages plus a websocket channel that announces new mail.
package mailbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBaseURL is the API root of a locally running backend.
const DefaultBaseURL = "http://localhost:8000/api/v1"

// ErrNotFound is returned when the backend reports a missing account or message.
var ErrNotFound = errors.New("mailbox: not found")

// APIError carries a non-success response that is not a 404.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("mailbox: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("mailbox: unexpected status %d: %s", e.Status, e.Detail)
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(logger *zap.SugaredLogger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client is safe for concurrent use.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *zap.SugaredLogger
}

// NewClient builds a client rooted at baseURL (for example
// "http://localhost:8000/api/v1").
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("mailbox: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("mailbox: base url %q must be http or https", baseURL)
	}

	c := &Client{
		base:   base,
		http:   &http.Client{Timeout: 15 * time.Second},
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Create provisions a new temporary mailbox.
func (c *Client) Create(ctx context.Context) (Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodPost, "email", &account); err != nil {
		return Account{}, fmt.Errorf("mailbox: create: %w", err)
	}
	c.logger.Debugw("mailbox created", "id", account.ID, "email", account.Email)
	return account, nil
}

// Account fetches a mailbox by id.
func (c *Client) Account(ctx context.Context, id uuid.UUID) (Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, "email/"+id.String(), &account); err != nil {
		return Account{}, fmt.Errorf("mailbox: account %s: %w", id, err)
	}
	return account, nil
}

// ByAddress fetches a mailbox by its email address.
func (c *Client) ByAddress(ctx context.Context, address string) (Account, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Account{}, fmt.Errorf("mailbox: by address: address is required")
	}
	var account Account
	if err := c.do(ctx, http.MethodGet, "email/by-address/"+address, &account); err != nil {
		return Account{}, fmt.Errorf("mailbox: by address %s: %w", address, err)
	}
	return account, nil
}

// Messages lists the mailbox contents, newest first.
func (c *Client) Messages(ctx context.Context, id uuid.UUID) ([]Message, error) {
	var messages []Message
	if err := c.do(ctx, http.MethodGet, "email/"+id.String()+"/messages", &messages); err != nil {
		return nil, fmt.Errorf("mailbox: messages %s: %w", id, err)
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].ReceivedAt.After(messages[j].ReceivedAt.Time)
	})
	return messages, nil
}

// Message fetches a single message.
func (c *Client) Message(ctx context.Context, id uuid.UUID) (Message, error) {
	var message Message
	if err := c.do(ctx, http.MethodGet, "messages/"+id.String(), &message); err != nil {
		return Message{}, fmt.Errorf("mailbox: message %s: %w", id, err)
	}
	return message, nil
}

// Delete removes a mailbox and its messages.
func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.do(ctx, http.MethodDelete, "email/"+id.String(), nil); err != nil {
		return fmt.Errorf("mailbox: delete %s: %w", id, err)
	}
	c.logger.Debugw("mailbox deleted", "id", id)
	return nil
}

// websocketURL maps the REST root onto the push channel for id.
func (c *Client) websocketURL(id uuid.UUID) string {
	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/" + id.String()
	return u.String()
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	target := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Detail != nil {
		switch detail := payload.Detail.(type) {
		case string:
			apiErr.Detail = detail
		default:
			encoded, _ := json.Marshal(detail)
			apiErr.Detail = string(encoded)
		}
	} else {
		apiErr.Detail = strings.TrimSpace(string(body))
	}
	return apiErr
}
