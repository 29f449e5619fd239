package mailbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	DefaultReconnectDelay = 3 * time.Second
	DefaultPingInterval   = 30 * time.Second

	writeWait = 5 * time.Second
)

// Handler receives the full message list, newest first, after each refresh.
type Handler func(messages []Message)

// WatchOption customises a Watcher.
type WatchOption func(*Watcher)

// WithReconnectDelay sets the pause between an unexpected disconnect and the
// next dial attempt.
func WithReconnectDelay(delay time.Duration) WatchOption {
	return func(w *Watcher) {
		if delay > 0 {
			w.delay = delay
		}
	}
}

// WithPingInterval sets how often the keepalive "ping" is sent.
func WithPingInterval(interval time.Duration) WatchOption {
	return func(w *Watcher) {
		if interval > 0 {
			w.ping = interval
		}
	}
}

// WithDialer replaces the websocket dialer.
func WithDialer(dialer *websocket.Dialer) WatchOption {
	return func(w *Watcher) {
		if dialer != nil {
			w.dialer = dialer
		}
	}
}

// WithWatchLogger overrides the logger inherited from the client.
func WithWatchLogger(logger *zap.SugaredLogger) WatchOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher follows a mailbox push channel and refreshes the message list on
// every new_message notification.
type Watcher struct {
	client *Client
	dialer *websocket.Dialer
	delay  time.Duration
	ping   time.Duration
	logger *zap.SugaredLogger
}

// NewWatcher builds a watcher on top of client.
func NewWatcher(client *Client, options ...WatchOption) *Watcher {
	w := &Watcher{
		client: client,
		dialer: websocket.DefaultDialer,
		delay:  DefaultReconnectDelay,
		ping:   DefaultPingInterval,
		logger: zap.NewNop().Sugar(),
	}
	if client != nil {
		w.logger = client.logger
	}
	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Watch blocks until ctx is cancelled or the server closes the channel
// normally, both of which return nil. Any other disconnect is retried after
// the reconnect delay. A policy-violation close means the mailbox does not
// exist and ends the watch with ErrNotFound.
func (w *Watcher) Watch(ctx context.Context, id uuid.UUID, handle Handler) error {
	if w == nil || w.client == nil {
		return fmt.Errorf("mailbox: watch: client is required")
	}
	if handle == nil {
		handle = func([]Message) {}
	}

	for attempt := 1; ; attempt++ {
		code, err := w.session(ctx, id, handle)
		if ctx.Err() != nil {
			return nil
		}
		switch {
		case errors.Is(err, ErrNotFound):
			return fmt.Errorf("mailbox: watch %s: %w", id, err)
		case code == websocket.CloseNormalClosure:
			w.logger.Infow("mailbox channel closed", "id", id)
			return nil
		case code == websocket.ClosePolicyViolation:
			return fmt.Errorf("mailbox: watch %s: %w", id, ErrNotFound)
		}

		w.logger.Warnw("mailbox channel lost, reconnecting",
			"id", id,
			"attempt", attempt,
			"close_code", code,
			"delay", w.delay,
			"error", err,
		)
		timer := time.NewTimer(w.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// session runs one connection and returns the close code the server sent,
// or zero when the connection failed without one.
func (w *Watcher) session(ctx context.Context, id uuid.UUID, handle Handler) (int, error) {
	conn, resp, err := w.dialer.DialContext(ctx, w.client.websocketURL(id), nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusNotFound {
				return 0, ErrNotFound
			}
		}
		return 0, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	w.logger.Debugw("mailbox channel connected", "id", id)
	w.refresh(ctx, id, handle)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.writeLoop(ctx, conn, done)
	}()
	defer func() {
		close(done)
		wg.Wait()
	}()

	for {
		kind, payload, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return closeErr.Code, err
			}
			return 0, err
		}
		if kind != websocket.TextMessage || string(payload) == "pong" {
			continue
		}

		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			w.logger.Debugw("ignoring malformed mailbox event", "id", id, "error", err)
			continue
		}
		switch event.Type {
		case EventNewMessage:
			w.logger.Infow("new message", "id", id, "message_id", event.MessageID)
			w.refresh(ctx, id, handle)
		case EventConnected:
			w.logger.Debugw("mailbox channel acknowledged", "id", id, "email", event.Email)
		}
	}
}

// writeLoop owns every write on conn: periodic keepalives and the closing
// handshake once ctx is cancelled.
func (w *Watcher) writeLoop(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(w.ping)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			conn.Close()
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
				conn.Close()
				return
			}
		}
	}
}

func (w *Watcher) refresh(ctx context.Context, id uuid.UUID, handle Handler) {
	messages, err := w.client.Messages(ctx, id)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Warnw("refresh messages failed", "id", id, "error", err)
		}
		return
	}
	handle(messages)
}
