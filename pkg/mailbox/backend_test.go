package mailbox

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// fakeBackend mimics the temp-mail API: REST routes under /api/v1 and the
// websocket channel at /api/v1/ws/{id}.
type fakeBackend struct {
	t       *testing.T
	server  *httptest.Server
	account json.RawMessage
	id      uuid.UUID

	mu       sync.Mutex
	messages []map[string]any
	sessions int
	fetched  chan struct{}

	// session drives one websocket connection; n starts at 1.
	session func(conn *websocket.Conn, n int)
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{
		t:       t,
		id:      uuid.MustParse("7d3f0b88-6f86-4b59-9a39-3f4f7b0c2a11"),
		fetched: make(chan struct{}, 16),
	}
	b.account = json.RawMessage(`{
		"id": "7d3f0b88-6f86-4b59-9a39-3f4f7b0c2a11",
		"email": "swift4821@temp.atv.local",
		"created_at": "2024-05-01T09:00:00.123456",
		"expires_at": null,
		"is_active": true
	}`)
	b.server = httptest.NewServer(http.HandlerFunc(b.route))
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) baseURL() string {
	return b.server.URL + "/api/v1"
}

func (b *fakeBackend) addMessage(subject, receivedAt string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, map[string]any{
		"id":               uuid.NewString(),
		"email_account_id": b.id.String(),
		"sender":           "noreply@shop.test",
		"recipient":        "swift4821@temp.atv.local",
		"subject":          subject,
		"body_text":        "code 1234",
		"received_at":      receivedAt,
	})
}

func (b *fakeBackend) sessionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions
}

func (b *fakeBackend) route(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/")
	parts := strings.Split(path, "/")

	switch {
	case r.Method == http.MethodPost && path == "email":
		writeJSON(w, http.StatusOK, b.account)
	case r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "email" && parts[1] == "by-address":
		if parts[2] != "swift4821@temp.atv.local" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Email account not found"})
			return
		}
		writeJSON(w, http.StatusOK, b.account)
	case len(parts) == 2 && parts[0] == "email":
		if parts[1] != b.id.String() {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Email account not found"})
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, b.account)
		case http.MethodDelete:
			writeJSON(w, http.StatusOK, map[string]string{"message": "Email account deleted successfully"})
		default:
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method Not Allowed"})
		}
	case r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "email" && parts[2] == "messages":
		if parts[1] != b.id.String() {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Email account not found"})
			return
		}
		b.mu.Lock()
		out := append([]map[string]any(nil), b.messages...)
		b.mu.Unlock()
		if out == nil {
			out = []map[string]any{}
		}
		writeJSON(w, http.StatusOK, out)
		select {
		case b.fetched <- struct{}{}:
		default:
		}
	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "messages":
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, msg := range b.messages {
			if msg["id"] == parts[1] {
				writeJSON(w, http.StatusOK, msg)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Message not found"})
	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "ws":
		if parts[1] != b.id.String() {
			http.NotFound(w, r)
			return
		}
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			b.t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		b.mu.Lock()
		b.sessions++
		n := b.sessions
		b.mu.Unlock()

		if b.session != nil {
			b.session(conn, n)
		}
	case path == "boom":
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "database unavailable"})
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// closeWith sends a close frame and drains until the peer answers.
func closeWith(conn *websocket.Conn, code int) {
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, ""))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
