package mailbox

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// timestampLayouts are tried in order. The backend emits naive timestamps
// without an offset; those are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp accepts RFC 3339 and offset-less ISO timestamps.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("mailbox: timestamp: %w", err)
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("mailbox: timestamp: unsupported format %q", raw)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// Account is a temporary mailbox.
type Account struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	CreatedAt Timestamp  `json:"created_at"`
	ExpiresAt *Timestamp `json:"expires_at,omitempty"`
	IsActive  bool       `json:"is_active"`
}

// Expired reports whether the account has an expiry in the past relative to now.
func (a Account) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && !a.ExpiresAt.IsZero() && !now.Before(a.ExpiresAt.Time)
}

// Message is one received email.
type Message struct {
	ID             uuid.UUID `json:"id"`
	EmailAccountID uuid.UUID `json:"email_account_id"`
	Sender         string    `json:"sender"`
	Recipient      string    `json:"recipient"`
	Subject        string    `json:"subject,omitempty"`
	BodyText       string    `json:"body_text,omitempty"`
	BodyHTML       string    `json:"body_html,omitempty"`
	ReceivedAt     Timestamp `json:"received_at"`
}

// Event is a push notification from the mailbox channel.
type Event struct {
	Type           string `json:"type"`
	EmailAccountID string `json:"email_account_id,omitempty"`
	EmailID        string `json:"email_id,omitempty"`
	Email          string `json:"email,omitempty"`
	MessageID      string `json:"message_id,omitempty"`
}

// Event types sent by the backend.
const (
	EventConnected  = "connected"
	EventNewMessage = "new_message"
)
