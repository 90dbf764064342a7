package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType identifies a betting lifecycle event.
type EventType string

const (
	EventSessionStarted EventType = "SessionStarted"
	EventSessionStopped EventType = "SessionStopped"
	EventBetPlaced      EventType = "BetPlaced"
)

// Envelope wraps a lifecycle event for publication. EventID doubles as the
// message ID for broker-side duplicate detection.
type Envelope struct {
	EventID    string          `json:"event_id"`
	Type       EventType       `json:"type"`
	SessionID  string          `json:"session_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// SessionStartedPayload is emitted when a new session opens.
type SessionStartedPayload struct {
	SessionID       string    `json:"session_id"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

// SessionStoppedPayload is emitted when a session is closed, whether by an
// explicit stop or by window expiry.
type SessionStoppedPayload struct {
	SessionID string    `json:"session_id"`
	StoppedAt time.Time `json:"stopped_at"`
}

// BetPlacedPayload is emitted when a bet is accepted or updated.
type BetPlacedPayload struct {
	BetID     int64           `json:"bet_id"`
	SessionID string          `json:"session_id"`
	TicketID  int             `json:"ticket_id"`
	Amount    decimal.Decimal `json:"amount"`
	PlacedAt  *time.Time      `json:"placed_at,omitempty"`
}

// NewEnvelope builds an envelope around a payload, marshalling it to JSON.
func NewEnvelope(eventType EventType, sessionID string, occurredAt time.Time, payload interface{}) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:    uuid.New().String(),
		Type:       eventType,
		SessionID:  sessionID,
		OccurredAt: occurredAt,
		Payload:    data,
	}, nil
}
