package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bet represents a single bet placed against a session. ID is assigned by the
// provider on acceptance and is nil for a bet that has not been acknowledged
// yet. A ticket holds at most one bet per session; re-betting updates it.
type Bet struct {
	ID        *int64          `json:"id,omitempty"`
	SessionID string          `json:"sessionId"`
	TicketID  int             `json:"ticketId"`
	Amount    decimal.Decimal `json:"amount"`
	Time      *time.Time      `json:"time,omitempty"`
}

// BetRequest is the payload a client submits to place a bet.
type BetRequest struct {
	TicketID int             `json:"ticketId"`
	Amount   decimal.Decimal `json:"amount"`
}
