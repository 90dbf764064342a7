package db

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type BettingSession struct {
	SessionID       string
	StartTime       time.Time
	DurationMinutes int32
	Active          bool
}

type Bet struct {
	ID        int64
	SessionID string
	TicketID  int32
	Amount    decimal.Decimal
	PlacedAt  sql.NullTime
}
