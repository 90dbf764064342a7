package view

import (
	"context"

	"github.com/hari1098/betsync/internal/models"
	"github.com/shopspring/decimal"
)

// Provider defines what the viewing core needs from the remote session/bid
// provider. Reads are idempotent; StartSession, StopSession and SubmitBid are
// not. Implementations own transport concerns such as timeouts; the core
// treats a timed-out call like any other provider failure.
type Provider interface {
	StartSession(ctx context.Context, sessionID string, durationMinutes, taskIntervalSeconds int) (*models.BettingSession, error)
	GetSessionStatus(ctx context.Context, sessionID string) (*models.BettingSession, error)
	StopSession(ctx context.Context, sessionID string) error
	SubmitBid(ctx context.Context, sessionID string, ticketID int, amount decimal.Decimal) (*models.Bet, error)
	ListBids(ctx context.Context, sessionID string) ([]models.Bet, error)
	GetHighestBid(ctx context.Context, sessionID string) (*models.Bet, error)
	GetLowestBid(ctx context.Context, sessionID string) (*models.Bet, error)
}
