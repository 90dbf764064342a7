package betting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hari1098/betsync/internal/betting/events"
	"github.com/hari1098/betsync/internal/models"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BettingRepository defines what the app layer needs from the repository.
type BettingRepository interface {
	InTx(ctx context.Context, fn func(BettingRepository) error) error
	CreateSession(ctx context.Context, req CreateSessionRequest) (*models.BettingSession, error)
	GetSession(ctx context.Context, sessionID string) (*models.BettingSession, error)
	SessionExists(ctx context.Context, sessionID string) (bool, error)
	SetSessionActive(ctx context.Context, sessionID string, active bool) error
	ListActiveSessions(ctx context.Context) ([]models.BettingSession, error)
	CreateBet(ctx context.Context, sessionID string, ticketID int, amount decimal.Decimal, placedAt time.Time) (*models.Bet, error)
	UpdateBetAmount(ctx context.Context, betID int64, amount decimal.Decimal, placedAt time.Time) (*models.Bet, error)
	ListBetsBySession(ctx context.Context, sessionID string) ([]models.Bet, error)
	GetBetByTicket(ctx context.Context, sessionID string, ticketID int) (*models.Bet, error)
	GetHighestBet(ctx context.Context, sessionID string) (*models.Bet, error)
	GetLowestBet(ctx context.Context, sessionID string) (*models.Bet, error)
}

// App holds the betting business logic: session records and the bet
// acceptance rules. Timer-driven lifecycle lives in the manager package.
type App struct {
	repo   BettingRepository
	events events.Publisher
	clock  clockwork.Clock
}

// NewApp creates a betting app. publisher may be nil to disable eventing.
func NewApp(repo BettingRepository, publisher events.Publisher) *App {
	return &App{
		repo:   repo,
		events: publisher,
		clock:  clockwork.NewRealClock(),
	}
}

// PlaceBet applies the acceptance rules and persists the bet:
//
//  1. a new bet must be strictly greater than the session's current overall
//     highest bet;
//  2. a ticket re-betting must exceed its own previous amount, and its
//     existing bet is updated in place rather than duplicated.
//
// Both checks and the write run in one transaction.
func (a *App) PlaceBet(ctx context.Context, sessionID string, ticketID int, amount decimal.Decimal) (*models.Bet, error) {
	if err := models.ValidateBet(ticketID, amount); err != nil {
		return nil, err
	}

	now := a.clock.Now()
	var placed *models.Bet
	err := a.repo.InTx(ctx, func(r BettingRepository) error {
		highest, err := r.GetHighestBet(ctx, sessionID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// First bet of the session; nothing to beat.
		case err != nil:
			return err
		case amount.LessThanOrEqual(highest.Amount):
			return &RuleError{Msg: fmt.Sprintf(
				"new bet amount must be strictly greater than the current overall highest bet of %s", highest.Amount)}
		}

		existing, err := r.GetBetByTicket(ctx, sessionID, ticketID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if existing != nil {
			if amount.LessThanOrEqual(existing.Amount) {
				return &RuleError{Msg: fmt.Sprintf(
					"your new bet amount must be strictly greater than your previous bet of %s in this session", existing.Amount)}
			}
			placed, err = r.UpdateBetAmount(ctx, *existing.ID, amount, now)
			return err
		}

		placed, err = r.CreateBet(ctx, sessionID, ticketID, amount, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", sessionID).
		Int("ticket_id", ticketID).
		Str("amount", amount.String()).
		Msg("bet placed")

	a.emitBetPlaced(ctx, placed)
	return placed, nil
}

// ListBets returns all bets of a session.
func (a *App) ListBets(ctx context.Context, sessionID string) ([]models.Bet, error) {
	return a.repo.ListBetsBySession(ctx, sessionID)
}

// HighestBet returns the session's maximum bet, or ErrNoBets.
func (a *App) HighestBet(ctx context.Context, sessionID string) (*models.Bet, error) {
	bet, err := a.repo.GetHighestBet(ctx, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoBets
	}
	return bet, err
}

// LowestBet returns the session's minimum bet, or ErrNoBets.
func (a *App) LowestBet(ctx context.Context, sessionID string) (*models.Bet, error) {
	bet, err := a.repo.GetLowestBet(ctx, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoBets
	}
	return bet, err
}

// CreateSession records a new active session starting at startTime. Session
// IDs are single-use: an ID seen before, active or not, yields
// ErrSessionExists.
func (a *App) CreateSession(ctx context.Context, sessionID string, durationMinutes int, startTime time.Time) (*models.BettingSession, error) {
	exists, err := a.repo.SessionExists(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrSessionExists
	}

	session, err := a.repo.CreateSession(ctx, CreateSessionRequest{
		SessionID:       sessionID,
		StartTime:       startTime,
		DurationMinutes: durationMinutes,
		Active:          true,
	})
	if err != nil {
		return nil, err
	}

	a.emitSessionStarted(ctx, session)
	return session, nil
}

// GetSession retrieves a session, mapping a missing row to
// ErrSessionNotFound.
func (a *App) GetSession(ctx context.Context, sessionID string) (*models.BettingSession, error) {
	session, err := a.repo.GetSession(ctx, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return session, err
}

// IsSessionActive reports whether the store marks the session active.
func (a *App) IsSessionActive(ctx context.Context, sessionID string) (bool, error) {
	session, err := a.GetSession(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return session.Active, nil
}

// DeactivateSession marks the session inactive in the store.
func (a *App) DeactivateSession(ctx context.Context, sessionID string) error {
	if err := a.repo.SetSessionActive(ctx, sessionID, false); err != nil {
		return err
	}
	log.Info().Str("session_id", sessionID).Msg("session marked inactive")
	a.emitSessionStopped(ctx, sessionID)
	return nil
}

// ListActiveSessions returns every session the store marks active.
func (a *App) ListActiveSessions(ctx context.Context) ([]models.BettingSession, error) {
	return a.repo.ListActiveSessions(ctx)
}

// LogSessionExtremes reports the current highest and lowest bets of a
// session. Driven by the manager's periodic per-session task.
func (a *App) LogSessionExtremes(ctx context.Context, sessionID string) {
	highest, err := a.HighestBet(ctx, sessionID)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("could not determine highest bet")
	} else {
		log.Info().
			Str("session_id", sessionID).
			Int("ticket_id", highest.TicketID).
			Str("amount", highest.Amount.String()).
			Msg("highest bet")
	}

	lowest, err := a.LowestBet(ctx, sessionID)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("could not determine lowest bet")
	} else {
		log.Info().
			Str("session_id", sessionID).
			Int("ticket_id", lowest.TicketID).
			Str("amount", lowest.Amount.String()).
			Msg("lowest bet")
	}
}

func (a *App) emitSessionStarted(ctx context.Context, session *models.BettingSession) {
	if a.events == nil {
		return
	}
	env, err := events.NewEnvelope(events.EventSessionStarted, session.SessionID, a.clock.Now(), events.SessionStartedPayload{
		SessionID:       session.SessionID,
		StartTime:       session.StartTime,
		DurationMinutes: session.DurationMinutes,
	})
	if err == nil {
		err = a.events.Publish(ctx, env)
	}
	if err != nil {
		log.Error().Err(err).Str("session_id", session.SessionID).Msg("failed to publish SessionStarted event")
	}
}

func (a *App) emitSessionStopped(ctx context.Context, sessionID string) {
	if a.events == nil {
		return
	}
	now := a.clock.Now()
	env, err := events.NewEnvelope(events.EventSessionStopped, sessionID, now, events.SessionStoppedPayload{
		SessionID: sessionID,
		StoppedAt: now,
	})
	if err == nil {
		err = a.events.Publish(ctx, env)
	}
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to publish SessionStopped event")
	}
}

func (a *App) emitBetPlaced(ctx context.Context, bet *models.Bet) {
	if a.events == nil {
		return
	}
	var betID int64
	if bet.ID != nil {
		betID = *bet.ID
	}
	env, err := events.NewEnvelope(events.EventBetPlaced, bet.SessionID, a.clock.Now(), events.BetPlacedPayload{
		BetID:     betID,
		SessionID: bet.SessionID,
		TicketID:  bet.TicketID,
		Amount:    bet.Amount,
		PlacedAt:  bet.Time,
	})
	if err == nil {
		err = a.events.Publish(ctx, env)
	}
	if err != nil {
		log.Error().Err(err).Str("session_id", bet.SessionID).Msg("failed to publish BetPlaced event")
	}
}
