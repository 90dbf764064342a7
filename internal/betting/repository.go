package betting

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hari1098/betsync/internal/betting/db"
	"github.com/hari1098/betsync/internal/models"
	"github.com/hari1098/betsync/internal/sqlutil"
	"github.com/shopspring/decimal"
)

// Repository implements betting data access over Postgres.
type Repository struct {
	sqlDB   *sql.DB
	queries *db.Queries
}

// NewRepository creates a repository bound to sqlDB.
func NewRepository(sqlDB *sql.DB) *Repository {
	return &Repository{
		sqlDB:   sqlDB,
		queries: db.New(sqlDB),
	}
}

// InTx runs fn against a repository bound to a single transaction. The bet
// acceptance rules read and write in one tx so two concurrent bets cannot
// both pass the same highest-bet check.
func (r *Repository) InTx(ctx context.Context, fn func(BettingRepository) error) error {
	return sqlutil.Run(ctx, r.sqlDB,
		func(tx *sql.Tx) *Repository {
			return &Repository{sqlDB: r.sqlDB, queries: r.queries.WithTx(tx)}
		},
		func(txRepo *Repository) error {
			return fn(txRepo)
		},
	)
}

// CreateSessionRequest carries the fields for a new session row.
type CreateSessionRequest struct {
	SessionID       string
	StartTime       time.Time
	DurationMinutes int
	Active          bool
}

// CreateSession inserts a new session.
func (r *Repository) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.BettingSession, error) {
	dbSession, err := r.queries.CreateBettingSession(ctx, db.CreateBettingSessionParams{
		SessionID:       req.SessionID,
		StartTime:       req.StartTime,
		DurationMinutes: int32(req.DurationMinutes),
		Active:          req.Active,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return dbSessionToModel(dbSession), nil
}

// GetSession retrieves a session by ID.
func (r *Repository) GetSession(ctx context.Context, sessionID string) (*models.BettingSession, error) {
	dbSession, err := r.queries.GetBettingSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return dbSessionToModel(dbSession), nil
}

// SessionExists reports whether the session ID was ever used.
func (r *Repository) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	exists, err := r.queries.BettingSessionExists(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to check session existence: %w", err)
	}
	return exists, nil
}

// SetSessionActive flips the authoritative active flag.
func (r *Repository) SetSessionActive(ctx context.Context, sessionID string, active bool) error {
	err := r.queries.SetBettingSessionActive(ctx, db.SetBettingSessionActiveParams{
		SessionID: sessionID,
		Active:    active,
	})
	if err != nil {
		return fmt.Errorf("failed to set session active: %w", err)
	}
	return nil
}

// ListActiveSessions returns all sessions currently marked active.
func (r *Repository) ListActiveSessions(ctx context.Context) ([]models.BettingSession, error) {
	dbSessions, err := r.queries.ListActiveBettingSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	sessions := make([]models.BettingSession, len(dbSessions))
	for i, s := range dbSessions {
		sessions[i] = *dbSessionToModel(s)
	}
	return sessions, nil
}

// CreateBet inserts a new bet row.
func (r *Repository) CreateBet(ctx context.Context, sessionID string, ticketID int, amount decimal.Decimal, placedAt time.Time) (*models.Bet, error) {
	dbBet, err := r.queries.CreateBet(ctx, db.CreateBetParams{
		SessionID: sessionID,
		TicketID:  int32(ticketID),
		Amount:    amount,
		PlacedAt:  sqlutil.ToSqlTime(&placedAt),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}
	return dbBetToModel(dbBet), nil
}

// UpdateBetAmount replaces the amount and timestamp of an existing bet.
func (r *Repository) UpdateBetAmount(ctx context.Context, betID int64, amount decimal.Decimal, placedAt time.Time) (*models.Bet, error) {
	dbBet, err := r.queries.UpdateBetAmount(ctx, db.UpdateBetAmountParams{
		ID:       betID,
		Amount:   amount,
		PlacedAt: sqlutil.ToSqlTime(&placedAt),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update bet: %w", err)
	}
	return dbBetToModel(dbBet), nil
}

// ListBetsBySession returns all bets of a session, newest placement first.
func (r *Repository) ListBetsBySession(ctx context.Context, sessionID string) ([]models.Bet, error) {
	dbBets, err := r.queries.ListBetsBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	bets := make([]models.Bet, len(dbBets))
	for i, b := range dbBets {
		bets[i] = *dbBetToModel(b)
	}
	return bets, nil
}

// GetBetByTicket returns the single bet a ticket holds in a session, or a
// wrapped sql.ErrNoRows when it has none.
func (r *Repository) GetBetByTicket(ctx context.Context, sessionID string, ticketID int) (*models.Bet, error) {
	dbBet, err := r.queries.GetBetBySessionAndTicket(ctx, db.GetBetBySessionAndTicketParams{
		SessionID: sessionID,
		TicketID:  int32(ticketID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get bet by ticket: %w", err)
	}
	return dbBetToModel(dbBet), nil
}

// GetHighestBet returns the maximum-amount bet of a session, or a wrapped
// sql.ErrNoRows when the session has no bets.
func (r *Repository) GetHighestBet(ctx context.Context, sessionID string) (*models.Bet, error) {
	dbBet, err := r.queries.GetHighestBet(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get highest bet: %w", err)
	}
	return dbBetToModel(dbBet), nil
}

// GetLowestBet returns the minimum-amount bet of a session.
func (r *Repository) GetLowestBet(ctx context.Context, sessionID string) (*models.Bet, error) {
	dbBet, err := r.queries.GetLowestBet(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lowest bet: %w", err)
	}
	return dbBetToModel(dbBet), nil
}

func dbSessionToModel(s db.BettingSession) *models.BettingSession {
	return &models.BettingSession{
		SessionID:       s.SessionID,
		StartTime:       s.StartTime,
		DurationMinutes: int(s.DurationMinutes),
		Active:          s.Active,
	}
}

func dbBetToModel(b db.Bet) *models.Bet {
	id := b.ID
	return &models.Bet{
		ID:        &id,
		SessionID: b.SessionID,
		TicketID:  int(b.TicketID),
		Amount:    b.Amount,
		Time:      sqlutil.FromSqlTime(b.PlacedAt),
	}
}
