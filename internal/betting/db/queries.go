package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

const createBettingSession = `
INSERT INTO betting_sessions (session_id, start_time, duration_minutes, active)
VALUES ($1, $2, $3, $4)
RETURNING session_id, start_time, duration_minutes, active
`

type CreateBettingSessionParams struct {
	SessionID       string
	StartTime       time.Time
	DurationMinutes int32
	Active          bool
}

func (q *Queries) CreateBettingSession(ctx context.Context, arg CreateBettingSessionParams) (BettingSession, error) {
	row := q.db.QueryRowContext(ctx, createBettingSession,
		arg.SessionID,
		arg.StartTime,
		arg.DurationMinutes,
		arg.Active,
	)
	var s BettingSession
	err := row.Scan(&s.SessionID, &s.StartTime, &s.DurationMinutes, &s.Active)
	return s, err
}

const getBettingSession = `
SELECT session_id, start_time, duration_minutes, active
FROM betting_sessions
WHERE session_id = $1
`

func (q *Queries) GetBettingSession(ctx context.Context, sessionID string) (BettingSession, error) {
	row := q.db.QueryRowContext(ctx, getBettingSession, sessionID)
	var s BettingSession
	err := row.Scan(&s.SessionID, &s.StartTime, &s.DurationMinutes, &s.Active)
	return s, err
}

const bettingSessionExists = `
SELECT EXISTS (SELECT 1 FROM betting_sessions WHERE session_id = $1)
`

func (q *Queries) BettingSessionExists(ctx context.Context, sessionID string) (bool, error) {
	row := q.db.QueryRowContext(ctx, bettingSessionExists, sessionID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const setBettingSessionActive = `
UPDATE betting_sessions
SET active = $2
WHERE session_id = $1
`

type SetBettingSessionActiveParams struct {
	SessionID string
	Active    bool
}

func (q *Queries) SetBettingSessionActive(ctx context.Context, arg SetBettingSessionActiveParams) error {
	_, err := q.db.ExecContext(ctx, setBettingSessionActive, arg.SessionID, arg.Active)
	return err
}

const listActiveBettingSessions = `
SELECT session_id, start_time, duration_minutes, active
FROM betting_sessions
WHERE active = TRUE
ORDER BY start_time
`

func (q *Queries) ListActiveBettingSessions(ctx context.Context) ([]BettingSession, error) {
	rows, err := q.db.QueryContext(ctx, listActiveBettingSessions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []BettingSession
	for rows.Next() {
		var s BettingSession
		if err := rows.Scan(&s.SessionID, &s.StartTime, &s.DurationMinutes, &s.Active); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

const createBet = `
INSERT INTO bets (session_id, ticket_id, amount, placed_at)
VALUES ($1, $2, $3, $4)
RETURNING id, session_id, ticket_id, amount, placed_at
`

type CreateBetParams struct {
	SessionID string
	TicketID  int32
	Amount    decimal.Decimal
	PlacedAt  sql.NullTime
}

func (q *Queries) CreateBet(ctx context.Context, arg CreateBetParams) (Bet, error) {
	row := q.db.QueryRowContext(ctx, createBet,
		arg.SessionID,
		arg.TicketID,
		arg.Amount,
		arg.PlacedAt,
	)
	var b Bet
	err := row.Scan(&b.ID, &b.SessionID, &b.TicketID, &b.Amount, &b.PlacedAt)
	return b, err
}

const updateBetAmount = `
UPDATE bets
SET amount = $2, placed_at = $3
WHERE id = $1
RETURNING id, session_id, ticket_id, amount, placed_at
`

type UpdateBetAmountParams struct {
	ID       int64
	Amount   decimal.Decimal
	PlacedAt sql.NullTime
}

func (q *Queries) UpdateBetAmount(ctx context.Context, arg UpdateBetAmountParams) (Bet, error) {
	row := q.db.QueryRowContext(ctx, updateBetAmount, arg.ID, arg.Amount, arg.PlacedAt)
	var b Bet
	err := row.Scan(&b.ID, &b.SessionID, &b.TicketID, &b.Amount, &b.PlacedAt)
	return b, err
}

const listBetsBySession = `
SELECT id, session_id, ticket_id, amount, placed_at
FROM bets
WHERE session_id = $1
ORDER BY placed_at DESC NULLS LAST, id
`

func (q *Queries) ListBetsBySession(ctx context.Context, sessionID string) ([]Bet, error) {
	rows, err := q.db.QueryContext(ctx, listBetsBySession, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var bets []Bet
	for rows.Next() {
		var b Bet
		if err := rows.Scan(&b.ID, &b.SessionID, &b.TicketID, &b.Amount, &b.PlacedAt); err != nil {
			return nil, err
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

const getBetBySessionAndTicket = `
SELECT id, session_id, ticket_id, amount, placed_at
FROM bets
WHERE session_id = $1 AND ticket_id = $2
`

type GetBetBySessionAndTicketParams struct {
	SessionID string
	TicketID  int32
}

func (q *Queries) GetBetBySessionAndTicket(ctx context.Context, arg GetBetBySessionAndTicketParams) (Bet, error) {
	row := q.db.QueryRowContext(ctx, getBetBySessionAndTicket, arg.SessionID, arg.TicketID)
	var b Bet
	err := row.Scan(&b.ID, &b.SessionID, &b.TicketID, &b.Amount, &b.PlacedAt)
	return b, err
}

const getHighestBet = `
SELECT id, session_id, ticket_id, amount, placed_at
FROM bets
WHERE session_id = $1
ORDER BY amount DESC
LIMIT 1
`

func (q *Queries) GetHighestBet(ctx context.Context, sessionID string) (Bet, error) {
	row := q.db.QueryRowContext(ctx, getHighestBet, sessionID)
	var b Bet
	err := row.Scan(&b.ID, &b.SessionID, &b.TicketID, &b.Amount, &b.PlacedAt)
	return b, err
}

const getLowestBet = `
SELECT id, session_id, ticket_id, amount, placed_at
FROM bets
WHERE session_id = $1
ORDER BY amount ASC
LIMIT 1
`

func (q *Queries) GetLowestBet(ctx context.Context, sessionID string) (Bet, error) {
	row := q.db.QueryRowContext(ctx, getLowestBet, sessionID)
	var b Bet
	err := row.Scan(&b.ID, &b.SessionID, &b.TicketID, &b.Amount, &b.PlacedAt)
	return b, err
}
