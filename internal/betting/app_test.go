package betting

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hari1098/betsync/internal/betting/events"
	"github.com/hari1098/betsync/internal/models"
)

// fakeRepo is an in-memory BettingRepository. InTx runs the callback against
// the same store; transactional isolation is the real repository's concern.
type fakeRepo struct {
	mu       sync.Mutex
	sessions map[string]models.BettingSession
	bets     []models.Bet
	nextID   int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[string]models.BettingSession)}
}

func (r *fakeRepo) InTx(ctx context.Context, fn func(BettingRepository) error) error {
	return fn(r)
}

func (r *fakeRepo) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.BettingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := models.BettingSession{
		SessionID:       req.SessionID,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Active:          req.Active,
	}
	r.sessions[req.SessionID] = s
	return &s, nil
}

func (r *fakeRepo) GetSession(ctx context.Context, sessionID string) (*models.BettingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (r *fakeRepo) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[sessionID]
	return ok, nil
}

func (r *fakeRepo) SetSessionActive(ctx context.Context, sessionID string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return sql.ErrNoRows
	}
	s.Active = active
	r.sessions[sessionID] = s
	return nil
}

func (r *fakeRepo) ListActiveSessions(ctx context.Context) ([]models.BettingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BettingSession
	for _, s := range r.sessions {
		if s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateBet(ctx context.Context, sessionID string, ticketID int, amount decimal.Decimal, placedAt time.Time) (*models.Bet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	at := placedAt
	b := models.Bet{ID: &id, SessionID: sessionID, TicketID: ticketID, Amount: amount, Time: &at}
	r.bets = append(r.bets, b)
	return &b, nil
}

func (r *fakeRepo) UpdateBetAmount(ctx context.Context, betID int64, amount decimal.Decimal, placedAt time.Time) (*models.Bet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.bets {
		if r.bets[i].ID != nil && *r.bets[i].ID == betID {
			at := placedAt
			r.bets[i].Amount = amount
			r.bets[i].Time = &at
			b := r.bets[i]
			return &b, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeRepo) ListBetsBySession(ctx context.Context, sessionID string) ([]models.Bet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Bet
	for _, b := range r.bets {
		if b.SessionID == sessionID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetBetByTicket(ctx context.Context, sessionID string, ticketID int) (*models.Bet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bets {
		if b.SessionID == sessionID && b.TicketID == ticketID {
			out := b
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeRepo) GetHighestBet(ctx context.Context, sessionID string) (*models.Bet, error) {
	return r.extreme(sessionID, func(candidate, current decimal.Decimal) bool {
		return candidate.GreaterThan(current)
	})
}

func (r *fakeRepo) GetLowestBet(ctx context.Context, sessionID string) (*models.Bet, error) {
	return r.extreme(sessionID, func(candidate, current decimal.Decimal) bool {
		return candidate.LessThan(current)
	})
}

func (r *fakeRepo) extreme(sessionID string, better func(candidate, current decimal.Decimal) bool) (*models.Bet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *models.Bet
	for i := range r.bets {
		b := r.bets[i]
		if b.SessionID != sessionID {
			continue
		}
		if best == nil || better(b.Amount, best.Amount) {
			out := b
			best = &out
		}
	}
	if best == nil {
		return nil, sql.ErrNoRows
	}
	return best, nil
}

// capturingPublisher records every published envelope.
type capturingPublisher struct {
	mu        sync.Mutex
	envelopes []events.Envelope
}

func (p *capturingPublisher) Publish(ctx context.Context, event events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envelopes = append(p.envelopes, event)
	return nil
}

func (p *capturingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EventType, 0, len(p.envelopes))
	for _, e := range p.envelopes {
		out = append(out, e.Type)
	}
	return out
}

func newTestApp(t *testing.T) (*App, *fakeRepo, *capturingPublisher) {
	t.Helper()
	repo := newFakeRepo()
	pub := &capturingPublisher{}
	app := NewApp(repo, pub)
	return app, repo, pub
}

func mustCreateSession(t *testing.T, app *App, sessionID string) {
	t.Helper()
	_, err := app.CreateSession(context.Background(), sessionID, 5, time.Now())
	require.NoError(t, err)
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPlaceBetFirstBetAccepted(t *testing.T) {
	app, _, pub := newTestApp(t)
	mustCreateSession(t, app, "auction")

	bet, err := app.PlaceBet(context.Background(), "auction", 1, amt("10"))
	require.NoError(t, err)
	assert.Equal(t, 1, bet.TicketID)
	assert.True(t, bet.Amount.Equal(amt("10")))
	require.NotNil(t, bet.ID)

	assert.Contains(t, pub.types(), events.EventBetPlaced)
}

func TestPlaceBetMustExceedOverallHighest(t *testing.T) {
	app, _, _ := newTestApp(t)
	mustCreateSession(t, app, "auction")

	_, err := app.PlaceBet(context.Background(), "auction", 1, amt("10"))
	require.NoError(t, err)

	var ruleErr *RuleError
	_, err = app.PlaceBet(context.Background(), "auction", 2, amt("10"))
	assert.ErrorAs(t, err, &ruleErr, "equal to the highest is not enough")

	_, err = app.PlaceBet(context.Background(), "auction", 2, amt("9"))
	assert.ErrorAs(t, err, &ruleErr)

	bet, err := app.PlaceBet(context.Background(), "auction", 2, amt("10.01"))
	require.NoError(t, err)
	assert.True(t, bet.Amount.Equal(amt("10.01")))
}

func TestPlaceBetRebetUpdatesInPlace(t *testing.T) {
	app, repo, _ := newTestApp(t)
	mustCreateSession(t, app, "auction")

	first, err := app.PlaceBet(context.Background(), "auction", 1, amt("10"))
	require.NoError(t, err)

	second, err := app.PlaceBet(context.Background(), "auction", 1, amt("20"))
	require.NoError(t, err)
	require.NotNil(t, second.ID)
	assert.Equal(t, *first.ID, *second.ID, "re-bet must update the existing row, not insert")

	bets, err := repo.ListBetsBySession(context.Background(), "auction")
	require.NoError(t, err)
	require.Len(t, bets, 1)
	assert.True(t, bets[0].Amount.Equal(amt("20")))
}

func TestPlaceBetRebetMustExceedOwnPrevious(t *testing.T) {
	app, _, _ := newTestApp(t)
	mustCreateSession(t, app, "auction")

	_, err := app.PlaceBet(context.Background(), "auction", 1, amt("10"))
	require.NoError(t, err)

	var ruleErr *RuleError
	_, err = app.PlaceBet(context.Background(), "auction", 1, amt("10"))
	assert.ErrorAs(t, err, &ruleErr)
}

func TestPlaceBetValidatesInputs(t *testing.T) {
	app, _, _ := newTestApp(t)
	mustCreateSession(t, app, "auction")

	var validationErr *models.ValidationError
	_, err := app.PlaceBet(context.Background(), "auction", 0, amt("10"))
	assert.ErrorAs(t, err, &validationErr)

	_, err = app.PlaceBet(context.Background(), "auction", 1, amt("-5"))
	assert.ErrorAs(t, err, &validationErr)

	_, err = app.PlaceBet(context.Background(), "auction", 1, decimal.Zero)
	assert.ErrorAs(t, err, &validationErr)
}

func TestSessionIDsAreSingleUse(t *testing.T) {
	app, _, _ := newTestApp(t)
	mustCreateSession(t, app, "auction")

	_, err := app.CreateSession(context.Background(), "auction", 5, time.Now())
	assert.ErrorIs(t, err, ErrSessionExists)

	// Still taken after the session ends.
	require.NoError(t, app.DeactivateSession(context.Background(), "auction"))
	_, err = app.CreateSession(context.Background(), "auction", 5, time.Now())
	assert.ErrorIs(t, err, ErrSessionExists)
}

func TestGetSessionNotFound(t *testing.T) {
	app, _, _ := newTestApp(t)

	_, err := app.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	active, err := app.IsSessionActive(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestSessionLifecycleEvents(t *testing.T) {
	app, _, pub := newTestApp(t)
	mustCreateSession(t, app, "auction")
	require.NoError(t, app.DeactivateSession(context.Background(), "auction"))

	types := pub.types()
	assert.Contains(t, types, events.EventSessionStarted)
	assert.Contains(t, types, events.EventSessionStopped)

	active, err := app.IsSessionActive(context.Background(), "auction")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestExtremesOnEmptySession(t *testing.T) {
	app, _, _ := newTestApp(t)
	mustCreateSession(t, app, "auction")

	_, err := app.HighestBet(context.Background(), "auction")
	assert.ErrorIs(t, err, ErrNoBets)

	_, err = app.LowestBet(context.Background(), "auction")
	assert.ErrorIs(t, err, ErrNoBets)
}

func TestExtremes(t *testing.T) {
	app, _, _ := newTestApp(t)
	mustCreateSession(t, app, "auction")

	_, err := app.PlaceBet(context.Background(), "auction", 1, amt("10"))
	require.NoError(t, err)
	_, err = app.PlaceBet(context.Background(), "auction", 2, amt("25"))
	require.NoError(t, err)
	_, err = app.PlaceBet(context.Background(), "auction", 3, amt("40"))
	require.NoError(t, err)

	highest, err := app.HighestBet(context.Background(), "auction")
	require.NoError(t, err)
	assert.Equal(t, 3, highest.TicketID)

	lowest, err := app.LowestBet(context.Background(), "auction")
	require.NoError(t, err)
	assert.Equal(t, 1, lowest.TicketID)
}
