package view

import (
	"context"
	"sync"
	"time"

	"github.com/hari1098/betsync/internal/models"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Config holds the polling cadence of a viewer.
type Config struct {
	BidPollInterval     time.Duration
	SessionPollInterval time.Duration
}

// DefaultConfig returns the default polling cadence.
func DefaultConfig() Config {
	return Config{
		BidPollInterval:     3 * time.Second,
		SessionPollInterval: 5 * time.Second,
	}
}

// Viewer coordinates one viewed session: it owns the session mirror and the
// bid ledger, runs the two polling tasks while a session is live, and fans
// snapshots out to subscribers after every successful poll or mutation.
//
// Stale protection: every arm of the polling tasks captures the current
// generation, and results are applied only if the generation still matches.
// A response that completes after its session was stopped or switched is
// dropped silently.
type Viewer struct {
	provider Provider
	clock    clockwork.Clock
	cfg      Config

	mu         sync.Mutex
	state      stateMachine
	ledger     *Ledger
	gen        uint64
	pollCancel context.CancelFunc

	subs    map[int]func(Snapshot)
	nextSub int
}

// NewViewer creates a viewer with no session.
func NewViewer(provider Provider, cfg Config) *Viewer {
	if cfg.BidPollInterval <= 0 {
		cfg.BidPollInterval = DefaultConfig().BidPollInterval
	}
	if cfg.SessionPollInterval <= 0 {
		cfg.SessionPollInterval = DefaultConfig().SessionPollInterval
	}
	return &Viewer{
		provider: provider,
		clock:    clockwork.NewRealClock(),
		cfg:      cfg,
		ledger:   NewLedger(provider),
		subs:     make(map[int]func(Snapshot)),
	}
}

// Start validates the command inputs, asks the provider to open a session and
// arms both polling tasks. Valid only when no session is in progress; a new
// start always constructs a fresh session value. The recorded start time is
// the provider's, not the local clock's.
func (v *Viewer) Start(ctx context.Context, sessionID string, durationMinutes, taskIntervalSeconds int) (*models.BettingSession, error) {
	if err := models.ValidateSessionParams(sessionID, durationMinutes, taskIntervalSeconds); err != nil {
		return nil, err
	}

	v.mu.Lock()
	if !v.state.effectivePhase(v.clock.Now()).terminal() {
		v.mu.Unlock()
		return nil, ErrSessionInProgress
	}
	prev := v.state
	v.state = stateMachine{phase: PhaseStarting}
	v.mu.Unlock()

	sess, err := v.provider.StartSession(ctx, sessionID, durationMinutes, taskIntervalSeconds)
	if err != nil {
		v.mu.Lock()
		v.state = prev
		v.mu.Unlock()
		return nil, err
	}

	v.mu.Lock()
	v.disarmLocked()
	v.state.activate(sess)
	v.ledger.Bind(sess.SessionID)
	v.armLocked()
	snap, subs := v.snapshotLocked()
	v.mu.Unlock()

	log.Info().
		Str("session_id", sess.SessionID).
		Int("duration_minutes", sess.DurationMinutes).
		Time("start_time", sess.StartTime).
		Msg("session started")

	publish(subs, snap)
	return sess, nil
}

// Stop asks the provider to close the current session and tears the viewer
// down. On provider failure the session stays active, polling keeps running
// and the error is surfaced to the caller; nothing is retried implicitly.
func (v *Viewer) Stop(ctx context.Context) error {
	v.mu.Lock()
	if v.state.phase != PhaseActive || v.state.session == nil {
		v.mu.Unlock()
		return ErrNoActiveSession
	}
	sessionID := v.state.session.SessionID
	v.state.phase = PhaseStopping
	v.mu.Unlock()

	if err := v.provider.StopSession(ctx, sessionID); err != nil {
		v.mu.Lock()
		v.state.phase = PhaseActive
		v.mu.Unlock()
		return err
	}

	v.mu.Lock()
	v.disarmLocked()
	v.state.stop()
	v.ledger.Bind("")
	snap, subs := v.snapshotLocked()
	v.mu.Unlock()

	log.Info().Str("session_id", sessionID).Msg("session stopped")

	publish(subs, snap)
	return nil
}

// SubmitBid submits a bid against the current session and immediately
// refreshes the ledger from the provider, so the local view reflects the
// canonical accepted state rather than a client-side merge.
func (v *Viewer) SubmitBid(ctx context.Context, ticketID int, amount decimal.Decimal) (*models.Bet, error) {
	if err := models.ValidateBet(ticketID, amount); err != nil {
		return nil, err
	}

	v.mu.Lock()
	if v.state.effectivePhase(v.clock.Now()) != PhaseActive {
		v.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	sessionID := v.state.session.SessionID
	gen := v.gen
	v.mu.Unlock()

	bet, err := v.provider.SubmitBid(ctx, sessionID, ticketID, amount)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", sessionID).
		Int("ticket_id", ticketID).
		Str("amount", amount.String()).
		Msg("bid accepted")

	v.refreshBids(ctx, gen, sessionID)
	return bet, nil
}

// Refresh re-fetches the bid list and the session status once, outside the
// polling cadence. Failures follow the same policy as the polls.
func (v *Viewer) Refresh(ctx context.Context) error {
	v.mu.Lock()
	if v.state.session == nil {
		v.mu.Unlock()
		return ErrNoActiveSession
	}
	sessionID := v.state.session.SessionID
	gen := v.gen
	v.mu.Unlock()

	v.refreshBids(ctx, gen, sessionID)
	v.refreshStatus(ctx, gen, sessionID)
	return nil
}

// Subscribe registers fn to receive every subsequent snapshot. The returned
// function unregisters it; unregistering twice is harmless.
func (v *Viewer) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	v.mu.Lock()
	id := v.nextSub
	v.nextSub++
	v.subs[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

// Snapshot returns the current consistent view of session and bids.
func (v *Viewer) Snapshot() Snapshot {
	v.mu.Lock()
	snap, _ := v.snapshotLocked()
	v.mu.Unlock()
	return snap
}

// Phase returns the current effective phase, with expiry derived from the
// clock.
func (v *Viewer) Phase() Phase {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.effectivePhase(v.clock.Now())
}

// TimeRemaining returns the time left in the current window; false means the
// window is closed or there is no session.
func (v *Viewer) TimeRemaining() (time.Duration, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.timeRemaining(v.clock.Now())
}

// Ledger exposes the viewer's bid ledger for ranking and filter queries.
func (v *Viewer) Ledger() *Ledger {
	return v.ledger
}

// refreshBids fetches the full bid list and applies it behind the generation
// guard. A fetch failure is logged and the previous ledger contents stay in
// place; polling and commands remain usable.
func (v *Viewer) refreshBids(ctx context.Context, gen uint64, sessionID string) {
	bets, err := v.provider.ListBids(ctx, sessionID)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("bid fetch failed; keeping previous ledger contents")
		return
	}
	v.applyBids(gen, bets)
}

// refreshStatus fetches the session status and applies it behind the
// generation guard. Unlike the bid fetch, a failure here clears the mirror:
// losing the provider means losing certainty about session identity, and that
// must be visible immediately.
func (v *Viewer) refreshStatus(ctx context.Context, gen uint64, sessionID string) {
	sess, err := v.provider.GetSessionStatus(ctx, sessionID)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("status fetch failed; clearing mirrored session")
		v.applyStatus(gen, nil)
		return
	}
	v.applyStatus(gen, sess)
}

func (v *Viewer) applyBids(gen uint64, bets []models.Bet) {
	v.mu.Lock()
	if gen != v.gen {
		v.mu.Unlock()
		log.Debug().Uint64("gen", gen).Msg("discarding stale bid snapshot")
		return
	}
	v.ledger.ReplaceAll(bets)
	snap, subs := v.snapshotLocked()
	v.mu.Unlock()

	publish(subs, snap)
}

func (v *Viewer) applyStatus(gen uint64, sess *models.BettingSession) {
	v.mu.Lock()
	if gen != v.gen {
		v.mu.Unlock()
		log.Debug().Uint64("gen", gen).Msg("discarding stale status snapshot")
		return
	}
	if sess == nil {
		v.state.clear()
	} else {
		v.state.applyStatus(sess)
	}
	snap, subs := v.snapshotLocked()
	v.mu.Unlock()

	publish(subs, snap)
}

// armLocked starts both polling tasks for the current session. Caller holds
// v.mu and has already bound the ledger and activated the state machine.
func (v *Viewer) armLocked() {
	pollCtx, cancel := context.WithCancel(context.Background())
	v.pollCancel = cancel

	gen := v.gen
	sessionID := v.state.session.SessionID

	bidTask := newPollTask("bid-poll", v.cfg.BidPollInterval, v.clock, func(ctx context.Context) {
		v.refreshBids(ctx, gen, sessionID)
	})
	statusTask := newPollTask("session-poll", v.cfg.SessionPollInterval, v.clock, func(ctx context.Context) {
		v.refreshStatus(ctx, gen, sessionID)
	})

	go bidTask.loop(pollCtx)
	go statusTask.loop(pollCtx)
}

// disarmLocked cancels the polling tasks and bumps the generation so that any
// fetch still in flight can no longer be applied. Caller holds v.mu.
func (v *Viewer) disarmLocked() {
	if v.pollCancel != nil {
		v.pollCancel()
		v.pollCancel = nil
	}
	v.gen++
}

// snapshotLocked builds a snapshot and grabs the subscriber list. Caller
// holds v.mu; delivery happens after unlock.
func (v *Viewer) snapshotLocked() (Snapshot, []func(Snapshot)) {
	snap := Snapshot{
		Phase: v.state.effectivePhase(v.clock.Now()),
		Bets:  v.ledger.Bets(),
	}
	if v.state.session != nil {
		s := *v.state.session
		snap.Session = &s
	}
	subs := make([]func(Snapshot), 0, len(v.subs))
	for _, fn := range v.subs {
		subs = append(subs, fn)
	}
	return snap, subs
}

func publish(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
