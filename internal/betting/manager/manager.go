package manager

import (
	"context"
	"sync"
	"time"

	"github.com/hari1098/betsync/internal/models"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Interval used when re-arming sessions recovered from the store; the
// original interval is runtime state and is not persisted.
const recoveredTaskInterval = 15 * time.Second

// BettingApp defines what the manager needs from the betting app.
type BettingApp interface {
	CreateSession(ctx context.Context, sessionID string, durationMinutes int, startTime time.Time) (*models.BettingSession, error)
	GetSession(ctx context.Context, sessionID string) (*models.BettingSession, error)
	DeactivateSession(ctx context.Context, sessionID string) error
	ListActiveSessions(ctx context.Context) ([]models.BettingSession, error)
	LogSessionExtremes(ctx context.Context, sessionID string)
}

// Manager owns the runtime lifecycle of betting sessions: per-session
// periodic reporting tasks and the one-shot expiry timer that closes the
// window. The store is the source of truth for the active flag; the map here
// holds only armed timers, for cancellation.
type Manager struct {
	app   BettingApp
	clock clockwork.Clock

	mu      sync.Mutex
	running map[string]context.CancelFunc
}

// NewManager creates a manager with no armed sessions.
func NewManager(app BettingApp) *Manager {
	return &Manager{
		app:     app,
		clock:   clockwork.NewRealClock(),
		running: make(map[string]context.CancelFunc),
	}
}

// StartSession validates the command, records a new active session and arms
// its timers. The recorded start time is the store's authoritative one.
func (m *Manager) StartSession(ctx context.Context, sessionID string, durationMinutes, taskIntervalSeconds int) (*models.BettingSession, error) {
	if err := models.ValidateSessionParams(sessionID, durationMinutes, taskIntervalSeconds); err != nil {
		return nil, err
	}

	session, err := m.app.CreateSession(ctx, sessionID, durationMinutes, m.clock.Now())
	if err != nil {
		return nil, err
	}

	m.arm(sessionID,
		time.Duration(durationMinutes)*time.Minute,
		time.Duration(taskIntervalSeconds)*time.Second,
	)

	log.Info().
		Str("session_id", sessionID).
		Int("duration_minutes", durationMinutes).
		Int("task_interval_seconds", taskIntervalSeconds).
		Msg("started new betting session")
	return session, nil
}

// StopSession disarms the session's timers and marks it inactive in the
// store. Stopping a session whose timers already fired is not an error.
func (m *Manager) StopSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	cancel, armed := m.running[sessionID]
	delete(m.running, sessionID)
	m.mu.Unlock()

	if armed {
		cancel()
		log.Info().Str("session_id", sessionID).Msg("session timers disarmed")
	} else {
		log.Warn().Str("session_id", sessionID).Msg("stop requested for session with no armed timers")
	}

	session, err := m.app.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.Active {
		return nil
	}
	return m.app.DeactivateSession(ctx, sessionID)
}

// RecoverActiveSessions re-arms sessions left active in the store by a
// previous run. Sessions whose window elapsed while the server was down are
// marked inactive immediately instead of being re-armed.
func (m *Manager) RecoverActiveSessions(ctx context.Context) error {
	sessions, err := m.app.ListActiveSessions(ctx)
	if err != nil {
		return err
	}

	now := m.clock.Now()
	recovered := 0
	for _, session := range sessions {
		remaining, open := session.TimeRemainingAt(now)
		if !open {
			log.Info().
				Str("session_id", session.SessionID).
				Msg("session expired while server was down; marking inactive")
			if err := m.app.DeactivateSession(ctx, session.SessionID); err != nil {
				log.Error().Err(err).Str("session_id", session.SessionID).Msg("failed to deactivate expired session")
			}
			continue
		}

		m.arm(session.SessionID, remaining, recoveredTaskInterval)
		recovered++
		log.Info().
			Str("session_id", session.SessionID).
			Dur("remaining", remaining).
			Msg("re-armed active session from store")
	}

	log.Info().Int("count", recovered).Msg("session manager recovery complete")
	return nil
}

// Shutdown disarms every running session's timers. Store state is left
// untouched so a restart can recover the sessions.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	for sessionID, cancel := range m.running {
		cancel()
		delete(m.running, sessionID)
		log.Debug().Str("session_id", sessionID).Msg("cancelled session timers")
	}
	m.mu.Unlock()
	log.Info().Msg("betting session manager shut down")
}

func (m *Manager) arm(sessionID string, expiresIn, interval time.Duration) {
	m.mu.Lock()
	if cancel, ok := m.running[sessionID]; ok {
		cancel()
	}
	runCtx, cancel := context.WithCancel(context.Background())
	m.running[sessionID] = cancel
	m.mu.Unlock()

	go m.runSession(runCtx, sessionID, expiresIn, interval)
}

// runSession drives one session's timers until the window elapses or the
// session is stopped.
func (m *Manager) runSession(ctx context.Context, sessionID string, expiresIn, interval time.Duration) {
	expiry := m.clock.NewTimer(expiresIn)
	defer stopAndDrainTimer(expiry)
	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			m.app.LogSessionExtremes(ctx, sessionID)
		case <-expiry.Chan():
			log.Info().Str("session_id", sessionID).Msg("session window elapsed; stopping")
			if err := m.StopSession(context.Background(), sessionID); err != nil {
				log.Error().Err(err).Str("session_id", sessionID).Msg("failed to stop expired session")
			}
			return
		}
	}
}

// stopAndDrainTimer safely stops a timer and drains its channel to prevent
// goroutine leaks. This follows the pattern recommended in the
// time.Timer.Stop() documentation.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
