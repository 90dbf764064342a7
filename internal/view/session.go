package view

import (
	"time"

	"github.com/hari1098/betsync/internal/models"
)

// Phase is the viewer-local lifecycle phase of the mirrored session.
type Phase int

const (
	PhaseNoSession Phase = iota
	PhaseStarting
	PhaseActive
	PhaseStopping
	PhaseStopped
	PhaseExpired
)

func (p Phase) String() string {
	switch p {
	case PhaseNoSession:
		return "NO_SESSION"
	case PhaseStarting:
		return "STARTING"
	case PhaseActive:
		return "ACTIVE"
	case PhaseStopping:
		return "STOPPING"
	case PhaseStopped:
		return "STOPPED"
	case PhaseExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// terminal reports whether a new session may be started from this phase.
func (p Phase) terminal() bool {
	return p == PhaseNoSession || p == PhaseStopped || p == PhaseExpired
}

// stateMachine tracks the mirrored session value and the command-driven
// phase. Expiry is never commanded: it is derived from the clock on every
// query, so a session can read as Expired while the Active mirror still says
// true, until the next status refresh corrects it.
//
// Not safe for concurrent use; the Viewer guards it with its own mutex.
type stateMachine struct {
	phase   Phase
	session *models.BettingSession
}

// canStart reports whether a start command is legal right now.
func (m *stateMachine) canStart() bool {
	return m.phase.terminal()
}

// activate installs a freshly started session. The start time comes from the
// provider's response, not the local clock, so clock skew between viewer and
// provider does not shift the window.
func (m *stateMachine) activate(s *models.BettingSession) {
	m.session = s
	m.phase = PhaseActive
}

// applyStatus overwrites the mirror with a status-poll snapshot.
func (m *stateMachine) applyStatus(s *models.BettingSession) {
	m.session = s
	if s == nil {
		m.phase = PhaseNoSession
		return
	}
	if s.Active {
		m.phase = PhaseActive
	} else {
		m.phase = PhaseStopped
	}
}

// clear drops the mirror entirely. Used when the provider is unreachable:
// losing sight of the session must be visible immediately rather than leaving
// a stale "active" view in place.
func (m *stateMachine) clear() {
	m.session = nil
	m.phase = PhaseNoSession
}

// stop marks the session stopped and clears the local view of it.
func (m *stateMachine) stop() {
	m.session = nil
	m.phase = PhaseStopped
}

// effectivePhase derives the externally visible phase as of now.
func (m *stateMachine) effectivePhase(now time.Time) Phase {
	if m.phase == PhaseActive && m.session != nil && m.session.ExpiredAt(now) {
		return PhaseExpired
	}
	return m.phase
}

// timeRemaining returns the time left in the current window as of now. The
// boolean is false when there is no session or the window has closed; the
// duration is never negative.
func (m *stateMachine) timeRemaining(now time.Time) (time.Duration, bool) {
	if m.session == nil {
		return 0, false
	}
	return m.session.TimeRemainingAt(now)
}
