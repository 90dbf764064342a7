package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hari1098/betsync/internal/models"
)

func newTestSession(start time.Time, minutes int) *models.BettingSession {
	return &models.BettingSession{
		SessionID:       "session-1",
		StartTime:       start,
		DurationMinutes: minutes,
		Active:          true,
	}
}

func TestStateMachineStartsOnlyFromTerminalPhases(t *testing.T) {
	tests := []struct {
		phase    Phase
		canStart bool
	}{
		{PhaseNoSession, true},
		{PhaseStarting, false},
		{PhaseActive, false},
		{PhaseStopping, false},
		{PhaseStopped, true},
		{PhaseExpired, true},
	}

	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			m := stateMachine{phase: tt.phase}
			assert.Equal(t, tt.canStart, m.canStart())
		})
	}
}

func TestEffectivePhaseDerivesExpiryFromClock(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := stateMachine{}
	m.activate(newTestSession(start, 5))

	assert.Equal(t, PhaseActive, m.effectivePhase(start.Add(4*time.Minute)))
	assert.Equal(t, PhaseExpired, m.effectivePhase(start.Add(5*time.Minute)))
	assert.Equal(t, PhaseExpired, m.effectivePhase(start.Add(time.Hour)))

	// Expiry is derived, not stored: the underlying phase stays Active so a
	// later status refresh can still overwrite it.
	assert.Equal(t, PhaseActive, m.phase)
}

func TestApplyStatusOverwritesMirror(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := stateMachine{}
	m.activate(newTestSession(start, 5))

	inactive := newTestSession(start, 5)
	inactive.Active = false
	m.applyStatus(inactive)
	assert.Equal(t, PhaseStopped, m.phase)

	active := newTestSession(start, 5)
	m.applyStatus(active)
	assert.Equal(t, PhaseActive, m.phase)

	m.applyStatus(nil)
	assert.Equal(t, PhaseNoSession, m.phase)
	assert.Nil(t, m.session)
}

func TestTimeRemainingNeverNegative(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := stateMachine{}

	_, ok := m.timeRemaining(start)
	assert.False(t, ok, "no session should report no remaining time")

	m.activate(newTestSession(start, 5))

	remaining, ok := m.timeRemaining(start.Add(2 * time.Minute))
	require.True(t, ok)
	assert.Equal(t, 3*time.Minute, remaining)

	remaining, ok = m.timeRemaining(start.Add(10 * time.Minute))
	assert.False(t, ok)
	assert.Equal(t, time.Duration(0), remaining)
}

func TestStopClearsMirror(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := stateMachine{}
	m.activate(newTestSession(start, 5))

	m.stop()
	assert.Equal(t, PhaseStopped, m.phase)
	assert.Nil(t, m.session)
	assert.True(t, m.canStart())
}
