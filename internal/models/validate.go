package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Bounds of the session command contract. Enforced before any network or
// store call, on both the client and the provider side.
const (
	MinSessionIDLen        = 3
	MinDurationMinutes     = 1
	MaxDurationMinutes     = 60
	MinTaskIntervalSeconds = 5
	MaxTaskIntervalSeconds = 60
)

// ValidationError reports a malformed command input. It is surfaced
// synchronously to the caller and never reaches the wire.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateSessionParams checks the start-command inputs against the contract
// bounds.
func ValidateSessionParams(sessionID string, durationMinutes, taskIntervalSeconds int) error {
	if len(sessionID) < MinSessionIDLen {
		return &ValidationError{Field: "sessionId", Reason: fmt.Sprintf("must be at least %d characters", MinSessionIDLen)}
	}
	if durationMinutes < MinDurationMinutes || durationMinutes > MaxDurationMinutes {
		return &ValidationError{Field: "durationMinutes", Reason: fmt.Sprintf("must be between %d and %d", MinDurationMinutes, MaxDurationMinutes)}
	}
	if taskIntervalSeconds < MinTaskIntervalSeconds || taskIntervalSeconds > MaxTaskIntervalSeconds {
		return &ValidationError{Field: "taskIntervalSeconds", Reason: fmt.Sprintf("must be between %d and %d", MinTaskIntervalSeconds, MaxTaskIntervalSeconds)}
	}
	return nil
}

// ValidateBet checks bet-command inputs before any network or store call.
func ValidateBet(ticketID int, amount decimal.Decimal) error {
	if ticketID <= 0 {
		return &ValidationError{Field: "ticketId", Reason: "must be a positive integer"}
	}
	if !amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	return nil
}
