package models

import (
	"time"
)

// BettingSession represents one time-boxed betting window. The provider's
// store is the authority for Active; clients only mirror it.
type BettingSession struct {
	SessionID       string    `json:"sessionId"`
	StartTime       time.Time `json:"startTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Active          bool      `json:"active"`
}

// ExpiresAt returns the hard expiry instant of the session window.
func (s *BettingSession) ExpiresAt() time.Time {
	return s.StartTime.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// ExpiredAt reports whether the window has closed as of now, regardless of
// what the Active mirror says.
func (s *BettingSession) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt())
}

// TimeRemainingAt returns the time left in the window as of now. The second
// return is false once the window has closed; the duration is never negative.
func (s *BettingSession) TimeRemainingAt(now time.Time) (time.Duration, bool) {
	remaining := s.ExpiresAt().Sub(now)
	if remaining <= 0 {
		return 0, false
	}
	return remaining, true
}
