package betting

import "errors"

var (
	// ErrSessionExists means the sessionId was used before. Session IDs are
	// never reusable, even after the original session ended.
	ErrSessionExists = errors.New("betting session already exists")

	// ErrSessionNotFound means no session with that ID is known.
	ErrSessionNotFound = errors.New("betting session not found")

	// ErrNoBets means the session exists but holds no bets yet. Callers can
	// tell this apart from a store failure.
	ErrNoBets = errors.New("no bets recorded for session")
)

// RuleError reports a bet rejected by the betting rules. It maps to a 400
// with the rule text as the response body.
type RuleError struct {
	Msg string
}

func (e *RuleError) Error() string {
	return e.Msg
}
