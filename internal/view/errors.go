package view

import "errors"

var (
	// ErrSessionInProgress is returned by Start when the viewer already has a
	// non-terminal session. One viewer watches at most one session at a time.
	ErrSessionInProgress = errors.New("a session is already in progress")

	// ErrNoActiveSession is returned by commands that require an active
	// session when the viewer has none.
	ErrNoActiveSession = errors.New("no active session")
)
