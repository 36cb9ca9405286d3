package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrTooManyAttempts is returned when a panel stays invalid after the
	// configured number of passes.
	ErrTooManyAttempts = errors.New("tui: panel still invalid")
)
