package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the caller is not on the operator allow-list.
	ErrUnauthorized = errors.New("operator not authorized")
	// ErrTransport indicates the prompt transport could not create a prompt.
	ErrTransport = errors.New("prompt transport unavailable")
	// ErrUnknownWindow indicates an unrecognized leaderboard window name.
	ErrUnknownWindow = errors.New("unknown leaderboard window")
)

// ValidationError rejects a single question-bank row. It is per-row and
// non-fatal: the batch continues and the row is counted as skipped.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
