package session

import "errors"

// Errors reported by session operations. Failed operations never mutate
// session state.
var (
	// ErrInvalidRoster covers bad player counts and bad or duplicate names.
	ErrInvalidRoster = errors.New("invalid roster")

	// ErrInvalidState is returned when an operation is not valid in the
	// session's current phase.
	ErrInvalidState = errors.New("operation not valid in current game state")

	// ErrTurnOver is returned when a dart is thrown into a turn that is
	// already full or already decided.
	ErrTurnOver = errors.New("turn is over")

	// ErrTurnIncomplete is returned when confirming a turn that still
	// accepts darts.
	ErrTurnIncomplete = errors.New("turn is incomplete")
)
