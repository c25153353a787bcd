package dart

import "errors"

// Errors for turn evaluation.
var (
	ErrNoThrows       = errors.New("turn has no throws")
	ErrTooManyThrows  = errors.New("turn has more than three throws")
	ErrTurnIncomplete = errors.New("turn is incomplete")
)

// Outcome is the result of evaluating a confirmed turn.
type Outcome struct {
	ScoreAfter int
	IsBust     bool
	IsCheckout bool
}

// Evaluate applies a turn's throws to the player's score.
//
// candidate = scoreBefore - sum(throws). The turn is a bust when candidate
// is negative, exactly 1 (unreachable under double-out), or exactly 0
// without the final recorded dart being a double or the bullseye; a bust
// discards the turn and leaves the score unchanged. candidate == 0 with a
// double-type final dart is a checkout. Anything else continues play with
// ScoreAfter = candidate.
//
// A turn normally holds exactly three throws. Shorter turns are accepted
// only when they are already decided (candidate below 2): the caller stops
// collecting darts once the score hits zero or the turn is a guaranteed
// bust. An undecided short turn returns ErrTurnIncomplete.
func Evaluate(scoreBefore int, throws []Throw) (Outcome, error) {
	if len(throws) == 0 {
		return Outcome{}, ErrNoThrows
	}
	if len(throws) > 3 {
		return Outcome{}, ErrTooManyThrows
	}

	sum := 0
	for _, t := range throws {
		sum += t.Value()
	}
	candidate := scoreBefore - sum
	last := throws[len(throws)-1]

	switch {
	case candidate < 0 || candidate == 1:
		return Outcome{ScoreAfter: scoreBefore, IsBust: true}, nil
	case candidate == 0 && last.IsDouble():
		return Outcome{ScoreAfter: 0, IsCheckout: true}, nil
	case candidate == 0:
		return Outcome{ScoreAfter: scoreBefore, IsBust: true}, nil
	case len(throws) < 3:
		return Outcome{}, ErrTurnIncomplete
	default:
		return Outcome{ScoreAfter: candidate}, nil
	}
}
