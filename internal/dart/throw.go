// Package dart implements the X01 scoring rules: throw values, turn
// evaluation (bust / checkout / continuation) and checkout suggestions.
package dart

import (
	"errors"
	"fmt"
	"strconv"
)

// Ring identifies the board region a dart landed in.
type Ring string

const (
	RingSingle    Ring = "single"
	RingDouble    Ring = "double"
	RingTriple    Ring = "triple"
	RingOuterBull Ring = "outer_bull"
	RingInnerBull Ring = "inner_bull"
)

// Errors for throw validation.
var (
	ErrInvalidSegment = errors.New("segment must be between 1 and 20")
	ErrInvalidRing    = errors.New("invalid ring")
)

// Throw is a single dart, tagged with the ring it hit rather than a raw
// multiplied value. 50 is always the inner bull here, never a "double 25"
// reconstructed from a point total.
type Throw struct {
	Segment int  `json:"segment"`
	Ring    Ring `json:"ring"`
}

// Single returns a single-segment throw. Single(0) is a miss.
func Single(segment int) Throw { return Throw{Segment: segment, Ring: RingSingle} }

// Double returns a double-segment throw.
func Double(segment int) Throw { return Throw{Segment: segment, Ring: RingDouble} }

// Triple returns a triple-segment throw.
func Triple(segment int) Throw { return Throw{Segment: segment, Ring: RingTriple} }

// OuterBull returns the 25-point outer bull.
func OuterBull() Throw { return Throw{Segment: 25, Ring: RingOuterBull} }

// InnerBull returns the 50-point bullseye.
func InnerBull() Throw { return Throw{Segment: 25, Ring: RingInnerBull} }

// Miss returns a dart that scored nothing.
func Miss() Throw { return Throw{Segment: 0, Ring: RingSingle} }

// ParseRing converts a wire string into a Ring.
func ParseRing(s string) (Ring, error) {
	switch Ring(s) {
	case RingSingle, RingDouble, RingTriple, RingOuterBull, RingInnerBull:
		return Ring(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRing, s)
	}
}

// Validate checks that the segment/ring combination exists on a board.
// The bull only supports single (25) and double (50) scoring, so a triple
// bull is rejected here by construction.
func (t Throw) Validate() error {
	switch t.Ring {
	case RingSingle:
		if t.Segment < 0 || t.Segment > 20 {
			return fmt.Errorf("%w: got %d", ErrInvalidSegment, t.Segment)
		}
		return nil
	case RingDouble, RingTriple:
		if t.Segment < 1 || t.Segment > 20 {
			return fmt.Errorf("%w: got %d", ErrInvalidSegment, t.Segment)
		}
		return nil
	case RingOuterBull, RingInnerBull:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRing, t.Ring)
	}
}

// Value returns the point value of the throw.
func (t Throw) Value() int {
	switch t.Ring {
	case RingSingle:
		return t.Segment
	case RingDouble:
		return t.Segment * 2
	case RingTriple:
		return t.Segment * 3
	case RingOuterBull:
		return 25
	case RingInnerBull:
		return 50
	default:
		return 0
	}
}

// IsDouble reports whether the throw satisfies the double-out rule:
// a double-ring hit or the 50-point bullseye.
func (t Throw) IsDouble() bool {
	return t.Ring == RingDouble || t.Ring == RingInnerBull
}

// Label renders the throw in conventional checkout notation:
// "T20", "D16", "25", "Bull", "7", or "Miss".
func (t Throw) Label() string {
	switch t.Ring {
	case RingSingle:
		if t.Segment == 0 {
			return "Miss"
		}
		return strconv.Itoa(t.Segment)
	case RingDouble:
		return "D" + strconv.Itoa(t.Segment)
	case RingTriple:
		return "T" + strconv.Itoa(t.Segment)
	case RingOuterBull:
		return "25"
	case RingInnerBull:
		return "Bull"
	default:
		return "?"
	}
}
