package dart

import (
	"strconv"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// parseToken decodes a checkout token back into (points, isDouble).
func parseToken(label string) (int, bool) {
	switch {
	case label == "Bull":
		return 50, true
	case label == "25":
		return 25, false
	case strings.HasPrefix(label, "T"):
		n, _ := strconv.Atoi(label[1:])
		return n * 3, false
	case strings.HasPrefix(label, "D"):
		n, _ := strconv.Atoi(label[1:])
		return n * 2, true
	default:
		n, _ := strconv.Atoi(label)
		return n, false
	}
}

// TestSuggestRouteValidityProperty verifies that for any score in [2,170]
// every suggested route is a legal finish: at most three darts, values
// summing to the score, ending on a double or the bullseye. Scores the
// predicate rejects must produce no routes, and every accepted score must
// produce at least one.
func TestSuggestRouteValidityProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		score := rapid.IntRange(2, MaxCheckout).Draw(t, "score")
		routes := Suggest(score)

		if !CanCheckout(score) {
			if len(routes) != 0 {
				t.Fatalf("score %d has no finish but got routes %v", score, routes)
			}
			return
		}

		if len(routes) == 0 || len(routes) > 2 {
			t.Fatalf("score %d: expected 1 or 2 routes, got %v", score, routes)
		}
		for _, route := range routes {
			tokens := strings.Fields(route)
			if len(tokens) == 0 || len(tokens) > 3 {
				t.Fatalf("score %d: route %q has %d darts", score, route, len(tokens))
			}
			sum := 0
			for _, tok := range tokens {
				v, _ := parseToken(tok)
				sum += v
			}
			if sum != score {
				t.Fatalf("score %d: route %q sums to %d", score, route, sum)
			}
			_, isDouble := parseToken(tokens[len(tokens)-1])
			if !isDouble {
				t.Fatalf("score %d: route %q does not end on a double", score, route)
			}
		}
	})
}

// TestEvaluateBustPreservesScoreProperty verifies that a bust never changes
// the score and a non-bust three-dart turn always subtracts the full turn
// total.
func TestEvaluateBustPreservesScoreProperty(t *testing.T) {
	gen := rapid.Custom(func(t *rapid.T) Throw {
		switch rapid.IntRange(0, 4).Draw(t, "ring") {
		case 0:
			return Single(rapid.IntRange(0, 20).Draw(t, "segment"))
		case 1:
			return Double(rapid.IntRange(1, 20).Draw(t, "segment"))
		case 2:
			return Triple(rapid.IntRange(1, 20).Draw(t, "segment"))
		case 3:
			return OuterBull()
		default:
			return InnerBull()
		}
	})

	rapid.Check(t, func(t *rapid.T) {
		scoreBefore := rapid.IntRange(2, 501).Draw(t, "scoreBefore")
		throws := []Throw{
			gen.Draw(t, "first"),
			gen.Draw(t, "second"),
			gen.Draw(t, "third"),
		}

		outcome, err := Evaluate(scoreBefore, throws)
		if err != nil {
			t.Fatalf("three-dart turn must evaluate: %v", err)
		}

		sum := 0
		for _, th := range throws {
			sum += th.Value()
		}

		switch {
		case outcome.IsBust:
			if outcome.ScoreAfter != scoreBefore {
				t.Fatalf("bust changed score: before=%d after=%d", scoreBefore, outcome.ScoreAfter)
			}
		case outcome.IsCheckout:
			if scoreBefore-sum != 0 {
				t.Fatalf("checkout with nonzero remainder: before=%d sum=%d", scoreBefore, sum)
			}
			if !throws[2].IsDouble() {
				t.Fatalf("checkout without a final double: %v", throws)
			}
		default:
			if outcome.ScoreAfter != scoreBefore-sum {
				t.Fatalf("continuation score wrong: before=%d sum=%d after=%d", scoreBefore, sum, outcome.ScoreAfter)
			}
			if outcome.ScoreAfter < 2 {
				t.Fatalf("continuation left unplayable score %d", outcome.ScoreAfter)
			}
		}
	})
}
