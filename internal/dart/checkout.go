package dart

import (
	"strings"
	"sync"
)

// MaxCheckout is the highest score finishable with three darts
// (T20, T20, Bull).
const MaxCheckout = 170

// Scores in [2,170] that cannot be finished with three darts.
var noCheckout = map[int]bool{
	159: true, 162: true, 163: true,
	165: true, 166: true, 168: true, 169: true,
}

// CanCheckout reports whether a remaining score has a valid finish.
func CanCheckout(remaining int) bool {
	return remaining >= 2 && remaining <= MaxCheckout && !noCheckout[remaining]
}

var (
	tableOnce     sync.Once
	checkoutTable map[int][]string
)

// Suggest returns up to two suggested finishes for the remaining score,
// preferred route first. The last dart of every suggestion is a double or
// the bullseye. Scores with no valid finish (0, 1, anything above 170 and
// the known dead scores such as 159 and 169) yield an empty slice, never an
// error.
func Suggest(remaining int) []string {
	tableOnce.Do(buildTable)

	routes := checkoutTable[remaining]
	out := make([]string, len(routes))
	copy(out, routes)
	return out
}

// buildTable precomputes the finish table for every checkable score. The
// table is static domain data; computing it once is cheaper to maintain
// than 160 hand-typed entries and guarantees every route is a legal board
// combination ending on a double.
func buildTable() {
	checkoutTable = make(map[int][]string, MaxCheckout)
	for score := 2; score <= MaxCheckout; score++ {
		if routes := findRoutes(score, 2); len(routes) > 0 {
			checkoutTable[score] = routes
		}
	}
}

// openers lists non-final darts in preference order: big trebles first,
// then the bulls, then singles, then doubles.
func openers() []Throw {
	ts := make([]Throw, 0, 62)
	for seg := 20; seg >= 1; seg-- {
		ts = append(ts, Triple(seg))
	}
	ts = append(ts, InnerBull(), OuterBull())
	for seg := 20; seg >= 1; seg-- {
		ts = append(ts, Single(seg))
	}
	for seg := 20; seg >= 1; seg-- {
		ts = append(ts, Double(seg))
	}
	return ts
}

// finisher returns the single dart that ends the game on score, if any:
// an even score up to 40 takes its double, 50 takes the bullseye.
func finisher(score int) (Throw, bool) {
	if score == 50 {
		return InnerBull(), true
	}
	if score >= 2 && score <= 40 && score%2 == 0 {
		return Double(score / 2), true
	}
	return Throw{}, false
}

// findRoutes collects up to max finish routes for score, shortest routes
// first, each starting with a distinct opening dart.
func findRoutes(score, max int) []string {
	var routes []string
	seenOpener := map[string]bool{}

	add := func(darts ...Throw) {
		opener := darts[0].Label()
		if seenOpener[opener] {
			return
		}
		seenOpener[opener] = true
		labels := make([]string, len(darts))
		for i, d := range darts {
			labels[i] = d.Label()
		}
		routes = append(routes, strings.Join(labels, " "))
	}

	if f, ok := finisher(score); ok {
		add(f)
	}
	for _, first := range openers() {
		if len(routes) >= max {
			return routes
		}
		rest := score - first.Value()
		if f, ok := finisher(rest); ok {
			add(first, f)
		}
	}
	for _, first := range openers() {
		if len(routes) >= max {
			return routes
		}
		rest := score - first.Value()
		if rest < 2 {
			continue
		}
		for _, second := range openers() {
			if f, ok := finisher(rest - second.Value()); ok {
				add(first, second, f)
				break
			}
		}
	}
	if len(routes) > max {
		routes = routes[:max]
	}
	return routes
}
