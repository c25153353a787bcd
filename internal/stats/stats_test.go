package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshsmithson/71-checkout/internal/dart"
	"github.com/joshsmithson/71-checkout/internal/session"
)

// TestMerge tests folding deltas into existing statistics.
func TestMerge(t *testing.T) {
	t.Run("nil existing becomes the delta", func(t *testing.T) {
		merged := Merge(nil, Delta{
			GamesPlayed:     1,
			GamesWon:        1,
			TotalScore:      301,
			TurnsTaken:      7,
			HighestCheckout: 121,
		})
		assert.Equal(t, 1, merged.GamesPlayed)
		assert.Equal(t, 1, merged.GamesWon)
		assert.Equal(t, 301, merged.TotalScore)
		assert.Equal(t, 7, merged.TurnsTaken)
		assert.Equal(t, 121, merged.HighestCheckout)
		assert.InDelta(t, 301.0, merged.AverageScore, 1e-9)
	})

	t.Run("counters sum and checkout takes the max", func(t *testing.T) {
		existing := &PlayerStatistics{
			PlayerName:      "Alice",
			GamesPlayed:     3,
			GamesWon:        2,
			TotalScore:      900,
			TurnsTaken:      30,
			HighestCheckout: 100,
		}
		merged := Merge(existing, Delta{
			GamesPlayed:     1,
			TotalScore:      100,
			TurnsTaken:      12,
			HighestCheckout: 60,
		})
		assert.Equal(t, "Alice", merged.PlayerName)
		assert.Equal(t, 4, merged.GamesPlayed)
		assert.Equal(t, 2, merged.GamesWon)
		assert.Equal(t, 1000, merged.TotalScore)
		assert.Equal(t, 42, merged.TurnsTaken)
		assert.Equal(t, 100, merged.HighestCheckout, "existing checkout record stands")
		assert.InDelta(t, 250.0, merged.AverageScore, 1e-9)
	})

	t.Run("zero games guards the average", func(t *testing.T) {
		merged := Merge(nil, Delta{})
		assert.Zero(t, merged.AverageScore)
	})
}

// TestAveragePerTurn tests the turn-level average with the zero guard.
func TestAveragePerTurn(t *testing.T) {
	s := PlayerStatistics{TotalScore: 300, TurnsTaken: 10}
	assert.InDelta(t, 30.0, s.AveragePerTurn(), 1e-9)
	assert.Zero(t, PlayerStatistics{TotalScore: 300}.AveragePerTurn())
}

// TestDeltas derives statistics from a played-out game.
func TestDeltas(t *testing.T) {
	s := session.New(session.GameType301)
	require.NoError(t, s.RenamePlayer(0, "Alice"))
	require.NoError(t, s.AddPlayer("Bob"))
	require.NoError(t, s.Start())

	confirm := func(throws ...dart.Throw) {
		t.Helper()
		for _, th := range throws {
			require.NoError(t, s.Throw(th))
		}
		_, err := s.ConfirmTurn()
		require.NoError(t, err)
	}

	confirm(dart.Triple(20), dart.Triple(20), dart.Triple(20)) // Alice 121
	confirm(dart.Single(20), dart.Single(20), dart.Single(20)) // Bob 241
	confirm(dart.Triple(20), dart.Single(11), dart.InnerBull()) // Alice checks out 121

	require.Equal(t, session.StatusCompleted, s.Status)
	deltas := Deltas(s)
	require.Len(t, deltas, 2)

	alice := deltas["Alice"]
	assert.Equal(t, 1, alice.GamesPlayed)
	assert.Equal(t, 1, alice.GamesWon)
	assert.Equal(t, 301, alice.TotalScore)
	assert.Equal(t, 2, alice.TurnsTaken)
	assert.Equal(t, 121, alice.HighestCheckout, "checkout is the finishing turn's total")

	bob := deltas["Bob"]
	assert.Equal(t, 1, bob.GamesPlayed)
	assert.Equal(t, 0, bob.GamesWon)
	assert.Equal(t, 60, bob.TotalScore)
	assert.Equal(t, 1, bob.TurnsTaken)
	assert.Equal(t, 0, bob.HighestCheckout)
}

// TestDeltas_IncompleteGame tests that only completed games contribute.
func TestDeltas_IncompleteGame(t *testing.T) {
	s := session.New(session.GameType301)
	assert.Nil(t, Deltas(s))

	require.NoError(t, s.Start())
	assert.Nil(t, Deltas(s))
}
