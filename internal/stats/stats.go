// Package stats derives cumulative per-player statistics from completed
// games and defines the merge policy for folding new results into stored
// aggregates.
package stats

import "github.com/joshsmithson/71-checkout/internal/session"

// PlayerStatistics is the cumulative record for one (user, player name)
// pair. AverageScore is derived: total score over games played.
type PlayerStatistics struct {
	PlayerName      string  `json:"playerName"`
	GamesPlayed     int     `json:"gamesPlayed"`
	GamesWon        int     `json:"gamesWon"`
	TotalScore      int     `json:"totalScore"`
	TurnsTaken      int     `json:"turnsTaken"`
	HighestCheckout int     `json:"highestCheckout"`
	AverageScore    float64 `json:"averageScore"`
}

// AveragePerTurn is the turn-level scoring average.
func (s PlayerStatistics) AveragePerTurn() float64 {
	if s.TurnsTaken == 0 {
		return 0
	}
	return float64(s.TotalScore) / float64(s.TurnsTaken)
}

// Delta is one game's contribution to a player's statistics.
type Delta struct {
	GamesPlayed     int
	GamesWon        int
	TotalScore      int
	TurnsTaken      int
	HighestCheckout int
}

// Merge folds a delta into existing statistics. With a nil existing record
// the delta becomes the record. The counters sum and the highest checkout
// takes the maximum, so merges commute and associate; the average is
// recomputed from the merged totals with a zero-games guard.
func Merge(existing *PlayerStatistics, delta Delta) PlayerStatistics {
	merged := PlayerStatistics{
		GamesPlayed:     delta.GamesPlayed,
		GamesWon:        delta.GamesWon,
		TotalScore:      delta.TotalScore,
		TurnsTaken:      delta.TurnsTaken,
		HighestCheckout: delta.HighestCheckout,
	}
	if existing != nil {
		merged.PlayerName = existing.PlayerName
		merged.GamesPlayed += existing.GamesPlayed
		merged.GamesWon += existing.GamesWon
		merged.TotalScore += existing.TotalScore
		merged.TurnsTaken += existing.TurnsTaken
		if existing.HighestCheckout > merged.HighestCheckout {
			merged.HighestCheckout = existing.HighestCheckout
		}
	}
	if merged.GamesPlayed > 0 {
		merged.AverageScore = float64(merged.TotalScore) / float64(merged.GamesPlayed)
	}
	return merged
}

// Deltas derives each player's contribution from a completed session:
// one game played, a win and the finishing-turn total for the winner, the
// points actually scored (starting score minus remaining) and the number
// of confirmed turns taken, busts included.
func Deltas(s *session.Session) map[string]Delta {
	if s.Status != session.StatusCompleted {
		return nil
	}

	start := s.GameType.StartingScore()
	turns := make(map[string]int, len(s.Players))
	for _, rec := range s.TurnLog {
		turns[rec.PlayerName]++
	}

	var checkout int
	if n := len(s.TurnLog); n > 0 {
		final := s.TurnLog[n-1]
		checkout = final.ScoreBefore - final.ScoreAfter
	}

	deltas := make(map[string]Delta, len(s.Players))
	for _, p := range s.Players {
		d := Delta{
			GamesPlayed: 1,
			TotalScore:  start - p.Score,
			TurnsTaken:  turns[p.Name],
		}
		if p.Name == s.Winner {
			d.GamesWon = 1
			d.HighestCheckout = checkout
		}
		deltas[p.Name] = d
	}
	return deltas
}
