package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joshsmithson/71-checkout/internal/stats"
)

// ErrStatsNotFound is returned when no statistics exist for a player.
var ErrStatsNotFound = errors.New("player statistics not found")

// StatsRepository persists cumulative per-player statistics keyed by
// (user_id, player_name).
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository instance.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

const statsColumns = `player_name, games_played, games_won, total_score, turns_taken, highest_checkout, average_score`

// Fetch retrieves one player's statistics.
// Returns ErrStatsNotFound if the player has no recorded games.
func (r *StatsRepository) Fetch(ctx context.Context, userID, playerName string) (*stats.PlayerStatistics, error) {
	var s stats.PlayerStatistics
	err := r.pool.QueryRow(ctx, `
		SELECT `+statsColumns+`
		FROM player_statistics
		WHERE user_id = $1 AND player_name = $2
	`, userID, playerName).Scan(
		&s.PlayerName,
		&s.GamesPlayed,
		&s.GamesWon,
		&s.TotalScore,
		&s.TurnsTaken,
		&s.HighestCheckout,
		&s.AverageScore,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatsNotFound
		}
		return nil, fmt.Errorf("failed to fetch statistics: %w", err)
	}
	return &s, nil
}

// FetchAll retrieves every player's statistics for a user, most games won
// first.
func (r *StatsRepository) FetchAll(ctx context.Context, userID string) ([]*stats.PlayerStatistics, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+statsColumns+`
		FROM player_statistics
		WHERE user_id = $1
		ORDER BY games_won DESC, average_score DESC, player_name ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statistics: %w", err)
	}
	defer rows.Close()

	var all []*stats.PlayerStatistics
	for rows.Next() {
		var s stats.PlayerStatistics
		err := rows.Scan(
			&s.PlayerName,
			&s.GamesPlayed,
			&s.GamesWon,
			&s.TotalScore,
			&s.TurnsTaken,
			&s.HighestCheckout,
			&s.AverageScore,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statistics: %w", err)
		}
		all = append(all, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statistics: %w", err)
	}
	return all, nil
}

// MergeUpsert folds one game's delta into the stored aggregate and returns
// the merged row. The arithmetic runs inside a single conditional upsert,
// so two overlapping game completions for the same (user, player) key
// serialize on the row and neither delta is lost — a plain fetch-then-
// overwrite would drop one side under that race.
func (r *StatsRepository) MergeUpsert(ctx context.Context, userID, playerName string, d stats.Delta) (*stats.PlayerStatistics, error) {
	avg := 0.0
	if d.GamesPlayed > 0 {
		avg = float64(d.TotalScore) / float64(d.GamesPlayed)
	}

	var s stats.PlayerStatistics
	err := r.pool.QueryRow(ctx, `
		INSERT INTO player_statistics
			(user_id, player_name, games_played, games_won, total_score, turns_taken, highest_checkout, average_score, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (user_id, player_name) DO UPDATE SET
			games_played     = player_statistics.games_played + EXCLUDED.games_played,
			games_won        = player_statistics.games_won + EXCLUDED.games_won,
			total_score      = player_statistics.total_score + EXCLUDED.total_score,
			turns_taken      = player_statistics.turns_taken + EXCLUDED.turns_taken,
			highest_checkout = GREATEST(player_statistics.highest_checkout, EXCLUDED.highest_checkout),
			average_score    = COALESCE(
				(player_statistics.total_score + EXCLUDED.total_score)::double precision
					/ NULLIF(player_statistics.games_played + EXCLUDED.games_played, 0),
				0),
			updated_at       = NOW()
		RETURNING `+statsColumns+`
	`, userID, playerName, d.GamesPlayed, d.GamesWon, d.TotalScore, d.TurnsTaken, d.HighestCheckout, avg).Scan(
		&s.PlayerName,
		&s.GamesPlayed,
		&s.GamesWon,
		&s.TotalScore,
		&s.TurnsTaken,
		&s.HighestCheckout,
		&s.AverageScore,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to merge statistics: %w", err)
	}
	return &s, nil
}

// Leaderboard returns the user's top players by games won, then average.
func (r *StatsRepository) Leaderboard(ctx context.Context, userID string, limit int) ([]*stats.PlayerStatistics, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+statsColumns+`
		FROM player_statistics
		WHERE user_id = $1
		ORDER BY games_won DESC, average_score DESC, player_name ASC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer rows.Close()

	var board []*stats.PlayerStatistics
	for rows.Next() {
		var s stats.PlayerStatistics
		err := rows.Scan(
			&s.PlayerName,
			&s.GamesPlayed,
			&s.GamesWon,
			&s.TotalScore,
			&s.TurnsTaken,
			&s.HighestCheckout,
			&s.AverageScore,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		board = append(board, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard: %w", err)
	}
	return board, nil
}
