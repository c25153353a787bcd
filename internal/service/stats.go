package service

import (
	"context"
	"fmt"

	"github.com/joshsmithson/71-checkout/internal/model"
	"github.com/joshsmithson/71-checkout/internal/stats"
)

// HistoryStore is the read side of session persistence.
type HistoryStore interface {
	FetchHistory(ctx context.Context, userID string) ([]*model.GameSession, error)
}

// StatsReader is the read side of statistics persistence.
type StatsReader interface {
	Fetch(ctx context.Context, userID, playerName string) (*stats.PlayerStatistics, error)
	FetchAll(ctx context.Context, userID string) ([]*stats.PlayerStatistics, error)
	Leaderboard(ctx context.Context, userID string, limit int) ([]*stats.PlayerStatistics, error)
}

// StatsService serves game history, per-player statistics and the
// leaderboard.
type StatsService struct {
	history HistoryStore
	stats   StatsReader
	limit   int
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(history HistoryStore, statsReader StatsReader, leaderboardLimit int) *StatsService {
	if leaderboardLimit <= 0 {
		leaderboardLimit = 10
	}
	return &StatsService{
		history: history,
		stats:   statsReader,
		limit:   leaderboardLimit,
	}
}

// History returns the user's games, newest first.
func (s *StatsService) History(ctx context.Context, userID string) ([]*model.GameSession, error) {
	sessions, err := s.history.FetchHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return sessions, nil
}

// PlayerStatistics returns one player's cumulative statistics.
func (s *StatsService) PlayerStatistics(ctx context.Context, userID, playerName string) (*stats.PlayerStatistics, error) {
	return s.stats.Fetch(ctx, userID, playerName)
}

// Statistics returns every tracked player's statistics for the user.
func (s *StatsService) Statistics(ctx context.Context, userID string) ([]*stats.PlayerStatistics, error) {
	all, err := s.stats.FetchAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return all, nil
}

// Leaderboard returns the user's top players.
func (s *StatsService) Leaderboard(ctx context.Context, userID string) ([]*stats.PlayerStatistics, error) {
	board, err := s.stats.Leaderboard(ctx, userID, s.limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return board, nil
}
