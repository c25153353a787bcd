// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/joshsmithson/71-checkout/internal/dart"
	"github.com/joshsmithson/71-checkout/internal/model"
	"github.com/joshsmithson/71-checkout/internal/pkg/lock"
	"github.com/joshsmithson/71-checkout/internal/session"
	"github.com/joshsmithson/71-checkout/internal/stats"
)

// ErrPersistence wraps opaque storage failures. The in-memory session is
// not rolled back when a write fails; the caller decides how to reconcile.
var ErrPersistence = errors.New("persistence failure")

// SessionStore is the session persistence the game flow needs.
type SessionStore interface {
	Create(ctx context.Context, sess *model.GameSession) error
	RecordTurn(ctx context.Context, sessionID string, turn model.SessionTurn) error
	Complete(ctx context.Context, sessionID, winnerName string, finalScores map[string]int) error
	MarkAbandoned(ctx context.Context, sessionID string) error
}

// StatsStore is the statistics persistence the game flow needs. The merge
// must be atomic in the store; see the repository implementation.
type StatsStore interface {
	MergeUpsert(ctx context.Context, userID, playerName string, d stats.Delta) (*stats.PlayerStatistics, error)
}

// GameState is a copy of a user's game, built under the user's lock.
// It aliases no live session memory, so callers may read and encode it
// freely while other requests mutate the game.
type GameState struct {
	session.Snapshot
	Suggestions []string `json:"suggestions"`
}

// GameService owns each user's live session and drives the turn flow:
// collect darts, confirm turns, persist the turn log, and on a win close
// out the session and merge statistics. Live sessions never cross the
// per-user lock boundary; every method hands out GameState copies.
type GameService struct {
	sessions *session.Manager
	store    SessionStore
	stats    StatsStore
	locks    *lock.UserLock
	log      zerolog.Logger

	defaultType session.GameType
}

// NewGameService creates a new GameService instance.
func NewGameService(store SessionStore, statsStore StatsStore, defaultType session.GameType, log zerolog.Logger) *GameService {
	return &GameService{
		sessions:    session.NewManager(),
		store:       store,
		stats:       statsStore,
		locks:       lock.NewUserLock(),
		log:         log.With().Str("component", "game").Logger(),
		defaultType: defaultType,
	}
}

// current returns the user's live session, creating a NotStarted one on
// first access. The caller must hold the user's lock.
func (s *GameService) current(userID string) *session.Session {
	return s.sessions.GetOrCreate(userID, s.defaultType)
}

// snapshot copies the session and attaches checkout advice for the current
// player's effective remaining score. The caller must hold the user's lock.
func (s *GameService) snapshot(sess *session.Session) GameState {
	st := GameState{Snapshot: sess.Snapshot()}
	if st.Status == session.StatusInProgress {
		st.Suggestions = dart.Suggest(st.Remaining)
	}
	return st
}

// State returns a copy of the user's game, creating a NotStarted one on
// first access.
func (s *GameService) State(userID string) GameState {
	var st GameState
	_ = s.locks.WithLock(userID, func() error {
		st = s.snapshot(s.current(userID))
		return nil
	})
	return st
}

// Suggestions returns checkout advice for the current player's effective
// remaining score (pending darts applied). Empty outside of play or when
// no finish exists.
func (s *GameService) Suggestions(userID string) []string {
	return s.State(userID).Suggestions
}

// SetGameType changes the pending game's type.
func (s *GameService) SetGameType(userID string, gt session.GameType) error {
	return s.locks.WithLock(userID, func() error {
		return s.current(userID).SetGameType(gt)
	})
}

// AddPlayer adds a player to the pending game's roster.
func (s *GameService) AddPlayer(userID, name string) error {
	return s.locks.WithLock(userID, func() error {
		return s.current(userID).AddPlayer(name)
	})
}

// RemovePlayer removes the player at index from the pending game's roster.
func (s *GameService) RemovePlayer(userID string, index int) error {
	return s.locks.WithLock(userID, func() error {
		return s.current(userID).RemovePlayer(index)
	})
}

// RenamePlayer renames the player at index in the pending game's roster.
func (s *GameService) RenamePlayer(userID string, index int, name string) error {
	return s.locks.WithLock(userID, func() error {
		return s.current(userID).RenamePlayer(index, name)
	})
}

// StartGame starts the user's pending game and persists the new session.
// A completed game is replaced by a fresh one with the same roster first,
// so "play again" works without an explicit reset.
func (s *GameService) StartGame(ctx context.Context, userID string, gt session.GameType) (GameState, error) {
	var st GameState
	err := s.locks.WithLock(userID, func() error {
		sess := s.current(userID)
		if sess.Status == session.StatusCompleted {
			sess = sess.Reset()
			s.sessions.Put(userID, sess)
		}
		if err := sess.SetGameType(gt); err != nil {
			return err
		}
		if err := sess.Start(); err != nil {
			return err
		}

		record := &model.GameSession{
			ID:            sess.ID.String(),
			UserID:        userID,
			GameType:      string(sess.GameType),
			StartingScore: sess.GameType.StartingScore(),
			Status:        model.SessionInProgress,
		}
		for i, p := range sess.Players {
			record.Players = append(record.Players, model.SessionPlayer{
				SessionID:  record.ID,
				PlayerName: p.Name,
				Position:   i + 1,
			})
		}
		st = s.snapshot(sess)
		if err := s.store.Create(ctx, record); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return GameState{}, err
	}

	s.log.Info().
		Str("session_id", st.ID.String()).
		Str("game_type", string(st.GameType)).
		Int("players", len(st.Players)).
		Msg("Game started")
	return st, nil
}

// Throw records one dart into the current player's pending turn.
func (s *GameService) Throw(userID string, t dart.Throw) (GameState, error) {
	var st GameState
	err := s.locks.WithLock(userID, func() error {
		sess := s.current(userID)
		if err := sess.Throw(t); err != nil {
			return err
		}
		st = s.snapshot(sess)
		return nil
	})
	if err != nil {
		return GameState{}, err
	}
	return st, nil
}

// CancelTurn discards the current player's pending throws.
func (s *GameService) CancelTurn(userID string) error {
	return s.locks.WithLock(userID, func() error {
		return s.current(userID).CancelTurn()
	})
}

// ConfirmResult is the outcome of a confirmed turn.
type ConfirmResult struct {
	Record session.TurnRecord
	State  GameState
}

// ConfirmTurn confirms the pending turn and persists the outcome: the turn
// record always, and on a checkout the session completion plus a
// statistics merge for every player. The in-memory update is applied
// before the writes; persistence failures surface without rolling it back.
func (s *GameService) ConfirmTurn(ctx context.Context, userID string) (*ConfirmResult, error) {
	var result ConfirmResult
	err := s.locks.WithLock(userID, func() error {
		sess := s.current(userID)
		record, err := sess.ConfirmTurn()
		if err != nil {
			return err
		}
		result = ConfirmResult{Record: record, State: s.snapshot(sess)}

		turn := model.SessionTurn{
			SessionID:   sess.ID.String(),
			PlayerName:  record.PlayerName,
			TurnNumber:  record.TurnNumber,
			Throws:      record.Throws[:],
			ScoreBefore: record.ScoreBefore,
			ScoreAfter:  record.ScoreAfter,
			IsBust:      record.IsBust,
		}
		if err := s.store.RecordTurn(ctx, sess.ID.String(), turn); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}

		if sess.Status != session.StatusCompleted {
			return nil
		}
		return s.finishGame(ctx, userID, sess)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// finishGame closes out a won session: final scores, winner, and one
// statistics merge per player. The caller must hold the user's lock.
func (s *GameService) finishGame(ctx context.Context, userID string, sess *session.Session) error {
	finalScores := make(map[string]int, len(sess.Players))
	for _, p := range sess.Players {
		finalScores[p.Name] = p.Score
	}
	if err := s.store.Complete(ctx, sess.ID.String(), sess.Winner, finalScores); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	var merged error
	for name, delta := range stats.Deltas(sess) {
		if _, err := s.stats.MergeUpsert(ctx, userID, name, delta); err != nil {
			merged = errors.Join(merged, fmt.Errorf("%w: merge for %q: %v", ErrPersistence, name, err))
		}
	}
	if merged != nil {
		return merged
	}

	s.log.Info().
		Str("session_id", sess.ID.String()).
		Str("winner", sess.Winner).
		Msg("Game completed")
	return nil
}

// Reset abandons the user's current game and installs a fresh NotStarted
// session with the same roster. An in-progress game is marked abandoned in
// storage (best effort: the reset proceeds even if that write fails).
func (s *GameService) Reset(ctx context.Context, userID string) (GameState, error) {
	var st GameState
	err := s.locks.WithLock(userID, func() error {
		sess := s.current(userID)
		if sess.Status == session.StatusInProgress {
			if err := s.store.MarkAbandoned(ctx, sess.ID.String()); err != nil {
				s.log.Warn().Err(err).
					Str("session_id", sess.ID.String()).
					Msg("Failed to mark abandoned session")
			}
		}
		fresh := sess.Reset()
		s.sessions.Put(userID, fresh)
		st = s.snapshot(fresh)
		return nil
	})
	if err != nil {
		return GameState{}, err
	}
	return st, nil
}
