// Package repository provides the data access layer over PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joshsmithson/71-checkout/internal/model"
)

// Common errors for repository operations.
var (
	ErrSessionNotFound = errors.New("game session not found")
)

// SessionRepository persists game sessions, their seats and the append-only
// turn log.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository instance.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts the session row and one seat per player in a single
// transaction, so a game never appears in history without its roster.
func (r *SessionRepository) Create(ctx context.Context, sess *model.GameSession) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin session create: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO game_sessions (id, user_id, game_type, starting_score, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, sess.ID, sess.UserID, sess.GameType, sess.StartingScore, model.SessionInProgress)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	for _, p := range sess.Players {
		_, err = tx.Exec(ctx, `
			INSERT INTO game_session_players (session_id, player_name, position)
			VALUES ($1, $2, $3)
		`, sess.ID, p.PlayerName, p.Position)
		if err != nil {
			return fmt.Errorf("failed to add session player %q: %w", p.PlayerName, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit session create: %w", err)
	}
	return nil
}

// RecordTurn appends one confirmed turn to the session's turn log.
func (r *SessionRepository) RecordTurn(ctx context.Context, sessionID string, turn model.SessionTurn) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO game_session_turns
			(session_id, player_name, turn_number, throws, score_before, score_after, is_bust, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`, sessionID, turn.PlayerName, turn.TurnNumber, turn.Throws, turn.ScoreBefore, turn.ScoreAfter, turn.IsBust)
	if err != nil {
		return fmt.Errorf("failed to record turn: %w", err)
	}
	return nil
}

// Complete marks the session won and writes each player's final score.
func (r *SessionRepository) Complete(ctx context.Context, sessionID, winnerName string, finalScores map[string]int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin session complete: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE game_sessions
		SET status = $2, winner_name = $3, completed_at = NOW()
		WHERE id = $1
	`, sessionID, model.SessionCompleted, winnerName)
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	for name, score := range finalScores {
		_, err = tx.Exec(ctx, `
			UPDATE game_session_players
			SET final_score = $3
			WHERE session_id = $1 AND player_name = $2
		`, sessionID, name, score)
		if err != nil {
			return fmt.Errorf("failed to set final score for %q: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit session complete: %w", err)
	}
	return nil
}

// MarkAbandoned gives a reset in-progress game a distinct terminal status
// instead of silently discarding it.
func (r *SessionRepository) MarkAbandoned(ctx context.Context, sessionID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE game_sessions
		SET status = $2, completed_at = NOW()
		WHERE id = $1 AND status = $3
	`, sessionID, model.SessionAbandoned, model.SessionInProgress)
	if err != nil {
		return fmt.Errorf("failed to mark session abandoned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// FetchHistory loads the user's completed and in-progress games, newest
// first, with nested seats and turn logs. Abandoned games are excluded.
func (r *SessionRepository) FetchHistory(ctx context.Context, userID string) ([]*model.GameSession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, user_id, game_type, starting_score, status, winner_name, created_at, completed_at
		FROM game_sessions
		WHERE user_id = $1 AND status <> $2
		ORDER BY created_at DESC
	`, userID, model.SessionAbandoned)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	defer rows.Close()

	var sessions []*model.GameSession
	index := make(map[string]*model.GameSession)
	var ids []string
	for rows.Next() {
		var s model.GameSession
		err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.GameType,
			&s.StartingScore,
			&s.Status,
			&s.WinnerName,
			&s.CreatedAt,
			&s.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, &s)
		index[s.ID] = &s
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	if len(sessions) == 0 {
		return sessions, nil
	}

	prows, err := r.pool.Query(ctx, `
		SELECT session_id::text, player_name, position, final_score
		FROM game_session_players
		WHERE session_id::text = ANY($1)
		ORDER BY position ASC
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session players: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		var p model.SessionPlayer
		if err := prows.Scan(&p.SessionID, &p.PlayerName, &p.Position, &p.FinalScore); err != nil {
			return nil, fmt.Errorf("failed to scan session player: %w", err)
		}
		if s, ok := index[p.SessionID]; ok {
			s.Players = append(s.Players, p)
		}
	}
	if err := prows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session players: %w", err)
	}

	trows, err := r.pool.Query(ctx, `
		SELECT session_id::text, player_name, turn_number, throws, score_before, score_after, is_bust, created_at
		FROM game_session_turns
		WHERE session_id::text = ANY($1)
		ORDER BY id ASC
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session turns: %w", err)
	}
	defer trows.Close()

	for trows.Next() {
		var t model.SessionTurn
		err := trows.Scan(
			&t.SessionID,
			&t.PlayerName,
			&t.TurnNumber,
			&t.Throws,
			&t.ScoreBefore,
			&t.ScoreAfter,
			&t.IsBust,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session turn: %w", err)
		}
		if s, ok := index[t.SessionID]; ok {
			s.Turns = append(s.Turns, t)
		}
	}
	if err := trows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session turns: %w", err)
	}

	return sessions, nil
}

// Get loads one session with its seats and turn log.
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*model.GameSession, error) {
	var s model.GameSession
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, user_id, game_type, starting_score, status, winner_name, created_at, completed_at
		FROM game_sessions
		WHERE id = $1
	`, sessionID).Scan(
		&s.ID,
		&s.UserID,
		&s.GameType,
		&s.StartingScore,
		&s.Status,
		&s.WinnerName,
		&s.CreatedAt,
		&s.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	prows, err := r.pool.Query(ctx, `
		SELECT session_id::text, player_name, position, final_score
		FROM game_session_players
		WHERE session_id = $1
		ORDER BY position ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session players: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var p model.SessionPlayer
		if err := prows.Scan(&p.SessionID, &p.PlayerName, &p.Position, &p.FinalScore); err != nil {
			return nil, fmt.Errorf("failed to scan session player: %w", err)
		}
		s.Players = append(s.Players, p)
	}
	if err := prows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session players: %w", err)
	}

	trows, err := r.pool.Query(ctx, `
		SELECT session_id::text, player_name, turn_number, throws, score_before, score_after, is_bust, created_at
		FROM game_session_turns
		WHERE session_id = $1
		ORDER BY id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session turns: %w", err)
	}
	defer trows.Close()
	for trows.Next() {
		var t model.SessionTurn
		err := trows.Scan(
			&t.SessionID,
			&t.PlayerName,
			&t.TurnNumber,
			&t.Throws,
			&t.ScoreBefore,
			&t.ScoreAfter,
			&t.IsBust,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session turn: %w", err)
		}
		s.Turns = append(s.Turns, t)
	}
	if err := trows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session turns: %w", err)
	}

	return &s, nil
}
