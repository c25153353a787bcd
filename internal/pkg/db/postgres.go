// Package db connects to PostgreSQL and owns the service's schema.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/joshsmithson/71-checkout/internal/config"
)

const pingTimeout = 5 * time.Second

// Connect opens a pgx pool sized from the configuration and verifies the
// database is reachable before returning it.
func Connect(ctx context.Context, cfg *config.DatabaseConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.PoolSize)
	poolCfg.MinConns = int32(cfg.PoolSize / 4)
	if poolCfg.MinConns < 1 {
		poolCfg.MinConns = 1
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Int32("max_conns", poolCfg.MaxConns).
		Msg("Connected to PostgreSQL")
	return pool, nil
}

// migrations are applied in order at startup; each statement is idempotent
// so a restart against an existing database is a no-op.
var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "game_sessions",
		sql: `
			CREATE TABLE IF NOT EXISTS game_sessions (
				id UUID PRIMARY KEY,
				user_id VARCHAR(255) NOT NULL,
				game_type VARCHAR(10) NOT NULL,
				starting_score INT NOT NULL,
				status VARCHAR(20) NOT NULL,
				winner_name VARCHAR(255),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				completed_at TIMESTAMPTZ
			);
			CREATE INDEX IF NOT EXISTS idx_game_sessions_user_time ON game_sessions(user_id, created_at DESC);
		`,
	},
	{
		name: "game_session_players",
		sql: `
			CREATE TABLE IF NOT EXISTS game_session_players (
				session_id UUID NOT NULL REFERENCES game_sessions(id) ON DELETE CASCADE,
				player_name VARCHAR(255) NOT NULL,
				position INT NOT NULL,
				final_score INT,
				PRIMARY KEY (session_id, player_name)
			);
		`,
	},
	{
		name: "game_session_turns",
		sql: `
			CREATE TABLE IF NOT EXISTS game_session_turns (
				id BIGSERIAL PRIMARY KEY,
				session_id UUID NOT NULL REFERENCES game_sessions(id) ON DELETE CASCADE,
				player_name VARCHAR(255) NOT NULL,
				turn_number INT NOT NULL,
				throws INT[] NOT NULL,
				score_before INT NOT NULL,
				score_after INT NOT NULL,
				is_bust BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_game_session_turns_session ON game_session_turns(session_id, id);
		`,
	},
	{
		name: "player_statistics",
		sql: `
			CREATE TABLE IF NOT EXISTS player_statistics (
				user_id VARCHAR(255) NOT NULL,
				player_name VARCHAR(255) NOT NULL,
				games_played INT NOT NULL DEFAULT 0,
				games_won INT NOT NULL DEFAULT 0,
				total_score BIGINT NOT NULL DEFAULT 0,
				turns_taken INT NOT NULL DEFAULT 0,
				highest_checkout INT NOT NULL DEFAULT 0,
				average_score DOUBLE PRECISION NOT NULL DEFAULT 0,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (user_id, player_name)
			);
			CREATE INDEX IF NOT EXISTS idx_player_statistics_won ON player_statistics(user_id, games_won DESC);
		`,
	},
}

// Migrate brings the schema up to date.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
		log.Debug().Str("migration", m.name).Msg("Migration applied")
	}
	log.Info().Int("count", len(migrations)).Msg("Schema up to date")
	return nil
}
