// Package main is the entry point for the darts scoring service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/joshsmithson/71-checkout/internal/config"
	"github.com/joshsmithson/71-checkout/internal/handler"
	"github.com/joshsmithson/71-checkout/internal/pkg/db"
	"github.com/joshsmithson/71-checkout/internal/repository"
	"github.com/joshsmithson/71-checkout/internal/service"
	"github.com/joshsmithson/71-checkout/internal/session"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal().Msg("AUTH_JWT_SECRET must be set")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the database and bring the schema up to date
	pool, err := db.Connect(ctx, &cfg.Database, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	sessionRepo := repository.NewSessionRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)

	// Initialize services
	defaultType, err := session.ParseGameType(cfg.Game.DefaultType)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid default game type")
	}
	gameService := service.NewGameService(sessionRepo, statsRepo, defaultType, log.Logger)
	statsService := service.NewStatsService(sessionRepo, statsRepo, cfg.Game.LeaderboardLimit)

	// Initialize HTTP handlers
	h := handler.NewHandler(gameService, statsService, log.Logger)
	health := func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      h.Router(cfg.Auth.JWTSecret, cfg.Auth.CookieName, health),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Server is starting...")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped gracefully")
}
