package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexander-datskov/chat67/internal/api"
	"github.com/alexander-datskov/chat67/internal/api/middleware"
	"github.com/alexander-datskov/chat67/internal/config"
	"github.com/alexander-datskov/chat67/internal/geo"
	"github.com/alexander-datskov/chat67/internal/handlers"
	"github.com/alexander-datskov/chat67/internal/media"
	"github.com/alexander-datskov/chat67/internal/store"
	"github.com/alexander-datskov/chat67/internal/sweeper"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	// All chat state lives in process memory; a restart starts clean with
	// only the default room.
	state := store.New()

	sessions := middleware.NewSessions(cfg.SessionSecret)
	geoClient := geo.New(cfg.GeoBaseURL, logger)
	validator := media.NewValidator()

	h := handlers.NewHandler(state, sessions, geoClient, validator, logger, cfg.AdminUser, cfg.AdminPassword)

	// Background sweep for stale presence and expired effects
	sw := sweeper.New(state, cfg.SweepInterval, logger)
	sw.Start()
	defer sw.Stop()

	// Create router
	router := api.NewRouter(logger, state, sessions, h)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting chat67 server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
