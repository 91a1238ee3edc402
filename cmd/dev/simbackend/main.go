package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fleetrent/fleetrent-client/internal/config"
	"github.com/fleetrent/fleetrent-client/internal/pkg/logger"
	"github.com/fleetrent/fleetrent-client/internal/rental"
	"github.com/fleetrent/fleetrent-client/internal/simbackend"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	store := simbackend.NewStore(rental.DefaultTransitions())
	if err := store.SeedDemo(); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed demo data")
	}

	srv := simbackend.New(store, simbackend.Config{
		JWTSecret:      cfg.SimJWTSecret,
		TokenTTL:       cfg.SimTokenTTL,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.SimPort).
		Dur("token_ttl", srv.JWT.TTL()).
		Msg("Starting rental backend simulator")

	server := &http.Server{
		Addr:         ":" + cfg.SimPort,
		Handler:      srv.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down simulator...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
