// Command moodflix runs the moodflix API server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/moodflix/moodflix/internal/async"
	"github.com/moodflix/moodflix/internal/auth"
	"github.com/moodflix/moodflix/internal/config"
	"github.com/moodflix/moodflix/internal/content"
	"github.com/moodflix/moodflix/internal/db"
	"github.com/moodflix/moodflix/internal/logging"
	"github.com/moodflix/moodflix/internal/recommend"
	"github.com/moodflix/moodflix/internal/records"
	"github.com/moodflix/moodflix/internal/watchlist"
	"github.com/moodflix/moodflix/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx := context.Background()

	database, err := db.New(ctx, cfg.Database.URL, db.WithMaxConns(cfg.Database.MaxConns))
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
	}

	exec := async.NewExecutor(cfg.Async.Workers, cfg.Async.QueueSize)
	defer exec.Close()

	recordsSvc := records.New(database)
	authSvc := auth.New(database,
		auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		auth.WithBcryptCost(cfg.Auth.BcryptCost),
		auth.WithRecords(recordsSvc),
	)

	server := web.NewServer(web.ServerConfig{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		AuthRateLimit:   cfg.Server.AuthRateLimit,
	}, web.Services{
		Auth:      authSvc,
		Async:     auth.NewAsync(authSvc, exec),
		Content:   content.New(database),
		Records:   recordsSvc,
		Watchlist: watchlist.New(database),
		Recommend: recommend.New(database),
	})

	return server.Run(ctx)
}
