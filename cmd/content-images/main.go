// Command content-images checks and repairs catalog image URLs.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/moodflix/moodflix/internal/config"
	"github.com/moodflix/moodflix/internal/content"
	"github.com/moodflix/moodflix/internal/db"
	"github.com/moodflix/moodflix/internal/logging"
	"github.com/moodflix/moodflix/internal/maintenance"
)

func main() {
	app := &cli.App{
		Name:  "content-images",
		Usage: "check and fix catalog image URLs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a YAML config file",
				EnvVars: []string{config.ConfigPathEnvVar},
			},
			&cli.StringFlag{
				Name:  "placeholder",
				Usage: "image URL written in place of missing or invalid ones",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "report content rows with missing images",
				Action: func(c *cli.Context) error {
					return withImages(c, func(ctx context.Context, images *maintenance.Images) error {
						report, err := images.CheckContentImages(ctx)
						if err != nil {
							return err
						}
						fmt.Printf("Total: %d\nMissing: %d\nInvalid: %d\n", report.Total, report.Missing, report.Invalid)
						for _, title := range report.MissingTitles {
							fmt.Printf("  - %s\n", title)
						}
						return nil
					})
				},
			},
			{
				Name:  "fix",
				Usage: "replace missing or invalid image URLs with the placeholder",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "dry-run", Usage: "report without writing"},
				},
				Action: func(c *cli.Context) error {
					return withImages(c, func(ctx context.Context, images *maintenance.Images) error {
						report, err := images.FixContentImages(ctx, c.Bool("dry-run"))
						if err != nil {
							return err
						}
						verb := "Fixed"
						if report.DryRun {
							verb = "Would fix"
						}
						fmt.Printf("Scanned: %d\n%s: %d\nFailed: %d\n", report.Scanned, verb, report.Fixed, report.Failed)
						if report.Failed > 0 {
							return cli.Exit("some rows could not be updated", 1)
						}
						return nil
					})
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withImages connects to the database and runs fn against the catalog.
func withImages(c *cli.Context, fn func(context.Context, *maintenance.Images) error) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Database.URL == "" {
		return config.ErrMissingDatabaseURL
	}

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: "console"})

	ctx := c.Context
	database, err := db.New(ctx, cfg.Database.URL, db.WithMaxConns(cfg.Database.MaxConns))
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	placeholder := c.String("placeholder")
	if placeholder == "" {
		placeholder = cfg.Maintenance.PlaceholderImageURL
	}

	return fn(ctx, maintenance.NewImages(content.New(database), placeholder))
}
