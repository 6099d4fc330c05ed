package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cinecove/internal/config"
	"cinecove/internal/core/database"
	"cinecove/internal/logging"
	"cinecove/internal/metadata"

	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Could not load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if !cfg.DatabaseConfigured() {
		logging.Fatal().Msg("DATABASE_URL must name a persistent database for the worker")
	}

	store, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Could not connect to the database")
	}
	defer store.Close()

	backfiller := &Backfiller{
		Store: store,
		Searcher: metadata.NewAdapter(
			metadata.NewTMDBClient(cfg.TMDBAPIKey, cfg.TMDBBaseURL, nil),
			metadata.NewJikanClient(cfg.JikanBaseURL, nil),
		),
		Pause: cfg.WorkerPause,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("schedule", cfg.WorkerSchedule).Msg("Starting cron job scheduler...")
	c := cron.New(cron.WithSeconds())

	_, err = c.AddFunc(cfg.WorkerSchedule, func() {
		runWorker(ctx, backfiller)
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Could not add cron job")
	}

	logging.Info().Msg("Running initial worker job")
	runWorker(ctx, backfiller)

	c.Start()
	<-ctx.Done()

	logging.Info().Msg("Stopping scheduler, waiting for a running job to finish")
	<-c.Stop().Done()
}

func runWorker(ctx context.Context, b *Backfiller) {
	logging.Info().Msg("Poster backfill started")
	result, err := b.Run(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Poster backfill stopped early")
	}
	logging.Info().
		Int("checked", result.Checked).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("no_match", result.NoMatch).
		Int("failed", result.Failed).
		Msg("Poster backfill finished")
}
