package main

import (
	"flag"

	"cinecove/internal/config"
	"cinecove/internal/core/database"
	"cinecove/internal/logging"
)

func main() {
	envFile := flag.String("env", ".env", "optional .env file to load before the environment")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logging.Fatal().Err(err).Msg("Could not load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if !cfg.DatabaseConfigured() {
		logging.Fatal().Msg("DATABASE_URL environment variable is not set")
	}

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		logging.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logging.Info().Msg("Database migration completed successfully!")
}
