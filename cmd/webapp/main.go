package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinecove/internal/auth"
	"cinecove/internal/config"
	"cinecove/internal/core/database"
	"cinecove/internal/logging"
	"cinecove/internal/metadata"
)

type Application struct {
	Config   *config.Config
	Store    database.Store
	Metadata *metadata.Adapter
	Tokens   *auth.TokenManager
}

func newApplication(cfg *config.Config, store database.Store) *Application {
	return &Application{
		Config: cfg,
		Store:  store,
		Metadata: metadata.NewAdapter(
			metadata.NewTMDBClient(cfg.TMDBAPIKey, cfg.TMDBBaseURL, nil),
			metadata.NewJikanClient(cfg.JikanBaseURL, nil),
		),
		Tokens: auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Could not load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			logging.Fatal().Err(err).Msg("Could not migrate the database")
		}
	}

	store, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Could not connect to the database")
	}
	defer store.Close()

	if err := bootstrap(context.Background(), cfg, store); err != nil {
		logging.Fatal().Err(err).Msg("Could not prepare the database")
	}

	if cfg.JWTSecret == "" {
		logging.Warn().Msg("JWT_SECRET is not set, issued tokens will not survive a restart")
	}
	if cfg.TMDBAPIKey == "" {
		logging.Warn().Msg("TMDB_API_KEY is not set, movie and TV search will return no results")
	}

	app := newApplication(cfg, store)

	logging.Info().
		Str("port", cfg.Port).
		Str("backend", store.Backend()).
		Str("env", cfg.AppEnv).
		Msg("Starting API server")
	if err := app.serve(); err != nil {
		logging.Fatal().Err(err).Msg("Could not start server")
	}
}

// bootstrap seeds sample data and the admin account when configured.
func bootstrap(ctx context.Context, cfg *config.Config, store database.Store) error {
	if cfg.SeedSampleData {
		if err := database.SeedSampleData(ctx, store); err != nil {
			return err
		}
	}
	if cfg.AdminUsername != "" {
		hash, err := auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			return err
		}
		if err := database.EnsureAdmin(ctx, store, cfg.AdminUsername, hash); err != nil {
			return err
		}
	}
	return nil
}

func (app *Application) serve() error {
	srv := &http.Server{
		Addr:         ":" + app.Config.Port,
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logging.Info().Msg("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
