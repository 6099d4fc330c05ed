package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"cinecove/internal/logging"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies every pending up migration for the dialect of databaseURL.
// The memory backend has no schema and is skipped.
func Migrate(databaseURL string) error {
	dialect := migrationDialect(databaseURL)
	if dialect == "" {
		logging.Info().Msg("In-memory store selected, no migrations to run")
		return nil
	}

	src, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	logging.Info().Str("dialect", dialect).Msg("Running database migrations...")
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	logging.Info().Uint("version", version).Bool("dirty", dirty).Msg("Database migration completed")
	return nil
}

func migrationDialect(databaseURL string) string {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return "sqlite"
	default:
		return ""
	}
}
