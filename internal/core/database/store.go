// Package database provides the storage backends for CineCove.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cinecove/internal/core/models"
)

var (
	// ErrNotFound is returned when no record has the requested id or key.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique key is already taken.
	ErrConflict = errors.New("record already exists")
	// ErrUnsupported is returned by backends that do not hold an entity.
	ErrUnsupported = errors.New("operation not supported by this store")
)

// MediaFilter selects media items. Only one criterion applies, in the order
// Search, Status, Type. Status and Type are compared verbatim.
type MediaFilter struct {
	Status string
	Type   string
	Search string
}

// Store defines every operation the API and the worker need.
// SQLStore and MemoryStore satisfy it.
type Store interface {
	// Backend names the implementation ("postgres", "sqlite" or "memory").
	Backend() string
	Ping(ctx context.Context) error
	Close() error

	// Media items
	ListMediaItems(ctx context.Context, filter MediaFilter) ([]models.MediaItem, error)
	GetMediaItem(ctx context.Context, id int64) (*models.MediaItem, error)
	CreateMediaItem(ctx context.Context, item models.MediaItem) (*models.MediaItem, error)
	UpdateMediaItem(ctx context.Context, id int64, patch models.MediaItemPatch) (*models.MediaItem, error)
	DeleteMediaItem(ctx context.Context, id int64) (bool, error)
	CountMediaItems(ctx context.Context) (int, error)
	ListMediaItemsWithoutPoster(ctx context.Context) ([]models.MediaItem, error)
	SetMediaPosterIfMissing(ctx context.Context, id int64, posterURL string) (bool, error)

	// Users
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user models.User) (*models.User, error)

	// Site content
	ListAnnouncements(ctx context.Context) ([]models.Announcement, error)
	CreateAnnouncement(ctx context.Context, a models.Announcement) (*models.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id int64) (bool, error)

	ListUpcomingReleases(ctx context.Context) ([]models.UpcomingRelease, error)
	CreateUpcomingRelease(ctx context.Context, u models.UpcomingRelease) (*models.UpcomingRelease, error)
	DeleteUpcomingRelease(ctx context.Context, id int64) (bool, error)

	ListAdminPicks(ctx context.Context) ([]models.AdminPick, error)
	CreateAdminPick(ctx context.Context, p models.AdminPick) (*models.AdminPick, error)
	DeleteAdminPick(ctx context.Context, id int64) (bool, error)
}

// Open picks a backend from the connection URL:
//
//	postgres://... or postgresql://...  PostgreSQL through pgx
//	sqlite://<path>                      SQLite through modernc
//	memory:// (or empty)                 in-process MemoryStore
func Open(databaseURL string) (Store, error) {
	var (
		store *SQLStore
		err   error
	)
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		store, err = NewPostgresStore(databaseURL)
	case strings.HasPrefix(databaseURL, "sqlite://"):
		store, err = NewSQLiteStore(SQLitePath(databaseURL))
	case databaseURL == "" || strings.HasPrefix(databaseURL, "memory://"):
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database url scheme: %q", databaseURL)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// SQLitePath strips the sqlite:// scheme, leaving the file path.
func SQLitePath(databaseURL string) string {
	return strings.TrimPrefix(databaseURL, "sqlite://")
}
