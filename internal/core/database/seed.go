package database

import (
	"context"
	"errors"
	"fmt"

	"cinecove/internal/core/models"
	"cinecove/internal/logging"
)

func ptr[T any](v T) *T { return &v }

// SampleMediaItems is the demo watchlist inserted by SeedSampleData.
func SampleMediaItems() []models.MediaItem {
	return []models.MediaItem{
		{
			Title:     "Dune",
			Type:      models.MediaTypeMovie,
			Status:    models.StatusWatching,
			Rating:    ptr(9),
			Notes:     ptr("Epic sci-fi masterpiece with stunning visuals"),
			PosterURL: ptr("https://image.tmdb.org/t/p/w500/d5NXSklXo0qyIYkgV94XAgMIckC.jpg"),
			External:  models.TMDBRef(438631),
			Genre:     ptr("Science Fiction"),
			Year:      ptr(2021),
		},
		{
			Title:     "The Batman",
			Type:      models.MediaTypeMovie,
			Status:    models.StatusCompleted,
			Rating:    ptr(8),
			Notes:     ptr("Dark and gritty take on the Dark Knight"),
			PosterURL: ptr("https://image.tmdb.org/t/p/w500/b0PlSFdDwbyK0cf5RxwDpaOJQvQ.jpg"),
			External:  models.TMDBRef(414906),
			Genre:     ptr("Action"),
			Year:      ptr(2022),
		},
		{
			Title:     "Breaking Bad",
			Type:      models.MediaTypeTV,
			Status:    models.StatusCompleted,
			Rating:    ptr(10),
			Notes:     ptr("Greatest TV series of all time"),
			PosterURL: ptr("https://image.tmdb.org/t/p/w500/3xnWaLQjelJDDF7LT1WBo6f4BRe.jpg"),
			External:  models.TMDBRef(1396),
			Genre:     ptr("Crime"),
			Year:      ptr(2008),
		},
		{
			Title:     "The Last of Us",
			Type:      models.MediaTypeTV,
			Status:    models.StatusWatching,
			Rating:    ptr(9),
			Notes:     ptr("Outstanding adaptation of the beloved game"),
			PosterURL: ptr("https://image.tmdb.org/t/p/w500/uKvVjHNqB5VmOrdxqAt2F7J78ED.jpg"),
			External:  models.TMDBRef(100088),
			Genre:     ptr("Drama"),
			Year:      ptr(2023),
		},
		{
			Title:     "Attack on Titan",
			Type:      models.MediaTypeAnime,
			Status:    models.StatusCompleted,
			Rating:    ptr(10),
			Notes:     ptr("Mind-blowing finale, incredible storytelling"),
			PosterURL: ptr("https://cdn.myanimelist.net/images/anime/10/47347.jpg"),
			External:  models.JikanRef(16498),
			Genre:     ptr("Action"),
			Year:      ptr(2013),
		},
		{
			Title:     "Your Name",
			Type:      models.MediaTypeAnime,
			Status:    models.StatusPlanned,
			Notes:     ptr("Heard amazing things about this one"),
			PosterURL: ptr("https://cdn.myanimelist.net/images/anime/5/87048.jpg"),
			External:  models.JikanRef(32281),
			Genre:     ptr("Romance"),
			Year:      ptr(2016),
		},
	}
}

// SeedSampleData inserts the sample watchlist when the store has no media items.
func SeedSampleData(ctx context.Context, store Store) error {
	n, err := store.CountMediaItems(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logging.Info().Int("items", n).Msg("Database already seeded, skipping")
		return nil
	}
	for _, item := range SampleMediaItems() {
		if _, err := store.CreateMediaItem(ctx, item); err != nil {
			return fmt.Errorf("seed %q: %w", item.Title, err)
		}
	}
	logging.Info().Int("items", len(SampleMediaItems())).Msg("Database seeded with sample data")
	return nil
}

// EnsureAdmin creates the bootstrap admin account unless the username already
// exists. passwordHash must already be hashed.
func EnsureAdmin(ctx context.Context, store Store, username, passwordHash string) error {
	_, err := store.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	_, err = store.CreateUser(ctx, models.User{Username: username, PasswordHash: passwordHash, IsAdmin: true})
	if err != nil && !errors.Is(err, ErrConflict) {
		return fmt.Errorf("create admin %q: %w", username, err)
	}
	logging.Info().Str("username", username).Msg("Bootstrap admin account created")
	return nil
}
