package main

import (
	"context"
	"time"

	"cinecove/internal/core/database"
	"cinecove/internal/core/models"
	"cinecove/internal/logging"
	"cinecove/internal/metadata"
	"cinecove/internal/metrics"
)

// Searcher is the part of metadata.Adapter the backfill needs.
type Searcher interface {
	Search(ctx context.Context, query string, kind models.MediaType) []metadata.Candidate
}

// Backfiller fills in posters for media items that have none.
type Backfiller struct {
	Store    database.Store
	Searcher Searcher
	// Pause is the wait between two upstream searches.
	Pause time.Duration
}

type BackfillResult struct {
	Checked int
	Updated int
	Skipped int
	NoMatch int
	Failed  int
}

func (b *Backfiller) Run(ctx context.Context) (BackfillResult, error) {
	var result BackfillResult

	items, err := b.Store.ListMediaItemsWithoutPoster(ctx)
	if err != nil {
		return result, err
	}
	logging.Info().Int("items", len(items)).Msg("Media items without a poster")

	for i, item := range items {
		if i > 0 {
			if err := pause(ctx, b.Pause); err != nil {
				return result, err
			}
		}
		result.Checked++

		outcome := b.backfillItem(ctx, item)
		switch outcome {
		case "updated":
			result.Updated++
		case "skipped":
			result.Skipped++
		case "no_match":
			result.NoMatch++
		case "error":
			result.Failed++
		}
		metrics.PosterBackfills.WithLabelValues(outcome).Inc()
	}
	return result, nil
}

func (b *Backfiller) backfillItem(ctx context.Context, item models.MediaItem) string {
	log := logging.Logger().With().Int64("media_id", item.ID).Str("title", item.Title).Logger()

	candidate := chooseCandidate(item, b.Searcher.Search(ctx, item.Title, item.Type))
	if candidate == nil || candidate.PosterURL == nil {
		log.Debug().Msg("No poster candidate found")
		return "no_match"
	}

	updated, err := b.Store.SetMediaPosterIfMissing(ctx, item.ID, *candidate.PosterURL)
	if err != nil {
		log.Error().Err(err).Msg("Could not update poster")
		return "error"
	}
	if !updated {
		// A poster was set by someone else since the item was listed.
		return "skipped"
	}
	log.Info().Str("poster_url", *candidate.PosterURL).Msg("Poster updated")
	return "updated"
}

// chooseCandidate returns the candidate carrying the item's external
// reference, or the first candidate when the item has no reference.
func chooseCandidate(item models.MediaItem, candidates []metadata.Candidate) *metadata.Candidate {
	if len(candidates) == 0 {
		return nil
	}
	if item.External.IsNone() {
		return &candidates[0]
	}
	for i := range candidates {
		if candidates[i].External == item.External {
			return &candidates[i]
		}
	}
	return nil
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
