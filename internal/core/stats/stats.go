// Package stats derives the dashboard summary from the full media collection.
package stats

import (
	"math"

	"cinecove/internal/core/models"
)

// Stats is the aggregate served by GET /api/stats.
type Stats struct {
	Total     int     `json:"total"`
	Watching  int     `json:"watching"`
	Completed int     `json:"completed"`
	Planned   int     `json:"planned"`
	Movies    int     `json:"movies"`
	TVShows   int     `json:"tvShows"`
	Anime     int     `json:"anime"`
	AvgRating float64 `json:"avgRating"`
}

// Compute counts items by status and type in one pass. The average covers
// rated items only, is 0 when none are rated, and is rounded to one decimal.
func Compute(items []models.MediaItem) Stats {
	s := Stats{Total: len(items)}

	var ratingSum, rated int
	for _, item := range items {
		switch item.Status {
		case models.StatusWatching:
			s.Watching++
		case models.StatusCompleted:
			s.Completed++
		case models.StatusPlanned:
			s.Planned++
		}

		switch item.Type {
		case models.MediaTypeMovie:
			s.Movies++
		case models.MediaTypeTV:
			s.TVShows++
		case models.MediaTypeAnime:
			s.Anime++
		}

		if item.Rating != nil {
			ratingSum += *item.Rating
			rated++
		}
	}

	if rated > 0 {
		s.AvgRating = math.Round(float64(ratingSum)/float64(rated)*10) / 10
	}
	return s
}
