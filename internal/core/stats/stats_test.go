package stats

import (
	"testing"

	"cinecove/internal/core/models"
)

func rated(status models.Status, mediaType models.MediaType, rating int) models.MediaItem {
	return models.MediaItem{Title: "x", Status: status, Type: mediaType, Rating: &rating}
}

func unrated(status models.Status, mediaType models.MediaType) models.MediaItem {
	return models.MediaItem{Title: "x", Status: status, Type: mediaType}
}

func TestCompute_Empty(t *testing.T) {
	got := Compute(nil)
	if got != (Stats{}) {
		t.Errorf("Compute(nil) = %+v, want zero value", got)
	}
}

func TestCompute_AverageOverRatedOnly(t *testing.T) {
	items := []models.MediaItem{unrated(models.StatusPlanned, models.MediaTypeMovie)}
	if got := Compute(items).AvgRating; got != 0 {
		t.Fatalf("AvgRating with no ratings = %v, want 0", got)
	}

	items = append(items, rated(models.StatusCompleted, models.MediaTypeTV, 8))
	if got := Compute(items).AvgRating; got != 8.0 {
		t.Fatalf("AvgRating = %v, want 8.0", got)
	}

	items = append(items, rated(models.StatusWatching, models.MediaTypeAnime, 6))
	if got := Compute(items).AvgRating; got != 7.0 {
		t.Fatalf("AvgRating = %v, want 7.0", got)
	}
}

func TestCompute_Rounding(t *testing.T) {
	items := []models.MediaItem{
		rated(models.StatusCompleted, models.MediaTypeMovie, 9),
		rated(models.StatusCompleted, models.MediaTypeMovie, 8),
		rated(models.StatusCompleted, models.MediaTypeMovie, 8),
	}
	if got := Compute(items).AvgRating; got != 8.3 {
		t.Errorf("AvgRating = %v, want 8.3", got)
	}
}

func TestCompute_Counts(t *testing.T) {
	items := []models.MediaItem{
		rated(models.StatusCompleted, models.MediaTypeMovie, 9),
		unrated(models.StatusPlanned, models.MediaTypeMovie),
		rated(models.StatusCompleted, models.MediaTypeTV, 10),
		rated(models.StatusWatching, models.MediaTypeTV, 9),
		rated(models.StatusCompleted, models.MediaTypeAnime, 9),
		unrated(models.StatusPlanned, models.MediaTypeAnime),
	}
	want := Stats{
		Total:     6,
		Watching:  1,
		Completed: 3,
		Planned:   2,
		Movies:    2,
		TVShows:   2,
		Anime:     2,
		AvgRating: 9.3,
	}
	got := Compute(items)
	if got != want {
		t.Errorf("Compute() = %+v, want %+v", got, want)
	}
	if got.Total != got.Watching+got.Completed+got.Planned {
		t.Errorf("total %d != sum of statuses", got.Total)
	}
}
