package metadata

import (
	"context"
	"errors"
	"strings"

	"cinecove/internal/core/models"
	"cinecove/internal/logging"
	"cinecove/internal/metrics"
)

// Adapter routes a search to the provider for the media kind. It never
// returns an error: any provider failure yields an empty list, a warning log
// and a failure count.
type Adapter struct {
	tmdb  *TMDBClient
	jikan *JikanClient
}

func NewAdapter(tmdb *TMDBClient, jikan *JikanClient) *Adapter {
	return &Adapter{tmdb: tmdb, jikan: jikan}
}

// TMDBConfigured reports whether movie and TV searches can reach TMDB.
func (a *Adapter) TMDBConfigured() bool { return a.tmdb.Configured() }

// Search returns at most MaxCandidates results in provider order. Anime goes
// to Jikan; tv goes to TMDB TV search; every other kind goes to TMDB movie
// search.
func (a *Adapter) Search(ctx context.Context, query string, kind models.MediaType) []Candidate {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Candidate{}
	}

	var (
		provider   string
		candidates []Candidate
		err        error
	)
	if kind == models.MediaTypeAnime {
		provider = "jikan"
		candidates, err = a.jikan.Search(ctx, query)
	} else {
		provider = "tmdb"
		candidates, err = a.tmdb.Search(ctx, query, kind)
	}

	if err != nil {
		reason := failureReason(err)
		metrics.MetadataSearchFailures.WithLabelValues(provider, reason).Inc()
		logging.Warn().Err(err).
			Str("provider", provider).
			Str("reason", reason).
			Str("query", query).
			Msg("Metadata search failed, returning no results")
		return []Candidate{}
	}

	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}
	if candidates == nil {
		candidates = []Candidate{}
	}
	return candidates
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrUpstreamStatus):
		return "status"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "transport"
	}
}
