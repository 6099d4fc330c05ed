// Package metadata searches TMDB (movies and TV) and Jikan (anime) and
// normalizes their results into Candidates.
package metadata

import (
	"errors"

	"cinecove/internal/core/models"

	"github.com/goccy/go-json"
)

// MaxCandidates caps every search result list.
const MaxCandidates = 10

var (
	ErrNotConfigured  = errors.New("provider credential not configured")
	ErrUpstreamStatus = errors.New("provider returned non-success status")
	ErrDecode         = errors.New("provider response could not be decoded")
)

// Candidate is one normalized search result.
type Candidate struct {
	Title     string             `json:"title"`
	Year      *int               `json:"year"`
	PosterURL *string            `json:"posterUrl"`
	External  models.ExternalRef `json:"externalRef"`
	Genre     *string            `json:"genre"`
	Overview  *string            `json:"overview"`
}

func (c Candidate) MarshalJSON() ([]byte, error) {
	type alias Candidate
	return json.Marshal(struct {
		alias
		TMDBID  *int `json:"tmdbId"`
		JikanID *int `json:"jikanId"`
	}{alias(c), c.External.TMDBID(), c.External.JikanID()})
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
