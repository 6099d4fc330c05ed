package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"cinecove/internal/core/models"

	"github.com/goccy/go-json"
)

const (
	DefaultTMDBBaseURL = "https://api.themoviedb.org/3"
	tmdbImageBaseURL   = "https://image.tmdb.org/t/p/w500"
)

// TMDBClient searches The Movie Database.
type TMDBClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewTMDBClient builds a client; an empty baseURL selects the public API and
// a nil httpClient selects http.DefaultClient.
func NewTMDBClient(apiKey, baseURL string, httpClient *http.Client) *TMDBClient {
	if baseURL == "" {
		baseURL = DefaultTMDBBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TMDBClient{apiKey: apiKey, baseURL: baseURL, httpClient: httpClient}
}

// Configured reports whether an API key is set.
func (c *TMDBClient) Configured() bool { return c.apiKey != "" }

type tmdbSearchResponse struct {
	Results []tmdbResult `json:"results"`
}

// tmdbResult covers both shapes: movies use title/release_date, TV uses
// name/first_air_date.
type tmdbResult struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	PosterPath   string `json:"poster_path"`
	Overview     string `json:"overview"`
}

func (r tmdbResult) candidate(tv bool) Candidate {
	title, date := r.Title, r.ReleaseDate
	if tv {
		title, date = r.Name, r.FirstAirDate
	}
	c := Candidate{
		Title:    title,
		Year:     yearFromDate(date),
		External: models.TMDBRef(r.ID),
		Overview: nonEmpty(r.Overview),
	}
	if r.PosterPath != "" {
		poster := tmdbImageBaseURL + r.PosterPath
		c.PosterURL = &poster
	}
	return c
}

// yearFromDate reads the leading four digits of a YYYY-MM-DD string.
func yearFromDate(date string) *int {
	if len(date) < 4 {
		return nil
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return nil
	}
	return &year
}

// Search queries /search/movie, or /search/tv when kind is tv.
func (c *TMDBClient) Search(ctx context.Context, query string, kind models.MediaType) ([]Candidate, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	tv := kind == models.MediaTypeTV
	endpoint := "movie"
	if tv {
		endpoint = "tv"
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)
	reqURL := fmt.Sprintf("%s/search/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tmdb request: %w", redactKey(err))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search tmdb: %w", redactKey(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("tmdb api returned %s: %w", resp.Status, ErrUpstreamStatus)
	}

	var response tmdbSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	results := response.Results
	if len(results) > MaxCandidates {
		results = results[:MaxCandidates]
	}
	candidates := make([]Candidate, len(results))
	for i, r := range results {
		candidates[i] = r.candidate(tv)
	}
	return candidates, nil
}

// redactKey masks the api_key query parameter in the URL that net/http
// attaches to request errors.
func redactKey(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	u, parseErr := url.Parse(urlErr.URL)
	if parseErr != nil {
		return &url.Error{Op: urlErr.Op, URL: "[redacted]", Err: urlErr.Err}
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return &url.Error{Op: urlErr.Op, URL: u.String(), Err: urlErr.Err}
}
