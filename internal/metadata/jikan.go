package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"cinecove/internal/core/models"

	"github.com/goccy/go-json"
)

const DefaultJikanBaseURL = "https://api.jikan.moe/v4"

// JikanClient searches the Jikan (MyAnimeList) API. It needs no credential.
type JikanClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewJikanClient(baseURL string, httpClient *http.Client) *JikanClient {
	if baseURL == "" {
		baseURL = DefaultJikanBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &JikanClient{baseURL: baseURL, httpClient: httpClient}
}

type jikanSearchResponse struct {
	Data []jikanAnime `json:"data"`
}

type jikanAnime struct {
	MalID    int    `json:"mal_id"`
	Title    string `json:"title"`
	Year     *int   `json:"year"`
	Synopsis string `json:"synopsis"`
	Images   struct {
		JPG struct {
			ImageURL string `json:"image_url"`
		} `json:"jpg"`
	} `json:"images"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

func (a jikanAnime) candidate() Candidate {
	c := Candidate{
		Title:     a.Title,
		Year:      a.Year,
		PosterURL: nonEmpty(a.Images.JPG.ImageURL),
		External:  models.JikanRef(a.MalID),
		Overview:  nonEmpty(a.Synopsis),
	}
	if len(a.Genres) > 0 {
		names := make([]string, len(a.Genres))
		for i, g := range a.Genres {
			names[i] = g.Name
		}
		c.Genre = nonEmpty(strings.Join(names, ", "))
	}
	return c
}

// Search queries /anime with a limit of MaxCandidates.
func (c *JikanClient) Search(ctx context.Context, query string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(MaxCandidates))
	reqURL := fmt.Sprintf("%s/anime?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build jikan request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search jikan: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("jikan api returned %s: %w", resp.Status, ErrUpstreamStatus)
	}

	var response jikanSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	data := response.Data
	if len(data) > MaxCandidates {
		data = data[:MaxCandidates]
	}
	candidates := make([]Candidate, len(data))
	for i, a := range data {
		candidates[i] = a.candidate()
	}
	return candidates, nil
}
