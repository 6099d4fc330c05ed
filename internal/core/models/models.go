package models

import (
	"time"

	"github.com/goccy/go-json"
)

// MediaType is the kind of title being tracked.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
	MediaTypeAnime MediaType = "anime"
)

// Status is the viewing progress of a media item.
type Status string

const (
	StatusWatching  Status = "watching"
	StatusCompleted Status = "completed"
	StatusPlanned   Status = "planned"
)

// MediaItem represents the 'media_items' table.
type MediaItem struct {
	ID        int64       `json:"id"`
	Title     string      `json:"title"`
	Type      MediaType   `json:"type"`
	Status    Status      `json:"status"`
	Rating    *int        `json:"rating"`
	Notes     *string     `json:"notes"`
	PosterURL *string     `json:"posterUrl"`
	External  ExternalRef `json:"externalRef"`
	Genre     *string     `json:"genre"`
	Year      *int        `json:"year"`
	CreatedAt time.Time   `json:"createdAt"`
}

// MarshalJSON adds the flat tmdbId/jikanId fields older clients read.
func (m MediaItem) MarshalJSON() ([]byte, error) {
	type alias MediaItem
	return json.Marshal(struct {
		alias
		TMDBID  *int `json:"tmdbId"`
		JikanID *int `json:"jikanId"`
	}{alias(m), m.External.TMDBID(), m.External.JikanID()})
}

// User represents the 'users' table.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Announcement represents the 'announcements' table.
type Announcement struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// UpcomingRelease represents the 'upcoming_releases' table. A nil ReleaseDate means TBA.
type UpcomingRelease struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Type          MediaType   `json:"type"`
	ReleaseDate   *string     `json:"releaseDate"`
	PosterURL     *string     `json:"posterUrl"`
	External      ExternalRef `json:"externalRef"`
	Description   *string     `json:"description"`
	IsHighlighted bool        `json:"isHighlighted"`
	UserID        int64       `json:"userId"`
	CreatedAt     time.Time   `json:"createdAt"`
}

func (u UpcomingRelease) MarshalJSON() ([]byte, error) {
	type alias UpcomingRelease
	return json.Marshal(struct {
		alias
		TMDBID  *int `json:"tmdbId"`
		JikanID *int `json:"jikanId"`
	}{alias(u), u.External.TMDBID(), u.External.JikanID()})
}

// AdminPick represents the 'admin_picks' table. It is a copy of a media item's
// descriptive fields, not a reference to it.
type AdminPick struct {
	ID         int64       `json:"id"`
	Title      string      `json:"title"`
	Type       MediaType   `json:"type"`
	PosterURL  *string     `json:"posterUrl"`
	External   ExternalRef `json:"externalRef"`
	Genre      *string     `json:"genre"`
	Year       *int        `json:"year"`
	IsFeatured bool        `json:"isFeatured"`
	CreatedAt  time.Time   `json:"createdAt"`
}

func (p AdminPick) MarshalJSON() ([]byte, error) {
	type alias AdminPick
	return json.Marshal(struct {
		alias
		TMDBID  *int `json:"tmdbId"`
		JikanID *int `json:"jikanId"`
	}{alias(p), p.External.TMDBID(), p.External.JikanID()})
}

// PickFromMediaItem snapshots the descriptive fields of item.
func PickFromMediaItem(item MediaItem, featured bool) AdminPick {
	return AdminPick{
		Title:      item.Title,
		Type:       item.Type,
		PosterURL:  item.PosterURL,
		External:   item.External,
		Genre:      item.Genre,
		Year:       item.Year,
		IsFeatured: featured,
	}
}
