package models

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
)

// CreateMediaItemRequest is the body accepted when adding a title to the watchlist.
type CreateMediaItemRequest struct {
	Title     string    `json:"title" validate:"notblank"`
	Type      MediaType `json:"type" validate:"required,oneof=movie tv anime"`
	Status    Status    `json:"status" validate:"required,oneof=watching completed planned"`
	Rating    *int      `json:"rating"`
	Notes     *string   `json:"notes"`
	PosterURL *string   `json:"posterUrl"`
	TMDBID    *int      `json:"tmdbId"`
	JikanID   *int      `json:"jikanId"`
	Genre     *string   `json:"genre"`
	Year      *int      `json:"year"`
}

// Normalize trims the title and turns blank optional strings into absent values.
func (r *CreateMediaItemRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Notes = blankToNil(r.Notes)
	r.PosterURL = blankToNil(r.PosterURL)
	r.Genre = blankToNil(r.Genre)
}

func (r CreateMediaItemRequest) MediaItem() MediaItem {
	return MediaItem{
		Title:     r.Title,
		Type:      r.Type,
		Status:    r.Status,
		Rating:    r.Rating,
		Notes:     r.Notes,
		PosterURL: r.PosterURL,
		External:  RefFromIDs(r.TMDBID, r.JikanID),
		Genre:     r.Genre,
		Year:      r.Year,
	}
}

// Optional is a JSON field that distinguishes "absent" from "null" from a value.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: &v} }

func Null[T any]() Optional[T] { return Optional[T]{Set: true} }

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// IsNull reports an explicit JSON null.
func (o Optional[T]) IsNull() bool { return o.Set && o.Value == nil }

func (o Optional[T]) ptr() *T {
	if o.Value == nil {
		return nil
	}
	v := *o.Value
	return &v
}

// MediaItemPatch is a partial update. Absent fields are left alone, null clears
// an optional field, and a value overwrites.
type MediaItemPatch struct {
	Title     Optional[string]    `json:"title"`
	Type      Optional[MediaType] `json:"type"`
	Status    Optional[Status]    `json:"status"`
	Rating    Optional[int]       `json:"rating"`
	Notes     Optional[string]    `json:"notes"`
	PosterURL Optional[string]    `json:"posterUrl"`
	TMDBID    Optional[int]       `json:"tmdbId"`
	JikanID   Optional[int]       `json:"jikanId"`
	Genre     Optional[string]    `json:"genre"`
	Year      Optional[int]       `json:"year"`
}

func (p MediaItemPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Type.Set && !p.Status.Set && !p.Rating.Set && !p.Notes.Set &&
		!p.PosterURL.Set && !p.TMDBID.Set && !p.JikanID.Set && !p.Genre.Set && !p.Year.Set
}

// Normalize trims a supplied title.
func (p *MediaItemPatch) Normalize() {
	if p.Title.Value != nil {
		title := strings.TrimSpace(*p.Title.Value)
		p.Title.Value = &title
	}
}

// Apply overwrites item field by field. Setting one provider id replaces the
// external reference; nulling the id of the current provider clears it.
func (p MediaItemPatch) Apply(item *MediaItem) {
	if p.Title.Value != nil {
		item.Title = *p.Title.Value
	}
	if p.Type.Value != nil {
		item.Type = *p.Type.Value
	}
	if p.Status.Value != nil {
		item.Status = *p.Status.Value
	}
	if p.Rating.Set {
		item.Rating = p.Rating.ptr()
	}
	if p.Notes.Set {
		item.Notes = p.Notes.ptr()
	}
	if p.PosterURL.Set {
		item.PosterURL = p.PosterURL.ptr()
	}
	if p.Genre.Set {
		item.Genre = p.Genre.ptr()
	}
	if p.Year.Set {
		item.Year = p.Year.ptr()
	}
	applyRef(&item.External, ExternalTMDB, p.TMDBID)
	applyRef(&item.External, ExternalJikan, p.JikanID)
}

func applyRef(ref *ExternalRef, kind ExternalKind, field Optional[int]) {
	if !field.Set {
		return
	}
	if field.Value != nil {
		*ref = ExternalRef{kind: kind, id: *field.Value}
		return
	}
	if ref.Kind() == kind {
		*ref = ExternalRef{}
	}
}

// CreateAnnouncementRequest is the body of an admin announcement.
type CreateAnnouncementRequest struct {
	Title   string `json:"title" validate:"notblank"`
	Content string `json:"content" validate:"notblank"`
}

// CreateUpcomingReleaseRequest is the body of an admin upcoming-release listing.
type CreateUpcomingReleaseRequest struct {
	Title         string    `json:"title" validate:"notblank"`
	Type          MediaType `json:"type" validate:"required,oneof=movie tv anime"`
	ReleaseDate   *string   `json:"releaseDate" validate:"omitempty,datetime=2006-01-02"`
	PosterURL     *string   `json:"posterUrl"`
	TMDBID        *int      `json:"tmdbId"`
	JikanID       *int      `json:"jikanId"`
	Description   *string   `json:"description"`
	IsHighlighted bool      `json:"isHighlighted"`
}

func (r *CreateUpcomingReleaseRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.ReleaseDate = blankToNil(r.ReleaseDate)
	r.PosterURL = blankToNil(r.PosterURL)
	r.Description = blankToNil(r.Description)
}

func (r CreateUpcomingReleaseRequest) UpcomingRelease(userID int64) UpcomingRelease {
	return UpcomingRelease{
		Title:         r.Title,
		Type:          r.Type,
		ReleaseDate:   r.ReleaseDate,
		PosterURL:     r.PosterURL,
		External:      RefFromIDs(r.TMDBID, r.JikanID),
		Description:   r.Description,
		IsHighlighted: r.IsHighlighted,
		UserID:        userID,
	}
}

// AdminPickFields are the descriptive fields of a pick given explicitly.
type AdminPickFields struct {
	Title     string    `json:"title" validate:"notblank"`
	Type      MediaType `json:"type" validate:"required,oneof=movie tv anime"`
	PosterURL *string   `json:"posterUrl"`
	TMDBID    *int      `json:"tmdbId"`
	JikanID   *int      `json:"jikanId"`
	Genre     *string   `json:"genre"`
	Year      *int      `json:"year"`
}

// CreateAdminPickRequest either names an existing media item to snapshot or
// carries the descriptive fields directly. IsFeatured defaults to true.
type CreateAdminPickRequest struct {
	MediaItemID *int64 `json:"mediaItemId"`
	IsFeatured  *bool  `json:"isFeatured"`
	AdminPickFields
}

func (r *CreateAdminPickRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.PosterURL = blankToNil(r.PosterURL)
	r.Genre = blankToNil(r.Genre)
}

func (r CreateAdminPickRequest) Featured() bool {
	return r.IsFeatured == nil || *r.IsFeatured
}

func (r CreateAdminPickRequest) AdminPick() AdminPick {
	return AdminPick{
		Title:      r.Title,
		Type:       r.Type,
		PosterURL:  r.PosterURL,
		External:   RefFromIDs(r.TMDBID, r.JikanID),
		Genre:      r.Genre,
		Year:       r.Year,
		IsFeatured: r.Featured(),
	}
}

// Credentials is the body of login and registration. bcrypt only accepts
// passwords up to 72 bytes.
type Credentials struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=3,maxbytes=72"`
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
