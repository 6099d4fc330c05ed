package models

import (
	"fmt"

	"github.com/goccy/go-json"
)

// ExternalKind names the metadata provider an external id belongs to.
type ExternalKind string

const (
	ExternalNone  ExternalKind = "none"
	ExternalTMDB  ExternalKind = "tmdb"
	ExternalJikan ExternalKind = "jikan"
)

// ExternalRef is a provider id tagged with its provider. The zero value is ExternalNone.
type ExternalRef struct {
	kind ExternalKind
	id   int
}

func TMDBRef(id int) ExternalRef  { return ExternalRef{kind: ExternalTMDB, id: id} }
func JikanRef(id int) ExternalRef { return ExternalRef{kind: ExternalJikan, id: id} }

// RefFromIDs builds a reference from the two nullable storage columns.
// Rows written before the union existed may carry both; the TMDB id wins.
func RefFromIDs(tmdbID, jikanID *int) ExternalRef {
	switch {
	case tmdbID != nil:
		return TMDBRef(*tmdbID)
	case jikanID != nil:
		return JikanRef(*jikanID)
	default:
		return ExternalRef{}
	}
}

func (r ExternalRef) Kind() ExternalKind {
	if r.kind == "" {
		return ExternalNone
	}
	return r.kind
}

// ID returns the provider id, or 0 for ExternalNone.
func (r ExternalRef) ID() int { return r.id }

func (r ExternalRef) IsNone() bool { return r.Kind() == ExternalNone }

// TMDBID returns the id when the reference points at TMDB.
func (r ExternalRef) TMDBID() *int {
	if r.kind != ExternalTMDB {
		return nil
	}
	id := r.id
	return &id
}

// JikanID returns the id when the reference points at Jikan.
func (r ExternalRef) JikanID() *int {
	if r.kind != ExternalJikan {
		return nil
	}
	id := r.id
	return &id
}

// CompatibleWith reports whether a reference of this kind may be attached to
// an entry of type t: TMDB covers movie and tv, Jikan covers anime.
func (r ExternalRef) CompatibleWith(t MediaType) bool {
	switch r.Kind() {
	case ExternalTMDB:
		return t == MediaTypeMovie || t == MediaTypeTV
	case ExternalJikan:
		return t == MediaTypeAnime
	default:
		return true
	}
}

func (r ExternalRef) String() string {
	if r.IsNone() {
		return string(ExternalNone)
	}
	return fmt.Sprintf("%s:%d", r.kind, r.id)
}

type externalRefJSON struct {
	Kind ExternalKind `json:"kind"`
	ID   *int         `json:"id,omitempty"`
}

func (r ExternalRef) MarshalJSON() ([]byte, error) {
	out := externalRefJSON{Kind: r.Kind()}
	if !r.IsNone() {
		id := r.id
		out.ID = &id
	}
	return json.Marshal(out)
}

func (r *ExternalRef) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = ExternalRef{}
		return nil
	}
	var in externalRefJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	switch in.Kind {
	case "", ExternalNone:
		*r = ExternalRef{}
	case ExternalTMDB, ExternalJikan:
		if in.ID == nil {
			return fmt.Errorf("external reference of kind %q needs an id", in.Kind)
		}
		*r = ExternalRef{kind: in.Kind, id: *in.ID}
	default:
		return fmt.Errorf("unknown external reference kind %q", in.Kind)
	}
	return nil
}
