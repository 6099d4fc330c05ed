package database

import (
	"context"
	"errors"
	"testing"

	"cinecove/internal/core/models"
)

// storeFactory returns a fresh, empty store for one test.
type storeFactory func(t *testing.T) Store

// runStoreSuite runs the behavior every Store implementation shares.
func runStoreSuite(t *testing.T, newStore storeFactory) {
	t.Run("CreateThenGet", func(t *testing.T) { testCreateThenGet(t, newStore(t)) })
	t.Run("Search", func(t *testing.T) { testSearch(t, newStore(t)) })
	t.Run("SearchEscapesWildcards", func(t *testing.T) { testSearchEscapesWildcards(t, newStore(t)) })
	t.Run("StatusPartition", func(t *testing.T) { testStatusPartition(t, newStore(t)) })
	t.Run("FilterPriority", func(t *testing.T) { testFilterPriority(t, newStore(t)) })
	t.Run("NewestFirst", func(t *testing.T) { testNewestFirst(t, newStore(t)) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("UpdateExternalRef", func(t *testing.T) { testUpdateExternalRef(t, newStore(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("PosterBackfill", func(t *testing.T) { testPosterBackfill(t, newStore(t)) })
	t.Run("Seed", func(t *testing.T) { testSeed(t, newStore(t)) })
}

func mustCreate(t *testing.T, s Store, item models.MediaItem) *models.MediaItem {
	t.Helper()
	created, err := s.CreateMediaItem(context.Background(), item)
	if err != nil {
		t.Fatalf("CreateMediaItem(%q) error = %v", item.Title, err)
	}
	return created
}

func titles(items []models.MediaItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}

func sameSet(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	seen := make(map[string]int)
	for _, g := range got {
		seen[g]++
	}
	for _, w := range want {
		if seen[w] == 0 {
			return false
		}
		seen[w]--
	}
	return true
}

func testCreateThenGet(t *testing.T, s Store) {
	ctx := context.Background()
	created := mustCreate(t, s, models.MediaItem{Title: "X", Type: models.MediaTypeMovie, Status: models.StatusPlanned})

	if created.ID == 0 {
		t.Fatal("created item has no id")
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("created item has no timestamp")
	}

	got, err := s.GetMediaItem(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetMediaItem() error = %v", err)
	}
	if got.Title != "X" || got.Type != models.MediaTypeMovie || got.Status != models.StatusPlanned {
		t.Errorf("GetMediaItem() = %+v", got)
	}
	if got.Rating != nil || got.Notes != nil || got.PosterURL != nil || got.Genre != nil || got.Year != nil {
		t.Errorf("optional fields should be nil: %+v", got)
	}
	if !got.External.IsNone() {
		t.Errorf("External = %v, want none", got.External)
	}

	if _, err := s.GetMediaItem(ctx, created.ID+1000); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMediaItem(missing) error = %v, want ErrNotFound", err)
	}
}

func testSearch(t *testing.T, s Store) {
	ctx := context.Background()
	mustCreate(t, s, models.MediaItem{Title: "Dune", Type: models.MediaTypeMovie, Status: models.StatusWatching, Genre: ptr("Science Fiction")})
	mustCreate(t, s, models.MediaItem{Title: "Breaking Bad", Type: models.MediaTypeTV, Status: models.StatusCompleted, Notes: ptr("A chemistry teacher turns to crime")})
	mustCreate(t, s, models.MediaItem{Title: "Your Name", Type: models.MediaTypeAnime, Status: models.StatusPlanned})
	mustCreate(t, s, models.MediaItem{Title: "ÉCOLE Story", Type: models.MediaTypeTV, Status: models.StatusPlanned, Genre: ptr("Policier")})

	tests := []struct {
		query string
		want  []string
	}{
		{query: "dune", want: []string{"Dune"}},
		{query: "DUNE", want: []string{"Dune"}},
		{query: "fiction", want: []string{"Dune"}},
		{query: "chemistry", want: []string{"Breaking Bad"}},
		{query: "a", want: []string{"Breaking Bad", "Your Name"}},
		{query: "nothing matches", want: []string{}},
		{query: "école", want: []string{"ÉCOLE Story"}},
		{query: "ÉcOlE", want: []string{"ÉCOLE Story"}},
		{query: "POLICIER", want: []string{"ÉCOLE Story"}},
	}
	for _, tt := range tests {
		items, err := s.ListMediaItems(ctx, MediaFilter{Search: tt.query})
		if err != nil {
			t.Fatalf("ListMediaItems(%q) error = %v", tt.query, err)
		}
		if got := titles(items); !sameSet(got, tt.want) {
			t.Errorf("search %q = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func testSearchEscapesWildcards(t *testing.T, s Store) {
	ctx := context.Background()
	mustCreate(t, s, models.MediaItem{Title: "Worth it", Type: models.MediaTypeMovie, Status: models.StatusPlanned, Notes: ptr("100% recommended")})
	mustCreate(t, s, models.MediaItem{Title: "Popular", Type: models.MediaTypeMovie, Status: models.StatusPlanned, Notes: ptr("1000 views")})
	mustCreate(t, s, models.MediaItem{Title: "snake_case", Type: models.MediaTypeTV, Status: models.StatusPlanned})
	mustCreate(t, s, models.MediaItem{Title: "snakeXcase", Type: models.MediaTypeTV, Status: models.StatusPlanned})

	items, err := s.ListMediaItems(ctx, MediaFilter{Search: "100%"})
	if err != nil {
		t.Fatalf("ListMediaItems() error = %v", err)
	}
	if got := titles(items); !sameSet(got, []string{"Worth it"}) {
		t.Errorf("search 100%% = %v, want [Worth it]", got)
	}

	items, err = s.ListMediaItems(ctx, MediaFilter{Search: "snake_"})
	if err != nil {
		t.Fatalf("ListMediaItems() error = %v", err)
	}
	if got := titles(items); !sameSet(got, []string{"snake_case"}) {
		t.Errorf("search snake_ = %v, want [snake_case]", got)
	}
}

func testStatusPartition(t *testing.T, s Store) {
	ctx := context.Background()
	statuses := []models.Status{models.StatusWatching, models.StatusCompleted, models.StatusPlanned}
	for i := 0; i < 7; i++ {
		mustCreate(t, s, models.MediaItem{Title: "item", Type: models.MediaTypeTV, Status: statuses[i%3]})
	}

	seen := make(map[int64]bool)
	for _, status := range statuses {
		items, err := s.ListMediaItems(ctx, MediaFilter{Status: string(status)})
		if err != nil {
			t.Fatalf("ListMediaItems(%s) error = %v", status, err)
		}
		for _, item := range items {
			if item.Status != status {
				t.Errorf("status filter %s returned %s", status, item.Status)
			}
			if seen[item.ID] {
				t.Errorf("item %d appears under two statuses", item.ID)
			}
			seen[item.ID] = true
		}
	}
	if len(seen) != 7 {
		t.Errorf("statuses cover %d items, want 7", len(seen))
	}

	items, err := s.ListMediaItems(ctx, MediaFilter{Status: "dropped"})
	if err != nil {
		t.Fatalf("ListMediaItems(dropped) error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("unknown status returned %d items, want 0", len(items))
	}
}

func testFilterPriority(t *testing.T, s Store) {
	ctx := context.Background()
	mustCreate(t, s, models.MediaItem{Title: "Dune", Type: models.MediaTypeMovie, Status: models.StatusWatching})
	mustCreate(t, s, models.MediaItem{Title: "Frieren", Type: models.MediaTypeAnime, Status: models.StatusPlanned})

	items, err := s.ListMediaItems(ctx, MediaFilter{Search: "dune", Status: "planned", Type: "anime"})
	if err != nil {
		t.Fatalf("ListMediaItems() error = %v", err)
	}
	if got := titles(items); !sameSet(got, []string{"Dune"}) {
		t.Errorf("search should win over status and type, got %v", got)
	}

	items, err = s.ListMediaItems(ctx, MediaFilter{Status: "watching", Type: "anime"})
	if err != nil {
		t.Fatalf("ListMediaItems() error = %v", err)
	}
	if got := titles(items); !sameSet(got, []string{"Dune"}) {
		t.Errorf("status should win over type, got %v", got)
	}

	items, err = s.ListMediaItems(ctx, MediaFilter{Type: "anime"})
	if err != nil {
		t.Fatalf("ListMediaItems() error = %v", err)
	}
	if got := titles(items); !sameSet(got, []string{"Frieren"}) {
		t.Errorf("type filter = %v, want [Frieren]", got)
	}
}

func testNewestFirst(t *testing.T, s Store) {
	ctx := context.Background()
	for _, title := range []string{"first", "second", "third"} {
		mustCreate(t, s, models.MediaItem{Title: title, Type: models.MediaTypeMovie, Status: models.StatusPlanned})
	}
	items, err := s.ListMediaItems(ctx, MediaFilter{})
	if err != nil {
		t.Fatalf("ListMediaItems() error = %v", err)
	}
	got := titles(items)
	want := []string{"third", "second", "first"}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func testUpdate(t *testing.T, s Store) {
	ctx := context.Background()
	created := mustCreate(t, s, models.MediaItem{
		Title: "The Batman", Type: models.MediaTypeMovie, Status: models.StatusWatching,
		Rating: ptr(6), Notes: ptr("long"),
	})

	patch := models.MediaItemPatch{
		Status: models.Some(models.StatusCompleted),
		Rating: models.Some(8),
		Notes:  models.Null[string](),
	}
	first, err := s.UpdateMediaItem(ctx, created.ID, patch)
	if err != nil {
		t.Fatalf("UpdateMediaItem() error = %v", err)
	}
	second, err := s.UpdateMediaItem(ctx, created.ID, patch)
	if err != nil {
		t.Fatalf("UpdateMediaItem() second error = %v", err)
	}

	for _, got := range []*models.MediaItem{first, second} {
		if got.Status != models.StatusCompleted || got.Rating == nil || *got.Rating != 8 || got.Notes != nil {
			t.Errorf("updated item = %+v", got)
		}
		if got.Title != "The Batman" || !got.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("untouched fields changed: %+v", got)
		}
	}

	unchanged, err := s.UpdateMediaItem(ctx, created.ID, models.MediaItemPatch{})
	if err != nil {
		t.Fatalf("UpdateMediaItem(empty) error = %v", err)
	}
	if unchanged.Status != models.StatusCompleted {
		t.Errorf("empty patch changed status to %s", unchanged.Status)
	}

	if _, err := s.UpdateMediaItem(ctx, created.ID+1000, patch); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateMediaItem(missing) error = %v, want ErrNotFound", err)
	}
}

func testUpdateExternalRef(t *testing.T, s Store) {
	ctx := context.Background()
	created := mustCreate(t, s, models.MediaItem{Title: "Shogun", Type: models.MediaTypeTV, Status: models.StatusPlanned, External: models.TMDBRef(126308)})

	updated, err := s.UpdateMediaItem(ctx, created.ID, models.MediaItemPatch{
		Type:    models.Some(models.MediaTypeAnime),
		JikanID: models.Some(1),
	})
	if err != nil {
		t.Fatalf("UpdateMediaItem() error = %v", err)
	}
	if updated.External != models.JikanRef(1) {
		t.Errorf("External = %v, want jikan:1", updated.External)
	}

	cleared, err := s.UpdateMediaItem(ctx, created.ID, models.MediaItemPatch{JikanID: models.Null[int]()})
	if err != nil {
		t.Fatalf("UpdateMediaItem() error = %v", err)
	}
	if !cleared.External.IsNone() {
		t.Errorf("External = %v, want none", cleared.External)
	}
}

func testDelete(t *testing.T, s Store) {
	ctx := context.Background()
	created := mustCreate(t, s, models.MediaItem{Title: "X", Type: models.MediaTypeMovie, Status: models.StatusPlanned})

	removed, err := s.DeleteMediaItem(ctx, created.ID)
	if err != nil || !removed {
		t.Fatalf("first DeleteMediaItem() = %v, %v; want true, nil", removed, err)
	}
	removed, err = s.DeleteMediaItem(ctx, created.ID)
	if err != nil || removed {
		t.Fatalf("second DeleteMediaItem() = %v, %v; want false, nil", removed, err)
	}
	if _, err := s.GetMediaItem(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMediaItem after delete error = %v, want ErrNotFound", err)
	}
}

func testUsers(t *testing.T, s Store) {
	ctx := context.Background()
	created, err := s.CreateUser(ctx, models.User{Username: "alice", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if created.ID == 0 || created.IsAdmin {
		t.Errorf("CreateUser() = %+v", created)
	}

	if _, err := s.CreateUser(ctx, models.User{Username: "alice", PasswordHash: "other"}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate CreateUser() error = %v, want ErrConflict", err)
	}

	byName, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if byName.ID != created.ID || byName.PasswordHash != "hash" {
		t.Errorf("GetUserByUsername() = %+v", byName)
	}

	byID, err := s.GetUser(ctx, created.ID)
	if err != nil || byID.Username != "alice" {
		t.Errorf("GetUser() = %+v, %v", byID, err)
	}

	if _, err := s.GetUserByUsername(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByUsername(bob) error = %v, want ErrNotFound", err)
	}
}

func testPosterBackfill(t *testing.T, s Store) {
	ctx := context.Background()
	bare := mustCreate(t, s, models.MediaItem{Title: "Bare", Type: models.MediaTypeMovie, Status: models.StatusPlanned})
	mustCreate(t, s, models.MediaItem{Title: "Dressed", Type: models.MediaTypeMovie, Status: models.StatusPlanned, PosterURL: ptr("https://example.com/a.jpg")})

	missing, err := s.ListMediaItemsWithoutPoster(ctx)
	if err != nil {
		t.Fatalf("ListMediaItemsWithoutPoster() error = %v", err)
	}
	if got := titles(missing); !sameSet(got, []string{"Bare"}) {
		t.Fatalf("without poster = %v, want [Bare]", got)
	}

	set, err := s.SetMediaPosterIfMissing(ctx, bare.ID, "https://example.com/b.jpg")
	if err != nil || !set {
		t.Fatalf("SetMediaPosterIfMissing() = %v, %v; want true, nil", set, err)
	}
	set, err = s.SetMediaPosterIfMissing(ctx, bare.ID, "https://example.com/c.jpg")
	if err != nil || set {
		t.Fatalf("second SetMediaPosterIfMissing() = %v, %v; want false, nil", set, err)
	}

	got, err := s.GetMediaItem(ctx, bare.ID)
	if err != nil {
		t.Fatalf("GetMediaItem() error = %v", err)
	}
	if got.PosterURL == nil || *got.PosterURL != "https://example.com/b.jpg" {
		t.Errorf("PosterURL = %v, want the first poster", got.PosterURL)
	}
}

func testSeed(t *testing.T, s Store) {
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := SeedSampleData(ctx, s); err != nil {
			t.Fatalf("SeedSampleData() error = %v", err)
		}
	}
	n, err := s.CountMediaItems(ctx)
	if err != nil {
		t.Fatalf("CountMediaItems() error = %v", err)
	}
	if n != len(SampleMediaItems()) {
		t.Errorf("CountMediaItems() = %d, want %d", n, len(SampleMediaItems()))
	}

	for i := 0; i < 2; i++ {
		if err := EnsureAdmin(ctx, s, "admin", "hash"); err != nil {
			t.Fatalf("EnsureAdmin() error = %v", err)
		}
	}
	admin, err := s.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername(admin) error = %v", err)
	}
	if !admin.IsAdmin {
		t.Error("bootstrap account should be an admin")
	}
}
