package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cinecove/internal/core/models"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps media items and users in process memory. It is meant for
// tests and demos. Announcements, upcoming releases and admin picks always
// list empty, and creating or deleting them returns ErrUnsupported.
type MemoryStore struct {
	mu        sync.Mutex
	media     map[int64]models.MediaItem
	users     map[int64]models.User
	nextMedia int64
	nextUser  int64
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		media: make(map[int64]models.MediaItem),
		users: make(map[int64]models.User),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Backend() string { return "memory" }

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// --- media items ---

func (s *MemoryStore) ListMediaItems(ctx context.Context, filter MediaFilter) ([]models.MediaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var match func(models.MediaItem) bool
	switch {
	case filter.Search != "":
		q := strings.ToLower(filter.Search)
		match = func(m models.MediaItem) bool {
			return strings.Contains(strings.ToLower(m.Title), q) ||
				containsFold(m.Genre, q) ||
				containsFold(m.Notes, q)
		}
	case filter.Status != "":
		match = func(m models.MediaItem) bool { return string(m.Status) == filter.Status }
	case filter.Type != "":
		match = func(m models.MediaItem) bool { return string(m.Type) == filter.Type }
	default:
		match = func(models.MediaItem) bool { return true }
	}

	items := []models.MediaItem{}
	for _, m := range s.media {
		if match(m) {
			items = append(items, m)
		}
	}
	sortNewestFirst(items)
	return items, nil
}

func containsFold(field *string, lowerQuery string) bool {
	return field != nil && strings.Contains(strings.ToLower(*field), lowerQuery)
}

func sortNewestFirst(items []models.MediaItem) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
}

func (s *MemoryStore) GetMediaItem(ctx context.Context, id int64) (*models.MediaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.media[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) CreateMediaItem(ctx context.Context, item models.MediaItem) (*models.MediaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMedia++
	item.ID = s.nextMedia
	item.CreatedAt = s.now()
	s.media[item.ID] = item
	return &item, nil
}

func (s *MemoryStore) UpdateMediaItem(ctx context.Context, id int64, patch models.MediaItemPatch) (*models.MediaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.media[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(&m)
	s.media[id] = m
	return &m, nil
}

func (s *MemoryStore) DeleteMediaItem(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.media[id]; !ok {
		return false, nil
	}
	delete(s.media, id)
	return true, nil
}

func (s *MemoryStore) CountMediaItems(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.media), nil
}

func (s *MemoryStore) ListMediaItemsWithoutPoster(ctx context.Context) ([]models.MediaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := []models.MediaItem{}
	for _, m := range s.media {
		if m.PosterURL == nil {
			items = append(items, m)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *MemoryStore) SetMediaPosterIfMissing(ctx context.Context, id int64, posterURL string) (bool, error) {
	if posterURL == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.media[id]
	if !ok || m.PosterURL != nil {
		return false, nil
	}
	m.PosterURL = &posterURL
	s.media[id] = m
	return true, nil
}

// --- users ---

func (s *MemoryStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return nil, ErrConflict
		}
	}
	s.nextUser++
	user.ID = s.nextUser
	user.CreatedAt = s.now()
	s.users[user.ID] = user
	return &user, nil
}

// --- site content (not held in memory) ---

func (s *MemoryStore) ListAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	return []models.Announcement{}, nil
}

func (s *MemoryStore) CreateAnnouncement(ctx context.Context, a models.Announcement) (*models.Announcement, error) {
	return nil, ErrUnsupported
}

func (s *MemoryStore) DeleteAnnouncement(ctx context.Context, id int64) (bool, error) {
	return false, ErrUnsupported
}

func (s *MemoryStore) ListUpcomingReleases(ctx context.Context) ([]models.UpcomingRelease, error) {
	return []models.UpcomingRelease{}, nil
}

func (s *MemoryStore) CreateUpcomingRelease(ctx context.Context, u models.UpcomingRelease) (*models.UpcomingRelease, error) {
	return nil, ErrUnsupported
}

func (s *MemoryStore) DeleteUpcomingRelease(ctx context.Context, id int64) (bool, error) {
	return false, ErrUnsupported
}

func (s *MemoryStore) ListAdminPicks(ctx context.Context) ([]models.AdminPick, error) {
	return []models.AdminPick{}, nil
}

func (s *MemoryStore) CreateAdminPick(ctx context.Context, p models.AdminPick) (*models.AdminPick, error) {
	return nil, ErrUnsupported
}

func (s *MemoryStore) DeleteAdminPick(ctx context.Context, id int64) (bool, error) {
	return false, ErrUnsupported
}
