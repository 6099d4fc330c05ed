package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cinecove/internal/core/models"
	"cinecove/internal/logging"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	// SQLite's LOWER only folds ASCII.
	sqlite.MustRegisterDeterministicScalarFunction("unicode_lower", 1, unicodeLower)
}

func unicodeLower(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// lowerFunc is the Unicode-aware lowercase function of the backend.
func (s *SQLStore) lowerFunc() string {
	if s.backend == "sqlite" {
		return "unicode_lower"
	}
	return "LOWER"
}

var _ Store = (*SQLStore)(nil)

// SQLStore implements Store on PostgreSQL or SQLite. Queries are written with
// '?' placeholders and rebound for the driver in use.
type SQLStore struct {
	db      *sqlx.DB
	backend string
}

// NewPostgresStore connects to PostgreSQL through the pgx stdlib driver.
func NewPostgresStore(databaseURL string) (*SQLStore, error) {
	db, err := sqlx.Connect("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	logging.Info().Str("backend", "postgres").Msg("Successfully connected to the database")
	return &SQLStore{db: db, backend: "postgres"}, nil
}

// NewSQLiteStore opens (or creates) a SQLite database file.
func NewSQLiteStore(path string) (*SQLStore, error) {
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&_time_format=sqlite"
	} else {
		dsn += "?_time_format=sqlite"
	}
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection serializes writers and keeps the pragmas below in effect.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	logging.Info().Str("backend", "sqlite").Str("path", path).Msg("Successfully opened the database")
	return &SQLStore{db: db, backend: "sqlite"}, nil
}

func (s *SQLStore) Backend() string { return s.backend }

func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLStore) Close() error { return s.db.Close() }

// timestamp scans created_at from either driver. pgx yields time.Time;
// SQLite yields time.Time or the stored text depending on the statement.
type timestamp struct{ time.Time }

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

func (ts *timestamp) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		ts.Time = v
		return nil
	case nil:
		ts.Time = time.Time{}
		return nil
	case []byte:
		return ts.parse(string(v))
	case string:
		return ts.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

func (ts *timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// --- media items ---

// mediaRow is the storage shape of a MediaItem: the external reference is
// kept as two nullable columns.
type mediaRow struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Type      string    `db:"type"`
	Status    string    `db:"status"`
	Rating    *int      `db:"rating"`
	Notes     *string   `db:"notes"`
	PosterURL *string   `db:"poster_url"`
	TMDBID    *int      `db:"tmdb_id"`
	JikanID   *int      `db:"jikan_id"`
	Genre     *string   `db:"genre"`
	Year      *int      `db:"year"`
	CreatedAt timestamp `db:"created_at"`
}

func (r mediaRow) model() models.MediaItem {
	return models.MediaItem{
		ID:        r.ID,
		Title:     r.Title,
		Type:      models.MediaType(r.Type),
		Status:    models.Status(r.Status),
		Rating:    r.Rating,
		Notes:     r.Notes,
		PosterURL: r.PosterURL,
		External:  models.RefFromIDs(r.TMDBID, r.JikanID),
		Genre:     r.Genre,
		Year:      r.Year,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func mediaModels(rows []mediaRow) []models.MediaItem {
	items := make([]models.MediaItem, len(rows))
	for i, r := range rows {
		items[i] = r.model()
	}
	return items
}

const mediaColumns = `id, title, type, status, rating, notes, poster_url, tmdb_id, jikan_id, genre, year, created_at`

// ListMediaItems applies at most one criterion, search first, then status,
// then type. Search is a case-insensitive literal substring match on title,
// genre or notes; NULL columns simply do not match.
func (s *SQLStore) ListMediaItems(ctx context.Context, filter MediaFilter) ([]models.MediaItem, error) {
	query := `SELECT ` + mediaColumns + ` FROM media_items`
	var args []interface{}

	switch {
	case filter.Search != "":
		pattern := likePattern(filter.Search)
		lower := s.lowerFunc()
		query += fmt.Sprintf(` WHERE %[1]s(title) LIKE ? ESCAPE '\' OR %[1]s(genre) LIKE ? ESCAPE '\' OR %[1]s(notes) LIKE ? ESCAPE '\'`, lower)
		args = append(args, pattern, pattern, pattern)
	case filter.Status != "":
		query += ` WHERE status = ?`
		args = append(args, filter.Status)
	case filter.Type != "":
		query += ` WHERE type = ?`
		args = append(args, filter.Type)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows := []mediaRow{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list media items: %w", err)
	}
	return mediaModels(rows), nil
}

// likePattern lowercases q, escapes LIKE wildcards and wraps it in %.
func likePattern(q string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(q))
	return "%" + escaped + "%"
}

func (s *SQLStore) GetMediaItem(ctx context.Context, id int64) (*models.MediaItem, error) {
	var row mediaRow
	query := s.db.Rebind(`SELECT ` + mediaColumns + ` FROM media_items WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get media item %d: %w", id, err)
	}
	item := row.model()
	return &item, nil
}

func (s *SQLStore) CreateMediaItem(ctx context.Context, item models.MediaItem) (*models.MediaItem, error) {
	query := s.db.Rebind(`INSERT INTO media_items (title, type, status, rating, notes, poster_url, tmdb_id, jikan_id, genre, year, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING ` + mediaColumns)

	var row mediaRow
	err := s.db.QueryRowxContext(ctx, query,
		item.Title, string(item.Type), string(item.Status), item.Rating, item.Notes, item.PosterURL,
		item.External.TMDBID(), item.External.JikanID(), item.Genre, item.Year, time.Now().UTC(),
	).StructScan(&row)
	if err != nil {
		return nil, fmt.Errorf("create media item: %w", err)
	}
	created := row.model()
	return &created, nil
}

// UpdateMediaItem issues a single UPDATE touching only the fields present in
// the patch. Writing one provider id clears the other column.
func (s *SQLStore) UpdateMediaItem(ctx context.Context, id int64, patch models.MediaItemPatch) (*models.MediaItem, error) {
	var (
		sets []string
		args []interface{}
	)
	set := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Title.Value != nil {
		set("title", *patch.Title.Value)
	}
	if patch.Type.Value != nil {
		set("type", string(*patch.Type.Value))
	}
	if patch.Status.Value != nil {
		set("status", string(*patch.Status.Value))
	}
	if patch.Rating.Set {
		set("rating", patch.Rating.Value)
	}
	if patch.Notes.Set {
		set("notes", patch.Notes.Value)
	}
	if patch.PosterURL.Set {
		set("poster_url", patch.PosterURL.Value)
	}
	if patch.Genre.Set {
		set("genre", patch.Genre.Value)
	}
	if patch.Year.Set {
		set("year", patch.Year.Value)
	}
	switch {
	case patch.TMDBID.Value != nil:
		set("tmdb_id", *patch.TMDBID.Value)
		set("jikan_id", nil)
	case patch.JikanID.Value != nil:
		set("jikan_id", *patch.JikanID.Value)
		set("tmdb_id", nil)
	default:
		if patch.TMDBID.Set {
			set("tmdb_id", nil)
		}
		if patch.JikanID.Set {
			set("jikan_id", nil)
		}
	}

	if len(sets) == 0 {
		return s.GetMediaItem(ctx, id)
	}

	query := `UPDATE media_items SET ` + strings.Join(sets, ", ") + ` WHERE id = ? RETURNING ` + mediaColumns
	args = append(args, id)

	var row mediaRow
	if err := s.db.QueryRowxContext(ctx, s.db.Rebind(query), args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update media item %d: %w", id, err)
	}
	updated := row.model()
	return &updated, nil
}

func (s *SQLStore) DeleteMediaItem(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "media_items", id)
}

func (s *SQLStore) CountMediaItems(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM media_items`); err != nil {
		return 0, fmt.Errorf("count media items: %w", err)
	}
	return n, nil
}

func (s *SQLStore) ListMediaItemsWithoutPoster(ctx context.Context) ([]models.MediaItem, error) {
	rows := []mediaRow{}
	query := `SELECT ` + mediaColumns + ` FROM media_items WHERE poster_url IS NULL ORDER BY id ASC`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list media items without poster: %w", err)
	}
	return mediaModels(rows), nil
}

// SetMediaPosterIfMissing writes the poster only when the item still has
// none, so a poster chosen by the user is never overwritten.
func (s *SQLStore) SetMediaPosterIfMissing(ctx context.Context, id int64, posterURL string) (bool, error) {
	if posterURL == "" {
		return false, nil
	}
	if _, err := url.ParseRequestURI(posterURL); err != nil {
		logging.Warn().Int64("media_id", id).Str("url", posterURL).Msg("Invalid poster URL, skipping update")
		return false, nil
	}

	query := s.db.Rebind(`UPDATE media_items SET poster_url = ? WHERE id = ? AND poster_url IS NULL`)
	res, err := s.db.ExecContext(ctx, query, posterURL, id)
	if err != nil {
		return false, fmt.Errorf("set poster for media item %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- users ---

type userRow struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    timestamp `db:"created_at"`
}

func (r userRow) model() *models.User {
	return &models.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		IsAdmin:      r.IsAdmin,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

const userColumns = `id, username, password_hash, is_admin, created_at`

func (s *SQLStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, `id = ?`, id)
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, `username = ?`, username)
}

func (s *SQLStore) getUser(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	var row userRow
	query := s.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + where)
	if err := s.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.model(), nil
}

func (s *SQLStore) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	query := s.db.Rebind(`INSERT INTO users (username, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?) RETURNING ` + userColumns)
	var row userRow
	err := s.db.QueryRowxContext(ctx, query, user.Username, user.PasswordHash, user.IsAdmin, time.Now().UTC()).StructScan(&row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return row.model(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE"))
	}
	return false
}

// --- announcements ---

type announcementRow struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	UserID    int64     `db:"user_id"`
	CreatedAt timestamp `db:"created_at"`
}

func (r announcementRow) model() models.Announcement {
	return models.Announcement{ID: r.ID, Title: r.Title, Content: r.Content, UserID: r.UserID, CreatedAt: r.CreatedAt.UTC()}
}

const announcementColumns = `id, title, content, user_id, created_at`

func (s *SQLStore) ListAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	rows := []announcementRow{}
	query := `SELECT ` + announcementColumns + ` FROM announcements ORDER BY created_at DESC, id DESC`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	out := make([]models.Announcement, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}

func (s *SQLStore) CreateAnnouncement(ctx context.Context, a models.Announcement) (*models.Announcement, error) {
	query := s.db.Rebind(`INSERT INTO announcements (title, content, user_id, created_at) VALUES (?, ?, ?, ?) RETURNING ` + announcementColumns)
	var row announcementRow
	if err := s.db.QueryRowxContext(ctx, query, a.Title, a.Content, a.UserID, time.Now().UTC()).StructScan(&row); err != nil {
		return nil, fmt.Errorf("create announcement: %w", err)
	}
	created := row.model()
	return &created, nil
}

func (s *SQLStore) DeleteAnnouncement(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "announcements", id)
}

// --- upcoming releases ---

type upcomingRow struct {
	ID            int64     `db:"id"`
	Title         string    `db:"title"`
	Type          string    `db:"type"`
	ReleaseDate   *string   `db:"release_date"`
	PosterURL     *string   `db:"poster_url"`
	TMDBID        *int      `db:"tmdb_id"`
	JikanID       *int      `db:"jikan_id"`
	Description   *string   `db:"description"`
	IsHighlighted bool      `db:"is_highlighted"`
	UserID        int64     `db:"user_id"`
	CreatedAt     timestamp `db:"created_at"`
}

func (r upcomingRow) model() models.UpcomingRelease {
	return models.UpcomingRelease{
		ID:            r.ID,
		Title:         r.Title,
		Type:          models.MediaType(r.Type),
		ReleaseDate:   r.ReleaseDate,
		PosterURL:     r.PosterURL,
		External:      models.RefFromIDs(r.TMDBID, r.JikanID),
		Description:   r.Description,
		IsHighlighted: r.IsHighlighted,
		UserID:        r.UserID,
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

const upcomingColumns = `id, title, type, release_date, poster_url, tmdb_id, jikan_id, description, is_highlighted, user_id, created_at`

// ListUpcomingReleases puts dated releases first, latest date first, and
// releases without a date (TBA) last.
func (s *SQLStore) ListUpcomingReleases(ctx context.Context) ([]models.UpcomingRelease, error) {
	rows := []upcomingRow{}
	query := `SELECT ` + upcomingColumns + ` FROM upcoming_releases
		ORDER BY release_date IS NULL, release_date DESC, created_at DESC, id DESC`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list upcoming releases: %w", err)
	}
	out := make([]models.UpcomingRelease, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}

func (s *SQLStore) CreateUpcomingRelease(ctx context.Context, u models.UpcomingRelease) (*models.UpcomingRelease, error) {
	query := s.db.Rebind(`INSERT INTO upcoming_releases (title, type, release_date, poster_url, tmdb_id, jikan_id, description, is_highlighted, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING ` + upcomingColumns)
	var row upcomingRow
	err := s.db.QueryRowxContext(ctx, query,
		u.Title, string(u.Type), u.ReleaseDate, u.PosterURL, u.External.TMDBID(), u.External.JikanID(),
		u.Description, u.IsHighlighted, u.UserID, time.Now().UTC(),
	).StructScan(&row)
	if err != nil {
		return nil, fmt.Errorf("create upcoming release: %w", err)
	}
	created := row.model()
	return &created, nil
}

func (s *SQLStore) DeleteUpcomingRelease(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "upcoming_releases", id)
}

// --- admin picks ---

type adminPickRow struct {
	ID         int64     `db:"id"`
	Title      string    `db:"title"`
	Type       string    `db:"type"`
	PosterURL  *string   `db:"poster_url"`
	TMDBID     *int      `db:"tmdb_id"`
	JikanID    *int      `db:"jikan_id"`
	Genre      *string   `db:"genre"`
	Year       *int      `db:"year"`
	IsFeatured bool      `db:"is_featured"`
	CreatedAt  timestamp `db:"created_at"`
}

func (r adminPickRow) model() models.AdminPick {
	return models.AdminPick{
		ID:         r.ID,
		Title:      r.Title,
		Type:       models.MediaType(r.Type),
		PosterURL:  r.PosterURL,
		External:   models.RefFromIDs(r.TMDBID, r.JikanID),
		Genre:      r.Genre,
		Year:       r.Year,
		IsFeatured: r.IsFeatured,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

const adminPickColumns = `id, title, type, poster_url, tmdb_id, jikan_id, genre, year, is_featured, created_at`

func (s *SQLStore) ListAdminPicks(ctx context.Context) ([]models.AdminPick, error) {
	rows := []adminPickRow{}
	query := `SELECT ` + adminPickColumns + ` FROM admin_picks ORDER BY created_at DESC, id DESC`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list admin picks: %w", err)
	}
	out := make([]models.AdminPick, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}

func (s *SQLStore) CreateAdminPick(ctx context.Context, p models.AdminPick) (*models.AdminPick, error) {
	query := s.db.Rebind(`INSERT INTO admin_picks (title, type, poster_url, tmdb_id, jikan_id, genre, year, is_featured, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING ` + adminPickColumns)
	var row adminPickRow
	err := s.db.QueryRowxContext(ctx, query,
		p.Title, string(p.Type), p.PosterURL, p.External.TMDBID(), p.External.JikanID(),
		p.Genre, p.Year, p.IsFeatured, time.Now().UTC(),
	).StructScan(&row)
	if err != nil {
		return nil, fmt.Errorf("create admin pick: %w", err)
	}
	created := row.model()
	return &created, nil
}

func (s *SQLStore) DeleteAdminPick(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, "admin_picks", id)
}

// deleteByID removes one row and reports whether it existed. table is always
// a constant from this file.
func (s *SQLStore) deleteByID(ctx context.Context, table string, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM `+table+` WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
