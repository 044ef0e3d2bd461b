package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"marquee/internal/library"
)

// TitleFields are the scalar columns of a title row.
type TitleFields struct {
	Kind             library.Kind
	Path             string
	ParentID         *int64
	Identity         library.Identity
	Name             string
	OriginalLanguage string
	RuntimeMinutes   *int
	YearStart        *int
	YearEnd          *int
	Season           string
	Episode          string
	AirDate          string
}

// TitleRow is a stored title.
type TitleRow struct {
	ID        int64
	Kind      library.Kind
	Path      string
	ParentID  *int64
	Identity  library.Identity
	Name      string
	UpdatedAt string
}

// FieldsFor builds the scalar columns for an aggregated title.
func FieldsFor(title library.Title, parentID *int64) TitleFields {
	fields := TitleFields{
		Kind:             title.Kind,
		Path:             title.Path,
		ParentID:         parentID,
		Identity:         title.Identity,
		Name:             title.PrimaryName(),
		OriginalLanguage: title.OriginalLanguage,
		RuntimeMinutes:   title.RuntimeMinutes,
		YearStart:        title.YearStart,
		YearEnd:          title.YearEnd,
	}
	if title.Episode != nil {
		fields.Season = title.Episode.Season
		fields.Episode = title.Episode.Episode
		fields.AirDate = title.Episode.AirDate
	}
	return fields
}

const upsertTitleSQL = `
INSERT INTO titles (kind, path, parent_id, local_key, tmdb_id, imdb_id, tvdb_id, name,
    original_language, runtime_minutes, year_start, year_end, season, episode, air_date,
    created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (kind, path) DO UPDATE SET
    parent_id = excluded.parent_id,
    local_key = excluded.local_key,
    tmdb_id = excluded.tmdb_id,
    imdb_id = excluded.imdb_id,
    tvdb_id = excluded.tvdb_id,
    name = excluded.name,
    original_language = excluded.original_language,
    runtime_minutes = excluded.runtime_minutes,
    year_start = excluded.year_start,
    year_end = excluded.year_end,
    season = excluded.season,
    episode = excluded.episode,
    air_date = excluded.air_date,
    updated_at = excluded.updated_at
RETURNING id`

// UpsertTitle inserts or updates the title identified by (kind, path) and
// returns its row. Episodes must carry a ParentID.
func (s *Store) UpsertTitle(ctx context.Context, fields TitleFields) (TitleRow, error) {
	if err := fields.validate(); err != nil {
		return TitleRow{}, err
	}
	var row TitleRow
	err := retryTransient(ctx, func() error {
		var err error
		row, err = s.upsertTitle(ctx, s.db, fields)
		return err
	})
	if err != nil {
		return TitleRow{}, fmt.Errorf("upsert title %s: %w", fields.Path, err)
	}
	return row, nil
}

func (f TitleFields) validate() error {
	if f.Path == "" {
		return errors.New("upsert title: empty path")
	}
	if !f.Identity.Valid() {
		return errors.New("upsert title: identity has no local key")
	}
	if f.Kind == library.KindEpisode && f.ParentID == nil {
		return errors.New("upsert title: episode without parent")
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) upsertTitle(ctx context.Context, q queryRower, fields TitleFields) (TitleRow, error) {
	now := s.timestamp()
	args := []any{
		string(fields.Kind), fields.Path, nullableInt64(fields.ParentID), fields.Identity.LocalKey,
		nullableID(fields.Identity.TMDB), nullString(fields.Identity.IMDb), nullableID(fields.Identity.TVDB),
		nullString(fields.Name), nullString(fields.OriginalLanguage),
		nullableInt(fields.RuntimeMinutes), nullableInt(fields.YearStart), nullableInt(fields.YearEnd),
		nullString(fields.Season), nullString(fields.Episode), nullString(fields.AirDate),
		now, now,
	}
	var id int64
	if err := q.QueryRowContext(ctx, s.rebind(upsertTitleSQL), args...).Scan(&id); err != nil {
		return TitleRow{}, err
	}
	return TitleRow{
		ID:        id,
		Kind:      fields.Kind,
		Path:      fields.Path,
		ParentID:  fields.ParentID,
		Identity:  fields.Identity,
		Name:      fields.Name,
		UpdatedAt: now,
	}, nil
}

// PruneEpisodes deletes the episodes of parentID whose path is not in keep.
// Their child rows cascade. It returns how many episodes were removed.
func (s *Store) PruneEpisodes(ctx context.Context, parentID int64, keep []string) (int, error) {
	kept := make(map[string]struct{}, len(keep))
	for _, path := range keep {
		kept[path] = struct{}{}
	}
	var removed int
	err := retryTransient(ctx, func() error {
		removed = 0
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin prune tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		rows, err := tx.QueryContext(ctx, s.rebind("SELECT id, path FROM titles WHERE kind = ? AND parent_id = ?"),
			string(library.KindEpisode), parentID)
		if err != nil {
			return fmt.Errorf("list episodes of %d: %w", parentID, err)
		}
		var stale []int64
		for rows.Next() {
			var (
				id   int64
				path string
			)
			if err := rows.Scan(&id, &path); err != nil {
				_ = rows.Close()
				return fmt.Errorf("scan episode: %w", err)
			}
			if _, ok := kept[path]; !ok {
				stale = append(stale, id)
			}
		}
		err = rows.Err()
		_ = rows.Close()
		if err != nil {
			return fmt.Errorf("list episodes of %d: %w", parentID, err)
		}

		for _, id := range stale {
			if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM titles WHERE id = ?"), id); err != nil {
				return fmt.Errorf("delete title %d: %w", id, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		removed = len(stale)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("prune episodes: %w", err)
	}
	return removed, nil
}

const titleColumns = "id, kind, path, parent_id, local_key, tmdb_id, imdb_id, tvdb_id, name, updated_at"

func scanTitleRow(scanner interface{ Scan(dest ...any) error }) (*TitleRow, error) {
	var (
		row      TitleRow
		kind     string
		parentID sql.NullInt64
		tmdbID   sql.NullInt64
		imdbID   sql.NullString
		tvdbID   sql.NullInt64
		name     sql.NullString
	)
	if err := scanner.Scan(&row.ID, &kind, &row.Path, &parentID, &row.Identity.LocalKey,
		&tmdbID, &imdbID, &tvdbID, &name, &row.UpdatedAt); err != nil {
		return nil, err
	}
	row.Kind = library.Kind(kind)
	if parentID.Valid {
		id := parentID.Int64
		row.ParentID = &id
	}
	row.Identity.TMDB = tmdbID.Int64
	row.Identity.IMDb = imdbID.String
	row.Identity.TVDB = tvdbID.Int64
	row.Name = name.String
	return &row, nil
}

// FindTitleByIdentity returns the first title carrying localKey, or nil when
// none exists.
func (s *Store) FindTitleByIdentity(ctx context.Context, localKey string) (*TitleRow, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+titleColumns+" FROM titles WHERE local_key = ? ORDER BY id LIMIT 1"), localKey)
	title, err := scanTitleRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find title %s: %w", localKey, err)
	}
	return title, nil
}

// Titles lists every stored title ordered by kind and path.
func (s *Store) Titles(ctx context.Context) ([]TitleRow, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+titleColumns+" FROM titles ORDER BY kind, path")
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	defer rows.Close()

	var titles []TitleRow
	for rows.Next() {
		title, err := scanTitleRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, *title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	return titles, nil
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func nullableID(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
