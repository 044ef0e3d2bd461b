package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"marquee/internal/library"
)

// ChildKind names a family of rows owned by a title.
type ChildKind string

const (
	ChildNames        ChildKind = "names"
	ChildDescriptions ChildKind = "descriptions"
	ChildCast         ChildKind = "cast"
	ChildGenres       ChildKind = "genres"
	ChildRatings      ChildKind = "ratings"
	ChildImages       ChildKind = "images"
	ChildMedia        ChildKind = "media"
	ChildSubtitles    ChildKind = "subtitles"
	ChildEpisodes     ChildKind = "episodes"
	ChildPreviews     ChildKind = "previews"
)

// Row holds the column values of one child row in the order given by Columns.
type Row []any

type childTable struct {
	table   string
	columns []string
}

var childTables = map[ChildKind]childTable{
	ChildNames:        {"title_names", []string{"kind", "region", "languages", "value"}},
	ChildDescriptions: {"title_descriptions", []string{"region", "languages", "overview", "tagline"}},
	ChildCast:         {"title_cast", []string{"person_id", "category", "job", "characters"}},
	ChildGenres:       {"title_genres", []string{"genre_id"}},
	ChildRatings:      {"title_ratings", []string{"region", "certification"}},
	ChildImages:       {"title_images", []string{"kind", "language", "mime", "width", "height", "src"}},
	ChildMedia:        {"title_media", []string{"src", "container", "duration_seconds", "tracks"}},
	ChildSubtitles:    {"title_subtitles", []string{"language", "region", "specifier", "format", "src"}},
	ChildEpisodes:     {"title_episodes", []string{"episode_key", "season", "episode", "air_date", "name"}},
	ChildPreviews:     {"title_previews", []string{"kind", "src"}},
}

// ChildKinds lists every child kind in replacement order.
var ChildKinds = []ChildKind{
	ChildNames, ChildDescriptions, ChildCast, ChildGenres, ChildRatings,
	ChildImages, ChildMedia, ChildSubtitles, ChildEpisodes, ChildPreviews,
}

// Columns returns the expected Row layout for kind. Cast rows take
// (person_id, person_name, category, job, characters) and genre rows take
// (name); the store resolves them against the people and genres tables.
func Columns(kind ChildKind) []string {
	switch kind {
	case ChildCast:
		return []string{"person_id", "person_name", "category", "job", "characters"}
	case ChildGenres:
		return []string{"name"}
	}
	return append([]string(nil), childTables[kind].columns...)
}

// ReplaceChildRows deletes every row of kind owned by titleID and inserts rows
// in one transaction.
func (s *Store) ReplaceChildRows(ctx context.Context, kind ChildKind, titleID int64, rows []Row) error {
	return retryTransient(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin replace tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if err := s.replaceChildRows(ctx, tx, kind, titleID, rows); err != nil {
			return err
		}
		return tx.Commit()
	})
}

func (s *Store) replaceChildRows(ctx context.Context, tx *sql.Tx, kind ChildKind, titleID int64, rows []Row) error {
	def, ok := childTables[kind]
	if !ok {
		return fmt.Errorf("unknown child kind %q", kind)
	}
	if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM "+def.table+" WHERE title_id = ?"), titleID); err != nil {
		return fmt.Errorf("delete %s for title %d: %w", kind, titleID, err)
	}
	if len(rows) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(def.columns)+2), ", ")
	insert := s.rebind(fmt.Sprintf("INSERT INTO %s (title_id, position, %s) VALUES (%s)",
		def.table, strings.Join(def.columns, ", "), placeholders))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare %s insert: %w", kind, err)
	}
	defer stmt.Close()

	want := len(Columns(kind))
	for i, row := range rows {
		if len(row) != want {
			return fmt.Errorf("%s row %d: expected %d values, got %d", kind, i, want, len(row))
		}
		values, err := s.resolveRow(ctx, tx, kind, row)
		if err != nil {
			return err
		}
		args := append([]any{titleID, i}, values...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", kind, i, err)
		}
	}
	return nil
}

// resolveRow maps lookup-table values to their ids.
func (s *Store) resolveRow(ctx context.Context, tx *sql.Tx, kind ChildKind, row Row) (Row, error) {
	switch kind {
	case ChildCast:
		personID, _ := row[0].(string)
		personName, _ := row[1].(string)
		if personID == "" {
			return nil, fmt.Errorf("cast row without person id")
		}
		if _, err := tx.ExecContext(ctx, s.rebind(
			"INSERT INTO people (id, name) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET name = excluded.name"),
			personID, personName); err != nil {
			return nil, fmt.Errorf("upsert person %s: %w", personID, err)
		}
		return Row{personID, row[2], row[3], row[4]}, nil
	case ChildGenres:
		name, _ := row[0].(string)
		if name == "" {
			return nil, fmt.Errorf("genre row without name")
		}
		if _, err := tx.ExecContext(ctx, s.rebind(
			"INSERT INTO genres (name) VALUES (?) ON CONFLICT (name) DO NOTHING"), name); err != nil {
			return nil, fmt.Errorf("upsert genre %s: %w", name, err)
		}
		var id int64
		if err := tx.QueryRowContext(ctx, s.rebind("SELECT id FROM genres WHERE name = ?"), name).Scan(&id); err != nil {
			return nil, fmt.Errorf("lookup genre %s: %w", name, err)
		}
		return Row{id}, nil
	}
	return row, nil
}

// CountChildRows returns how many rows of kind titleID owns.
func (s *Store) CountChildRows(ctx context.Context, kind ChildKind, titleID int64) (int, error) {
	def, ok := childTables[kind]
	if !ok {
		return 0, fmt.Errorf("unknown child kind %q", kind)
	}
	var count int
	if err := s.db.QueryRowContext(ctx, s.rebind("SELECT COUNT(1) FROM "+def.table+" WHERE title_id = ?"), titleID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return count, nil
}

// Record is everything persisted for one title.
type Record struct {
	Title     library.Title
	ParentID  *int64
	Images    []library.Image
	Media     []library.MediaFile
	Subtitles []library.Subtitle
	Episodes  []library.EpisodeLink
	Previews  []library.Preview
}

// Save upserts the title and replaces all of its child rows in a single
// transaction.
func (s *Store) Save(ctx context.Context, record Record) (TitleRow, error) {
	children, err := record.rows()
	if err != nil {
		return TitleRow{}, err
	}
	fields := FieldsFor(record.Title, record.ParentID)
	if err := fields.validate(); err != nil {
		return TitleRow{}, err
	}
	var row TitleRow
	err = retryTransient(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin save tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		row, err = s.upsertTitle(ctx, tx, fields)
		if err != nil {
			return fmt.Errorf("upsert title: %w", err)
		}
		for _, kind := range ChildKinds {
			if err := s.replaceChildRows(ctx, tx, kind, row.ID, children[kind]); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return TitleRow{}, fmt.Errorf("save %s: %w", record.Title.Path, err)
	}
	return row, nil
}

func (r Record) rows() (map[ChildKind][]Row, error) {
	out := make(map[ChildKind][]Row, len(ChildKinds))
	t := r.Title
	for _, n := range t.Names {
		out[ChildNames] = append(out[ChildNames], Row{string(n.Kind), nullString(n.Region), joinList(n.Languages), n.Value})
	}
	for _, d := range t.Descriptions {
		out[ChildDescriptions] = append(out[ChildDescriptions], Row{nullString(d.Region), joinList(d.Languages), d.Overview, nullString(d.Tagline)})
	}
	for _, c := range t.Cast {
		characters, err := jsonList(c.Characters)
		if err != nil {
			return nil, err
		}
		out[ChildCast] = append(out[ChildCast], Row{c.PersonID, c.PersonName, nullString(c.Category), nullString(c.Job), characters})
	}
	for _, g := range t.Genres {
		out[ChildGenres] = append(out[ChildGenres], Row{g})
	}
	for _, rating := range t.Ratings {
		out[ChildRatings] = append(out[ChildRatings], Row{rating.Region, rating.Certification})
	}
	for _, img := range r.Images {
		out[ChildImages] = append(out[ChildImages], Row{img.Kind, nullString(img.Language), nullString(img.MIME), int64(img.Width), int64(img.Height), img.Src})
	}
	for _, m := range r.Media {
		tracks, err := json.Marshal(m.Descriptor.Tracks)
		if err != nil {
			return nil, fmt.Errorf("encode tracks: %w", err)
		}
		var duration any
		if m.Descriptor.DurationSeconds != nil {
			duration = *m.Descriptor.DurationSeconds
		}
		out[ChildMedia] = append(out[ChildMedia], Row{m.Src, m.Descriptor.ContainerMIME, duration, string(tracks)})
	}
	for _, sub := range r.Subtitles {
		out[ChildSubtitles] = append(out[ChildSubtitles], Row{sub.Language, nullString(sub.Region), nullString(sub.Specifier), sub.Format, sub.Src})
	}
	for _, ep := range r.Episodes {
		out[ChildEpisodes] = append(out[ChildEpisodes], Row{ep.Key(), nullString(ep.Season), nullString(ep.Episode), nullString(ep.AirDate), nullString(ep.Title)})
	}
	for _, p := range r.Previews {
		out[ChildPreviews] = append(out[ChildPreviews], Row{p.Kind, p.Src})
	}
	return out, nil
}

func joinList(values []string) any {
	if len(values) == 0 {
		return nil
	}
	return strings.Join(values, ",")
}

func jsonList(values []string) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode list: %w", err)
	}
	return string(data), nil
}
