package imdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"marquee/internal/services"
)

// Dataset is a read-only view over a SQLite import of the IMDb
// non-commercial title and name datasets.
type Dataset struct {
	db   *sql.DB
	path string
}

// Open opens the dataset at path read-only.
func Open(path string) (*Dataset, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "imdb", "open", "dataset path not configured", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "imdb", "open", "dataset "+path, err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open imdb dataset: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open imdb dataset: %w", err)
	}
	return &Dataset{db: db, path: path}, nil
}

// Close closes the underlying database.
func (d *Dataset) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Path returns the dataset file path.
func (d *Dataset) Path() string {
	return d.path
}

// Title types used when searching the dataset.
const (
	TypeMovie        = "movie"
	TypeTVSeries     = "tvSeries"
	TypeTVMiniSeries = "tvMiniSeries"
)

// IsShowType reports whether an IMDb titleType denotes a series.
func IsShowType(titleType string) bool {
	switch titleType {
	case TypeTVSeries, TypeTVMiniSeries:
		return true
	}
	return false
}

// TitleType returns the titleType of tconst.
func (d *Dataset) TitleType(ctx context.Context, tconst string) (string, error) {
	var titleType text
	err := d.db.QueryRowContext(ctx, `SELECT titleType FROM title WHERE tconst = ?`, tconst).Scan(&titleType)
	if err != nil {
		return "", d.wrap("title type", tconst, err)
	}
	return string(titleType), nil
}

const titleQuery = `
SELECT t.tconst, t.titleType, t.primaryTitle, t.originalTitle, t.isAdult,
       t.startYear, t.endYear, t.runtimeMinutes, t.genres,
       r.averageRating, r.numVotes, c.directors, c.writers
FROM title t
LEFT OUTER JOIN title_ratings r ON r.tconst = t.tconst
LEFT OUTER JOIN title_crew c ON c.tconst = t.tconst
`

// Title returns the title record for tconst.
func (d *Dataset) Title(ctx context.Context, tconst string) (*Title, error) {
	row := d.db.QueryRowContext(ctx, titleQuery+`WHERE t.tconst = ?`, tconst)
	title, err := scanTitle(row)
	if err != nil {
		return nil, d.wrap("title", tconst, err)
	}
	return title, nil
}

// Episode returns the title record of the episode of parent at season and
// episode number.
func (d *Dataset) Episode(ctx context.Context, parent string, season, episode int) (*Title, error) {
	row := d.db.QueryRowContext(ctx, titleQuery+`
JOIN title_episode e ON e.tconst = t.tconst
WHERE e.parentTconst = ? AND e.seasonNumber = ? AND e.episodeNumber = ?
LIMIT 1`, parent, season, episode)
	title, err := scanTitle(row)
	if err != nil {
		return nil, d.wrap("episode", fmt.Sprintf("%s s%de%d", parent, season, episode), err)
	}
	return title, nil
}

func scanTitle(row *sql.Row) (*Title, error) {
	var (
		tconst, titleType, primary, original, adult text
		start, end, runtime, genres                 text
		rating, votes, directors, writers           text
	)
	if err := row.Scan(&tconst, &titleType, &primary, &original, &adult,
		&start, &end, &runtime, &genres, &rating, &votes, &directors, &writers); err != nil {
		return nil, err
	}
	title := &Title{
		ID:             string(tconst),
		TitleType:      string(titleType),
		PrimaryTitle:   string(primary),
		OriginalTitle:  string(original),
		IsAdult:        adult.bool(),
		StartYear:      start.intPtr(),
		EndYear:        end.intPtr(),
		RuntimeMinutes: runtime.intPtr(),
		Genres:         genres.list(),
		Directors:      directors.list(),
		Writers:        writers.list(),
	}
	if avg := rating.floatPtr(); avg != nil {
		title.Rating = &Rating{Average: *avg}
		if n := votes.intPtr(); n != nil {
			title.Rating.Votes = int64(*n)
		}
	}
	return title, nil
}

// Akas returns the alternative titles of tconst in dataset order.
func (d *Dataset) Akas(ctx context.Context, tconst string) ([]Aka, error) {
	rows, err := d.db.QueryContext(ctx, `
SELECT title, region, language, types, attributes, isOriginalTitle
FROM title_aka
WHERE titleId = ?
ORDER BY ordering`, tconst)
	if err != nil {
		return nil, d.wrap("akas", tconst, err)
	}
	defer rows.Close()

	var akas []Aka
	for rows.Next() {
		var title, region, languages, types, attributes, original text
		if err := rows.Scan(&title, &region, &languages, &types, &attributes, &original); err != nil {
			return nil, d.wrap("akas", tconst, err)
		}
		akas = append(akas, Aka{
			Title:           string(title),
			Region:          string(region),
			Languages:       languages.list(),
			Types:           types.list(),
			Attributes:      attributes.list(),
			IsOriginalTitle: original.bool(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, d.wrap("akas", tconst, err)
	}
	return akas, nil
}

// Principals returns the principal cast and crew of tconst in billing order.
func (d *Dataset) Principals(ctx context.Context, tconst string) ([]Principal, error) {
	rows, err := d.db.QueryContext(ctx, `
SELECT p.nconst, n.primaryName, p.category, p.job, p.characters
FROM title_principals p
LEFT OUTER JOIN name n ON n.nconst = p.nconst
WHERE p.tconst = ?
ORDER BY p.ordering`, tconst)
	if err != nil {
		return nil, d.wrap("principals", tconst, err)
	}
	defer rows.Close()

	var principals []Principal
	for rows.Next() {
		var nconst, name, category, job, characters text
		if err := rows.Scan(&nconst, &name, &category, &job, &characters); err != nil {
			return nil, d.wrap("principals", tconst, err)
		}
		principals = append(principals, Principal{
			PersonID:   string(nconst),
			PersonName: string(name),
			Category:   string(category),
			Job:        string(job),
			Characters: characters.jsonList(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, d.wrap("principals", tconst, err)
	}
	return principals, nil
}

// Episodes lists the episodes of the series parent ordered by season and
// episode number.
func (d *Dataset) Episodes(ctx context.Context, parent string) ([]EpisodeRef, error) {
	rows, err := d.db.QueryContext(ctx, `
SELECT tconst, seasonNumber, episodeNumber
FROM title_episode
WHERE parentTconst = ?
ORDER BY CAST(seasonNumber AS INTEGER), CAST(episodeNumber AS INTEGER), tconst`, parent)
	if err != nil {
		return nil, d.wrap("episodes", parent, err)
	}
	defer rows.Close()

	var episodes []EpisodeRef
	for rows.Next() {
		var tconst, season, episode text
		if err := rows.Scan(&tconst, &season, &episode); err != nil {
			return nil, d.wrap("episodes", parent, err)
		}
		episodes = append(episodes, EpisodeRef{
			ID:      string(tconst),
			Season:  season.intPtr(),
			Episode: episode.intPtr(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, d.wrap("episodes", parent, err)
	}
	return episodes, nil
}

// Search finds a title by exact primary or original title, type and start
// year. It returns "" when nothing matches.
func (d *Dataset) Search(ctx context.Context, titleType, name string, year int) (string, error) {
	var tconst text
	err := d.db.QueryRowContext(ctx, `
SELECT tconst FROM title
WHERE titleType = ? AND (primaryTitle = ? OR originalTitle = ?) AND startYear = ?
LIMIT 1`, titleType, name, name, year).Scan(&tconst)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", d.wrap("search", name, err)
	}
	return string(tconst), nil
}

func (d *Dataset) wrap(operation, key string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return services.Wrap(services.ErrNotFound, "imdb", operation, key, nil)
	}
	return services.Wrap(services.ErrExternalService, "imdb", operation, key, err)
}
