package testsupport

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

const imdbSchema = `
CREATE TABLE title (tconst TEXT PRIMARY KEY, titleType TEXT, primaryTitle TEXT, originalTitle TEXT,
	isAdult INTEGER, startYear INTEGER, endYear INTEGER, runtimeMinutes INTEGER, genres TEXT);
CREATE TABLE title_aka (titleId TEXT, ordering INTEGER, title TEXT, region TEXT, language TEXT,
	types TEXT, attributes TEXT, isOriginalTitle INTEGER);
CREATE TABLE title_episode (tconst TEXT PRIMARY KEY, parentTconst TEXT, seasonNumber INTEGER, episodeNumber INTEGER);
CREATE TABLE title_principals (tconst TEXT, ordering INTEGER, nconst TEXT, category TEXT, job TEXT, characters TEXT);
CREATE TABLE name (nconst TEXT PRIMARY KEY, primaryName TEXT, birthYear INTEGER, deathYear INTEGER,
	primaryProfession TEXT, knownForTitles TEXT);
CREATE TABLE title_ratings (tconst TEXT PRIMARY KEY, averageRating REAL, numVotes INTEGER);
CREATE TABLE title_crew (tconst TEXT PRIMARY KEY, directors TEXT, writers TEXT);
`

// IMDbFixture builds a small IMDb dataset file for tests.
type IMDbFixture struct {
	t    testing.TB
	db   *sql.DB
	Path string
}

// NewIMDbDataset creates an empty dataset at path with the IMDb tables.
func NewIMDbDataset(t testing.TB, path string) *IMDbFixture {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir dataset dir: %v", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open dataset: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	for _, stmt := range strings.Split(imdbSchema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("create dataset schema: %v", err)
		}
	}
	return &IMDbFixture{t: t, db: db, Path: path}
}

// Exec runs a statement against the fixture, failing the test on error.
// Empty string arguments are stored as the dataset's "\N" placeholder.
func (f *IMDbFixture) Exec(query string, args ...any) {
	f.t.Helper()
	for i, arg := range args {
		if s, ok := arg.(string); ok && s == "" {
			args[i] = `\N`
		}
	}
	if _, err := f.db.Exec(query, args...); err != nil {
		f.t.Fatalf("dataset exec %q: %v", query, err)
	}
}

// AddTitle inserts a title row. Zero years and runtime are stored as "\N".
func (f *IMDbFixture) AddTitle(tconst, titleType, primary, original string, startYear, endYear, runtime int, genres string) {
	f.t.Helper()
	f.Exec(`INSERT INTO title VALUES (?, ?, ?, ?, 0, ?, ?, ?, ?)`,
		tconst, titleType, primary, original, nullInt(startYear), nullInt(endYear), nullInt(runtime), genres)
}

// AddAka inserts an alternative title.
func (f *IMDbFixture) AddAka(tconst string, ordering int, title, region, language, types string) {
	f.t.Helper()
	f.Exec(`INSERT INTO title_aka VALUES (?, ?, ?, ?, ?, ?, '', 0)`, tconst, ordering, title, region, language, types)
}

// AddPrincipal inserts a principal credit and its person.
func (f *IMDbFixture) AddPrincipal(tconst string, ordering int, nconst, name, category, job, characters string) {
	f.t.Helper()
	f.Exec(`INSERT OR IGNORE INTO name (nconst, primaryName) VALUES (?, ?)`, nconst, name)
	f.Exec(`INSERT INTO title_principals VALUES (?, ?, ?, ?, ?, ?)`, tconst, ordering, nconst, category, job, characters)
}

// AddEpisode inserts an episode title linked to parent.
func (f *IMDbFixture) AddEpisode(tconst, parent string, season, episode int, title string, runtime int) {
	f.t.Helper()
	f.AddTitle(tconst, "tvEpisode", title, title, 0, 0, runtime, "")
	f.Exec(`INSERT INTO title_episode VALUES (?, ?, ?, ?)`, tconst, parent, season, episode)
}

// AddRating inserts a ratings row.
func (f *IMDbFixture) AddRating(tconst string, average float64, votes int64) {
	f.t.Helper()
	f.Exec(`INSERT INTO title_ratings VALUES (?, ?, ?)`, tconst, average, votes)
}

func nullInt(n int) any {
	if n == 0 {
		return `\N`
	}
	return n
}
