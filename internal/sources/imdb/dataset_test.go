package imdb_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"marquee/internal/services"
	"marquee/internal/sources/imdb"
	"marquee/internal/testsupport"
)

func openFixture(t *testing.T) (*testsupport.IMDbFixture, *imdb.Dataset) {
	t.Helper()
	fixture := testsupport.NewIMDbDataset(t, filepath.Join(t.TempDir(), "imdb.sqlite"))

	fixture.AddTitle("tt0133093", "movie", "The Matrix", "The Matrix", 1999, 0, 136, "Action,Sci-Fi")
	fixture.AddRating("tt0133093", 8.7, 2000000)
	fixture.Exec(`INSERT INTO title_crew VALUES (?, ?, ?)`, "tt0133093", "nm0905154,nm0905152", "nm0905152")
	fixture.AddAka("tt0133093", 2, "Matrix", "DE", "", "imdbDisplay")
	fixture.AddAka("tt0133093", 1, "The Matrix", "US", "en", "imdbDisplay,working")
	fixture.AddPrincipal("tt0133093", 1, "nm0000206", "Keanu Reeves", "actor", "", `["Neo"]`)
	fixture.AddPrincipal("tt0133093", 2, "nm0905154", "Lana Wachowski", "director", "", "")

	fixture.AddTitle("tt0944947", "tvSeries", "Game of Thrones", "Game of Thrones", 2011, 2019, 57, "Drama")
	fixture.AddEpisode("tt1480055", "tt0944947", 1, 1, "Winter Is Coming", 62)
	fixture.AddEpisode("tt1668746", "tt0944947", 1, 2, "The Kingsroad", 56)
	fixture.AddEpisode("tt2178782", "tt0944947", 2, 1, "The North Remembers", 53)

	dataset, err := imdb.Open(fixture.Path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = dataset.Close() })
	return fixture, dataset
}

func TestTitle(t *testing.T) {
	_, dataset := openFixture(t)
	ctx := context.Background()

	title, err := dataset.Title(ctx, "tt0133093")
	if err != nil {
		t.Fatalf("Title returned error: %v", err)
	}
	if title.PrimaryTitle != "The Matrix" || title.TitleType != "movie" {
		t.Fatalf("unexpected title %+v", title)
	}
	if title.StartYear == nil || *title.StartYear != 1999 || title.EndYear != nil {
		t.Fatalf("unexpected years %v %v", title.StartYear, title.EndYear)
	}
	if title.RuntimeMinutes == nil || *title.RuntimeMinutes != 136 {
		t.Fatalf("unexpected runtime %v", title.RuntimeMinutes)
	}
	if !reflect.DeepEqual(title.Genres, []string{"Action", "Sci-Fi"}) {
		t.Fatalf("unexpected genres %v", title.Genres)
	}
	if title.Rating == nil || title.Rating.Votes != 2000000 {
		t.Fatalf("unexpected rating %+v", title.Rating)
	}
	if len(title.Directors) != 2 {
		t.Fatalf("unexpected directors %v", title.Directors)
	}

	kind, err := dataset.TitleType(ctx, "tt0944947")
	if err != nil || !imdb.IsShowType(kind) {
		t.Fatalf("TitleType = %q, %v", kind, err)
	}
}

func TestMissingTitleIsNotFound(t *testing.T) {
	_, dataset := openFixture(t)
	_, err := dataset.Title(context.Background(), "tt9999999")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAkasAndPrincipals(t *testing.T) {
	_, dataset := openFixture(t)
	ctx := context.Background()

	akas, err := dataset.Akas(ctx, "tt0133093")
	if err != nil {
		t.Fatalf("Akas returned error: %v", err)
	}
	if len(akas) != 2 || akas[0].Region != "US" || akas[1].Title != "Matrix" {
		t.Fatalf("unexpected akas %+v", akas)
	}
	if akas[1].Languages != nil {
		t.Fatalf("placeholder language should be empty, got %v", akas[1].Languages)
	}
	if !akas[0].HasType("imdbDisplay") || !akas[0].HasType("working") {
		t.Fatalf("unexpected types %v", akas[0].Types)
	}

	principals, err := dataset.Principals(ctx, "tt0133093")
	if err != nil {
		t.Fatalf("Principals returned error: %v", err)
	}
	if len(principals) != 2 {
		t.Fatalf("unexpected principals %+v", principals)
	}
	if principals[0].PersonName != "Keanu Reeves" || !reflect.DeepEqual(principals[0].Characters, []string{"Neo"}) {
		t.Fatalf("unexpected first principal %+v", principals[0])
	}
	if principals[1].Characters != nil || principals[1].Job != "" {
		t.Fatalf("unexpected second principal %+v", principals[1])
	}
}

func TestEpisodes(t *testing.T) {
	_, dataset := openFixture(t)
	ctx := context.Background()

	episodes, err := dataset.Episodes(ctx, "tt0944947")
	if err != nil {
		t.Fatalf("Episodes returned error: %v", err)
	}
	if len(episodes) != 3 || episodes[2].ID != "tt2178782" || *episodes[2].Season != 2 {
		t.Fatalf("unexpected episodes %+v", episodes)
	}

	episode, err := dataset.Episode(ctx, "tt0944947", 1, 2)
	if err != nil {
		t.Fatalf("Episode returned error: %v", err)
	}
	if episode.ID != "tt1668746" || episode.PrimaryTitle != "The Kingsroad" {
		t.Fatalf("unexpected episode %+v", episode)
	}
	if _, err := dataset.Episode(ctx, "tt0944947", 9, 9); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for missing episode, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	_, dataset := openFixture(t)
	ctx := context.Background()

	id, err := dataset.Search(ctx, "movie", "The Matrix", 1999)
	if err != nil || id != "tt0133093" {
		t.Fatalf("Search = %q, %v", id, err)
	}
	id, err = dataset.Search(ctx, "movie", "The Matrix", 2003)
	if err != nil || id != "" {
		t.Fatalf("expected no match, got %q, %v", id, err)
	}
}

func TestOpenMissingDataset(t *testing.T) {
	_, err := imdb.Open(filepath.Join(t.TempDir(), "missing.sqlite"))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
