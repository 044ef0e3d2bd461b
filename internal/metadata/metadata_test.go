package metadata_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"marquee/internal/library"
	"marquee/internal/logging"
	"marquee/internal/metadata"
	"marquee/internal/ranking"
	"marquee/internal/services"
	"marquee/internal/sources/fanart"
	"marquee/internal/sources/imdb"
	"marquee/internal/sources/tmdb"
	"marquee/internal/sources/tvdb"
	"marquee/internal/testsupport"
)

type harness struct {
	tmdb    *testsupport.FakeService
	fanart  *testsupport.FakeService
	tvdb    *testsupport.FakeService
	dataset *testsupport.IMDbFixture
	agg     *metadata.Aggregator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		tmdb:   testsupport.NewFakeService(t),
		fanart: testsupport.NewFakeService(t),
		tvdb:   testsupport.NewFakeService(t),
	}
	cfg := testsupport.NewConfig(t,
		testsupport.WithTMDB(h.tmdb.URL),
		testsupport.WithFanart(h.fanart.URL),
		testsupport.WithTVDB(h.tvdb.URL),
	)
	h.dataset = testsupport.NewIMDbDataset(t, filepath.Join(t.TempDir(), "imdb.sqlite"))

	catalog, err := tmdb.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("tmdb.New: %v", err)
	}
	art, err := fanart.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("fanart.New: %v", err)
	}
	crossRef, err := tvdb.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("tvdb.New: %v", err)
	}
	dataset, err := imdb.Open(h.dataset.Path)
	if err != nil {
		t.Fatalf("imdb.Open: %v", err)
	}
	t.Cleanup(func() { _ = dataset.Close() })

	h.agg, err = metadata.New(metadata.Sources{
		Catalog:  catalog,
		Dataset:  dataset,
		Art:      art,
		CrossRef: crossRef,
	}, metadata.WithLanguage(cfg.TMDB.Language))
	if err != nil {
		t.Fatalf("metadata.New: %v", err)
	}
	return h
}

func (h *harness) seedMatrix() {
	h.dataset.AddTitle("tt0133093", "movie", "The Matrix", "The Matrix", 1999, 0, 136, "Action,Sci-Fi")
	h.dataset.AddAka("tt0133093", 1, "Matrix", "DE", "de", "imdbDisplay")
	h.dataset.AddAka("tt0133093", 2, "Matrix Working", "US", "", "working")
	h.dataset.AddPrincipal("tt0133093", 1, "nm0000206", "Keanu Reeves", "actor", "", `["Neo"]`)

	h.tmdb.JSON("movie/603", `{"id":603,"imdb_id":"tt0133093","title":"The Matrix","original_language":"en",
		"overview":"A hacker learns the truth.","tagline":"Welcome to the Real World.","runtime":136,
		"genres":[{"id":28,"name":"Action"},{"id":878,"name":"Science Fiction"}]}`)
	h.tmdb.JSON("movie/603/translations", `{"translations":[
		{"iso_3166_1":"DE","iso_639_1":"de","data":{"title":"Matrix","overview":"Ein Hacker erfährt die Wahrheit."}},
		{"iso_3166_1":"FR","iso_639_1":"fr","data":{"title":"Matrix","overview":""}}]}`)
	h.tmdb.JSON("movie/603/release_dates", `{"results":[
		{"iso_3166_1":"US","release_dates":[{"certification":"PG","type":1},{"certification":"R","type":3},{"certification":"NR","type":3}]},
		{"iso_3166_1":"DE","release_dates":[{"certification":"","type":3}]}]}`)
	h.tmdb.JSON("movie/603/images", `{
		"posters":[{"file_path":"/p-en.jpg","iso_639_1":"en","vote_average":5.5,"vote_count":4,"width":1000,"height":1500},
			{"file_path":"/p-none.jpg","iso_639_1":null,"vote_average":6,"vote_count":10,"width":2000,"height":3000}],
		"backdrops":[{"file_path":"/b.jpg","iso_639_1":null,"vote_average":5,"vote_count":2,"width":1920,"height":1080}]}`)
	h.fanart.JSON("movies/603", `{"hdmovielogo":[{"id":"1","url":"https://fanart.example/logo.png","lang":"en","likes":"3"}]}`)
}

func TestIdentifyPicksMostPopularMatch(t *testing.T) {
	h := newHarness(t)
	h.tmdb.JSON("search/movie", `{"results":[{"id":10,"popularity":5},{"id":700,"popularity":80},{"id":603,"popularity":80}]}`)
	h.tmdb.JSON("movie/603", `{"id":603,"imdb_id":"tt0133093"}`)

	id, err := h.agg.Identify(context.Background(), "The Matrix", 1999, library.KindMovie)
	if err != nil {
		t.Fatalf("Identify returned error: %v", err)
	}
	if id == nil || id.TMDB != 603 || id.IMDb != "tt0133093" || id.LocalKey == "" {
		t.Fatalf("unexpected identity %+v", id)
	}
	if h.tmdb.Hits("movie/700") != 0 {
		t.Fatal("tie should resolve to the lower id")
	}
}

func TestIdentifyReturnsNilWhenNothingMatches(t *testing.T) {
	h := newHarness(t)
	h.tmdb.JSON("search/movie", `{"results":[]}`)

	id, err := h.agg.Identify(context.Background(), "Nothing Here", 2001, library.KindMovie)
	if err != nil || id != nil {
		t.Fatalf("expected nil identity, got %+v err=%v", id, err)
	}
}

func TestIdentifyFallsBackToDatasetSearch(t *testing.T) {
	h := newHarness(t)
	h.tmdb.JSON("search/movie", `{"results":[]}`)
	h.dataset.AddTitle("tt0118929", "movie", "Dark City", "Dark City", 1998, 0, 100, "Sci-Fi")
	h.tmdb.JSON("find/tt0118929", `{"movie_results":[{"id":2666,"popularity":9}],"tv_results":[]}`)
	h.tmdb.JSON("movie/2666", `{"id":2666,"imdb_id":"tt0118929"}`)

	id, err := h.agg.Identify(context.Background(), "Dark City", 1998, library.KindMovie)
	if err != nil {
		t.Fatalf("Identify returned error: %v", err)
	}
	if id == nil || id.TMDB != 2666 || id.IMDb != "tt0118929" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestIdentifyShowResolvesTVDBThroughCrossReference(t *testing.T) {
	h := newHarness(t)
	h.tmdb.JSON("search/tv", `{"results":[{"id":1399,"popularity":50}]}`)
	h.tmdb.JSON("tv/1399/external_ids", `{"imdb_id":"tt0944947","tvdb_id":null}`)
	h.tvdb.JSON("login", `{"status":"success","data":{"token":"abc"}}`)
	h.tvdb.JSON("search/remoteid/tt0944947", `{"status":"success","data":[{"series":{"id":121361}}]}`)

	id, err := h.agg.Identify(context.Background(), "Game of Thrones", 2011, library.KindShow)
	if err != nil {
		t.Fatalf("Identify returned error: %v", err)
	}
	if id == nil || id.TMDB != 1399 || id.IMDb != "tt0944947" || id.TVDB != 121361 {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestAggregateMovieMergesSources(t *testing.T) {
	h := newHarness(t)
	h.seedMatrix()

	identity := library.Identity{LocalKey: "key", TMDB: 603, IMDb: "tt0133093"}
	result, err := h.agg.Aggregate(context.Background(), identity)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	title := result.Title
	if title.Kind != library.KindMovie || title.OriginalLanguage != "en" {
		t.Fatalf("unexpected title header %+v", title)
	}
	wantNames := []library.Name{
		{Kind: library.NamePrimary, Value: "The Matrix"},
		{Kind: library.NameOriginal, Languages: []string{"en"}, Value: "The Matrix"},
		{Kind: library.NameLocalized, Region: "DE", Languages: []string{"de"}, Value: "Matrix"},
	}
	if !reflect.DeepEqual(title.Names, wantNames) {
		t.Fatalf("unexpected names %+v", title.Names)
	}
	wantDescriptions := []library.Description{
		{Languages: []string{"en"}, Overview: "A hacker learns the truth.", Tagline: "Welcome to the Real World."},
		{Region: "DE", Languages: []string{"de"}, Overview: "Ein Hacker erfährt die Wahrheit."},
	}
	if !reflect.DeepEqual(title.Descriptions, wantDescriptions) {
		t.Fatalf("unexpected descriptions %+v", title.Descriptions)
	}
	if !reflect.DeepEqual(title.Genres, []string{"Action", "Science Fiction"}) {
		t.Fatalf("unexpected genres %v", title.Genres)
	}
	if !reflect.DeepEqual(title.Ratings, []library.Rating{{Region: "US", Certification: "R"}}) {
		t.Fatalf("unexpected ratings %+v", title.Ratings)
	}
	if title.RuntimeMinutes == nil || *title.RuntimeMinutes != 136 || title.YearStart == nil || *title.YearStart != 1999 {
		t.Fatalf("unexpected runtime/year %v %v", title.RuntimeMinutes, title.YearStart)
	}
	if len(title.Cast) != 1 || title.Cast[0].PersonName != "Keanu Reeves" {
		t.Fatalf("unexpected cast %+v", title.Cast)
	}

	kinds := map[ranking.Kind]int{}
	for _, c := range result.Candidates {
		kinds[c.Kind]++
	}
	if kinds[ranking.KindPoster] != 2 || kinds[ranking.KindBackdrop] != 1 || kinds[ranking.KindLogo] != 1 {
		t.Fatalf("unexpected candidate pool %+v", result.Candidates)
	}
	for _, c := range result.Candidates {
		if c.Kind == ranking.KindPoster && c.Language == "en" && c.SourceURL != h.tmdb.URL+"/images/original/p-en.jpg" {
			t.Fatalf("unexpected poster url %q", c.SourceURL)
		}
	}
}

func TestAggregateToleratesOptionalFailures(t *testing.T) {
	h := newHarness(t)
	h.seedMatrix()
	h.tmdb.Status("movie/603/translations", 500)
	h.tmdb.Status("movie/603/images", 503)
	h.fanart.Status("movies/603", 500)

	result, err := h.agg.Aggregate(context.Background(), library.Identity{LocalKey: "key", TMDB: 603, IMDb: "tt0133093"})
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if len(result.Title.Descriptions) != 1 {
		t.Fatalf("expected only the primary description, got %+v", result.Title.Descriptions)
	}
	if len(result.Candidates) != 0 {
		t.Fatalf("expected no candidates, got %+v", result.Candidates)
	}
}

func TestAggregateRequiredFailures(t *testing.T) {
	tests := []struct {
		name     string
		identity library.Identity
		mutate   func(h *harness)
	}{
		{"catalog record", library.Identity{LocalKey: "k", TMDB: 603, IMDb: "tt0133093"}, func(h *harness) {
			h.tmdb.Status("movie/603", 500)
		}},
		{"dataset record", library.Identity{LocalKey: "k", TMDB: 603, IMDb: "tt9999999"}, func(*harness) {}},
		{"missing imdb id", library.Identity{LocalKey: "k", TMDB: 603}, func(*harness) {}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.seedMatrix()
			tt.mutate(h)
			result, err := h.agg.Aggregate(context.Background(), tt.identity)
			if result != nil {
				t.Fatalf("expected no result, got %+v", result)
			}
			if !errors.Is(err, services.ErrRequiredFetch) {
				t.Fatalf("expected required fetch error, got %v", err)
			}
		})
	}
}

func (h *harness) seedShow() {
	h.dataset.AddTitle("tt0944947", "tvSeries", "Game of Thrones", "Game of Thrones", 2011, 2019, 57, "Drama")
	h.dataset.AddEpisode("tt1480055", "tt0944947", 1, 1, "Winter Is Coming", 62)
	h.dataset.AddEpisode("tt1668746", "tt0944947", 1, 2, "The Kingsroad", 56)

	h.tmdb.JSON("tv/1399", `{"id":1399,"name":"Game of Thrones","original_language":"en","overview":"Seven kingdoms.",
		"genres":[{"id":18,"name":"Drama"}],"seasons":[{"season_number":0},{"season_number":1}]}`)
	h.tmdb.JSON("tv/1399/content_ratings", `{"results":[{"iso_3166_1":"US","rating":"TV-MA"},{"iso_3166_1":"US","rating":"TV-14"}]}`)
	h.tmdb.JSON("tv/1399/season/0", `{"season_number":0,"episodes":[]}`)
	h.tmdb.JSON("tv/1399/season/1", `{"season_number":1,"episodes":[
		{"id":63056,"episode_number":1,"air_date":"2011-04-17"},{"id":63057,"episode_number":2,"air_date":"2011-04-24"}]}`)
	h.tmdb.JSON("tv/1399/season/1/episode/1", `{"id":63056,"name":"Winter Is Coming","overview":"Lord Stark is asked.","runtime":62}`)
	h.tmdb.JSON("tv/1399/season/1/episode/1/translations", `{"translations":[]}`)
	h.tmdb.JSON("tv/1399/season/1/episode/1/images", `{"stills":[{"file_path":"/s1.jpg","vote_average":5,"vote_count":1,"width":1280,"height":720}]}`)
	h.tmdb.JSON("tv/1399/season/1/episode/2", `{"id":63057,"name":"The Kingsroad","overview":"Bran is injured."}`)
	h.tmdb.JSON("tv/1399/season/1/episode/2/translations", `{"translations":[]}`)
}

func TestAggregateShowAndEpisodes(t *testing.T) {
	h := newHarness(t)
	h.seedShow()
	ctx := context.Background()

	show, err := h.agg.Aggregate(ctx, library.Identity{LocalKey: "6ba7b810-9dad-11d1-80b4-00c04fd430c8", TMDB: 1399, IMDb: "tt0944947"})
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if show.Title.Kind != library.KindShow || show.Title.YearEnd == nil || *show.Title.YearEnd != 2019 {
		t.Fatalf("unexpected show %+v", show.Title)
	}
	if !reflect.DeepEqual(show.Title.Ratings, []library.Rating{{Region: "US", Certification: "TV-MA"}}) {
		t.Fatalf("unexpected ratings %+v", show.Title.Ratings)
	}
	wantEpisodes := []library.EpisodeLink{{Season: "01", Episode: "01"}, {Season: "01", Episode: "02"}}
	if !reflect.DeepEqual(show.Episodes, wantEpisodes) {
		t.Fatalf("unexpected episode list %+v", show.Episodes)
	}
	if !reflect.DeepEqual(show.Seasons, []int{0, 1}) {
		t.Fatalf("unexpected seasons %v", show.Seasons)
	}

	link := library.EpisodeLink{Season: "01", Episode: "01", Title: "Pilot"}
	episode, err := h.agg.AggregateEpisode(ctx, show, link)
	if err != nil || episode == nil {
		t.Fatalf("AggregateEpisode: %+v %v", episode, err)
	}
	if episode.Title.Kind != library.KindEpisode || episode.Title.PrimaryName() != "Winter Is Coming" {
		t.Fatalf("unexpected episode %+v", episode.Title)
	}
	if episode.Title.Identity.TMDB != 63056 || episode.Title.Identity.IMDb != "tt1480055" {
		t.Fatalf("unexpected episode identity %+v", episode.Title.Identity)
	}
	again, err := h.agg.AggregateEpisode(ctx, show, link)
	if err != nil || again.Title.Identity.LocalKey != episode.Title.Identity.LocalKey {
		t.Fatal("episode local key should be stable")
	}
	if len(episode.Candidates) != 1 || episode.Candidates[0].Kind != ranking.KindStill {
		t.Fatalf("unexpected stills %+v", episode.Candidates)
	}

	dated, err := h.agg.AggregateEpisode(ctx, show, library.EpisodeLink{AirDate: "2011-04-24"})
	if err != nil || dated == nil {
		t.Fatalf("dated AggregateEpisode: %+v %v", dated, err)
	}
	if dated.Title.Identity.TMDB != 63057 || dated.Title.Episode.AirDate != "2011-04-24" {
		t.Fatalf("unexpected dated episode %+v", dated.Title)
	}
}

func TestAggregateEpisodeSoftFailures(t *testing.T) {
	h := newHarness(t)
	h.seedShow()
	ctx := context.Background()
	show, err := h.agg.Aggregate(ctx, library.Identity{LocalKey: "k", TMDB: 1399, IMDb: "tt0944947"})
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	tests := map[string]library.EpisodeLink{
		"missing in catalog": {Season: "03", Episode: "09"},
		"translations unavailable": {Season: "01", Episode: "02"},
		"unknown air date":   {AirDate: "1999-01-01"},
	}
	h.tmdb.Status("tv/1399/season/1/episode/2/translations", 500)
	for name, link := range tests {
		t.Run(name, func(t *testing.T) {
			result, err := h.agg.AggregateEpisode(ctx, show, link)
			if err != nil || result != nil {
				t.Fatalf("expected nil result without error, got %+v %v", result, err)
			}
		})
	}
}
