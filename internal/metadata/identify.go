package metadata

import (
	"context"
	"fmt"
	"strings"

	"marquee/internal/library"
	"marquee/internal/logging"
	"marquee/internal/services"
	"marquee/internal/sources/imdb"
	"marquee/internal/sources/tmdb"
)

// Identify searches the catalog for name released in year and resolves the
// best match's cross-reference ids. When the catalog search is empty the local
// dataset is searched and the hit is looked up in the catalog by IMDb id. A
// nil identity with a nil error means nothing matched.
func (a *Aggregator) Identify(ctx context.Context, name string, year int, kind library.Kind) (*library.Identity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.Wrap(services.ErrMalformedName, "identify", "search", "empty title name", nil)
	}

	var (
		resp *tmdb.SearchResponse
		err  error
	)
	switch kind {
	case library.KindMovie:
		resp, err = a.sources.Catalog.SearchMovie(ctx, name, year)
	case library.KindShow:
		resp, err = a.sources.Catalog.SearchTV(ctx, name, year)
	default:
		return nil, fmt.Errorf("identify: unsupported kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	var match *tmdb.SearchResult
	if resp != nil {
		match = mostPopular(resp.Results)
	}
	if match == nil {
		match, err = a.searchDataset(ctx, name, year, kind)
		if err != nil {
			return nil, err
		}
	}
	if match == nil {
		return nil, nil
	}

	identity := library.NewIdentity(match.ID, "")
	switch kind {
	case library.KindMovie:
		movie, err := a.sources.Catalog.Movie(ctx, match.ID)
		if err != nil {
			return nil, err
		}
		identity.IMDb = strings.TrimSpace(movie.IMDbID)
	case library.KindShow:
		ids, err := a.sources.Catalog.ShowExternalIDs(ctx, match.ID)
		if err != nil {
			return nil, err
		}
		identity.IMDb = strings.TrimSpace(ids.IMDbID)
		identity.TVDB = ids.TVDBID
		if identity.TVDB == 0 {
			identity.TVDB = a.lookupTVDB(ctx, identity.IMDb)
		}
	}

	logging.WithContext(ctx, a.logger).Info("title identified",
		logging.String("name", name),
		logging.Int("year", year),
		logging.Int64("tmdb_id", identity.TMDB),
		logging.String("imdb_id", identity.IMDb),
	)
	return &identity, nil
}

// mostPopular returns the result with the highest popularity; ties go to the
// lower id so repeated searches agree.
func mostPopular(results []tmdb.SearchResult) *tmdb.SearchResult {
	var best *tmdb.SearchResult
	for i := range results {
		r := &results[i]
		if r.ID <= 0 {
			continue
		}
		if best == nil || r.Popularity > best.Popularity ||
			(r.Popularity == best.Popularity && r.ID < best.ID) {
			best = r
		}
	}
	return best
}

func (a *Aggregator) searchDataset(ctx context.Context, name string, year int, kind library.Kind) (*tmdb.SearchResult, error) {
	types := []string{imdb.TypeMovie}
	if kind == library.KindShow {
		types = []string{imdb.TypeTVSeries, imdb.TypeTVMiniSeries}
	}
	for _, titleType := range types {
		tconst, err := a.sources.Dataset.Search(ctx, titleType, name, year)
		if err != nil {
			a.optional(ctx, "imdb search", name, err)
			return nil, nil
		}
		if tconst == "" {
			continue
		}
		found, err := a.sources.Catalog.FindByIMDb(ctx, tconst)
		if err != nil {
			a.optional(ctx, "tmdb find", tconst, err)
			return nil, nil
		}
		results := found.MovieResults
		if kind == library.KindShow {
			results = found.TVResults
		}
		if match := mostPopular(results); match != nil {
			return match, nil
		}
	}
	return nil, nil
}

func (a *Aggregator) lookupTVDB(ctx context.Context, imdbID string) int64 {
	if a.sources.CrossRef == nil || imdbID == "" {
		return 0
	}
	id, err := a.sources.CrossRef.SeriesByIMDb(ctx, imdbID)
	if err != nil {
		a.optional(ctx, "tvdb", imdbID, err)
		return 0
	}
	return id
}
