package metadata

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"marquee/internal/language"
	"marquee/internal/library"
	"marquee/internal/logging"
	"marquee/internal/ranking"
	"marquee/internal/services"
	"marquee/internal/sources/fanart"
	"marquee/internal/sources/imdb"
	"marquee/internal/sources/tmdb"
)

// Aggregate fetches every source for identity concurrently and merges the
// responses. The dataset record and the catalog record are required; a
// failure of either returns an error wrapping services.ErrRequiredFetch.
// Optional fetches that fail leave their fields empty.
func (a *Aggregator) Aggregate(ctx context.Context, identity library.Identity) (*Result, error) {
	if identity.IMDb == "" {
		return nil, services.Wrap(services.ErrRequiredFetch, "aggregate", "imdb", "identity has no IMDb id", nil)
	}
	titleType, err := a.sources.Dataset.TitleType(ctx, identity.IMDb)
	if err != nil {
		return nil, required("imdb", identity.IMDb, err)
	}
	if imdb.IsShowType(titleType) {
		return a.aggregateShow(ctx, identity)
	}
	return a.aggregateMovie(ctx, identity)
}

// common holds the fetches shared by movies and shows.
type common struct {
	local      *imdb.Title
	akas       []imdb.Aka
	principals []imdb.Principal
	trans      *tmdb.Translations
	images     *tmdb.Images
}

func (a *Aggregator) fetchCommon(g *errgroup.Group, gctx context.Context, identity library.Identity, out *common) {
	g.Go(func() error {
		local, err := a.sources.Dataset.Title(gctx, identity.IMDb)
		if err != nil {
			return required("imdb", identity.IMDb, err)
		}
		out.local = local
		return nil
	})
	g.Go(func() error {
		akas, err := a.sources.Dataset.Akas(gctx, identity.IMDb)
		if err != nil {
			a.optional(gctx, "imdb akas", identity.IMDb, err)
			return nil
		}
		out.akas = akas
		return nil
	})
	g.Go(func() error {
		principals, err := a.sources.Dataset.Principals(gctx, identity.IMDb)
		if err != nil {
			a.optional(gctx, "imdb principals", identity.IMDb, err)
			return nil
		}
		out.principals = principals
		return nil
	})
}

func (a *Aggregator) aggregateMovie(ctx context.Context, identity library.Identity) (*Result, error) {
	var (
		shared   common
		movie    *tmdb.Movie
		releases *tmdb.ReleaseDates
		art      *fanart.MovieArt
	)
	key := strconv.FormatInt(identity.TMDB, 10)
	g, gctx := errgroup.WithContext(ctx)
	a.fetchCommon(g, gctx, identity, &shared)
	g.Go(func() error {
		m, err := a.sources.Catalog.Movie(gctx, identity.TMDB)
		if err != nil {
			return required("tmdb", "movie "+key, err)
		}
		movie = m
		return nil
	})
	g.Go(func() error {
		t, err := a.sources.Catalog.MovieTranslations(gctx, identity.TMDB)
		if err != nil {
			a.optional(gctx, "tmdb translations", key, err)
			return nil
		}
		shared.trans = t
		return nil
	})
	g.Go(func() error {
		r, err := a.sources.Catalog.ReleaseDates(gctx, identity.TMDB)
		if err != nil {
			a.optional(gctx, "tmdb release dates", key, err)
			return nil
		}
		releases = r
		return nil
	})
	g.Go(func() error {
		img, err := a.sources.Catalog.MovieImages(gctx, identity.TMDB)
		if err != nil {
			a.optional(gctx, "tmdb images", key, err)
			return nil
		}
		shared.images = img
		return nil
	})
	if a.sources.Art != nil {
		g.Go(func() error {
			logos, err := a.sources.Art.Movie(gctx, identity.TMDB)
			if err != nil {
				a.optional(gctx, "fanart", key, err)
				return nil
			}
			art = logos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	title := library.Title{
		Kind:             library.KindMovie,
		Identity:         identity,
		OriginalLanguage: language.Normalize(movie.OriginalLanguage),
		RuntimeMinutes:   shared.local.RuntimeMinutes,
		YearStart:        shared.local.StartYear,
		Genres:           genreNames(movie.Genres),
		Ratings:          movieRatings(releases),
	}
	if title.RuntimeMinutes == nil && movie.Runtime > 0 {
		title.RuntimeMinutes = intPtr(movie.Runtime)
	}
	title.Names = mergeNames(shared.local, shared.akas, title.OriginalLanguage)
	title.Descriptions = a.mergeDescriptions(movie.Overview, movie.Tagline, shared.trans)
	title.Cast = credits(shared.principals)

	candidates := a.catalogCandidates(shared.images)
	if art != nil {
		candidates = append(candidates, fanartCandidates(art.Logos())...)
	}
	a.logAggregated(ctx, title, candidates)
	return &Result{Title: title, Candidates: candidates}, nil
}

func (a *Aggregator) aggregateShow(ctx context.Context, identity library.Identity) (*Result, error) {
	var (
		shared   common
		show     *tmdb.Show
		ratings  *tmdb.ContentRatings
		episodes []imdb.EpisodeRef
		art      *fanart.ShowArt
	)
	key := strconv.FormatInt(identity.TMDB, 10)
	g, gctx := errgroup.WithContext(ctx)
	a.fetchCommon(g, gctx, identity, &shared)
	g.Go(func() error {
		s, err := a.sources.Catalog.Show(gctx, identity.TMDB)
		if err != nil {
			return required("tmdb", "show "+key, err)
		}
		show = s
		return nil
	})
	g.Go(func() error {
		refs, err := a.sources.Dataset.Episodes(gctx, identity.IMDb)
		if err != nil {
			a.optional(gctx, "imdb episodes", identity.IMDb, err)
			return nil
		}
		episodes = refs
		return nil
	})
	g.Go(func() error {
		t, err := a.sources.Catalog.ShowTranslations(gctx, identity.TMDB)
		if err != nil {
			a.optional(gctx, "tmdb translations", key, err)
			return nil
		}
		shared.trans = t
		return nil
	})
	g.Go(func() error {
		r, err := a.sources.Catalog.ContentRatings(gctx, identity.TMDB)
		if err != nil {
			a.optional(gctx, "tmdb content ratings", key, err)
			return nil
		}
		ratings = r
		return nil
	})
	g.Go(func() error {
		img, err := a.sources.Catalog.ShowImages(gctx, identity.TMDB)
		if err != nil {
			a.optional(gctx, "tmdb images", key, err)
			return nil
		}
		shared.images = img
		return nil
	})
	if a.sources.Art != nil && identity.TVDB > 0 {
		g.Go(func() error {
			logos, err := a.sources.Art.Show(gctx, identity.TVDB)
			if err != nil {
				a.optional(gctx, "fanart", strconv.FormatInt(identity.TVDB, 10), err)
				return nil
			}
			art = logos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	title := library.Title{
		Kind:             library.KindShow,
		Identity:         identity,
		OriginalLanguage: language.Normalize(show.OriginalLanguage),
		RuntimeMinutes:   shared.local.RuntimeMinutes,
		YearStart:        shared.local.StartYear,
		YearEnd:          shared.local.EndYear,
		Genres:           genreNames(show.Genres),
		Ratings:          showRatings(ratings),
	}
	if title.RuntimeMinutes == nil && len(show.EpisodeRunTime) > 0 && show.EpisodeRunTime[0] > 0 {
		title.RuntimeMinutes = intPtr(show.EpisodeRunTime[0])
	}
	title.Names = mergeNames(shared.local, shared.akas, title.OriginalLanguage)
	title.Descriptions = a.mergeDescriptions(show.Overview, show.Tagline, shared.trans)
	title.Cast = credits(shared.principals)

	candidates := a.catalogCandidates(shared.images)
	if art != nil {
		candidates = append(candidates, fanartCandidates(art.Logos())...)
	}
	a.logAggregated(ctx, title, candidates)
	return &Result{
		Title:      title,
		Candidates: candidates,
		Episodes:   episodeLinks(episodes),
		Seasons:    seasonNumbers(show.Seasons),
	}, nil
}

func (a *Aggregator) logAggregated(ctx context.Context, title library.Title, candidates []ranking.Candidate) {
	logging.WithContext(ctx, a.logger).Info("title aggregated",
		logging.String("kind", string(title.Kind)),
		logging.String("name", title.PrimaryName()),
		logging.Int("names", len(title.Names)),
		logging.Int("descriptions", len(title.Descriptions)),
		logging.Int("cast", len(title.Cast)),
		logging.Int("image_candidates", len(candidates)),
	)
}

func episodeLinks(refs []imdb.EpisodeRef) []library.EpisodeLink {
	links := make([]library.EpisodeLink, 0, len(refs))
	for _, ref := range refs {
		if ref.Episode == nil {
			continue
		}
		link := library.EpisodeLink{Episode: fmt.Sprintf("%02d", *ref.Episode)}
		if ref.Season != nil {
			link.Season = fmt.Sprintf("%02d", *ref.Season)
		}
		links = append(links, link)
	}
	sort.SliceStable(links, func(i, j int) bool {
		if links[i].Season != links[j].Season {
			return links[i].Season < links[j].Season
		}
		return links[i].Episode < links[j].Episode
	})
	return links
}

func seasonNumbers(seasons []tmdb.SeasonSummary) []int {
	out := make([]int, 0, len(seasons))
	for _, s := range seasons {
		out = append(out, s.SeasonNumber)
	}
	sort.Ints(out)
	return out
}

func intPtr(v int) *int {
	return &v
}
