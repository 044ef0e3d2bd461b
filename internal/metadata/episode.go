package metadata

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"marquee/internal/library"
	"marquee/internal/logging"
	"marquee/internal/naming"
	"marquee/internal/services"
	"marquee/internal/sources/imdb"
	"marquee/internal/sources/tmdb"
)

// errEpisodeUnresolved marks an episode whose numbers could not be determined.
var errEpisodeUnresolved = errors.New("episode numbers unresolved")

// AggregateEpisode aggregates one episode of an aggregated show. The catalog
// episode, its translations and the dataset's by-number record are required:
// if any of them fails the failure is logged and nil is returned without an
// error. Stills are optional. Date-form links are resolved to numbers by
// scanning the show's seasons for a matching air date. An error is returned
// only when ctx is cancelled.
func (a *Aggregator) AggregateEpisode(ctx context.Context, show *Result, link library.EpisodeLink) (*Result, error) {
	if show == nil {
		return nil, errors.New("aggregate episode: show result is required")
	}
	ctx = services.WithEpisodeKey(ctx, link.Key())
	logger := logging.WithContext(ctx, a.logger)
	identity := show.Title.Identity

	season, number, err := a.episodeNumbers(ctx, show, link)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logging.WarnWithContext(logger, "episode skipped", "episode_unresolved",
			logging.String(logging.FieldErrorHint, "rename the folder to S<season>E<episode> form"),
			logging.String(logging.FieldImpact, "episode omitted from show"),
			logging.Error(err),
		)
		return nil, nil
	}

	var (
		episode *tmdb.Episode
		trans   *tmdb.Translations
		local   *imdb.Title
		images  *tmdb.Images
	)
	key := fmt.Sprintf("%d s%de%d", identity.TMDB, season, number)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e, err := a.sources.Catalog.Episode(gctx, identity.TMDB, season, number)
		if err != nil {
			return required("tmdb", "episode "+key, err)
		}
		episode = e
		return nil
	})
	g.Go(func() error {
		t, err := a.sources.Catalog.EpisodeTranslations(gctx, identity.TMDB, season, number)
		if err != nil {
			return required("tmdb", "episode translations "+key, err)
		}
		trans = t
		return nil
	})
	g.Go(func() error {
		t, err := a.sources.Dataset.Episode(gctx, identity.IMDb, season, number)
		if err != nil {
			return required("imdb", fmt.Sprintf("episode %s s%de%d", identity.IMDb, season, number), err)
		}
		local = t
		return nil
	})
	g.Go(func() error {
		img, err := a.sources.Catalog.EpisodeImages(gctx, identity.TMDB, season, number)
		if err != nil {
			a.optional(gctx, "tmdb episode images", key, err)
			return nil
		}
		images = img
		return nil
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logging.WarnWithContext(logger, "episode aggregation failed", "episode_required_fetch",
			logging.String(logging.FieldErrorHint, "verify the episode exists in both TMDB and the IMDb dataset"),
			logging.String(logging.FieldImpact, "episode omitted from show"),
			logging.Error(err),
		)
		return nil, nil
	}

	principals, err := a.sources.Dataset.Principals(ctx, local.ID)
	if err != nil {
		a.optional(ctx, "imdb principals", local.ID, err)
	}

	resolved := link
	title := library.Title{
		Kind:             library.KindEpisode,
		Identity:         library.EpisodeIdentity(identity, link, episode.ID, local.ID),
		OriginalLanguage: show.Title.OriginalLanguage,
		RuntimeMinutes:   local.RuntimeMinutes,
		YearStart:        local.StartYear,
		Genres:           local.Genres,
		Cast:             credits(principals),
		Episode:          &resolved,
	}
	if title.RuntimeMinutes == nil && episode.Runtime > 0 {
		title.RuntimeMinutes = intPtr(episode.Runtime)
	}
	if local.PrimaryTitle == "" {
		local.PrimaryTitle = episode.Name
	}
	title.Names = mergeNames(local, nil, title.OriginalLanguage)
	title.Descriptions = a.mergeDescriptions(episode.Overview, "", trans)

	logger.Debug("episode aggregated",
		logging.Int("season", season),
		logging.Int("episode", number),
		logging.String("name", title.PrimaryName()),
	)
	return &Result{Title: title, Candidates: a.catalogCandidates(images)}, nil
}

func (a *Aggregator) episodeNumbers(ctx context.Context, show *Result, link library.EpisodeLink) (int, int, error) {
	id := naming.EpisodeIdentifier{Season: link.Season, Episode: link.Episode, AirDate: link.AirDate}
	if season, number, ok := id.LookupNumbers(); ok {
		return season, number, nil
	}
	if !id.IsDated() {
		return 0, 0, fmt.Errorf("%w: %q has no episode number", errEpisodeUnresolved, link.Key())
	}
	return a.resolveAirDate(ctx, show, link.AirDate)
}

// resolveAirDate scans the show's seasons in order for an episode that aired
// on date. Seasons that fail to load are skipped.
func (a *Aggregator) resolveAirDate(ctx context.Context, show *Result, date string) (int, int, error) {
	tmdbID := show.Title.Identity.TMDB
	for _, number := range show.Seasons {
		season, err := a.sources.Catalog.Season(ctx, tmdbID, number)
		if err != nil {
			if ctx.Err() != nil {
				return 0, 0, ctx.Err()
			}
			a.optional(ctx, "tmdb season", fmt.Sprintf("%d season %d", tmdbID, number), err)
			continue
		}
		for _, ep := range season.Episodes {
			if ep.AirDate == date {
				return number, ep.EpisodeNumber, nil
			}
		}
	}
	return 0, 0, fmt.Errorf("%w: no episode aired on %s", errEpisodeUnresolved, date)
}
