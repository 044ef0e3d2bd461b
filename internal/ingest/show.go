package ingest

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"marquee/internal/library"
	"marquee/internal/logging"
	"marquee/internal/metadata"
	"marquee/internal/scanner"
	"marquee/internal/services"
	"marquee/internal/store"
)

func (o *Orchestrator) processShow(ctx context.Context, dir string, outcome *Outcome) error {
	identity, err := o.identify(ctx, dir, library.KindShow, outcome)
	if err != nil {
		return err
	}
	if identity == nil {
		outcome.Status = StatusSkipped
		return nil
	}
	outcome.Identity = *identity
	ctx = services.WithLocalKey(ctx, identity.LocalKey)

	folders, err := o.deps.Scanner.ListEpisodes(dir)
	if err != nil {
		return err
	}
	result, err := o.deps.Aggregator.Aggregate(ctx, *identity)
	if err != nil {
		return err
	}
	if result.Title.Kind != library.KindShow {
		return kindMismatch(library.KindShow, result.Title.Kind)
	}

	title := result.Title
	title.Path = outcome.Path
	images := o.deps.Artwork.Fetch(ctx, dir, o.ranker.Select(result.Candidates, title.OriginalLanguage))
	episodes := result.Episodes
	if len(episodes) == 0 {
		for _, folder := range folders {
			episodes = append(episodes, folder.Link())
		}
	}
	row, err := o.deps.Store.Save(ctx, store.Record{Title: title, Images: images, Episodes: episodes})
	if err != nil {
		return err
	}
	outcome.Name = nonEmpty(title.PrimaryName(), outcome.Name)
	outcome.Images = len(images)

	var (
		mu       sync.Mutex
		saved    []string
		failures int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workflow.MaxParallelTitles)
	for _, folder := range folders {
		g.Go(func() error {
			rel, err := o.processEpisode(gctx, result, row.ID, folder)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures++
			} else {
				saved = append(saved, rel)
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}
	outcome.Episodes = len(saved)
	outcome.EpisodeFailures = failures

	// Episodes from earlier runs that failed or vanished this run are dropped.
	pruned, err := o.deps.Store.PruneEpisodes(ctx, row.ID, saved)
	if err != nil {
		return err
	}
	if pruned > 0 {
		logging.WithContext(ctx, o.logger).Info("stale episodes removed",
			logging.Int("count", pruned),
		)
	}

	if outcome.Identified {
		if err := scanner.WriteIdentity(dir, *identity); err != nil {
			return err
		}
	}
	return nil
}

// processEpisode aggregates and stores one episode and returns its library
// path. Errors are logged here and only counted by the caller.
func (o *Orchestrator) processEpisode(ctx context.Context, show *metadata.Result, parentID int64, folder scanner.EpisodeFolder) (string, error) {
	link := folder.Link()
	rel := o.deps.Scanner.RelPath(folder.Path)
	ctx = services.WithEpisodeKey(services.WithTitlePath(ctx, rel), link.Key())
	logger := logging.WithContext(ctx, o.logger)

	err := o.storeEpisode(ctx, show, parentID, folder, rel)
	if err != nil {
		logging.WarnWithContext(logger, "episode failed", services.Category(err),
			logging.String(logging.FieldErrorHint, hintFor(err)),
			logging.String(logging.FieldImpact, "episode omitted from show"),
			logging.Error(err),
		)
	}
	return rel, err
}

var errEpisodeUnavailable = services.Wrap(services.ErrNotFound, "ingest", "episode", "metadata unavailable", nil)

func (o *Orchestrator) storeEpisode(ctx context.Context, show *metadata.Result, parentID int64, folder scanner.EpisodeFolder, rel string) error {
	result, err := o.deps.Aggregator.AggregateEpisode(ctx, show, folder.Link())
	if err != nil {
		return err
	}
	if result == nil {
		return errEpisodeUnavailable
	}
	assets, err := o.deps.Scanner.FindMedia(ctx, folder.Path)
	if err != nil {
		return err
	}

	title := result.Title
	title.Path = rel
	images := o.deps.Artwork.Fetch(ctx, folder.Path, o.ranker.Select(result.Candidates, title.OriginalLanguage))
	_, err = o.deps.Store.Save(ctx, store.Record{
		Title:     title,
		ParentID:  &parentID,
		Images:    images,
		Media:     assets.Media,
		Subtitles: assets.Subtitles,
		Previews:  assets.Previews,
	})
	return err
}
