package ingest

import (
	"context"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"marquee/internal/library"
	"marquee/internal/logging"
	"marquee/internal/metadata"
	"marquee/internal/naming"
	"marquee/internal/scanner"
	"marquee/internal/services"
	"marquee/internal/store"
)

// identify reads the sidecar identity or searches the catalog. A nil
// identity without error means the title is unknown and should be skipped.
func (o *Orchestrator) identify(ctx context.Context, dir string, kind library.Kind, outcome *Outcome) (*library.Identity, error) {
	parsed, err := naming.ParseTitleYear(filepath.Base(dir))
	if err != nil {
		return nil, err
	}
	outcome.Name = parsed.Name

	cached, found, err := scanner.ReadIdentity(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrMalformedName, "ingest", "sidecar", dir, err)
	}
	if found {
		logging.WithContext(ctx, o.logger).Debug("identity read from sidecar",
			logging.String(logging.FieldLocalKey, cached.LocalKey),
		)
		return &cached, nil
	}

	identity, err := o.deps.Aggregator.Identify(ctx, parsed.Name, parsed.Year, kind)
	if err != nil || identity == nil {
		return nil, err
	}
	outcome.Identified = true
	return identity, nil
}

func (o *Orchestrator) processMovie(ctx context.Context, dir string, outcome *Outcome) error {
	identity, err := o.identify(ctx, dir, library.KindMovie, outcome)
	if err != nil {
		return err
	}
	if identity == nil {
		outcome.Status = StatusSkipped
		return nil
	}
	outcome.Identity = *identity
	ctx = services.WithLocalKey(ctx, identity.LocalKey)

	var (
		assets *scanner.Assets
		result *metadata.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := o.deps.Scanner.FindMedia(gctx, dir)
		assets = found
		return err
	})
	g.Go(func() error {
		aggregated, err := o.deps.Aggregator.Aggregate(gctx, *identity)
		result = aggregated
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if result.Title.Kind != library.KindMovie {
		return kindMismatch(library.KindMovie, result.Title.Kind)
	}

	title := result.Title
	title.Path = outcome.Path
	images := o.deps.Artwork.Fetch(ctx, dir, o.ranker.Select(result.Candidates, title.OriginalLanguage))
	if _, err := o.deps.Store.Save(ctx, store.Record{
		Title:     title,
		Images:    images,
		Media:     assets.Media,
		Subtitles: assets.Subtitles,
		Previews:  assets.Previews,
	}); err != nil {
		return err
	}
	if outcome.Identified {
		if err := scanner.WriteIdentity(dir, *identity); err != nil {
			return err
		}
	}
	outcome.Name = nonEmpty(title.PrimaryName(), outcome.Name)
	outcome.Images = len(images)
	outcome.Media = len(assets.Media)
	return nil
}

func nonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
