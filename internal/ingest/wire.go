package ingest

import (
	"context"
	"errors"
	"log/slog"

	"marquee/internal/artwork"
	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/media/inspect"
	"marquee/internal/metadata"
	"marquee/internal/scanner"
	"marquee/internal/sources/fanart"
	"marquee/internal/sources/imdb"
	"marquee/internal/sources/tmdb"
	"marquee/internal/sources/tvdb"
	"marquee/internal/store"
)

// Runtime owns the resources built from configuration for one sweep.
type Runtime struct {
	Orchestrator *Orchestrator
	Store        *store.Store
	Dataset      *imdb.Dataset
}

// Close releases the store and the dataset.
func (r *Runtime) Close() error {
	var errs []error
	if r.Store != nil {
		errs = append(errs, r.Store.Close())
	}
	if r.Dataset != nil {
		errs = append(errs, r.Dataset.Close())
	}
	return errors.Join(errs...)
}

// NewAggregator builds the metadata aggregator from configuration. fanart.tv
// and TVDB are wired only when their API keys are set. The caller owns the
// returned dataset.
func NewAggregator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*metadata.Aggregator, *imdb.Dataset, error) {
	catalog, err := tmdb.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := catalog.RefreshImageBaseURL(ctx); err != nil {
		logging.WarnWithContext(logger, "tmdb configuration unavailable", "tmdb_configuration",
			logging.String(logging.FieldImpact, "using configured image base url"),
			logging.Error(err),
		)
	}
	dataset, err := imdb.Open(cfg.IMDb.DatasetPath)
	if err != nil {
		return nil, nil, err
	}
	src := metadata.Sources{Catalog: catalog, Dataset: dataset}
	if cfg.Fanart.APIKey != "" {
		art, err := fanart.New(cfg, logger)
		if err != nil {
			_ = dataset.Close()
			return nil, nil, err
		}
		src.Art = art
	}
	if cfg.TVDB.APIKey != "" {
		crossRef, err := tvdb.New(cfg, logger)
		if err != nil {
			_ = dataset.Close()
			return nil, nil, err
		}
		src.CrossRef = crossRef
	}
	agg, err := metadata.New(src, metadata.WithLanguage(cfg.TMDB.Language), metadata.WithLogger(logger))
	if err != nil {
		_ = dataset.Close()
		return nil, nil, err
	}
	return agg, dataset, nil
}

// Build wires an Orchestrator to the services, tools and store named in cfg.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	agg, dataset, err := NewAggregator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{Dataset: dataset}
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Store = st

	scan := scanner.New(cfg.Paths.LibraryDir, inspect.New(cfg), logging.NewComponentLogger(logger, "scanner"))
	orchestrator, err := New(cfg, Deps{
		Aggregator: agg,
		Scanner:    scan,
		Artwork:    artwork.New(cfg, scan, logger),
		Store:      st,
		Logger:     logger,
	})
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Orchestrator = orchestrator
	return rt, nil
}
