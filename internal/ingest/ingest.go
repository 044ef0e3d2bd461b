package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"marquee/internal/config"
	"marquee/internal/library"
	"marquee/internal/logging"
	"marquee/internal/metadata"
	"marquee/internal/ranking"
	"marquee/internal/scanner"
	"marquee/internal/services"
	"marquee/internal/store"
)

// Aggregator identifies and aggregates titles.
type Aggregator interface {
	Identify(ctx context.Context, name string, year int, kind library.Kind) (*library.Identity, error)
	Aggregate(ctx context.Context, identity library.Identity) (*metadata.Result, error)
	AggregateEpisode(ctx context.Context, show *metadata.Result, link library.EpisodeLink) (*metadata.Result, error)
}

// ArtworkFetcher downloads ranked winners next to a title.
type ArtworkFetcher interface {
	Fetch(ctx context.Context, titleDir string, winners []ranking.Candidate) []library.Image
}

// Store persists title records.
type Store interface {
	Save(ctx context.Context, record store.Record) (store.TitleRow, error)
	PruneEpisodes(ctx context.Context, parentID int64, keep []string) (int, error)
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Aggregator Aggregator
	Scanner    *scanner.Scanner
	Artwork    ArtworkFetcher
	Store      Store
	Logger     *slog.Logger
}

// Orchestrator drives one sweep of the library.
type Orchestrator struct {
	cfg    *config.Config
	deps   Deps
	ranker ranking.Ranker
	logger *slog.Logger
}

// New validates deps and constructs an Orchestrator.
func New(cfg *config.Config, deps Deps) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.New("ingest: config is required")
	}
	switch {
	case deps.Aggregator == nil:
		return nil, errors.New("ingest: aggregator is required")
	case deps.Scanner == nil:
		return nil, errors.New("ingest: scanner is required")
	case deps.Artwork == nil:
		return nil, errors.New("ingest: artwork fetcher is required")
	case deps.Store == nil:
		return nil, errors.New("ingest: store is required")
	}
	return &Orchestrator{
		cfg:    cfg,
		deps:   deps,
		ranker: ranking.Ranker{Confidence: cfg.Workflow.ImageConfidence},
		logger: logging.NewComponentLogger(deps.Logger, "ingest"),
	}, nil
}

// Run sweeps every movie and show folder. Titles run concurrently up to
// workflow.max_parallel_titles and fail independently; their outcomes are
// collected in the report. Run returns an error only when the library cannot
// be listed or ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), Started: time.Now()}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, o.logger)

	layout, err := o.deps.Scanner.Locate()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "ingest", "locate library", o.deps.Scanner.Root(), err)
	}
	movies, err := o.deps.Scanner.ListMovies(layout)
	if err != nil {
		return nil, err
	}
	shows, err := o.deps.Scanner.ListShows(layout)
	if err != nil {
		return nil, err
	}
	logger.Info("sweep started",
		logging.String(logging.FieldEventType, "sweep_start"),
		logging.String("library", layout.Root),
		logging.Int("movies", len(movies)),
		logging.Int("shows", len(shows)),
	)

	outcomes := make([]Outcome, len(movies)+len(shows))
	var g errgroup.Group
	g.SetLimit(o.cfg.Workflow.MaxParallelTitles)
	for i, dir := range movies {
		g.Go(func() error {
			outcomes[i] = o.timed(ctx, library.KindMovie, dir, o.processMovie)
			return nil
		})
	}
	for i, dir := range shows {
		g.Go(func() error {
			outcomes[len(movies)+i] = o.timed(ctx, library.KindShow, dir, o.processShow)
			return nil
		})
	}
	_ = g.Wait()

	report.Outcomes = outcomes
	report.Finished = time.Now()
	counts := report.Counts()
	logger.Info("sweep finished",
		logging.String(logging.FieldEventType, "sweep_finish"),
		logging.Int("ok", counts[StatusOK]),
		logging.Int("skipped", counts[StatusSkipped]),
		logging.Int("failed", counts[StatusFailed]),
		logging.Duration("duration", report.Finished.Sub(report.Started)),
	)
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

type processFunc func(ctx context.Context, dir string, outcome *Outcome) error

// timed runs one title and converts its error into the outcome status.
func (o *Orchestrator) timed(ctx context.Context, kind library.Kind, dir string, fn processFunc) Outcome {
	rel := o.deps.Scanner.RelPath(dir)
	outcome := Outcome{Kind: kind, Path: rel, Status: StatusOK}
	ctx = services.WithTitlePath(ctx, rel)
	start := time.Now()
	err := fn(ctx, dir, &outcome)
	outcome.Duration = time.Since(start)

	logger := logging.WithContext(ctx, o.logger)
	if outcome.Identity.LocalKey != "" {
		logger = logger.With(logging.String(logging.FieldLocalKey, outcome.Identity.LocalKey))
	}
	switch {
	case err != nil:
		outcome.Status = StatusFailed
		outcome.Err = err
		logging.ErrorWithContext(logger, "title failed", services.Category(err),
			logging.String("kind", string(kind)),
			logging.Int64("tmdb_id", outcome.Identity.TMDB),
			logging.String("imdb_id", outcome.Identity.IMDb),
			logging.String(logging.FieldErrorHint, hintFor(err)),
			logging.Error(err),
		)
	case outcome.Status == StatusSkipped:
		logging.WarnWithContext(logger, "title skipped", "title_unidentified",
			logging.String("kind", string(kind)),
			logging.String(logging.FieldErrorHint, "rename the folder or add an ids.json sidecar"),
			logging.String(logging.FieldImpact, "title excluded from the library"),
		)
	default:
		logger.Info("title processed",
			logging.String(logging.FieldEventType, "title_complete"),
			logging.String("kind", string(kind)),
			logging.String("name", outcome.Name),
			logging.Int("images", outcome.Images),
			logging.Int("media", outcome.Media),
			logging.Int("episodes", outcome.Episodes),
			logging.Int("episode_failures", outcome.EpisodeFailures),
			logging.Duration("duration", outcome.Duration),
		)
	}
	return outcome
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrRequiredFetch):
		return "retry later or check TMDB and IMDb dataset coverage for this title"
	case errors.Is(err, services.ErrMalformedName):
		return "rename the folder or file to the expected pattern"
	case errors.Is(err, services.ErrExternalTool):
		return "run 'marquee deps' to check inspection tools"
	default:
		return "check logs for details"
	}
}

func kindMismatch(want, got library.Kind) error {
	return services.Wrap(services.ErrMalformedName, "ingest", "kind",
		fmt.Sprintf("catalog reports a %s for a %s folder", got, want), nil)
}
