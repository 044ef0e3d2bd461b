package metadata

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"marquee/internal/language"
	"marquee/internal/library"
	"marquee/internal/logging"
	"marquee/internal/ranking"
	"marquee/internal/services"
	"marquee/internal/sources/fanart"
	"marquee/internal/sources/imdb"
	"marquee/internal/sources/tmdb"
)

// Catalog is the subset of the TMDB client used by the aggregator.
type Catalog interface {
	SearchMovie(ctx context.Context, query string, year int) (*tmdb.SearchResponse, error)
	SearchTV(ctx context.Context, query string, year int) (*tmdb.SearchResponse, error)
	FindByIMDb(ctx context.Context, imdbID string) (*tmdb.FindResponse, error)
	Movie(ctx context.Context, id int64) (*tmdb.Movie, error)
	Show(ctx context.Context, id int64) (*tmdb.Show, error)
	ShowExternalIDs(ctx context.Context, id int64) (*tmdb.ExternalIDs, error)
	MovieTranslations(ctx context.Context, id int64) (*tmdb.Translations, error)
	ShowTranslations(ctx context.Context, id int64) (*tmdb.Translations, error)
	EpisodeTranslations(ctx context.Context, showID int64, season, episode int) (*tmdb.Translations, error)
	ReleaseDates(ctx context.Context, id int64) (*tmdb.ReleaseDates, error)
	ContentRatings(ctx context.Context, id int64) (*tmdb.ContentRatings, error)
	MovieImages(ctx context.Context, id int64) (*tmdb.Images, error)
	ShowImages(ctx context.Context, id int64) (*tmdb.Images, error)
	EpisodeImages(ctx context.Context, showID int64, season, episode int) (*tmdb.Images, error)
	Season(ctx context.Context, showID int64, season int) (*tmdb.Season, error)
	Episode(ctx context.Context, showID int64, season, episode int) (*tmdb.Episode, error)
	ImageURL(filePath string) string
}

// Dataset is the subset of the local IMDb dataset used by the aggregator.
type Dataset interface {
	TitleType(ctx context.Context, tconst string) (string, error)
	Title(ctx context.Context, tconst string) (*imdb.Title, error)
	Episode(ctx context.Context, parent string, season, episode int) (*imdb.Title, error)
	Akas(ctx context.Context, tconst string) ([]imdb.Aka, error)
	Principals(ctx context.Context, tconst string) ([]imdb.Principal, error)
	Episodes(ctx context.Context, parent string) ([]imdb.EpisodeRef, error)
	Search(ctx context.Context, titleType, name string, year int) (string, error)
}

// ArtService supplies community logos.
type ArtService interface {
	Movie(ctx context.Context, tmdbID int64) (*fanart.MovieArt, error)
	Show(ctx context.Context, tvdbID int64) (*fanart.ShowArt, error)
}

// CrossReference resolves TVDB series ids.
type CrossReference interface {
	SeriesByIMDb(ctx context.Context, imdbID string) (int64, error)
}

// Sources groups the external services. Catalog and Dataset are required;
// Art and CrossRef are optional and may be nil.
type Sources struct {
	Catalog  Catalog
	Dataset  Dataset
	Art      ArtService
	CrossRef CrossReference
}

// Result is one aggregated title with its unranked image pool.
type Result struct {
	Title      library.Title
	Candidates []ranking.Candidate
	// Episodes lists the episodes the dataset knows for a show.
	Episodes []library.EpisodeLink
	// Seasons lists the catalog's season numbers for a show, used to resolve
	// date-form episodes.
	Seasons []int
}

// Aggregator merges title metadata from the catalog, the local dataset and
// the art service.
type Aggregator struct {
	sources  Sources
	language string
	region   string
	logger   *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLanguage sets the BCP 47 tag the catalog was queried with. It labels the
// primary description.
func WithLanguage(tag string) Option {
	return func(a *Aggregator) {
		a.language = language.Normalize(tag)
		a.region = language.Region(tag)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New constructs an Aggregator.
func New(src Sources, opts ...Option) (*Aggregator, error) {
	if src.Catalog == nil {
		return nil, errors.New("metadata: catalog is required")
	}
	if src.Dataset == nil {
		return nil, errors.New("metadata: dataset is required")
	}
	a := &Aggregator{sources: src, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.NewComponentLogger(a.logger, "metadata")
	return a, nil
}

// optional logs a failed optional fetch. Absent resources are expected and
// logged at debug level.
func (a *Aggregator) optional(ctx context.Context, source, key string, err error) {
	logger := logging.WithContext(ctx, a.logger)
	if errors.Is(err, services.ErrNotFound) {
		logger.Debug("optional resource absent",
			logging.String("source", source),
			logging.String("key", key),
		)
		return
	}
	if ctx.Err() != nil {
		return
	}
	logging.WarnWithContext(logger, "optional fetch failed", "optional_fetch",
		logging.String("source", source),
		logging.String("key", key),
		logging.String(logging.FieldErrorHint, "check service availability and credentials"),
		logging.Error(err),
	)
}

func required(source, key string, err error) error {
	return services.Wrap(services.ErrRequiredFetch, "aggregate", source, key, err)
}

func nonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
