package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"marquee/internal/config"
	"marquee/internal/sources"
)

// Client provides typed access to the TMDB v3 API.
type Client struct {
	http         *sources.Client
	language     string
	imageBaseURL string
}

// New creates a TMDB client. Keys that look like v4 read access tokens are sent
// as a bearer header; anything else is sent as the api_key parameter.
func New(cfg *config.Config, logger *slog.Logger, opts ...sources.Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.TMDB.APIKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	base := []sources.Option{
		sources.WithTimeout(cfg.RequestTimeout()),
		sources.WithRateLimit(cfg.Workflow.RequestsPerSecond),
		sources.WithLogger(logger),
	}
	if isBearerToken(apiKey) {
		base = append(base, sources.WithHeader("Authorization", "Bearer "+apiKey))
	} else {
		base = append(base, sources.WithQueryParam("api_key", apiKey))
	}
	httpClient, err := sources.New("tmdb", cfg.TMDB.BaseURL, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	imageBase := strings.TrimSpace(cfg.TMDB.ImageBaseURL)
	if imageBase != "" && !strings.HasSuffix(imageBase, "/") {
		imageBase += "/"
	}
	return &Client{
		http:         httpClient,
		language:     strings.TrimSpace(cfg.TMDB.Language),
		imageBaseURL: imageBase,
	}, nil
}

func isBearerToken(key string) bool {
	return strings.HasPrefix(key, "eyJ") && strings.Count(key, ".") == 2
}

// Fetch exposes the raw resource fetcher.
func (c *Client) Fetch(ctx context.Context, resource string, params url.Values) (json.RawMessage, error) {
	return c.http.Fetch(ctx, resource, params)
}

func (c *Client) localized() url.Values {
	params := url.Values{}
	if c.language != "" {
		params.Set("language", c.language)
	}
	return params
}

// SearchMovie searches movies released in year (0 for any year).
func (c *Client) SearchMovie(ctx context.Context, query string, year int) (*SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := c.localized()
	params.Set("query", query)
	if year > 0 {
		params.Set("primary_release_year", strconv.Itoa(year))
	}
	var payload SearchResponse
	if err := c.http.GetJSON(ctx, "search/movie", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SearchTV searches shows first aired in year (0 for any year).
func (c *Client) SearchTV(ctx context.Context, query string, year int) (*SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := c.localized()
	params.Set("query", query)
	if year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(year))
	}
	var payload SearchResponse
	if err := c.http.GetJSON(ctx, "search/tv", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FindByIMDb resolves an IMDb id to TMDB movie and show results.
func (c *Client) FindByIMDb(ctx context.Context, imdbID string) (*FindResponse, error) {
	params := url.Values{"external_source": {"imdb_id"}}
	var payload FindResponse
	if err := c.http.GetJSON(ctx, "find/"+url.PathEscape(imdbID), params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Movie fetches movie details.
func (c *Client) Movie(ctx context.Context, id int64) (*Movie, error) {
	var payload Movie
	if err := c.get(ctx, fmt.Sprintf("movie/%d", id), c.localized(), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Show fetches show details.
func (c *Client) Show(ctx context.Context, id int64) (*Show, error) {
	var payload Show
	if err := c.get(ctx, fmt.Sprintf("tv/%d", id), c.localized(), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ShowExternalIDs fetches the IMDb and TVDB ids of a show.
func (c *Client) ShowExternalIDs(ctx context.Context, id int64) (*ExternalIDs, error) {
	var payload ExternalIDs
	if err := c.get(ctx, fmt.Sprintf("tv/%d/external_ids", id), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// MovieTranslations fetches every translation of a movie.
func (c *Client) MovieTranslations(ctx context.Context, id int64) (*Translations, error) {
	return c.translations(ctx, fmt.Sprintf("movie/%d/translations", id))
}

// ShowTranslations fetches every translation of a show.
func (c *Client) ShowTranslations(ctx context.Context, id int64) (*Translations, error) {
	return c.translations(ctx, fmt.Sprintf("tv/%d/translations", id))
}

// EpisodeTranslations fetches every translation of an episode.
func (c *Client) EpisodeTranslations(ctx context.Context, showID int64, season, episode int) (*Translations, error) {
	return c.translations(ctx, fmt.Sprintf("tv/%d/season/%d/episode/%d/translations", showID, season, episode))
}

func (c *Client) translations(ctx context.Context, resource string) (*Translations, error) {
	var payload Translations
	if err := c.get(ctx, resource, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ReleaseDates fetches regional releases and certifications of a movie.
func (c *Client) ReleaseDates(ctx context.Context, id int64) (*ReleaseDates, error) {
	var payload ReleaseDates
	if err := c.get(ctx, fmt.Sprintf("movie/%d/release_dates", id), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ContentRatings fetches regional ratings of a show.
func (c *Client) ContentRatings(ctx context.Context, id int64) (*ContentRatings, error) {
	var payload ContentRatings
	if err := c.get(ctx, fmt.Sprintf("tv/%d/content_ratings", id), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// MovieImages fetches every poster, backdrop and logo of a movie.
func (c *Client) MovieImages(ctx context.Context, id int64) (*Images, error) {
	return c.images(ctx, fmt.Sprintf("movie/%d/images", id))
}

// ShowImages fetches every poster, backdrop and logo of a show.
func (c *Client) ShowImages(ctx context.Context, id int64) (*Images, error) {
	return c.images(ctx, fmt.Sprintf("tv/%d/images", id))
}

// EpisodeImages fetches the stills of an episode.
func (c *Client) EpisodeImages(ctx context.Context, showID int64, season, episode int) (*Images, error) {
	return c.images(ctx, fmt.Sprintf("tv/%d/season/%d/episode/%d/images", showID, season, episode))
}

func (c *Client) images(ctx context.Context, resource string) (*Images, error) {
	var payload Images
	if err := c.get(ctx, resource, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Season fetches a season with its episode list.
func (c *Client) Season(ctx context.Context, showID int64, season int) (*Season, error) {
	if season < 0 {
		return nil, errors.New("season number must not be negative")
	}
	var payload Season
	if err := c.get(ctx, fmt.Sprintf("tv/%d/season/%d", showID, season), c.localized(), &payload); err != nil {
		return nil, err
	}
	sort.SliceStable(payload.Episodes, func(i, j int) bool {
		return payload.Episodes[i].EpisodeNumber < payload.Episodes[j].EpisodeNumber
	})
	return &payload, nil
}

// Episode fetches a single episode.
func (c *Client) Episode(ctx context.Context, showID int64, season, episode int) (*Episode, error) {
	var payload Episode
	if err := c.get(ctx, fmt.Sprintf("tv/%d/season/%d/episode/%d", showID, season, episode), c.localized(), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// RefreshImageBaseURL replaces the configured image base with the secure
// base URL reported by the configuration endpoint.
func (c *Client) RefreshImageBaseURL(ctx context.Context) error {
	var payload Configuration
	if err := c.get(ctx, "configuration", nil, &payload); err != nil {
		return err
	}
	if base := strings.TrimSpace(payload.Images.SecureBaseURL); base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		c.imageBaseURL = base
	}
	return nil
}

// ImageURL returns the original-size URL for an image file path.
func (c *Client) ImageURL(filePath string) string {
	if filePath == "" {
		return ""
	}
	return c.imageBaseURL + "original/" + strings.TrimLeft(filePath, "/")
}

func (c *Client) get(ctx context.Context, resource string, params url.Values, out any) error {
	return c.http.GetJSON(ctx, resource, params, out)
}
