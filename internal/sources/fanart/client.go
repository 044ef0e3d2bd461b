package fanart

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"marquee/internal/config"
	"marquee/internal/sources"
)

// Art is one fanart.tv artwork entry. Likes arrives as a decimal string.
type Art struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Lang  string `json:"lang"`
	Likes string `json:"likes"`
}

// LikeCount parses Likes, returning 0 when it is not a number.
func (a Art) LikeCount() int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(a.Likes), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// MovieArt is the subset of movies/{tmdb_id} that marquee ranks.
type MovieArt struct {
	HDMovieLogo []Art `json:"hdmovielogo"`
	MovieLogo   []Art `json:"movielogo"`
}

// ShowArt is the subset of tv/{tvdb_id} that marquee ranks.
type ShowArt struct {
	HDTVLogo  []Art `json:"hdtvlogo"`
	ClearLogo []Art `json:"clearlogo"`
}

// Logo dimensions. fanart.tv does not report sizes; HD logos are 800x310 and
// the older clear logos 400x155 by submission rules.
const (
	HDLogoWidth  = 800
	HDLogoHeight = 310
	SDLogoWidth  = 400
	SDLogoHeight = 155
)

// Logo is a logo with its nominal dimensions.
type Logo struct {
	Art
	Width  int
	Height int
}

// Logos returns HD logos followed by the standard-definition ones.
func (m MovieArt) Logos() []Logo {
	return logos(m.HDMovieLogo, m.MovieLogo)
}

// Logos returns HD logos followed by the standard-definition ones.
func (s ShowArt) Logos() []Logo {
	return logos(s.HDTVLogo, s.ClearLogo)
}

func logos(hd, sd []Art) []Logo {
	out := make([]Logo, 0, len(hd)+len(sd))
	for _, art := range hd {
		out = append(out, Logo{Art: art, Width: HDLogoWidth, Height: HDLogoHeight})
	}
	for _, art := range sd {
		out = append(out, Logo{Art: art, Width: SDLogoWidth, Height: SDLogoHeight})
	}
	return out
}

// Client provides access to the fanart.tv v3 API.
type Client struct {
	http *sources.Client
}

// New creates a fanart.tv client.
func New(cfg *config.Config, logger *slog.Logger, opts ...sources.Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.Fanart.APIKey)
	if apiKey == "" {
		return nil, errors.New("fanart api key required")
	}
	base := []sources.Option{
		sources.WithTimeout(cfg.RequestTimeout()),
		sources.WithRateLimit(cfg.Workflow.RequestsPerSecond),
		sources.WithLogger(logger),
		sources.WithQueryParam("api_key", apiKey),
	}
	httpClient, err := sources.New("fanart", cfg.Fanart.BaseURL, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Client{http: httpClient}, nil
}

// Movie fetches artwork for a movie by TMDB id.
func (c *Client) Movie(ctx context.Context, tmdbID int64) (*MovieArt, error) {
	var payload MovieArt
	if err := c.http.GetJSON(ctx, "movies/"+strconv.FormatInt(tmdbID, 10), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Show fetches artwork for a show by TVDB id.
func (c *Client) Show(ctx context.Context, tvdbID int64) (*ShowArt, error) {
	var payload ShowArt
	if err := c.http.GetJSON(ctx, "tv/"+strconv.FormatInt(tvdbID, 10), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
