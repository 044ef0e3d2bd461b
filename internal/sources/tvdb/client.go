package tvdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"marquee/internal/config"
	"marquee/internal/services"
	"marquee/internal/sources"
)

// Client resolves cross-reference ids through TheTVDB v4 API. It logs in
// lazily on first use and reuses the bearer token for the client lifetime.
type Client struct {
	http   *sources.Client
	apiKey string

	mu    sync.Mutex
	token string
}

// New creates a TVDB client.
func New(cfg *config.Config, logger *slog.Logger, opts ...sources.Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.TVDB.APIKey)
	if apiKey == "" {
		return nil, errors.New("tvdb api key required")
	}
	base := []sources.Option{
		sources.WithTimeout(cfg.RequestTimeout()),
		sources.WithRateLimit(cfg.Workflow.RequestsPerSecond),
		sources.WithLogger(logger),
	}
	httpClient, err := sources.New("tvdb", cfg.TVDB.BaseURL, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Client{http: httpClient, apiKey: apiKey}, nil
}

type envelope[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
}

type remoteIDResult struct {
	Series *struct {
		ID int64 `json:"id"`
	} `json:"series"`
	Movie *struct {
		ID int64 `json:"id"`
	} `json:"movie"`
}

func (c *Client) login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return nil
	}
	body, err := json.Marshal(map[string]string{"apikey": c.apiKey})
	if err != nil {
		return fmt.Errorf("encode tvdb login: %w", err)
	}
	raw, err := c.http.Do(ctx, http.MethodPost, "login", nil, bytes.NewReader(body))
	if err != nil {
		return err
	}
	var payload envelope[struct {
		Token string `json:"token"`
	}]
	if err := json.Unmarshal(raw, &payload); err != nil {
		return services.Wrap(services.ErrExternalService, "tvdb", "login", "decode response", err)
	}
	if payload.Data.Token == "" {
		return services.Wrap(services.ErrExternalService, "tvdb", "login", "no token in response", nil)
	}
	c.token = payload.Data.Token
	c.http.SetHeader("Authorization", "Bearer "+c.token)
	return nil
}

// Ping logs in, confirming the service is reachable and the key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	return c.login(ctx)
}

// SeriesByIMDb returns the TVDB series id cross-referenced to an IMDb id, or
// 0 when TVDB knows no series for it.
func (c *Client) SeriesByIMDb(ctx context.Context, imdbID string) (int64, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return 0, errors.New("imdb id must not be empty")
	}
	if err := c.login(ctx); err != nil {
		return 0, err
	}
	var payload envelope[[]remoteIDResult]
	err := c.http.GetJSON(ctx, "search/remoteid/"+url.PathEscape(imdbID), nil, &payload)
	if sources.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	for _, result := range payload.Data {
		if result.Series != nil && result.Series.ID > 0 {
			return result.Series.ID, nil
		}
	}
	return 0, nil
}
