package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"marquee/internal/logging"
	"marquee/internal/services"
)

// Fetcher retrieves one JSON resource from an external service. Resources are
// paths relative to the service base URL, e.g. "movie/603/images".
type Fetcher interface {
	Fetch(ctx context.Context, resource string, params url.Values) (json.RawMessage, error)
}

// Client is a rate-limited JSON-over-HTTP client shared by the service
// adapters. A 404 response maps to services.ErrNotFound; any other non-2xx
// status or transport failure maps to services.ErrExternalService.
type Client struct {
	name       string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	query      url.Values
	headers    http.Header
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithRateLimit paces requests to at most rps per second. Zero disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithQueryParam adds a parameter sent on every request, typically an API key.
func WithQueryParam(key, value string) Option {
	return func(c *Client) {
		if strings.TrimSpace(value) != "" {
			c.query.Set(key, value)
		}
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if strings.TrimSpace(value) != "" {
			c.headers.Set(key, value)
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the named service rooted at baseURL.
func New(name, baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("%s base url required", name)
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("%s base url: %w", name, err)
	}
	client := &Client{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		query:      url.Values{},
		headers:    http.Header{},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name returns the service name used in errors and logs.
func (c *Client) Name() string {
	return c.name
}

// SetHeader replaces a default header after construction, e.g. a refreshed
// bearer token.
func (c *Client) SetHeader(key, value string) {
	c.headers.Set(key, value)
}

// Fetch implements Fetcher.
func (c *Client) Fetch(ctx context.Context, resource string, params url.Values) (json.RawMessage, error) {
	body, err := c.Do(ctx, http.MethodGet, resource, params, nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, services.Wrap(services.ErrExternalService, c.name, resource, "response is not valid JSON", nil)
	}
	return json.RawMessage(body), nil
}

// GetJSON fetches resource and decodes it into out.
func (c *Client) GetJSON(ctx context.Context, resource string, params url.Values, out any) error {
	raw, err := c.Fetch(ctx, resource, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return services.Wrap(services.ErrExternalService, c.name, resource, "decode response", err)
	}
	return nil
}

// Do performs a request and returns the response body of a 2xx response.
func (c *Client) Do(ctx context.Context, method, resource string, params url.Values, body io.Reader) ([]byte, error) {
	endpoint, err := url.Parse(c.baseURL + "/" + strings.TrimLeft(resource, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse %s url: %w", c.name, err)
	}
	query := url.Values{}
	for key, values := range c.query {
		query[key] = append([]string(nil), values...)
	}
	for key, values := range params {
		query[key] = append([]string(nil), values...)
	}
	endpoint.RawQuery = query.Encode()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s rate limit: %w", c.name, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, values := range c.headers {
		req.Header[key] = values
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, c.name, resource, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, c.name, resource, "read response", err)
	}
	c.logger.Debug("service request",
		logging.String("service", c.name),
		logging.String("resource", resource),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", latency),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, services.Wrap(services.ErrNotFound, c.name, resource, "returned 404", nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, services.Wrap(services.ErrExternalService, c.name, resource,
			fmt.Sprintf("returned %d (latency=%v): %s", resp.StatusCode, latency, snippet(payload)), nil)
	}
	return payload, nil
}

// IsNotFound reports whether err is a 404 from a service.
func IsNotFound(err error) bool {
	return errors.Is(err, services.ErrNotFound)
}

func snippet(body []byte) string {
	const max = 200
	text := strings.TrimSpace(string(body))
	if len(text) > max {
		text = text[:max] + "..."
	}
	return text
}
