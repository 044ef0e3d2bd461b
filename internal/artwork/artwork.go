package artwork

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"marquee/internal/config"
	"marquee/internal/fileutil"
	"marquee/internal/library"
	"marquee/internal/logging"
	"marquee/internal/ranking"
	"marquee/internal/services"
	"marquee/internal/textutil"
)

const (
	// Dir is the title subdirectory that receives downloaded artwork.
	Dir = "metadata"

	maxImageBytes    = 32 << 20
	defaultParallel  = 4
	defaultUserAgent = "marquee"
)

// SrcMapper converts an absolute file path to the library-relative src form.
type SrcMapper interface {
	Src(path string) (string, error)
}

// Downloader fetches ranked artwork winners and stores them next to a title.
type Downloader struct {
	http     *http.Client
	limiter  *rate.Limiter
	mapper   SrcMapper
	parallel int
	logger   *slog.Logger
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Downloader) {
		if client != nil {
			d.http = client
		}
	}
}

// WithParallel bounds concurrent downloads per title.
func WithParallel(n int) Option {
	return func(d *Downloader) {
		if n > 0 {
			d.parallel = n
		}
	}
}

// New creates a Downloader using the configured request timeout and rate.
func New(cfg *config.Config, mapper SrcMapper, logger *slog.Logger, opts ...Option) *Downloader {
	d := &Downloader{
		http:     &http.Client{Timeout: 4 * cfg.RequestTimeout()},
		mapper:   mapper,
		parallel: defaultParallel,
		logger:   logging.NewComponentLogger(logger, "artwork"),
	}
	if rps := cfg.Workflow.RequestsPerSecond; rps > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FileName returns the artwork file name for a winner, without extension:
// the kind, followed by the language when the image is not agnostic.
func FileName(c ranking.Candidate) string {
	name := string(c.Kind)
	if lang := textutil.Token(c.Language); lang != "" {
		name += "." + lang
	}
	return name
}

// Fetch downloads every winner into <titleDir>/metadata. Images that fail to
// download or decode are logged and omitted; the result keeps winner order.
func (d *Downloader) Fetch(ctx context.Context, titleDir string, winners []ranking.Candidate) []library.Image {
	results := make([]*library.Image, len(winners))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.parallel)
	for i, winner := range winners {
		g.Go(func() error {
			img, err := d.fetchOne(gctx, titleDir, winner)
			if err != nil {
				if gctx.Err() == nil {
					logging.WarnWithContext(logging.WithContext(ctx, d.logger), "artwork download failed", "artwork_download",
						logging.String("kind", string(winner.Kind)),
						logging.String("language", winner.Language),
						logging.String("url", winner.SourceURL),
						logging.String(logging.FieldImpact, "image omitted from title"),
						logging.Error(err),
					)
				}
				return nil
			}
			results[i] = img
			return nil
		})
	}
	_ = g.Wait()

	images := make([]library.Image, 0, len(winners))
	for _, img := range results {
		if img != nil {
			images = append(images, *img)
		}
	}
	return images
}

func (d *Downloader) fetchOne(ctx context.Context, titleDir string, winner ranking.Candidate) (*library.Image, error) {
	data, err := d.download(ctx, winner.SourceURL)
	if err != nil {
		return nil, err
	}
	decoded, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "artwork", "decode", winner.SourceURL, err)
	}
	bounds := decoded.Bounds()
	mime := mimetype.Detect(data)

	path := filepath.Join(titleDir, Dir, FileName(winner)+extension(mime, winner.SourceURL))
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return nil, err
	}
	src, err := d.mapper.Src(path)
	if err != nil {
		return nil, err
	}
	return &library.Image{
		Kind:     string(winner.Kind),
		Language: winner.Language,
		MIME:     mime.String(),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Src:      src,
	}, nil
}

func (d *Downloader) download(ctx context.Context, url string) ([]byte, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("artwork rate limit: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	start := time.Now()
	resp, err := d.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "artwork", "download", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, services.Wrap(services.ErrNotFound, "artwork", "download", url, nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, services.Wrap(services.ErrExternalService, "artwork", "download",
			fmt.Sprintf("%s returned %d", url, resp.StatusCode), nil)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "artwork", "read", url, err)
	}
	if len(data) > maxImageBytes {
		return nil, services.Wrap(services.ErrExternalService, "artwork", "read", url+" exceeds size limit", nil)
	}
	d.logger.Debug("artwork downloaded",
		logging.String("url", url),
		logging.Int("bytes", len(data)),
		logging.Duration("latency", time.Since(start)),
	)
	return data, nil
}

// extension prefers the detected content type and falls back to the URL.
func extension(mime *mimetype.MIME, url string) string {
	if ext := mime.Extension(); ext != "" {
		return ext
	}
	if ext := strings.ToLower(filepath.Ext(url)); ext != "" && len(ext) <= 5 {
		return ext
	}
	return ".img"
}
