package inspect

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"marquee/internal/config"
	"marquee/internal/media"
	"marquee/internal/media/dash"
	"marquee/internal/media/ffprobe"
	"marquee/internal/media/mp4info"
	"marquee/internal/services"
)

// Strategy reads the container structure of one file.
type Strategy interface {
	Inspect(ctx context.Context, path string) (*media.Descriptor, error)
}

// Inspector dispatches to a Strategy by file extension.
type Inspector struct {
	strategies map[string]Strategy
}

// New builds an Inspector with the manifest, box-structured and probe
// strategies wired to the configured tool binaries.
func New(cfg *config.Config) *Inspector {
	probe := ffprobe.Strategy{Binary: cfg.FFprobeBinary()}
	box := mp4info.Strategy{Binary: cfg.MP4InfoBinary()}
	return &Inspector{strategies: map[string]Strategy{
		".mpd":  dash.Strategy{},
		".mp4":  box,
		".m4v":  box,
		".webm": probe,
		".mkv":  probe,
		".ogg":  probe,
	}}
}

// NewWithStrategies builds an Inspector over an explicit extension table.
func NewWithStrategies(strategies map[string]Strategy) *Inspector {
	table := make(map[string]Strategy, len(strategies))
	for ext, strategy := range strategies {
		table[strings.ToLower(ext)] = strategy
	}
	return &Inspector{strategies: table}
}

// Supports reports whether path has an extension with a registered strategy.
func (i *Inspector) Supports(path string) bool {
	_, ok := i.strategies[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions lists the registered extensions in sorted order.
func (i *Inspector) Extensions() []string {
	out := make([]string, 0, len(i.strategies))
	for ext := range i.strategies {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Inspect returns the descriptor for path. Unknown extensions yield a nil
// descriptor and an error wrapping services.ErrUnsupportedContainer.
func (i *Inspector) Inspect(ctx context.Context, path string) (*media.Descriptor, error) {
	ext := strings.ToLower(filepath.Ext(path))
	strategy, ok := i.strategies[ext]
	if !ok {
		return nil, services.Wrap(services.ErrUnsupportedContainer, "inspect", "dispatch", "extension "+quoteExt(ext), nil)
	}
	return strategy.Inspect(ctx, path)
}

func quoteExt(ext string) string {
	if ext == "" {
		return `""`
	}
	return ext
}
