package preflight

import (
	"context"
	"log/slog"

	"marquee/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options controls which checks RunAll performs.
type Options struct {
	// Online enables checks that contact external services.
	Online bool
}

// RunAll executes the applicable checks for cfg in a stable order.
func RunAll(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir),
		CheckLibraryLayout(cfg.Paths.LibraryDir),
		CheckDataset(ctx, cfg.IMDb.DatasetPath),
	}
	if !opts.Online {
		return results
	}

	results = append(results, CheckTMDB(ctx, cfg, logger))
	if cfg.TVDB.APIKey != "" {
		results = append(results, CheckTVDB(ctx, cfg, logger))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
