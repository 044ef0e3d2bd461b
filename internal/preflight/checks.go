package preflight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"marquee/internal/config"
	"marquee/internal/scanner"
	"marquee/internal/services"
	"marquee/internal/sources"
	"marquee/internal/sources/imdb"
	"marquee/internal/sources/tmdb"
	"marquee/internal/sources/tvdb"
)

const serviceCheckTimeout = 15 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckLibraryLayout reports which of the movies and shows folders exist under
// root. A library with neither has nothing to sweep.
func CheckLibraryLayout(root string) Result {
	const name = "Library layout"
	layout, err := scanner.New(root, nil, nil).Locate()
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	switch {
	case layout.MoviesDir != "" && layout.ShowsDir != "":
		return Result{Name: name, Passed: true, Detail: "movies and shows folders found"}
	case layout.MoviesDir != "":
		return Result{Name: name, Passed: true, Detail: "movies folder found (no shows folder)"}
	case layout.ShowsDir != "":
		return Result{Name: name, Passed: true, Detail: "shows folder found (no movies folder)"}
	default:
		return Result{Name: name, Detail: "no movies or shows folder"}
	}
}

// CheckDataset opens the IMDb dataset read-only.
func CheckDataset(ctx context.Context, path string) Result {
	const name = "IMDb dataset"
	dataset, err := imdb.Open(path)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	defer dataset.Close()
	if _, err := dataset.TitleType(ctx, "tt0000000"); err != nil && !errors.Is(err, services.ErrNotFound) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s)", path, summarizeError(err))}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckTMDB fetches the catalog configuration, which fails on a bad key.
func CheckTMDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) Result {
	const name = "TMDB"
	client, err := tmdb.New(cfg, logger, sources.WithTimeout(serviceCheckTimeout))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	checkCtx, cancel := context.WithTimeout(ctx, serviceCheckTimeout)
	defer cancel()
	if err := client.RefreshImageBaseURL(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckTVDB logs in with the configured key.
func CheckTVDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) Result {
	const name = "TVDB"
	client, err := tvdb.New(cfg, logger, sources.WithTimeout(serviceCheckTimeout))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	checkCtx, cancel := context.WithTimeout(ctx, serviceCheckTimeout)
	defer cancel()
	if err := client.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "login ok"}
}

func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (service unreachable)"
	}
	return err.Error()
}
