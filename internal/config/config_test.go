package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"marquee/internal/config"
)

func TestLoadDefaultConfigUsesEnvKeysAndExpandsPaths(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "test-key")
	t.Setenv("FANART_API_KEY", "fanart-key")
	t.Setenv("TVDB_API_KEY", "")
	t.Setenv("IMDB_DATASET", "")
	t.Setenv("MARQUEE_STORE_DSN", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.LibraryDir != filepath.Join(tempHome, "media") {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	if cfg.TMDB.APIKey != "test-key" {
		t.Fatalf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
	if cfg.Fanart.APIKey != "fanart-key" {
		t.Fatalf("expected fanart key from env, got %q", cfg.Fanart.APIKey)
	}
	if cfg.TVDB.APIKey != "" {
		t.Fatalf("expected empty TVDB key, got %q", cfg.TVDB.APIKey)
	}
	if cfg.Store.Driver != config.StoreDriverSQLite {
		t.Fatalf("unexpected store driver: %q", cfg.Store.Driver)
	}
	wantDSN := filepath.Join(tempHome, ".local", "share", "marquee", "library.db")
	if cfg.Store.DSN != wantDSN {
		t.Fatalf("unexpected store dsn: got %q want %q", cfg.Store.DSN, wantDSN)
	}
	if cfg.IMDb.DatasetPath != filepath.Join(tempHome, ".local", "share", "marquee", "imdb.sqlite") {
		t.Fatalf("unexpected dataset path: %q", cfg.IMDb.DatasetPath)
	}
	if cfg.Workflow.MaxParallelTitles != config.Default().Workflow.MaxParallelTitles {
		t.Fatalf("unexpected max parallel titles: %d", cfg.Workflow.MaxParallelTitles)
	}
	if cfg.FFprobeBinary() != "ffprobe" || cfg.MP4InfoBinary() != "mp4info" {
		t.Fatalf("unexpected tool binaries: %q %q", cfg.FFprobeBinary(), cfg.MP4InfoBinary())
	}
	if cfg.RequestTimeout().Seconds() != 10 {
		t.Fatalf("unexpected request timeout: %v", cfg.RequestTimeout())
	}
}

func TestLoadReadsTOMLFile(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("MARQUEE_STORE_DSN", "")
	t.Setenv("IMDB_DATASET", "")
	dir := t.TempDir()
	libraryDir := filepath.Join(dir, "library")

	cfg := config.Default()
	cfg.Paths.LibraryDir = libraryDir
	cfg.TMDB.APIKey = "from-file"
	cfg.TMDB.ImageBaseURL = "https://images.example/t/p"
	cfg.Store.Driver = "PostgreSQL"
	cfg.Store.DSN = "postgres://marquee@localhost/marquee?sslmode=disable"
	cfg.Workflow.MaxParallelTitles = 2

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(dir, "marquee.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q to be found, got %q exists=%v", path, resolved, exists)
	}
	if loaded.TMDB.APIKey != "from-file" {
		t.Fatalf("unexpected api key %q", loaded.TMDB.APIKey)
	}
	if loaded.TMDB.ImageBaseURL != "https://images.example/t/p/" {
		t.Fatalf("expected trailing slash on image base url, got %q", loaded.TMDB.ImageBaseURL)
	}
	if loaded.Store.Driver != config.StoreDriverPostgres {
		t.Fatalf("expected postgres driver, got %q", loaded.Store.Driver)
	}
	if loaded.Store.DSN != cfg.Store.DSN {
		t.Fatalf("postgres dsn should not be path-expanded, got %q", loaded.Store.DSN)
	}
	if loaded.Workflow.MaxParallelTitles != 2 {
		t.Fatalf("unexpected max parallel titles %d", loaded.Workflow.MaxParallelTitles)
	}
}

func TestLoadRequiresTMDBKey(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("HOME", t.TempDir())

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected error without tmdb api key")
	}
	if !strings.Contains(err.Error(), "tmdb.api_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"driver", func(c *config.Config) { c.Store.Driver = "mysql" }, "store.driver"},
		{"dsn", func(c *config.Config) { c.Store.DSN = "" }, "store.dsn"},
		{"parallel", func(c *config.Config) { c.Workflow.MaxParallelTitles = 0 }, "workflow.max_parallel_titles"},
		{"timeout", func(c *config.Config) { c.Workflow.RequestTimeoutSeconds = -1 }, "workflow.request_timeout_seconds"},
		{"confidence", func(c *config.Config) { c.Workflow.ImageConfidence = 1 }, "workflow.image_confidence"},
		{"format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.TMDB.APIKey = "key"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error for %s", tt.name)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "sample-key")
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.TMDB.APIKey != "sample-key" {
		t.Fatalf("expected env fallback for empty sample key, got %q", cfg.TMDB.APIKey)
	}
}
