package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"marquee/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The store is a sqlite file under the temp directory and service base URLs
// point at an unroutable host until a test overrides them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.TMDB.APIKey = "test"
	cfgVal.TMDB.BaseURL = "http://127.0.0.1:0/tmdb"
	cfgVal.TMDB.ImageBaseURL = "http://127.0.0.1:0/images/"
	cfgVal.Fanart.BaseURL = "http://127.0.0.1:0/fanart"
	cfgVal.TVDB.BaseURL = "http://127.0.0.1:0/tvdb"
	cfgVal.IMDb.DatasetPath = filepath.Join(base, "imdb.sqlite")
	cfgVal.Store.Driver = config.StoreDriverSQLite
	cfgVal.Store.DSN = filepath.Join(base, "store", "library.db")
	cfgVal.Workflow.RequestsPerSecond = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTMDB points the TMDB client at baseURL (typically an httptest server).
func WithTMDB(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = baseURL
		b.cfg.TMDB.ImageBaseURL = baseURL + "/images/"
	}
}

// WithFanart enables the fanart client against baseURL.
func WithFanart(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Fanart.APIKey = "fanart-test"
		b.cfg.Fanart.BaseURL = baseURL
	}
}

// WithTVDB enables the TVDB client against baseURL.
func WithTVDB(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TVDB.APIKey = "tvdb-test"
		b.cfg.TVDB.BaseURL = baseURL
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the inspection tools are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffprobe", "mp4info"}
		}
		for _, name := range names {
			writeStub(b, name, "#!/bin/sh\nexit 0\n")
		}
	}
}

// WithStubbedOutput writes a stub executable that prints stdout and exits 0,
// and configures the matching tool path when name is a known inspection tool.
func WithStubbedOutput(name, stdout string) ConfigOption {
	return func(b *configBuilder) {
		dataPath := filepath.Join(b.baseDir, "bin", name+".out")
		if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		if err := os.WriteFile(dataPath, []byte(stdout), 0o644); err != nil {
			b.t.Fatalf("write stub output %s: %v", name, err)
		}
		target := writeStub(b, name, "#!/bin/sh\ncat '"+dataPath+"'\n")
		switch name {
		case "ffprobe":
			b.cfg.Tools.FFprobe = target
		case "mp4info":
			b.cfg.Tools.MP4Info = target
		}
	}
}

func writeStub(b *configBuilder, name, script string) string {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}

	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
		b.t.Fatalf("set PATH: %v", err)
	}
	b.t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LibraryDir)
}
