package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServices()
	if err := c.normalizeIMDb(); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LibraryDir, err = expandPath(strings.TrimSpace(c.Paths.LibraryDir)); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServices() {
	c.TMDB.APIKey = envFallback(c.TMDB.APIKey, "TMDB_API_KEY")
	c.TMDB.BaseURL = trimOrDefault(c.TMDB.BaseURL, defaultTMDBBaseURL)
	c.TMDB.ImageBaseURL = trimOrDefault(c.TMDB.ImageBaseURL, defaultTMDBImageBaseURL)
	if !strings.HasSuffix(c.TMDB.ImageBaseURL, "/") {
		c.TMDB.ImageBaseURL += "/"
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)

	c.Fanart.APIKey = envFallback(c.Fanart.APIKey, "FANART_API_KEY")
	c.Fanart.BaseURL = trimOrDefault(c.Fanart.BaseURL, defaultFanartBaseURL)

	c.TVDB.APIKey = envFallback(c.TVDB.APIKey, "TVDB_API_KEY")
	c.TVDB.BaseURL = trimOrDefault(c.TVDB.BaseURL, defaultTVDBBaseURL)
}

func (c *Config) normalizeIMDb() error {
	if value, ok := os.LookupEnv("IMDB_DATASET"); ok && strings.TrimSpace(value) != "" {
		c.IMDb.DatasetPath = strings.TrimSpace(value)
	}
	var err error
	if c.IMDb.DatasetPath, err = expandPath(strings.TrimSpace(c.IMDb.DatasetPath)); err != nil {
		return fmt.Errorf("imdb.dataset_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = defaultStoreDriver
	}
	if c.Store.Driver == "postgresql" {
		c.Store.Driver = StoreDriverPostgres
	}
	c.Store.DSN = envFallback(c.Store.DSN, "MARQUEE_STORE_DSN")
	if c.Store.Driver == StoreDriverSQLite {
		if c.Store.DSN == "" {
			c.Store.DSN = defaultStoreDSN
		}
		var err error
		if c.Store.DSN, err = expandPath(c.Store.DSN); err != nil {
			return fmt.Errorf("store.dsn: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFprobe = trimOrDefault(c.Tools.FFprobe, defaultFFprobeBinary)
	c.Tools.MP4Info = trimOrDefault(c.Tools.MP4Info, defaultMP4InfoBinary)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// envFallback returns value trimmed, or the named environment variable when value is empty.
func envFallback(value, key string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	if env, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(env)
	}
	return ""
}

func trimOrDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
