package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/marquee/config.toml"
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'marquee config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case StoreDriverSQLite, StoreDriverPostgres:
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", StoreDriverSQLite, StoreDriverPostgres, c.Store.Driver)
	}
	if strings.TrimSpace(c.Store.DSN) == "" {
		return errors.New("store.dsn must be set")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.MaxParallelTitles <= 0 {
		return errors.New("workflow.max_parallel_titles must be positive")
	}
	if c.Workflow.RequestTimeoutSeconds <= 0 {
		return errors.New("workflow.request_timeout_seconds must be positive")
	}
	if c.Workflow.RequestsPerSecond < 0 {
		return errors.New("workflow.requests_per_second must not be negative")
	}
	if c.Workflow.ImageConfidence <= 0 || c.Workflow.ImageConfidence >= 1 {
		return errors.New("workflow.image_confidence must be between 0 and 1 (exclusive)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
