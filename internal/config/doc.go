// Package config loads, normalizes, and validates marquee configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_API_KEY and FANART_API_KEY. The resulting Config is handed explicitly to
// the ingestion orchestrator; nothing reads the environment after Load returns.
package config
