// Package logging assembles structured slog loggers used across marquee.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context-aware helpers that tag log lines with the title path, identity key,
// stage and episode being processed. A no-op logger is provided for tests.
package logging
