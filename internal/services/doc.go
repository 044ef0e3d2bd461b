// Package services defines shared error markers and context helpers used by the
// ingestion pipeline and its external source clients.
//
// Error markers classify failures (not found, malformed names, unavailable
// services, required fetch failures, unsupported containers) so the
// orchestrator can decide with errors.Is whether a failure is absorbed as an
// absent field or isolated to a single title. Context helpers stamp the title
// path, identity key, stage and episode onto contexts for structured logging.
package services
