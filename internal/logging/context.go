package logging

import (
	"context"
	"log/slog"

	"marquee/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldTitlePath is the key for the filesystem path of the title being processed.
	FieldTitlePath = "title_path"
	// FieldLocalKey is the key for the identity's stable local key.
	FieldLocalKey = "local_key"
	// FieldStage is the key for pipeline stage names.
	FieldStage = "stage"
	// FieldEpisodeKey is the key for episode labels (e.g. s01e02).
	FieldEpisodeKey = "episode_key"
	// FieldRunID is the key for the sweep correlation identifier.
	FieldRunID = "run_id"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step for an operator.
	FieldErrorHint = "error_hint"
	// FieldImpact states the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 5)
	if path, ok := services.TitlePathFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldTitlePath, path))
	}
	if key, ok := services.LocalKeyFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldLocalKey, key))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if ep, ok := services.EpisodeKeyFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldEpisodeKey, ep))
	}
	if rid, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
