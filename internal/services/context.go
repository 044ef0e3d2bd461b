package services

import "context"

type contextKey string

const (
	titlePathKey  contextKey = "title_path"
	localKeyKey   contextKey = "local_key"
	stageKey      contextKey = "stage"
	episodeKeyKey contextKey = "episode_key"
	runIDKey      contextKey = "run_id"
)

// WithTitlePath annotates context with the filesystem path of the title being processed.
func WithTitlePath(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, titlePathKey, path)
}

// TitlePathFromContext returns the title path if present.
func TitlePathFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(titlePathKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithLocalKey annotates context with the identity's stable local key.
func WithLocalKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, localKeyKey, key)
}

// LocalKeyFromContext returns the identity local key if present.
func LocalKeyFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(localKeyKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithEpisodeKey annotates context with an episode label such as s01e02.
func WithEpisodeKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, episodeKeyKey, key)
}

// EpisodeKeyFromContext returns the episode label if present.
func EpisodeKeyFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(episodeKeyKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with the sweep correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the sweep correlation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
