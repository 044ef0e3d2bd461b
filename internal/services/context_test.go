package services_test

import (
	"context"
	"testing"

	"marquee/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithTitlePath(ctx, "/lib/Movies/Example (2020)")
	ctx = services.WithLocalKey(ctx, "key-1")
	ctx = services.WithStage(ctx, "aggregate")
	ctx = services.WithEpisodeKey(ctx, "s01e02")
	ctx = services.WithRunID(ctx, "run-123")

	if path, ok := services.TitlePathFromContext(ctx); !ok || path != "/lib/Movies/Example (2020)" {
		t.Fatalf("unexpected title path: %v %v", path, ok)
	}
	if key, ok := services.LocalKeyFromContext(ctx); !ok || key != "key-1" {
		t.Fatalf("unexpected local key: %v %v", key, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "aggregate" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if ep, ok := services.EpisodeKeyFromContext(ctx); !ok || ep != "s01e02" {
		t.Fatalf("unexpected episode key: %v %v", ep, ok)
	}
	if rid, ok := services.RunIDFromContext(ctx); !ok || rid != "run-123" {
		t.Fatalf("unexpected run id: %v %v", rid, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
