package services_test

import (
	"context"
	"testing"

	"eerecord/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithSong(ctx, "/music/a.mp3")
	ctx = services.WithStage(ctx, "encode")
	ctx = services.WithSongPosition(ctx, 2, 5)

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if song, ok := services.SongFromContext(ctx); !ok || song != "/music/a.mp3" {
		t.Fatalf("unexpected song: %v %v", song, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "encode" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if pos, ok := services.SongPositionFromContext(ctx); !ok || pos.Index != 2 || pos.Total != 5 {
		t.Fatalf("unexpected position: %+v %v", pos, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithSong(ctx, "")
	ctx = services.WithSongPosition(ctx, 0, 3)
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.SongFromContext(ctx); ok {
		t.Fatal("expected no song value")
	}
	if _, ok := services.SongPositionFromContext(ctx); ok {
		t.Fatal("expected no position value")
	}
}
