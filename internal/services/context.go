package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	songKey  contextKey = "song"
	stageKey contextKey = "stage"
	indexKey contextKey = "song_index"
)

// WithRunID annotates context with the identifier of the current invocation.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSong annotates context with the song path being processed.
func WithSong(ctx context.Context, song string) context.Context {
	if song == "" {
		return ctx
	}
	return context.WithValue(ctx, songKey, song)
}

// SongFromContext returns the song path if present.
func SongFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(songKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// SongPosition is the 1-based position of a song within a batch.
type SongPosition struct {
	Index int
	Total int
}

// WithSongPosition annotates context with the song's position in the batch.
func WithSongPosition(ctx context.Context, index, total int) context.Context {
	if index <= 0 || total <= 0 {
		return ctx
	}
	return context.WithValue(ctx, indexKey, SongPosition{Index: index, Total: total})
}

// SongPositionFromContext returns the batch position if present.
func SongPositionFromContext(ctx context.Context) (SongPosition, bool) {
	v, ok := ctx.Value(indexKey).(SongPosition)
	return v, ok
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
