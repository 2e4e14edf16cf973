// Package logging assembles the structured slog loggers used by eerecord.
//
// It owns the console and JSON handlers, parses level names, and exposes
// context-aware helpers so pipeline stages can tag log lines with the song
// being recorded, the current stage, and the run identifier. A no-op logger
// is provided for tests and wiring code that cannot fail.
package logging
