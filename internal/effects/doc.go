// Package effects launches the Easy Effects engine for a run.
//
// Launch first checks the process list. An engine that is already running is
// left alone and reported as a collision; otherwise the engine is started,
// optionally with a preset, and the returned Session is marked as owned.
// Only owned sessions terminate the engine on Close.
package effects
