// Package workflow runs a complete eerecord invocation.
//
// The Runner takes the run lock, resolves the songs to record (one named
// file, or every matching file under the working directory), makes sure the
// output directory exists, launches the effects engine once, and hands each
// song to the recording pipeline in order. The engine is stopped afterwards
// only when this run started it.
//
// Ctrl+C stops the current playback or encode and the batch moves on. A
// cancelled run context (SIGTERM, or Ctrl+C between songs) ends the batch
// before the next song starts.
package workflow
