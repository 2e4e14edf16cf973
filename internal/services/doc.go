// Package services defines shared helpers consumed by the recording pipeline
// and its external tool wrappers.
//
// Key responsibilities:
//   - Context helpers that stamp the run identifier, the song being recorded,
//     and the pipeline stage so log lines can be correlated.
//   - Structured error markers plus the Wrap helper that let the CLI tell user
//     input problems apart from tool failures and interruptions.
package services
