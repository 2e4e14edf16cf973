// Package discovery finds songs for batch runs.
//
// Matching is a plain case-sensitive suffix comparison against each
// configured extension, so "mix.xmp3" matches "mp3". Directories named like
// the output directory are skipped entirely, and results keep filesystem
// walk order.
package discovery
