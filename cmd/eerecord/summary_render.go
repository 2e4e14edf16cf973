package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"eerecord/internal/recording"
	"eerecord/internal/workflow"
)

func renderSummary(summary *workflow.Summary, root string) string {
	headers := []string{"#", "Song", "Output", "Playback", "Encode", "Elapsed"}
	rows := make([][]string, 0, len(summary.Results))
	for i, result := range summary.Results {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			relativeTo(root, result.Song.Path),
			relativeTo(root, result.OutputPath),
			playbackState(result),
			encodeState(result),
			formatElapsed(result.Elapsed),
		})
	}
	table := renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight})

	var b strings.Builder
	b.WriteString(table)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Recorded %d song(s), %d interrupted, in %s", len(summary.Results), summary.Interrupted(), formatElapsed(summary.Elapsed()))
	if summary.Skipped > 0 {
		fmt.Fprintf(&b, "; %d skipped after cancellation", summary.Skipped)
	}
	return b.String()
}

func playbackState(r recording.Result) string {
	if r.PlaybackInterrupted {
		return "stopped"
	}
	if len(r.Muted) > 0 {
		return "complete (muted)"
	}
	return "complete"
}

func encodeState(r recording.Result) string {
	switch {
	case r.EncodeInterrupted:
		return "stopped"
	case r.Encoded:
		return "done"
	default:
		return "skipped"
	}
}

func relativeTo(root, path string) string {
	if path == "" {
		return ""
	}
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return d.Round(time.Second).String()
}
