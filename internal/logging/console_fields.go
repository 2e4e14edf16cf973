package logging

import (
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type infoField struct {
	label string
	value string
}

// Keys listed here render first, in this order.
var highlightKeys = []string{
	FieldEventType,
	"preset",
	"collision",
	"extensions",
	"song_count",
	"output",
	"command",
	"error",
	FieldErrorHint,
	FieldImpact,
	"link_ids",
	"elapsed",
}

// selectFields orders attributes for the indented field list. Keys already
// shown in the header are skipped; debug-only keys appear only at debug level.
func selectFields(attrs []kv, debug bool) []infoField {
	if len(attrs) == 0 {
		return nil
	}
	used := make([]bool, len(attrs))
	result := make([]infoField, 0, len(attrs))
	add := func(idx int) {
		used[idx] = true
		attr := attrs[idx]
		if skipKey(attr.key) || (!debug && isDebugOnlyKey(attr.key)) {
			return
		}
		result = append(result, infoField{label: displayLabel(attr.key), value: formatValueForKey(attr.key, attr.value)})
	}
	for _, key := range highlightKeys {
		for idx, attr := range attrs {
			if !used[idx] && attr.key == key {
				add(idx)
				break
			}
		}
	}
	for idx := range attrs {
		if !used[idx] {
			add(idx)
		}
	}
	return result
}

func formatValueForKey(key string, v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindBool {
		if v.Bool() {
			return "yes"
		}
		return "no"
	}
	if v.Kind() == slog.KindDuration && (key == "elapsed" || strings.HasSuffix(key, "_duration")) {
		return formatDurationHuman(v.Duration())
	}
	if values, ok := v.Any().([]string); ok && v.Kind() == slog.KindAny {
		return strings.Join(values, ", ")
	}
	if key == "error" {
		return truncate(formatValue(v), 200)
	}
	return formatValue(v)
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "…"
}

func skipKey(key string) bool {
	switch key {
	case "", FieldComponent, FieldSong, FieldSongIndex, FieldStage:
		return true
	}
	return false
}

func isDebugOnlyKey(key string) bool {
	switch key {
	case FieldRunID, "pid", "args", "temp_path", "link_listing":
		return true
	}
	return strings.HasSuffix(key, "_path") && key != "output"
}

func displayLabel(key string) string {
	switch key {
	case FieldEventType:
		return "Event"
	case FieldErrorHint:
		return "Hint"
	case FieldRunID:
		return "Run"
	case "link_ids":
		return "Links"
	case "song_count":
		return "Songs"
	default:
		return titleizeKey(key)
	}
}

func titleizeKey(key string) string {
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	// A Caser keeps state, so build one per call; handlers run concurrently.
	return cases.Title(language.Und).String(strings.Join(parts, " "))
}
