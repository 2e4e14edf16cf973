package pwgraph

import (
	"strings"
)

// Strategy picks which monitor links to disconnect when muting.
type Strategy string

const (
	// StrategyEndpoint selects links from the monitor node whose destination
	// port is not on the recorder node, whichever side they are listed under.
	StrategyEndpoint Strategy = "endpoint"
	// StrategyAdjacent keeps the listing-order heuristic: an inbound monitor
	// link is a speaker link unless the line above it mentions the recorder.
	StrategyAdjacent Strategy = "adjacent"
)

// SpeakerLinks returns the IDs of links that carry the monitor node to
// anything other than the recorder, in listing order without duplicates.
func SpeakerLinks(listing, monitor, recorder string, strategy Strategy) []int {
	if strategy == StrategyAdjacent {
		return adjacentSpeakerLinks(listing, monitor, recorder)
	}
	return endpointSpeakerLinks(listing, monitor, recorder)
}

func endpointSpeakerLinks(listing, monitor, recorder string) []int {
	var ids []int
	seen := map[int]struct{}{}
	for _, link := range ParseLinks(listing) {
		if !BelongsTo(link.Output, monitor) || BelongsTo(link.Input, recorder) {
			continue
		}
		if _, ok := seen[link.ID]; ok {
			continue
		}
		seen[link.ID] = struct{}{}
		ids = append(ids, link.ID)
	}
	return ids
}

func adjacentSpeakerLinks(listing, monitor, recorder string) []int {
	lines := splitLines(listing)
	var ids []int
	for i, line := range lines {
		idx := strings.Index(line, markerIn)
		if idx < 0 || !strings.Contains(line, monitor) {
			continue
		}
		// The first line has no predecessor; treat it as not mentioning the recorder.
		if i > 0 && strings.Contains(lines[i-1], recorder) {
			continue
		}
		id, ok := parseID(line[:idx])
		if !ok {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
