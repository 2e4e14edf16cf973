package pwgraph

import (
	"strconv"
	"strings"
)

const (
	markerOut = "|->"
	markerIn  = "|<-"
)

// Link is one connection between an output port and an input port.
type Link struct {
	ID     int
	Output string
	Input  string
	// Inbound is true when the entry was listed under its input port.
	Inbound bool
	// Line is the index of the listing line the link was parsed from.
	Line int
}

// ParseLinks converts `pw-link --id --links` output into links. Each link is
// reported once per listing line, so a link shown under both of its ports
// appears twice with the same ID.
func ParseLinks(listing string) []Link {
	lines := splitLines(listing)
	var (
		links  []Link
		header string
	)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		marker, idx := findMarker(trimmed)
		if idx < 0 {
			_, port, ok := splitID(trimmed)
			if ok {
				header = port
			} else {
				header = trimmed
			}
			continue
		}
		id, ok := parseID(trimmed[:idx])
		if !ok {
			continue
		}
		peer := strings.TrimSpace(trimmed[idx+len(marker):])
		link := Link{ID: id, Line: i, Inbound: marker == markerIn}
		if link.Inbound {
			link.Output, link.Input = peer, header
		} else {
			link.Output, link.Input = header, peer
		}
		links = append(links, link)
	}
	return links
}

// ParsePorts converts `pw-link --id --output` (or `--input`) output into port names.
func ParsePorts(listing string) []string {
	var ports []string
	for _, line := range splitLines(listing) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if _, port, ok := splitID(trimmed); ok {
			ports = append(ports, port)
			continue
		}
		ports = append(ports, trimmed)
	}
	return ports
}

// NodeOf returns the node part of a "node:port" name.
func NodeOf(port string) string {
	if idx := strings.LastIndex(port, ":"); idx >= 0 {
		return port[:idx]
	}
	return port
}

// BelongsTo reports whether port is on a node whose name contains node.
func BelongsTo(port, node string) bool {
	if node == "" {
		return false
	}
	return strings.Contains(NodeOf(port), node)
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

func findMarker(line string) (string, int) {
	if idx := strings.Index(line, markerIn); idx >= 0 {
		return markerIn, idx
	}
	if idx := strings.Index(line, markerOut); idx >= 0 {
		return markerOut, idx
	}
	return "", -1
}

// splitID separates a leading numeric ID from the rest of a line.
func splitID(line string) (int, string, bool) {
	fields := strings.SplitN(line, " ", 2)
	if len(fields) != 2 {
		return 0, "", false
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, "", false
	}
	return id, strings.TrimSpace(fields[1]), true
}

func parseID(prefix string) (int, bool) {
	id, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(prefix), " ", ""))
	if err != nil {
		return 0, false
	}
	return id, true
}
