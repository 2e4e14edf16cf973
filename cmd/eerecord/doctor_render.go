package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"eerecord/internal/deps"
	"eerecord/internal/preflight"
)

type checkState int

const (
	checkOK checkState = iota
	checkWarn
	checkFail
)

func (s checkState) label() string {
	switch s {
	case checkWarn:
		return "WARN"
	case checkFail:
		return "MISSING"
	default:
		return "OK"
	}
}

func (s checkState) colors() text.Colors {
	switch s {
	case checkWarn:
		return text.Colors{text.FgYellow}
	case checkFail:
		return text.Colors{text.FgRed}
	default:
		return text.Colors{text.FgGreen}
	}
}

func dependencyState(status deps.Status) checkState {
	switch {
	case status.Available:
		return checkOK
	case status.Optional:
		return checkWarn
	default:
		return checkFail
	}
}

func renderDependencies(statuses []deps.Status, colorize bool) string {
	rows := make([][]string, 0, len(statuses))
	rowColors := make(map[int]text.Colors)
	for i, status := range statuses {
		state := dependencyState(status)
		detail := status.Path
		if !status.Available {
			detail = status.Detail
		}
		rows = append(rows, []string{status.Name, status.Command, state.label(), detail, status.Description})
		if state != checkOK {
			rowColors[i] = state.colors()
		}
	}
	return renderTableWith(tableOptions{
		headers:   []string{"Tool", "Command", "Status", "Detail", "Used for"},
		rows:      rows,
		colorize:  colorize,
		rowColors: rowColors,
	})
}

// renderCheckLine formats one session or filesystem check as "  Label: [OK] detail".
func renderCheckLine(result preflight.Result, colorize bool) string {
	state := checkOK
	if !result.Passed {
		state = checkWarn
	}
	line := fmt.Sprintf("  %-20s [%s] %s", result.Name+":", state.label(), result.Detail)
	if colorize {
		return state.colors().Sprint(line)
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
