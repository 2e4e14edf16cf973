package main

import (
	"errors"
	"fmt"
	"io"

	"eerecord/internal/services"
	"eerecord/internal/workflow"
)

// printError writes the user-facing message for err, followed by a hint
// when the error carries a known marker.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, userMessage(err))
	if hint := services.ErrorHint(err); hint != "" && hint != "check logs for details" {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, workflow.ErrInvalidSong):
		return "Specified path is invalid"
	case errors.Is(err, workflow.ErrNoSongs):
		return "No songs found in current directory"
	default:
		return err.Error()
	}
}
