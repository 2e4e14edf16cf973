package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"eerecord/internal/config"
	"eerecord/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates every external binary the configuration names.
// Both the runner and the doctor command use this list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "Easy Effects",
			Command:     cfg.Effects.Binary,
			Description: "Effects engine whose output is recorded",
		},
		{
			Name:        "pw-link",
			Command:     cfg.Graph.Binary,
			Description: "Links the engine monitor to the recorder",
		},
		{
			Name:        "pw-record",
			Command:     cfg.Recorder.Binary,
			Description: "Captures the processed audio",
		},
		{
			Name:        "ffplay",
			Command:     cfg.Player.Binary,
			Description: "Plays each source song",
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.Encoder.Binary,
			Description: "Encodes the capture to the output format",
		},
		{
			Name:        "ps",
			Command:     "ps",
			Description: "Detects an already running engine",
			Optional:    true,
		},
	}
	return deps.CheckBinaries(requirements)
}
