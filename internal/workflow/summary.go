package workflow

import (
	"time"

	"eerecord/internal/effects"
	"eerecord/internal/recording"
)

// Summary reports what a run did.
type Summary struct {
	RunID       string
	Batch       bool
	OutputDir   string
	EngineOwned bool
	Collision   effects.Collision
	Results     []recording.Result
	// Skipped counts songs never started because the run was cancelled.
	Skipped   int
	Cancelled bool
	Started   time.Time
	Finished  time.Time
}

// Elapsed returns the wall time of the recording loop.
func (s *Summary) Elapsed() time.Duration {
	if s == nil || s.Finished.IsZero() {
		return 0
	}
	return s.Finished.Sub(s.Started)
}

// Interrupted counts songs with a stopped playback or encode.
func (s *Summary) Interrupted() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, r := range s.Results {
		if r.PlaybackInterrupted || r.EncodeInterrupted {
			n++
		}
	}
	return n
}

// Encoded counts songs whose encoder started.
func (s *Summary) Encoded() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, r := range s.Results {
		if r.Encoded {
			n++
		}
	}
	return n
}
