package effects

import (
	"log/slog"

	"eerecord/internal/logging"
	"eerecord/internal/procexec"
)

// Session is the result of Launch.
type Session struct {
	// Process is the engine started by Launch; nil when it was already running.
	Process procexec.Process
	// Owned is true only when this run started the engine.
	Owned     bool
	Collision Collision
	Preset    string
	// Ready reports whether the monitor node was seen before the settle time
	// elapsed. Sleep readiness always reports true.
	Ready bool

	logger *slog.Logger
}

// Close terminates the engine when the session owns it. Engines that were
// already running are never touched.
func (s *Session) Close() error {
	if s == nil || !s.Owned || s.Process == nil {
		return nil
	}
	logger := s.logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger.Info("stopping Easy Effects",
		logging.String(logging.FieldEventType, "effects_stop"),
		logging.Int("pid", s.Process.PID()))
	err := s.Process.Kill()
	s.Process = nil
	return err
}
