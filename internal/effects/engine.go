package effects

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"eerecord/internal/config"
	"eerecord/internal/logging"
	"eerecord/internal/procexec"
	"eerecord/internal/services"
)

const processListBinary = "ps"

// Collision describes how Launch found the engine.
type Collision int

const (
	// CollisionNone means the engine was not running and Launch started it.
	CollisionNone Collision = iota
	// CollisionRunning means an engine instance was already running.
	CollisionRunning
	// CollisionPresetIgnored means an engine instance was already running and
	// the requested preset could not be applied.
	CollisionPresetIgnored
)

func (c Collision) String() string {
	switch c {
	case CollisionRunning:
		return "already running"
	case CollisionPresetIgnored:
		return "already running, preset ignored"
	default:
		return "none"
	}
}

// NodeWaiter waits for an audio graph node to appear.
type NodeWaiter interface {
	WaitForNode(ctx context.Context, node string, budget, interval time.Duration) bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithSleep replaces the settle-time sleep (primarily for tests).
func WithSleep(fn func(context.Context, time.Duration)) Option {
	return func(e *Engine) {
		if fn != nil {
			e.sleep = fn
		}
	}
}

// Engine starts and detects the effects engine.
type Engine struct {
	binary      string
	processName string
	monitor     string
	readiness   string
	settle      time.Duration
	poll        time.Duration

	exec   procexec.Executor
	waiter NodeWaiter
	logger *slog.Logger
	sleep  func(context.Context, time.Duration)
}

// New constructs an Engine from configuration. waiter may be nil, in which
// case readiness always falls back to sleeping the settle time.
func New(cfg *config.Config, exec procexec.Executor, waiter NodeWaiter, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if exec == nil {
		return nil, errors.New("executor required")
	}
	binary := strings.TrimSpace(cfg.Effects.Binary)
	if binary == "" {
		return nil, errors.New("effects binary required")
	}
	processName := strings.TrimSpace(cfg.Effects.ProcessName)
	if processName == "" {
		processName = binary
	}
	e := &Engine{
		binary:      binary,
		processName: processName,
		monitor:     cfg.Graph.MonitorNode,
		readiness:   cfg.Effects.Readiness,
		settle:      cfg.EffectsSettle(),
		poll:        cfg.EffectsPollInterval(),
		exec:        exec,
		waiter:      waiter,
		logger:      logging.NewComponentLogger(logger, "effects"),
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Running reports whether a process whose name contains the engine process
// name is present in the process list.
func (e *Engine) Running(ctx context.Context) (bool, error) {
	out, err := e.exec.Output(ctx, procexec.Command{
		Name: processListBinary,
		Args: []string{"-e", "-o", "comm="},
	})
	if err != nil {
		return false, services.Wrap(services.ErrExternalTool, "effects", "list processes", "process list query failed", err)
	}
	return processListed(out, e.processName), nil
}

func processListed(listing, name string) bool {
	for _, line := range strings.Split(listing, "\n") {
		if strings.Contains(strings.TrimSpace(line), name) {
			return true
		}
	}
	return false
}

// Launch starts the engine unless one is already running. A failed process
// list query is treated as "not running".
func (e *Engine) Launch(ctx context.Context, preset string) (*Session, error) {
	preset = strings.TrimSpace(preset)
	applyPreset := config.PresetRequested(preset)

	running, err := e.Running(ctx)
	if err != nil {
		logging.WarnWithContext(e.logger, "process list unavailable; assuming engine is not running",
			"effects_detect",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.ErrorHint(err)),
			logging.String(logging.FieldImpact, "a second engine instance may be started"),
		)
	}
	if running {
		collision := CollisionRunning
		if applyPreset {
			collision = CollisionPresetIgnored
			logging.WarnWithContext(e.logger, "Easy Effects is already running, cannot set preset",
				"effects_collision",
				logging.String("preset", preset),
				logging.String(logging.FieldErrorHint, "close Easy Effects before the run to apply a preset"),
				logging.String(logging.FieldImpact, "recording uses the engine's current preset"),
			)
		} else {
			e.logger.Info("Easy Effects is already running",
				logging.String(logging.FieldEventType, "effects_collision"))
		}
		return &Session{Collision: collision, Ready: true, logger: e.logger}, nil
	}

	cmd := procexec.Command{Name: e.binary}
	if applyPreset {
		cmd.Args = []string{"-l", preset}
		e.logger.Info("launching Easy Effects with preset",
			logging.String(logging.FieldEventType, "effects_launch"),
			logging.String("preset", preset))
	} else {
		e.logger.Info("launching Easy Effects",
			logging.String(logging.FieldEventType, "effects_launch"))
	}
	proc, err := e.exec.Start(ctx, cmd)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "effects", "launch", "failed to start Easy Effects", err)
	}

	session := &Session{Process: proc, Owned: true, Preset: preset, logger: e.logger}
	session.Ready = e.waitReady(ctx)
	return session, nil
}

// waitReady blocks until the monitor node registers or the settle time
// elapses, whichever comes first.
func (e *Engine) waitReady(ctx context.Context) bool {
	start := time.Now()
	if e.readiness == config.ReadinessPoll && e.waiter != nil && e.monitor != "" {
		ready := e.waiter.WaitForNode(ctx, e.monitor, e.settle, e.poll)
		e.logger.Debug("engine readiness",
			logging.String("strategy", config.ReadinessPoll),
			logging.Bool("monitor_ready", ready),
			logging.Duration("waited", time.Since(start)),
		)
		return ready
	}
	e.sleep(ctx, e.settle)
	e.logger.Debug("engine readiness",
		logging.String("strategy", config.ReadinessSleep),
		logging.Duration("waited", time.Since(start)),
	)
	return true
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
