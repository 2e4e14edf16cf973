package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"eerecord/internal/config"
	"eerecord/internal/discovery"
	"eerecord/internal/effects"
	"eerecord/internal/logging"
	"eerecord/internal/preflight"
	"eerecord/internal/recording"
	"eerecord/internal/runlock"
	"eerecord/internal/services"
)

var (
	// ErrInvalidSong is returned when the named song path does not exist.
	ErrInvalidSong = errors.New("specified path is invalid")
	// ErrNoSongs is returned when a batch scan matches nothing.
	ErrNoSongs = errors.New("no songs found in current directory")
)

// EngineLauncher starts or detects the effects engine.
type EngineLauncher interface {
	Launch(ctx context.Context, preset string) (*effects.Session, error)
}

// SongRecorder records one song.
type SongRecorder interface {
	Record(ctx context.Context, song discovery.Song, opts recording.Options) (recording.Result, error)
}

// Request holds the per-invocation choices from the command line. Empty
// fields fall back to configuration.
type Request struct {
	// SongPath selects single-file mode; empty means batch mode.
	SongPath        string
	InputExtensions []string
	OutputExtension string
	Preset          string
	Silent          bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithRunID fixes the run identifier (primarily for tests).
func WithRunID(id string) Option {
	return func(r *Runner) {
		if id != "" {
			r.newRunID = func() string { return id }
		}
	}
}

// WithoutPreflight skips the dependency warnings logged before recording.
func WithoutPreflight() Option {
	return func(r *Runner) {
		r.preflight = false
	}
}

// Runner coordinates a full invocation.
type Runner struct {
	cfg       *config.Config
	root      string
	engine    EngineLauncher
	recorder  SongRecorder
	logger    *slog.Logger
	preflight bool
	newRunID  func() string
}

// NewRunner constructs a Runner that treats root as the invocation directory.
func NewRunner(cfg *config.Config, root string, engine EngineLauncher, recorder SongRecorder, logger *slog.Logger, opts ...Option) (*Runner, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("config required")
	case strings.TrimSpace(root) == "":
		return nil, errors.New("root directory required")
	case engine == nil:
		return nil, errors.New("engine launcher required")
	case recorder == nil:
		return nil, errors.New("recorder required")
	}
	r := &Runner{
		cfg:       cfg,
		root:      root,
		engine:    engine,
		recorder:  recorder,
		logger:    logging.NewComponentLogger(logger, "workflow"),
		preflight: true,
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run executes the request. The Summary is returned whenever songs were
// attempted, including when the run was cancelled part way.
func (r *Runner) Run(ctx context.Context, req Request) (*Summary, error) {
	req = r.normalizeRequest(req)

	lock, err := runlock.Acquire(r.cfg.LockPath())
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			r.logger.Debug("run lock release failed", logging.Error(err))
		}
	}()

	runID := r.newRunID()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	songs, err := r.resolveSongs(ctx, logger, req)
	if err != nil {
		return nil, err
	}

	if r.preflight {
		r.warnPreflight(logger)
	}

	outputDir := r.cfg.OutputDir(r.root)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "output dir", fmt.Sprintf("create %s", outputDir), err)
	}

	summary := &Summary{
		RunID:     runID,
		Batch:     req.SongPath == "",
		OutputDir: outputDir,
		Started:   time.Now(),
	}

	batch := summary.Batch
	if batch && req.Silent {
		logger.Info("Running in silent mode", logging.String(logging.FieldEventType, "silent_mode"))
	}
	session := r.launchEngine(ctx, logger, req.Preset)
	defer func() {
		if err := session.Close(); err != nil {
			logger.Debug("engine stop failed", logging.Error(err))
		}
	}()
	if session != nil {
		summary.EngineOwned = session.Owned
		summary.Collision = session.Collision
	}
	if !batch && req.Silent {
		logger.Info("Running in silent mode", logging.String(logging.FieldEventType, "silent_mode"))
	}
	if batch {
		logger.Info("Press Ctrl+C to stop current song", logging.String(logging.FieldEventType, "batch_start"))
	}

	opts := recording.Options{OutputExtension: req.OutputExtension, Silent: req.Silent}
	var runErr error
	for i, song := range songs {
		if err := ctx.Err(); err != nil {
			runErr = services.Wrap(services.ErrInterrupted, "workflow", "batch", "run cancelled", err)
			break
		}
		songCtx := ctx
		if batch {
			songCtx = services.WithSongPosition(ctx, i+1, len(songs))
		}
		result, err := r.recorder.Record(songCtx, song, opts)
		summary.Results = append(summary.Results, result)
		if err != nil {
			runErr = err
			break
		}
	}
	summary.Finished = time.Now()
	summary.Cancelled = runErr != nil
	summary.Skipped = len(songs) - len(summary.Results)

	logger.Info("run finished",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("songs", len(summary.Results)),
		logging.Int("interrupted", summary.Interrupted()),
		logging.Duration("elapsed", summary.Elapsed()),
	)
	return summary, runErr
}

func (r *Runner) normalizeRequest(req Request) Request {
	req.SongPath = strings.TrimSpace(req.SongPath)
	exts := config.NormalizeExtensions(req.InputExtensions)
	if len(exts) == 0 {
		exts = r.cfg.Input.Extensions
	}
	req.InputExtensions = exts
	req.OutputExtension = strings.TrimPrefix(strings.TrimSpace(req.OutputExtension), ".")
	if req.OutputExtension == "" {
		req.OutputExtension = r.cfg.Output.Extension
	}
	if strings.TrimSpace(req.Preset) == "" {
		req.Preset = r.cfg.Effects.Preset
	}
	return req
}

func (r *Runner) resolveSongs(ctx context.Context, logger *slog.Logger, req Request) ([]discovery.Song, error) {
	if req.SongPath != "" {
		if _, err := os.Stat(req.SongPath); err != nil {
			return nil, services.Wrap(services.ErrValidation, "workflow", "song path", req.SongPath, ErrInvalidSong)
		}
		return []discovery.Song{{Path: req.SongPath}}, nil
	}

	logger.Info(fmt.Sprintf("Scanning for songs, extensions: %s", discovery.FormatExtensions(req.InputExtensions)),
		logging.String(logging.FieldEventType, "scan_start"))
	songs, err := discovery.Discover(r.root, req.InputExtensions, r.cfg.Paths.OutputDirName, logging.WithContext(ctx, r.logger))
	if err != nil {
		return nil, err
	}
	if len(songs) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "workflow", "scan", r.root, ErrNoSongs)
	}
	logger.Info(fmt.Sprintf("Found %d songs", len(songs)),
		logging.String(logging.FieldEventType, "scan_complete"),
		logging.Int("songs", len(songs)))
	return songs, nil
}

// launchEngine starts the engine. A failed launch is logged and the run
// continues without one.
func (r *Runner) launchEngine(ctx context.Context, logger *slog.Logger, preset string) *effects.Session {
	session, err := r.engine.Launch(ctx, preset)
	if err != nil {
		logging.WarnWithContext(logger, "effects engine launch failed", "effects_launch",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.ErrorHint(err)),
			logging.String(logging.FieldImpact, "recordings will capture silence"),
		)
		return nil
	}
	return session
}

func (r *Runner) warnPreflight(logger *slog.Logger) {
	for _, failed := range preflight.Failed(preflight.RunAll(r.cfg, r.root)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight",
			logging.String("check", failed.Name),
			logging.String("detail", failed.Detail),
			logging.String(logging.FieldErrorHint, "run `eerecord doctor` to check external tools"),
		)
	}
}
