package recording

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"eerecord/internal/config"
	"eerecord/internal/discovery"
	"eerecord/internal/logging"
	"eerecord/internal/procexec"
	"eerecord/internal/pwgraph"
	"eerecord/internal/services"
)

// Graph is the subset of the audio graph used while recording.
type Graph interface {
	Connect(ctx context.Context, output, input string) error
	MuteMonitor(ctx context.Context, monitor, recorder string, strategy pwgraph.Strategy) ([]int, error)
	WaitForNode(ctx context.Context, node string, budget, interval time.Duration) bool
}

// Scoper hands out contexts that a single Ctrl+C cancels.
type Scoper interface {
	Scope(parent context.Context) (context.Context, context.CancelFunc)
}

// Options are per-run recording choices taken from the command line.
type Options struct {
	OutputExtension string
	Silent          bool
}

// Result describes what happened to one song.
type Result struct {
	Song                discovery.Song
	OutputPath          string
	PlaybackInterrupted bool
	EncodeInterrupted   bool
	Encoded             bool
	Muted               []int
	Elapsed             time.Duration
}

// Pipeline records songs one at a time.
type Pipeline struct {
	cfg      *config.Config
	root     string
	exec     procexec.Executor
	graph    Graph
	scoper   Scoper
	logger   *slog.Logger
	strategy pwgraph.Strategy
}

// New constructs a Pipeline writing under root. scoper may be nil, in which
// case waits are only cut short by ctx.
func New(cfg *config.Config, root string, exec procexec.Executor, graph Graph, scoper Scoper, logger *slog.Logger) (*Pipeline, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("config required")
	case exec == nil:
		return nil, errors.New("executor required")
	case graph == nil:
		return nil, errors.New("graph required")
	case strings.TrimSpace(root) == "":
		return nil, errors.New("root directory required")
	}
	return &Pipeline{
		cfg:      cfg,
		root:     root,
		exec:     exec,
		graph:    graph,
		scoper:   scoper,
		logger:   logging.NewComponentLogger(logger, "recording"),
		strategy: pwgraph.Strategy(cfg.Graph.DisconnectStrategy),
	}, nil
}

// OutputPath returns where song is encoded: <root>/<output dir>/<stem>.<ext>.
func (p *Pipeline) OutputPath(song discovery.Song, ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = p.cfg.Output.Extension
	}
	return filepath.Join(p.cfg.OutputDir(p.root), song.Stem()+"."+ext)
}

// Record runs every step for song. The returned error is non-nil only when
// ctx itself was cancelled, in which case encoding is skipped.
func (p *Pipeline) Record(ctx context.Context, song discovery.Song, opts Options) (Result, error) {
	start := time.Now()
	ctx = services.WithSong(ctx, song.Path)
	result := Result{Song: song, OutputPath: p.OutputPath(song, opts.OutputExtension)}
	tempPath := p.cfg.TempPath(p.root)

	recorder := p.startRecorder(ctx, tempPath)
	p.link(ctx)

	player := p.startPlayer(ctx, song)
	if opts.Silent {
		result.Muted = p.mute(ctx)
	}
	result.PlaybackInterrupted = p.wait(ctx, "playback", player, "player stopped")

	if recorder != nil {
		if err := recorder.Kill(); err != nil {
			p.stageLogger(ctx, "record").Debug("recorder kill failed", logging.Error(err))
		}
	}

	if err := ctx.Err(); err != nil {
		p.cleanup(ctx, tempPath)
		result.Elapsed = time.Since(start)
		return result, services.Wrap(services.ErrInterrupted, "recording", "record", "run cancelled before encoding", err)
	}

	result.Encoded, result.EncodeInterrupted = p.encode(ctx, tempPath, result.OutputPath, opts.OutputExtension)
	p.cleanup(ctx, tempPath)
	result.Elapsed = time.Since(start)
	return result, nil
}

func (p *Pipeline) startRecorder(ctx context.Context, tempPath string) procexec.Process {
	ctx = services.WithStage(ctx, "record")
	logger := p.stageLogger(ctx, "record")
	cmd := procexec.Command{
		Name: p.cfg.Recorder.Binary,
		Args: []string{"--target", p.cfg.Recorder.Target, tempPath},
		Dir:  p.root,
	}
	proc, err := p.exec.Start(ctx, cmd)
	if err != nil {
		p.warnTool(logger, "recorder failed to start", "recorder_start", err)
		return nil
	}
	logger.Debug("recorder started", logging.String("temp_path", tempPath), logging.Int("pid", proc.PID()))

	settle := p.cfg.RecorderSettle()
	if p.cfg.Effects.Readiness == config.ReadinessPoll {
		ready := p.graph.WaitForNode(ctx, p.cfg.Graph.RecorderNode, settle, p.cfg.EffectsPollInterval())
		logger.Debug("recorder readiness", logging.Bool("recorder_ready", ready))
	} else {
		sleep(ctx, settle)
	}
	return proc
}

func (p *Pipeline) link(ctx context.Context) {
	logger := p.stageLogger(ctx, "link")
	if err := p.graph.Connect(ctx, p.cfg.Graph.MonitorNode, p.cfg.Graph.RecorderNode); err != nil {
		logger.Debug("link command failed", logging.Error(err))
	}
}

func (p *Pipeline) startPlayer(ctx context.Context, song discovery.Song) procexec.Process {
	logger := p.stageLogger(ctx, "playback")
	logger.Info(fmt.Sprintf("Playing: %s", song.Name()),
		logging.String(logging.FieldEventType, "playback_start"))
	cmd := procexec.Command{
		Name: p.cfg.Player.Binary,
		Args: []string{"-nodisp", "-v", "quiet", "-stats", "-autoexit", song.Path},
	}
	proc, err := p.exec.Start(ctx, cmd)
	if err != nil {
		p.warnTool(logger, "player failed to start", "playback_start", err)
		return nil
	}
	return proc
}

func (p *Pipeline) mute(ctx context.Context) []int {
	logger := p.stageLogger(ctx, "mute")
	ids, err := p.graph.MuteMonitor(ctx, p.cfg.Graph.MonitorNode, p.cfg.Graph.RecorderNode, p.strategy)
	if err != nil {
		logger.Debug("disconnect failed", logging.Error(err))
	}
	logger.Debug("speaker links disconnected", logging.Any("link_ids", ids))
	return ids
}

func (p *Pipeline) encode(ctx context.Context, tempPath, outputPath, ext string) (started bool, interrupted bool) {
	logger := p.stageLogger(ctx, "encode")
	if ext = strings.TrimPrefix(strings.TrimSpace(ext), "."); ext == "" {
		ext = p.cfg.Output.Extension
	}
	logger.Info(fmt.Sprintf("Encoding to: %s", ext),
		logging.String(logging.FieldEventType, "encode_start"),
		logging.String("output_path", outputPath))

	args := []string{"-nostdin", "-v", "quiet", "-stats"}
	if p.cfg.Encoder.Overwrite {
		args = append(args, "-y")
	}
	args = append(args, "-i", tempPath, outputPath)
	proc, err := p.exec.Start(ctx, procexec.Command{Name: p.cfg.Encoder.Binary, Args: args})
	if err != nil {
		p.warnTool(logger, "encoder failed to start", "encode_start", err)
		return false, false
	}
	return true, p.wait(ctx, "encode", proc, "encoding stopped")
}

// wait blocks on proc inside an interrupt scope and reports whether the
// wait was cut short.
func (p *Pipeline) wait(ctx context.Context, stage string, proc procexec.Process, stoppedMsg string) bool {
	if proc == nil {
		return false
	}
	logger := p.stageLogger(ctx, stage)
	waitCtx, release := p.scope(ctx)
	err := proc.Wait(waitCtx)
	release()
	switch {
	case err == nil:
		return false
	case errors.Is(err, procexec.ErrInterrupted):
		logger.Info(stoppedMsg, logging.String(logging.FieldEventType, stage+"_interrupted"))
		return true
	default:
		logger.Debug("process exited with error", logging.Error(err))
		return false
	}
}

func (p *Pipeline) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.scoper == nil {
		return context.WithCancel(ctx)
	}
	return p.scoper.Scope(ctx)
}

func (p *Pipeline) cleanup(ctx context.Context, tempPath string) {
	if err := os.Remove(tempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.stageLogger(ctx, "cleanup").Debug("temp file removal failed", logging.Error(err))
	}
}

func (p *Pipeline) stageLogger(ctx context.Context, stage string) *slog.Logger {
	return logging.WithContext(services.WithStage(ctx, stage), p.logger)
}

func (p *Pipeline) warnTool(logger *slog.Logger, msg, eventType string, err error) {
	wrapped := services.Wrap(services.ErrExternalTool, "recording", eventType, msg, err)
	logging.WarnWithContext(logger, msg, eventType,
		logging.Error(err),
		logging.String(logging.FieldErrorHint, services.ErrorHint(wrapped)),
	)
}

func sleep(ctx context.Context, d time.Duration) {
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
