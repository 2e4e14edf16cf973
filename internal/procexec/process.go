package procexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"eerecord/internal/logging"
	"eerecord/internal/services"
)

// ErrInterrupted is returned by Wait when the wait was cut short and the
// process was killed.
var ErrInterrupted = fmt.Errorf("%w: stage stopped", services.ErrInterrupted)

// Process is a handle to a started child.
type Process interface {
	// Wait blocks until the child exits. When ctx is cancelled first the child
	// is killed and ErrInterrupted is returned.
	Wait(ctx context.Context) error
	// Kill forcibly terminates the child and reaps it. Safe to call repeatedly.
	Kill() error
	PID() int
}

// Executor abstracts command execution for testability.
type Executor interface {
	Start(ctx context.Context, cmd Command) (Process, error)
	Output(ctx context.Context, cmd Command) (string, error)
}

// Launcher runs real OS processes.
type Launcher struct {
	logger *slog.Logger
}

// NewLauncher constructs a Launcher that logs spawns at debug level.
func NewLauncher(logger *slog.Logger) *Launcher {
	return &Launcher{logger: logging.NewComponentLogger(logger, "procexec")}
}

// Start spawns cmd in its own process group and returns immediately.
func (l *Launcher) Start(ctx context.Context, cmd Command) (Process, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, errors.New("command name required")
	}
	c := exec.Command(name, cmd.Args...) //nolint:gosec
	c.Dir = cmd.Dir
	c.Stdout = cmd.Stdout
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	c.Stderr = cmd.Stderr
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := c.Start(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "", "start "+name, "", err)
	}
	logging.WithContext(ctx, l.logger).Debug("process started",
		logging.String("command", cmd.String()),
		logging.Int("pid", c.Process.Pid),
	)

	p := &osProcess{cmd: c, done: make(chan struct{})}
	go func() {
		p.err = c.Wait()
		close(p.done)
	}()
	return p, nil
}

// Output runs a short query command to completion and returns its stdout.
func (l *Launcher) Output(ctx context.Context, cmd Command) (string, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return "", errors.New("command name required")
	}
	c := exec.CommandContext(ctx, name, cmd.Args...) //nolint:gosec
	c.Dir = cmd.Dir
	out, err := c.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			err = fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return string(out), services.Wrap(services.ErrExternalTool, "", name, "", err)
	}
	return string(out), nil
}

type osProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func (p *osProcess) PID() int {
	return p.cmd.Process.Pid
}

func (p *osProcess) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
	}
	// A child that exited at the same moment still counts as finished.
	select {
	case <-p.done:
		return p.err
	default:
	}
	_ = p.Kill()
	return ErrInterrupted
}

func (p *osProcess) Kill() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	pid := p.cmd.Process.Pid
	err := unix.Kill(-pid, unix.SIGKILL)
	if errors.Is(err, unix.ESRCH) {
		err = nil
	}
	if err != nil {
		// Fall back to the leader alone if the group is gone or not ours.
		if kerr := p.cmd.Process.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
			return fmt.Errorf("kill pid %d: %w", pid, kerr)
		}
	}
	<-p.done
	return nil
}
