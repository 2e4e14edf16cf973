package testsupport

import (
	"context"
	"strings"
	"sync"

	"eerecord/internal/procexec"
)

// FakeExecutor records every command and returns scripted results.
type FakeExecutor struct {
	mu     sync.Mutex
	events []string

	// OutputFunc answers query commands. Nil returns empty output.
	OutputFunc func(cmd procexec.Command) (string, error)
	// StartFunc decides how a started command behaves. Nil returns a process
	// that exits immediately.
	StartFunc func(cmd procexec.Command) (*FakeProcess, error)
	started   []procexec.Command
	queries   []procexec.Command
}

var _ procexec.Executor = (*FakeExecutor)(nil)

// Start records the command and returns the scripted process.
func (f *FakeExecutor) Start(_ context.Context, cmd procexec.Command) (procexec.Process, error) {
	f.mu.Lock()
	f.started = append(f.started, cmd)
	f.events = append(f.events, "start "+cmd.Name)
	fn := f.StartFunc
	f.mu.Unlock()

	var (
		proc *FakeProcess
		err  error
	)
	if fn != nil {
		proc, err = fn(cmd)
	}
	if err != nil {
		return nil, err
	}
	if proc == nil {
		proc = ExitedProcess()
	}
	proc.attach(f, cmd.Name)
	return proc, nil
}

// Output records the query and returns the scripted output.
func (f *FakeExecutor) Output(_ context.Context, cmd procexec.Command) (string, error) {
	f.mu.Lock()
	f.queries = append(f.queries, cmd)
	f.events = append(f.events, "query "+cmd.String())
	fn := f.OutputFunc
	f.mu.Unlock()
	if fn == nil {
		return "", nil
	}
	return fn(cmd)
}

func (f *FakeExecutor) record(event string) {
	f.mu.Lock()
	f.events = append(f.events, event)
	f.mu.Unlock()
}

// Events returns the ordered log of starts, queries, waits, and kills.
func (f *FakeExecutor) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

// Started returns every started command.
func (f *FakeExecutor) Started() []procexec.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]procexec.Command(nil), f.started...)
}

// StartedNamed returns started commands whose binary is name.
func (f *FakeExecutor) StartedNamed(name string) []procexec.Command {
	var out []procexec.Command
	for _, cmd := range f.Started() {
		if cmd.Name == name {
			out = append(out, cmd)
		}
	}
	return out
}

// Queries returns every query command.
func (f *FakeExecutor) Queries() []procexec.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]procexec.Command(nil), f.queries...)
}

// QueriesContaining returns queries whose rendered form contains substr.
func (f *FakeExecutor) QueriesContaining(substr string) []procexec.Command {
	var out []procexec.Command
	for _, cmd := range f.Queries() {
		if strings.Contains(cmd.String(), substr) {
			out = append(out, cmd)
		}
	}
	return out
}

// FakeProcess is a scripted process handle.
type FakeProcess struct {
	mu       sync.Mutex
	owner    *FakeExecutor
	name     string
	exited   chan struct{}
	exitOnce sync.Once
	killed   bool
	waitErr  error
	// OnWait, when set, runs at the start of Wait (before blocking).
	OnWait func()
	// OnKill, when set, runs at the start of Kill.
	OnKill func()
}

// ExitedProcess returns a process that has already exited successfully.
func ExitedProcess() *FakeProcess {
	p := BlockingProcess()
	p.Exit(nil)
	return p
}

// BlockingProcess returns a process that runs until Exit, Kill, or an
// interrupted Wait.
func BlockingProcess() *FakeProcess {
	return &FakeProcess{exited: make(chan struct{})}
}

func (p *FakeProcess) attach(owner *FakeExecutor, name string) {
	p.mu.Lock()
	p.owner = owner
	p.name = name
	p.mu.Unlock()
}

// Exit ends the process with err as its exit result.
func (p *FakeProcess) Exit(err error) {
	p.exitOnce.Do(func() {
		p.mu.Lock()
		p.waitErr = err
		p.mu.Unlock()
		close(p.exited)
	})
}

// Wait blocks like procexec.Process.Wait.
func (p *FakeProcess) Wait(ctx context.Context) error {
	p.event("wait")
	if p.OnWait != nil {
		p.OnWait()
	}
	select {
	case <-p.exited:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.waitErr
	case <-ctx.Done():
		_ = p.Kill()
		return procexec.ErrInterrupted
	}
}

// Kill terminates the process.
func (p *FakeProcess) Kill() error {
	p.event("kill")
	if p.OnKill != nil {
		p.OnKill()
	}
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()
	p.Exit(nil)
	return nil
}

// Killed reports whether Kill was called.
func (p *FakeProcess) Killed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

// PID returns a fixed fake pid.
func (p *FakeProcess) PID() int { return 4242 }

func (p *FakeProcess) event(kind string) {
	p.mu.Lock()
	owner, name := p.owner, p.name
	p.mu.Unlock()
	if owner != nil {
		owner.record(kind + " " + name)
	}
}
