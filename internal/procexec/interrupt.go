package procexec

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// DefaultInterruptGrace is how long after a wait finishes on its own that a
// SIGINT is still taken as aimed at that wait.
const DefaultInterruptGrace = 750 * time.Millisecond

// Interrupter routes SIGINT and SIGTERM for the duration of a run.
//
// SIGINT received while a Scope is active cancels only that scope, which
// stops the stage being waited on. A SIGINT arriving within the grace period
// after a scope ended uninterrupted is absorbed: the user aimed at a wait
// that had just finished. Any other SIGINT outside a scope, and SIGTERM at
// any time, cancel the run context returned by NewInterrupter.
type Interrupter struct {
	mu        sync.Mutex
	scope     context.CancelFunc
	scopeGen  uint64
	released  time.Time
	grace     time.Duration
	runCancel context.CancelFunc
	signals   chan os.Signal
	stopOnce  sync.Once
	done      chan struct{}
}

// InterruptOption customizes an Interrupter.
type InterruptOption func(*Interrupter)

// WithGrace sets the window after an uninterrupted scope during which a
// SIGINT is absorbed. Zero disables it.
func WithGrace(d time.Duration) InterruptOption {
	return func(in *Interrupter) {
		if d >= 0 {
			in.grace = d
		}
	}
}

// NewInterrupter starts listening for signals and returns the run context.
// Stop must be called to restore default signal handling.
func NewInterrupter(parent context.Context, opts ...InterruptOption) (*Interrupter, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	in := &Interrupter{
		grace:     DefaultInterruptGrace,
		runCancel: cancel,
		signals:   make(chan os.Signal, 4),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(in)
	}
	signal.Notify(in.signals, os.Interrupt, syscall.SIGTERM)
	go in.loop()
	return in, ctx
}

func (in *Interrupter) loop() {
	for {
		select {
		case sig := <-in.signals:
			in.deliver(sig)
		case <-in.done:
			return
		}
	}
}

func (in *Interrupter) deliver(sig os.Signal) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.scope != nil {
		in.scope()
		in.scope = nil
		in.released = time.Time{}
		if sig == os.Interrupt {
			return
		}
	}
	if sig == os.Interrupt && !in.released.IsZero() && time.Since(in.released) < in.grace {
		// Reset so a second press stops the run.
		in.released = time.Time{}
		return
	}
	in.runCancel()
}

// Scope returns a context that the next SIGINT cancels. release must be
// called once the interruptible section ends.
func (in *Interrupter) Scope(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	if in == nil {
		return ctx, cancel
	}
	in.mu.Lock()
	in.scopeGen++
	gen := in.scopeGen
	in.scope = cancel
	in.released = time.Time{}
	in.mu.Unlock()
	return ctx, func() {
		in.mu.Lock()
		if in.scopeGen == gen && in.scope != nil {
			in.scope = nil
			in.released = time.Now()
		}
		in.mu.Unlock()
		cancel()
	}
}

// Interrupt delivers a synthetic SIGINT, as if the user pressed Ctrl+C.
func (in *Interrupter) Interrupt() {
	in.deliver(os.Interrupt)
}

// Stop restores default signal handling and cancels the run context.
func (in *Interrupter) Stop() {
	in.stopOnce.Do(func() {
		signal.Stop(in.signals)
		close(in.done)
		in.runCancel()
	})
}
