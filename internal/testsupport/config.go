package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"eerecord/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config with a per-test lock directory and settle
// delays shortened so pipeline tests run quickly.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LockDir = filepath.Join(base, "run")
	cfgVal.Effects.SettleMillis = 10
	cfgVal.Effects.PollMillis = 1
	cfgVal.Recorder.SettleMillis = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := os.MkdirAll(cfgVal.Paths.LockDir, 0o755); err != nil {
		t.Fatalf("mkdir lock dir: %v", err)
	}
	return builder.cfg
}

// WithReadiness sets the engine readiness strategy.
func WithReadiness(strategy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Effects.Readiness = strategy
	}
}

// WithDisconnectStrategy sets the mute link selection strategy.
func WithDisconnectStrategy(strategy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Graph.DisconnectStrategy = strategy
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, every external tool eerecord
// drives is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"easyeffects", "pw-link", "pw-record", "ffplay", "ffmpeg", "ps"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}
