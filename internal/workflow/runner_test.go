package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"eerecord/internal/config"
	"eerecord/internal/effects"
	"eerecord/internal/logging"
	"eerecord/internal/procexec"
	"eerecord/internal/pwgraph"
	"eerecord/internal/recording"
	"eerecord/internal/runlock"
	"eerecord/internal/services"
	"eerecord/internal/testsupport"
	"eerecord/internal/workflow"
)

type harness struct {
	cfg         *config.Config
	root        string
	exec        *testsupport.FakeExecutor
	runner      *workflow.Runner
	interrupter *procexec.Interrupter
	runCtx      context.Context
}

type harnessOptions struct {
	engineRunning bool
	start         func(procexec.Command) (*testsupport.FakeProcess, error)
}

func newHarness(t *testing.T, opts harnessOptions) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	root := t.TempDir()

	psListing := "bash\npipewire\n"
	if opts.engineRunning {
		psListing += "easyeffects\n"
	}
	exec := &testsupport.FakeExecutor{
		OutputFunc: func(cmd procexec.Command) (string, error) {
			if cmd.Name == "ps" {
				return psListing, nil
			}
			switch strings.Join(cmd.Args, " ") {
			case "--id --output":
				return "  62 ee_soe_output_level:output_FL\n", nil
			case "--id --input":
				return "  80 pw-record:input_FL\n", nil
			}
			return "", nil
		},
		StartFunc: func(cmd procexec.Command) (*testsupport.FakeProcess, error) {
			if opts.start != nil {
				if proc, err := opts.start(cmd); proc != nil || err != nil {
					return proc, err
				}
			}
			if cmd.Name == "ffmpeg" {
				// Simulate the encoder writing its output file.
				out := cmd.Args[len(cmd.Args)-1]
				if err := os.WriteFile(out, []byte("encoded"), 0o644); err != nil {
					return nil, err
				}
			}
			if cmd.Name == "easyeffects" {
				return testsupport.BlockingProcess(), nil
			}
			return nil, nil
		},
	}

	interrupter, runCtx := procexec.NewInterrupter(context.Background())
	t.Cleanup(interrupter.Stop)

	logger := logging.NewNop()
	graph, err := pwgraph.New(cfg.Graph.Binary, exec, logger)
	if err != nil {
		t.Fatalf("pwgraph.New: %v", err)
	}
	engine, err := effects.New(cfg, exec, graph, logger)
	if err != nil {
		t.Fatalf("effects.New: %v", err)
	}
	pipeline, err := recording.New(cfg, root, exec, graph, interrupter, logger)
	if err != nil {
		t.Fatalf("recording.New: %v", err)
	}
	runner, err := workflow.NewRunner(cfg, root, engine, pipeline, logger,
		workflow.WithRunID("test-run"), workflow.WithoutPreflight())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return &harness{cfg: cfg, root: root, exec: exec, runner: runner, interrupter: interrupter, runCtx: runCtx}
}

func countEvent(events []string, event string) int {
	n := 0
	for _, e := range events {
		if e == event {
			n++
		}
	}
	return n
}

func TestBatchWithNoSongsLaunchesNothing(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	testsupport.WriteTree(t, h.root, "notes.txt", "output/old.mp3")

	summary, err := h.runner.Run(h.runCtx, workflow.Request{})
	if !errors.Is(err, workflow.ErrNoSongs) {
		t.Fatalf("expected ErrNoSongs, got %v", err)
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found marker, got %v", err)
	}
	if summary != nil {
		t.Fatalf("expected no summary, got %+v", summary)
	}
	if n := len(h.exec.Started()); n != 0 {
		t.Fatalf("expected no process launches, got %d", n)
	}
}

func TestInvalidSongPathLaunchesNothing(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	_, err := h.runner.Run(h.runCtx, workflow.Request{SongPath: filepath.Join(h.root, "missing.mp3")})
	if !errors.Is(err, workflow.ErrInvalidSong) || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected invalid song validation error, got %v", err)
	}
	if n := len(h.exec.Started()); n != 0 {
		t.Fatalf("expected no process launches, got %d", n)
	}
	if _, err := os.Stat(h.cfg.OutputDir(h.root)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("output directory should not be created, stat err = %v", err)
	}
}

func TestSingleSongEncodesOnce(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	song := testsupport.WriteTree(t, h.root, "album/Track 01.flac")[0]

	summary, err := h.runner.Run(h.runCtx, workflow.Request{SongPath: song, OutputExtension: "mp3"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if n := len(h.exec.StartedNamed("ffmpeg")); n != 1 {
		t.Fatalf("expected exactly one encode, got %d", n)
	}
	want := filepath.Join(h.root, "output", "Track 01.mp3")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected output file %s: %v", want, err)
	}
	entries, err := os.ReadDir(filepath.Join(h.root, "output"))
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one output file, got %d", len(entries))
	}
	if summary.Batch || len(summary.Results) != 1 || summary.RunID != "test-run" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if !summary.EngineOwned {
		t.Fatal("expected engine to be owned when it was not running")
	}
	if got := countEvent(h.exec.Events(), "kill easyeffects"); got != 1 {
		t.Fatalf("expected owned engine to be stopped once, got %d", got)
	}
}

func TestRunningEngineIsNeverLaunchedOrStopped(t *testing.T) {
	for _, batch := range []bool{false, true} {
		h := newHarness(t, harnessOptions{engineRunning: true})
		paths := testsupport.WriteTree(t, h.root, "a.mp3", "b.m4a")
		req := workflow.Request{Preset: "Loudness"}
		if !batch {
			req.SongPath = paths[0]
		}

		summary, err := h.runner.Run(h.runCtx, req)
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		events := h.exec.Events()
		if n := countEvent(events, "start easyeffects"); n != 0 {
			t.Fatalf("batch=%v: expected no engine launch, got %d", batch, n)
		}
		if n := countEvent(events, "kill easyeffects"); n != 0 {
			t.Fatalf("batch=%v: running engine was terminated", batch)
		}
		if summary.EngineOwned || summary.Collision != effects.CollisionPresetIgnored {
			t.Fatalf("batch=%v: unexpected engine state: %+v", batch, summary)
		}
	}
}

func TestBatchRecordsInDiscoveryOrderAndLaunchesEngineOnce(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	testsupport.WriteTree(t, h.root, "b.mp3", "a.m4a", "sub/c.mp3", "output/a.mp3", "cover.jpg")

	summary, err := h.runner.Run(h.runCtx, workflow.Request{InputExtensions: []string{"mp3,m4a"}, OutputExtension: "ogg"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	var played []string
	for _, cmd := range h.exec.StartedNamed("ffplay") {
		played = append(played, filepath.Base(cmd.Args[len(cmd.Args)-1]))
	}
	if want := []string{"a.m4a", "b.mp3", "c.mp3"}; !slices.Equal(played, want) {
		t.Fatalf("played %v, want %v", played, want)
	}
	if n := len(h.exec.StartedNamed("easyeffects")); n != 1 {
		t.Fatalf("expected one engine launch, got %d", n)
	}
	if summary.Encoded() != 3 || !summary.Batch {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	for _, name := range []string{"a.ogg", "b.ogg", "c.ogg"} {
		if _, err := os.Stat(filepath.Join(h.root, "output", name)); err != nil {
			t.Fatalf("missing output %s: %v", name, err)
		}
	}
	events := h.exec.Events()
	if last := events[len(events)-1]; last != "kill easyeffects" {
		t.Fatalf("expected engine stop after the batch, last event %q", last)
	}
}

func TestInterruptedSongStillEncodesAndBatchContinues(t *testing.T) {
	var h *harness
	plays := 0
	h = newHarness(t, harnessOptions{
		start: func(cmd procexec.Command) (*testsupport.FakeProcess, error) {
			if cmd.Name != "ffplay" {
				return nil, nil
			}
			plays++
			if plays != 1 {
				return nil, nil
			}
			proc := testsupport.BlockingProcess()
			proc.OnWait = h.interrupter.Interrupt
			return proc, nil
		},
	})
	testsupport.WriteTree(t, h.root, "1.mp3", "2.mp3")

	summary, err := h.runner.Run(h.runCtx, workflow.Request{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(summary.Results) != 2 {
		t.Fatalf("expected both songs attempted, got %d", len(summary.Results))
	}
	first, second := summary.Results[0], summary.Results[1]
	if !first.PlaybackInterrupted || !first.Encoded {
		t.Fatalf("song 1 should be interrupted and still encoded: %+v", first)
	}
	if second.PlaybackInterrupted || !second.Encoded {
		t.Fatalf("song 2 should record normally: %+v", second)
	}
	if summary.Interrupted() != 1 || summary.Cancelled {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestCancelledRunStopsBeforeNextSong(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := newHarness(t, harnessOptions{
		start: func(cmd procexec.Command) (*testsupport.FakeProcess, error) {
			if cmd.Name == "ffplay" {
				proc := testsupport.BlockingProcess()
				proc.OnWait = cancel
				return proc, nil
			}
			return nil, nil
		},
	})
	testsupport.WriteTree(t, h.root, "1.mp3", "2.mp3", "3.mp3")

	summary, err := h.runner.Run(ctx, workflow.Request{})
	if !errors.Is(err, services.ErrInterrupted) {
		t.Fatalf("expected interrupted error, got %v", err)
	}
	if n := len(h.exec.StartedNamed("ffplay")); n != 1 {
		t.Fatalf("expected only the first song to start, got %d", n)
	}
	if summary == nil || !summary.Cancelled || summary.Skipped != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if got := countEvent(h.exec.Events(), "kill easyeffects"); got != 1 {
		t.Fatalf("expected owned engine stopped on cancellation, got %d", got)
	}
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	testsupport.WriteTree(t, h.root, "a.mp3")

	held, err := runlock.Acquire(h.cfg.LockPath())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer held.Release()

	if _, err := h.runner.Run(h.runCtx, workflow.Request{}); !errors.Is(err, services.ErrBusy) {
		t.Fatalf("expected busy error, got %v", err)
	}
	if n := len(h.exec.Started()); n != 0 {
		t.Fatalf("expected no launches while locked, got %d", n)
	}
}

func TestSilentModeMutesEverySong(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	testsupport.WriteTree(t, h.root, "a.mp3", "b.mp3")

	if _, err := h.runner.Run(h.runCtx, workflow.Request{Silent: true}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if n := len(h.exec.QueriesContaining("--id --links")); n != 2 {
		t.Fatalf("expected a link listing per song, got %d", n)
	}
}
