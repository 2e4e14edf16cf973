package effects_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"eerecord/internal/config"
	"eerecord/internal/effects"
	"eerecord/internal/logging"
	"eerecord/internal/procexec"
	"eerecord/internal/testsupport"
)

type stubWaiter struct {
	ready bool
	nodes []string
}

func (s *stubWaiter) WaitForNode(_ context.Context, node string, _, _ time.Duration) bool {
	s.nodes = append(s.nodes, node)
	return s.ready
}

func psOutput(listing string) func(procexec.Command) (string, error) {
	return func(cmd procexec.Command) (string, error) {
		if cmd.Name == "ps" {
			return listing, nil
		}
		return "", nil
	}
}

func newEngine(t *testing.T, cfg *config.Config, exec procexec.Executor, waiter effects.NodeWaiter, opts ...effects.Option) *effects.Engine {
	t.Helper()
	engine, err := effects.New(cfg, exec, waiter, logging.NewNop(), opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return engine
}

func TestLaunchStartsEngineWhenNotRunning(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	exec := &testsupport.FakeExecutor{OutputFunc: psOutput("systemd\nbash\npipewire\n")}
	waiter := &stubWaiter{ready: true}

	session, err := newEngine(t, cfg, exec, waiter).Launch(context.Background(), "auto")
	if err != nil {
		t.Fatalf("Launch returned error: %v", err)
	}
	if !session.Owned || session.Collision != effects.CollisionNone {
		t.Fatalf("expected owned session without collision, got %+v", session)
	}
	started := exec.StartedNamed("easyeffects")
	if len(started) != 1 || len(started[0].Args) != 0 {
		t.Fatalf("expected plain easyeffects launch, got %+v", started)
	}
	if len(waiter.nodes) != 1 || waiter.nodes[0] != "ee_soe_output_level" {
		t.Fatalf("expected readiness poll on monitor node, got %v", waiter.nodes)
	}
	if !session.Ready {
		t.Fatal("expected session to be ready")
	}
}

func TestLaunchPassesPreset(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	exec := &testsupport.FakeExecutor{}

	session, err := newEngine(t, cfg, exec, &stubWaiter{ready: true}).Launch(context.Background(), "Bass Boost")
	if err != nil {
		t.Fatalf("Launch returned error: %v", err)
	}
	if session.Preset != "Bass Boost" {
		t.Fatalf("unexpected preset %q", session.Preset)
	}
	started := exec.StartedNamed("easyeffects")
	if len(started) != 1 {
		t.Fatalf("expected one launch, got %d", len(started))
	}
	if got := started[0].String(); got != `easyeffects -l "Bass Boost"` {
		t.Fatalf("unexpected launch command %q", got)
	}
}

func TestLaunchSkipsWhenAlreadyRunning(t *testing.T) {
	cases := []struct {
		name      string
		preset    string
		collision effects.Collision
	}{
		{name: "default preset", preset: "auto", collision: effects.CollisionRunning},
		{name: "empty preset", preset: "", collision: effects.CollisionRunning},
		{name: "named preset", preset: "Loudness", collision: effects.CollisionPresetIgnored},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t)
			exec := &testsupport.FakeExecutor{OutputFunc: psOutput("bash\neasyeffects\npipewire\n")}
			waiter := &stubWaiter{}

			session, err := newEngine(t, cfg, exec, waiter).Launch(context.Background(), tc.preset)
			if err != nil {
				t.Fatalf("Launch returned error: %v", err)
			}
			if session.Owned {
				t.Fatal("session must not own an engine it did not start")
			}
			if session.Collision != tc.collision {
				t.Fatalf("collision = %v, want %v", session.Collision, tc.collision)
			}
			if n := len(exec.Started()); n != 0 {
				t.Fatalf("expected no launch command, got %d", n)
			}
			if len(waiter.nodes) != 0 {
				t.Fatal("readiness wait should be skipped for a running engine")
			}
			if err := session.Close(); err != nil {
				t.Fatalf("Close returned error: %v", err)
			}
			for _, event := range exec.Events() {
				if event == "kill easyeffects" {
					t.Fatal("Close killed an engine it did not own")
				}
			}
		})
	}
}

func TestLaunchAssumesNotRunningWhenProcessListFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	exec := &testsupport.FakeExecutor{
		OutputFunc: func(procexec.Command) (string, error) { return "", errors.New("ps missing") },
	}
	session, err := newEngine(t, cfg, exec, &stubWaiter{ready: true}).Launch(context.Background(), "")
	if err != nil {
		t.Fatalf("Launch returned error: %v", err)
	}
	if !session.Owned {
		t.Fatal("expected engine to be launched")
	}
}

func TestLaunchReturnsSpawnError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	exec := &testsupport.FakeExecutor{
		StartFunc: func(procexec.Command) (*testsupport.FakeProcess, error) {
			return nil, errors.New("exec: not found")
		},
	}
	if _, err := newEngine(t, cfg, exec, nil).Launch(context.Background(), ""); err == nil {
		t.Fatal("expected spawn error")
	}
}

func TestSleepReadinessUsesSettleTime(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithReadiness(config.ReadinessSleep))
	cfg.Effects.SettleMillis = 3000
	var slept []time.Duration
	sleep := func(_ context.Context, d time.Duration) { slept = append(slept, d) }
	waiter := &stubWaiter{}

	session, err := newEngine(t, cfg, &testsupport.FakeExecutor{}, waiter, effects.WithSleep(sleep)).Launch(context.Background(), "")
	if err != nil {
		t.Fatalf("Launch returned error: %v", err)
	}
	if len(slept) != 1 || slept[0] != 3*time.Second {
		t.Fatalf("expected a single 3s settle sleep, got %v", slept)
	}
	if len(waiter.nodes) != 0 {
		t.Fatal("sleep readiness must not poll the graph")
	}
	if !session.Ready {
		t.Fatal("sleep readiness reports ready")
	}
}

func TestPollReadinessReportsMissingNode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	session, err := newEngine(t, cfg, &testsupport.FakeExecutor{}, &stubWaiter{ready: false}).Launch(context.Background(), "")
	if err != nil {
		t.Fatalf("Launch returned error: %v", err)
	}
	if session.Ready {
		t.Fatal("expected Ready=false when the monitor node never appeared")
	}
	if !session.Owned {
		t.Fatal("launch should still succeed")
	}
}

func TestCloseKillsOwnedEngineOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	proc := testsupport.BlockingProcess()
	exec := &testsupport.FakeExecutor{
		StartFunc: func(procexec.Command) (*testsupport.FakeProcess, error) { return proc, nil },
	}
	session, err := newEngine(t, cfg, exec, &stubWaiter{ready: true}).Launch(context.Background(), "")
	if err != nil {
		t.Fatalf("Launch returned error: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
	if !proc.Killed() {
		t.Fatal("expected owned engine to be killed")
	}
	kills := 0
	for _, event := range exec.Events() {
		if event == "kill easyeffects" {
			kills++
		}
	}
	if kills != 1 {
		t.Fatalf("expected one kill, got %d", kills)
	}
}

func TestCollisionString(t *testing.T) {
	if effects.CollisionPresetIgnored.String() != "already running, preset ignored" {
		t.Fatalf("unexpected string %q", effects.CollisionPresetIgnored.String())
	}
	if effects.CollisionNone.String() != "none" {
		t.Fatalf("unexpected string %q", effects.CollisionNone.String())
	}
}
