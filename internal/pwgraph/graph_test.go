package pwgraph_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"eerecord/internal/logging"
	"eerecord/internal/procexec"
	"eerecord/internal/pwgraph"
	"eerecord/internal/testsupport"
)

func newGraph(t *testing.T, exec procexec.Executor) *pwgraph.Graph {
	t.Helper()
	g, err := pwgraph.New("pw-link", exec, logging.NewNop())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return g
}

func TestNewValidatesArguments(t *testing.T) {
	if _, err := pwgraph.New(" ", &testsupport.FakeExecutor{}, nil); err == nil {
		t.Fatal("expected error for empty binary")
	}
	if _, err := pwgraph.New("pw-link", nil, nil); err == nil {
		t.Fatal("expected error for nil executor")
	}
}

func TestMuteMonitorDisconnectsSpeakerLinks(t *testing.T) {
	exec := &testsupport.FakeExecutor{
		OutputFunc: func(cmd procexec.Command) (string, error) {
			if strings.Join(cmd.Args, " ") == "--id --links" {
				return listing, nil
			}
			return "", nil
		},
	}
	g := newGraph(t, exec)

	ids, err := g.MuteMonitor(context.Background(), monitor, recorder, pwgraph.StrategyEndpoint)
	if err != nil {
		t.Fatalf("MuteMonitor returned error: %v", err)
	}
	if !reflect.DeepEqual(ids, []int{97, 99}) {
		t.Fatalf("unexpected ids: %v", ids)
	}
	disconnects := exec.QueriesContaining("--disconnect")
	if len(disconnects) != 2 {
		t.Fatalf("expected 2 disconnects, got %d", len(disconnects))
	}
	if got := disconnects[0].String(); got != "pw-link --disconnect 97" {
		t.Fatalf("unexpected disconnect command %q", got)
	}
}

func TestMuteMonitorJoinsDisconnectErrors(t *testing.T) {
	boom := errors.New("boom")
	exec := &testsupport.FakeExecutor{
		OutputFunc: func(cmd procexec.Command) (string, error) {
			if cmd.Args[0] == "--disconnect" {
				return "", boom
			}
			return listing, nil
		},
	}
	ids, err := newGraph(t, exec).MuteMonitor(context.Background(), monitor, recorder, pwgraph.StrategyAdjacent)
	if len(ids) != 2 {
		t.Fatalf("expected both links attempted, got %v", ids)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
}

func TestConnectIssuesLinkCommand(t *testing.T) {
	exec := &testsupport.FakeExecutor{}
	if err := newGraph(t, exec).Connect(context.Background(), monitor, recorder); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	queries := exec.Queries()
	if len(queries) != 1 || queries[0].String() != "pw-link ee_soe_output_level pw-record" {
		t.Fatalf("unexpected queries: %v", queries)
	}
}

func TestWaitForNodePollsUntilPresent(t *testing.T) {
	var calls atomic.Int32
	exec := &testsupport.FakeExecutor{
		OutputFunc: func(cmd procexec.Command) (string, error) {
			if cmd.Args[1] == "--output" && calls.Add(1) >= 3 {
				return "  62 ee_soe_output_level:output_FL\n", nil
			}
			return "", nil
		},
	}
	found := newGraph(t, exec).WaitForNode(context.Background(), monitor, 2*time.Second, time.Millisecond)
	if !found {
		t.Fatal("expected node to be found")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 output polls, got %d", calls.Load())
	}
}

func TestWaitForNodeChecksInputPorts(t *testing.T) {
	exec := &testsupport.FakeExecutor{
		OutputFunc: func(cmd procexec.Command) (string, error) {
			if cmd.Args[1] == "--input" {
				return "  80 pw-record:input_FL\n", nil
			}
			return "", nil
		},
	}
	if !newGraph(t, exec).WaitForNode(context.Background(), recorder, time.Second, time.Millisecond) {
		t.Fatal("expected recorder input node to be found")
	}
}

func TestWaitForNodeGivesUpAfterBudget(t *testing.T) {
	exec := &testsupport.FakeExecutor{}
	start := time.Now()
	if newGraph(t, exec).WaitForNode(context.Background(), monitor, 30*time.Millisecond, 5*time.Millisecond) {
		t.Fatal("expected node to be missing")
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("returned before budget elapsed: %s", elapsed)
	}
}

func TestWaitForNodeSleepsOutBudgetOnQueryFailure(t *testing.T) {
	exec := &testsupport.FakeExecutor{
		OutputFunc: func(procexec.Command) (string, error) { return "", errors.New("pw-link missing") },
	}
	start := time.Now()
	if newGraph(t, exec).WaitForNode(context.Background(), monitor, 40*time.Millisecond, time.Millisecond) {
		t.Fatal("expected node to be missing")
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("expected full settle delay, got %s", elapsed)
	}
	if n := len(exec.Queries()); n > 2 {
		t.Fatalf("expected a single failed probe before sleeping, got %d queries", n)
	}
}
