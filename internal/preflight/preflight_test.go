package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"eerecord/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil, t.TempDir()); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_StubbedTools(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	results := RunAll(cfg, t.TempDir())
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}
}

func TestRunAll_ReportsMissingTool(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cfg.Player.Binary = "definitely-not-ffplay"

	failed := Failed(RunAll(cfg, t.TempDir()))
	if len(failed) != 1 || failed[0].Name != "ffplay" {
		t.Fatalf("expected ffplay failure, got %+v", failed)
	}
}

type engineProbe struct {
	running bool
	err     error
}

func (p engineProbe) Running(context.Context) (bool, error) { return p.running, p.err }

type nodeProbe struct {
	found bool
	err   error
}

func (p nodeProbe) HasNode(context.Context, string) (bool, error) { return p.found, p.err }

func TestCheckEngine(t *testing.T) {
	if r := CheckEngine(context.Background(), engineProbe{running: true}); !r.Passed || !strings.HasPrefix(r.Detail, "Running") {
		t.Fatalf("unexpected running result: %+v", r)
	}
	if r := CheckEngine(context.Background(), engineProbe{}); !r.Passed {
		t.Fatalf("stopped engine should pass: %+v", r)
	}
	if r := CheckEngine(context.Background(), engineProbe{err: errors.New("ps failed")}); r.Passed {
		t.Fatalf("probe error should fail: %+v", r)
	}
}

func TestCheckMonitorNode(t *testing.T) {
	if r := CheckMonitorNode(context.Background(), nodeProbe{found: true}, "ee_soe_output_level"); !r.Passed {
		t.Fatalf("expected pass: %+v", r)
	}
	if r := CheckMonitorNode(context.Background(), nodeProbe{}, "ee_soe_output_level"); r.Passed {
		t.Fatalf("expected failure for missing node: %+v", r)
	}
	if r := CheckMonitorNode(context.Background(), nil, "x"); r.Passed {
		t.Fatalf("nil probe should not pass: %+v", r)
	}
}
