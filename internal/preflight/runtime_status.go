package preflight

import (
	"context"
	"fmt"
	"time"
)

// EngineProbe reports whether the effects engine is running.
type EngineProbe interface {
	Running(ctx context.Context) (bool, error)
}

// NodeProbe reports whether an audio graph node is registered.
type NodeProbe interface {
	HasNode(ctx context.Context, node string) (bool, error)
}

// CheckEngine reports the engine's running state. A stopped engine passes,
// since the run launches it on demand.
func CheckEngine(ctx context.Context, probe EngineProbe) Result {
	const name = "Easy Effects"
	if probe == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	running, err := probe.Running(ctx)
	switch {
	case err != nil:
		return Result{Name: name, Detail: fmt.Sprintf("process check failed (%v)", err)}
	case running:
		return Result{Name: name, Passed: true, Detail: "Running (presets cannot be changed by eerecord)"}
	default:
		return Result{Name: name, Passed: true, Detail: "Not running (launched on demand)"}
	}
}

// CheckMonitorNode reports whether node is present in the audio graph.
func CheckMonitorNode(ctx context.Context, probe NodeProbe, node string) Result {
	name := "Monitor node"
	if probe == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	found, err := probe.HasNode(ctx, node)
	switch {
	case err != nil:
		return Result{Name: name, Detail: fmt.Sprintf("pw-link query failed (%v)", err)}
	case found:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s registered", node)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("%s not registered (is Easy Effects running?)", node)}
	}
}
