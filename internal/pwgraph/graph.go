package pwgraph

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"eerecord/internal/logging"
	"eerecord/internal/procexec"
)

// Graph runs pw-link to inspect and edit links.
type Graph struct {
	binary string
	exec   procexec.Executor
	logger *slog.Logger
}

// New constructs a Graph using binary (normally "pw-link").
func New(binary string, exec procexec.Executor, logger *slog.Logger) (*Graph, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("pw-link binary required")
	}
	if exec == nil {
		return nil, errors.New("executor required")
	}
	return &Graph{binary: binary, exec: exec, logger: logging.NewComponentLogger(logger, "pwgraph")}, nil
}

// Listing returns the raw `pw-link --id --links` output.
func (g *Graph) Listing(ctx context.Context) (string, error) {
	return g.exec.Output(ctx, procexec.Command{Name: g.binary, Args: []string{"--id", "--links"}})
}

// Links lists and parses the current links.
func (g *Graph) Links(ctx context.Context) ([]Link, error) {
	listing, err := g.Listing(ctx)
	if err != nil {
		return nil, err
	}
	return ParseLinks(listing), nil
}

// Outputs lists output port names.
func (g *Graph) Outputs(ctx context.Context) ([]string, error) {
	out, err := g.exec.Output(ctx, procexec.Command{Name: g.binary, Args: []string{"--id", "--output"}})
	if err != nil {
		return nil, err
	}
	return ParsePorts(out), nil
}

// Inputs lists input port names.
func (g *Graph) Inputs(ctx context.Context) ([]string, error) {
	out, err := g.exec.Output(ctx, procexec.Command{Name: g.binary, Args: []string{"--id", "--input"}})
	if err != nil {
		return nil, err
	}
	return ParsePorts(out), nil
}

// HasNode reports whether any input or output port belongs to node.
func (g *Graph) HasNode(ctx context.Context, node string) (bool, error) {
	outputs, err := g.Outputs(ctx)
	if err != nil {
		return false, err
	}
	for _, port := range outputs {
		if BelongsTo(port, node) {
			return true, nil
		}
	}
	inputs, err := g.Inputs(ctx)
	if err != nil {
		return false, err
	}
	for _, port := range inputs {
		if BelongsTo(port, node) {
			return true, nil
		}
	}
	return false, nil
}

// WaitForNode polls until node appears or budget elapses. It returns true
// when the node was seen. A failing query falls back to sleeping out the
// remaining budget, matching a fixed settle delay.
func (g *Graph) WaitForNode(ctx context.Context, node string, budget, interval time.Duration) bool {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	deadline := time.Now().Add(budget)
	for {
		found, err := g.HasNode(ctx, node)
		if err == nil && found {
			return true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		wait := interval
		if err != nil {
			g.logger.Debug("node query failed; sleeping out settle time", logging.Error(err))
			wait = remaining
		} else if wait > remaining {
			wait = remaining
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}

// Connect links output to input. The command is not checked for success.
func (g *Graph) Connect(ctx context.Context, output, input string) error {
	return g.run(ctx, procexec.Command{Name: g.binary, Args: []string{output, input}})
}

// Disconnect removes a link by ID.
func (g *Graph) Disconnect(ctx context.Context, id int) error {
	return g.run(ctx, procexec.Command{Name: g.binary, Args: []string{"--disconnect", strconv.Itoa(id)}})
}

// MuteMonitor disconnects every link from monitor that does not end at
// recorder and returns the IDs it disconnected.
func (g *Graph) MuteMonitor(ctx context.Context, monitor, recorder string, strategy Strategy) ([]int, error) {
	listing, err := g.Listing(ctx)
	if err != nil {
		return nil, err
	}
	ids := SpeakerLinks(listing, monitor, recorder, strategy)
	g.logger.Debug("speaker links selected",
		logging.String("strategy", string(strategy)),
		logging.Any("link_ids", ids),
		logging.String("link_listing", listing),
	)
	var errs []error
	for _, id := range ids {
		if err := g.Disconnect(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return ids, errors.Join(errs...)
}

// run executes a short pw-link edit; only a spawn failure is reported.
func (g *Graph) run(ctx context.Context, cmd procexec.Command) error {
	_, err := g.exec.Output(ctx, cmd)
	if err != nil {
		g.logger.Debug("pw-link command failed", logging.String("command", cmd.String()), logging.Error(err))
	}
	return err
}
