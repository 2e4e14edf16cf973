package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"eerecord/internal/effects"
	"eerecord/internal/procexec"
	"eerecord/internal/pwgraph"
	"eerecord/internal/recording"
	"eerecord/internal/workflow"
)

func runRecord(cmd *cobra.Command, ctx *commandContext, songPath string, flags recordFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger(cmd)
	if err != nil {
		return err
	}
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}

	interrupter, runCtx := procexec.NewInterrupter(cmd.Context())
	defer interrupter.Stop()

	launcher := procexec.NewLauncher(logger)
	graph, err := pwgraph.New(cfg.Graph.Binary, launcher, logger)
	if err != nil {
		return err
	}
	engine, err := effects.New(cfg, launcher, graph, logger)
	if err != nil {
		return err
	}
	pipeline, err := recording.New(cfg, root, launcher, graph, interrupter, logger)
	if err != nil {
		return err
	}
	runner, err := workflow.NewRunner(cfg, root, engine, pipeline, logger)
	if err != nil {
		return err
	}

	summary, runErr := runner.Run(runCtx, workflow.Request{
		SongPath:        songPath,
		InputExtensions: flags.inputExtensions,
		OutputExtension: flags.outputExtension,
		Preset:          flags.preset,
		Silent:          flags.silent,
	})
	if summary != nil && summary.Batch {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, renderSummary(summary, root))
	}
	return runErr
}
