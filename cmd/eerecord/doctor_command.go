package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"eerecord/internal/deps"
	"eerecord/internal/effects"
	"eerecord/internal/preflight"
	"eerecord/internal/procexec"
	"eerecord/internal/pwgraph"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and the audio session",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			if ctx.configPath != "" {
				fmt.Fprintf(out, "Config: %s\n\n", ctx.configPath)
			}

			statuses := preflight.CheckSystemDeps(cfg)
			fmt.Fprintln(out, renderDependencies(statuses, colorize))
			fmt.Fprintln(out)

			launcher := procexec.NewLauncher(logger)
			graph, err := pwgraph.New(cfg.Graph.Binary, launcher, logger)
			if err != nil {
				return err
			}
			engine, err := effects.New(cfg, launcher, graph, logger)
			if err != nil {
				return err
			}

			checks := []preflight.Result{
				preflight.CheckDirectoryAccess("Working directory", root),
				preflight.CheckEngine(cmd.Context(), engine),
				preflight.CheckMonitorNode(cmd.Context(), graph, cfg.Graph.MonitorNode),
			}
			if info, err := os.Stat(cfg.OutputDir(root)); err == nil && info.IsDir() {
				checks = append(checks, preflight.CheckDirectoryAccess("Output directory", cfg.OutputDir(root)))
			}
			fmt.Fprintln(out, "Session:")
			for _, check := range checks {
				fmt.Fprintln(out, renderCheckLine(check, colorize))
			}

			missing := deps.Missing(statuses)
			fmt.Fprintln(out)
			if len(missing) == 0 {
				fmt.Fprintln(out, "All required tools found")
			} else {
				fmt.Fprintf(out, "%d required tool(s) missing\n", len(missing))
			}
			return nil
		},
	}
}
