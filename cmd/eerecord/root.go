package main

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

type recordFlags struct {
	inputExtensions []string
	outputExtension string
	preset          string
	silent          bool
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var logFormatFlag string
	var flags recordFlags

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag)

	rootCmd := &cobra.Command{
		Use:   "eerecord [song_path]",
		Short: "Re-record songs through Easy Effects",
		Long: `Automated player and recorder for re-recording one or many songs with the
effects currently applied by Easy Effects.

If song_path is omitted, eerecord scans the current directory recursively,
keeps files ending in one of the input extensions, and skips the "output"
directory. Encoded files are written to ./output.

A song file named like a subcommand (version, doctor, config, help,
completion) runs that subcommand instead; pass it with a path prefix,
for example "eerecord ./doctor".`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			songPath := ""
			if len(args) == 1 {
				songPath = args[0]
			}
			return runRecord(cmd, ctx, songPath, flags)
		},
	}
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format override (console, json)")

	f := rootCmd.Flags()
	f.StringSliceVarP(&flags.inputExtensions, "input-extensions", "i", nil, "Input extensions to scan for in directories, repeatable or comma separated (default: mp3, m4a)")
	f.StringVarP(&flags.outputExtension, "output-extension", "o", "", "Output file extension (default: mp3)")
	f.StringVarP(&flags.preset, "preset", "p", "", "Easy Effects preset (default: auto)")
	f.BoolVarP(&flags.silent, "slent", "s", false, "Disconnect Easy Effects from the speakers while still recording")
	f.BoolVar(&flags.silent, "silent", false, "Alias for --slent")

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
