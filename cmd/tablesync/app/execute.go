package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/logging"
)

// Execute runs the tablesync CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	if a.out != nil {
		rootCmd.SetOut(a.out)
	}
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tablesync",
		Short:   "Consolidate tabular exports from many sources",
		Version: a.version,
		Long: `tablesync collects periodic spreadsheet exports from independent
sources, maps each source's headers onto one canonical template, splits
composite rows and stores the result.

Each artifact is ingested once: a ledger remembers which files every
source has already delivered.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "management", Title: "Management Commands:"})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.config.ConfigFile, "config", "", "config file (default is ./tablesync.yaml or ~/.tablesync/tablesync.yaml)")
	flags.BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	flags.StringVarP(&a.config.Format, "format", "o", "", "output format: table, json, yaml")
	flags.StringVar(&a.config.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("tablesync {{.Version}}\n")

	a.registerCommands(rootCmd)
	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")
	configFile := mustGetString(cmd, "config")

	if configFile != "" {
		reloaded, err := LoadConfig(configFile)
		if err != nil {
			return err
		}
		a.config.Library = reloaded.Library
		a.config.ConfigFile = reloaded.ConfigFile
	}

	a.config.UpdateFromFlags(verbose, quiet, noColor, format, logLevel)

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)

	if a.config.ConfigFile != "" {
		logger.Debug().Str("config", a.config.ConfigFile).Msg("Using config file")
	}
	return nil
}

// ExitOnError prints an error and exits with the status exitCode picks.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for invalid input, 130 for an interrupted run and 1 otherwise.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsValidationError(err):
		return 2
	case errors.IsCanceled(err):
		return 130
	default:
		return 1
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
