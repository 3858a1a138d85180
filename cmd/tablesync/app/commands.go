package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/tablesync/cmd/tablesync/cmd/extract"
	"github.com/agentstation/tablesync/cmd/tablesync/cmd/history"
	"github.com/agentstation/tablesync/cmd/tablesync/cmd/ingest"
	"github.com/agentstation/tablesync/cmd/tablesync/cmd/ledger"
	"github.com/agentstation/tablesync/cmd/tablesync/cmd/preview"
	"github.com/agentstation/tablesync/cmd/tablesync/cmd/records"
	"github.com/agentstation/tablesync/cmd/tablesync/cmd/serve"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(ingest.NewCommand(a))
	rootCmd.AddCommand(extract.NewCommand(a))
	rootCmd.AddCommand(preview.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(history.NewCommand(a))
	rootCmd.AddCommand(records.NewCommand(a))
	rootCmd.AddCommand(ledger.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("tablesync %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
