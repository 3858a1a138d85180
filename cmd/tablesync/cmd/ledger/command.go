// Package ledger provides the ledger command for inspecting and resetting
// which artifacts each source has already delivered.
package ledger

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablesync/internal/appcontext"
	"github.com/agentstation/tablesync/internal/cmd/output"
	pkgledger "github.com/agentstation/tablesync/pkg/ledger"
	"github.com/agentstation/tablesync/pkg/sources"
)

// NewCommand creates the ledger command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ledger",
		GroupID: "management",
		Short:   "Inspect or reset the artifact ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newListCommand(app))
	cmd.AddCommand(newResetCommand(app))
	return cmd
}

func newListCommand(app appcontext.Interface) *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "list [source]",
		Short: "List ingested artifacts per source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.Settings().LedgerPath()
			t, err := pkgledger.Open(path)
			if err != nil {
				return err
			}

			ids := t.Sources()
			if len(args) == 1 {
				ids = []sources.ID{sources.ID(args[0])}
			}

			var data output.Data
			if detailed {
				data.Headers = []string{"Source", "#", "Artifact"}
				for _, id := range ids {
					for i, name := range t.Artifacts(id) {
						data.Rows = append(data.Rows, []string{string(id), strconv.Itoa(i + 1), name})
					}
				}
			} else {
				data.Headers = []string{"Source", "Artifacts", "Latest"}
				data.RightAligned = []int{1}
				for _, id := range ids {
					names := t.Artifacts(id)
					latest := ""
					if len(names) > 0 {
						latest = names[len(names)-1]
					}
					data.Rows = append(data.Rows, []string{string(id), strconv.Itoa(len(names)), latest})
				}
			}
			app.Logger().Debug().Str("ledger", path).Int("sources", len(ids)).Msg("Ledger loaded")
			return output.Write(cmd.OutOrStdout(), app.OutputFormat(), data)
		},
	}

	cmd.Flags().BoolVarP(&detailed, "all", "a", false, "list every artifact instead of a per-source count")
	return cmd
}

func newResetCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <source>",
		Short: "Forget every artifact of a source so it is ingested again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := pkgledger.Open(app.Settings().LedgerPath())
			if err != nil {
				return err
			}
			if err := t.Reset(sources.ID(args[0])); err != nil {
				return err
			}
			app.Logger().Info().Str("source", args[0]).Msg("Ledger reset")
			return nil
		},
	}
}
