// Package history provides the history command.
package history

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablesync/internal/appcontext"
	"github.com/agentstation/tablesync/internal/cmd/output"
	"github.com/agentstation/tablesync/pkg/ingest"
	"github.com/agentstation/tablesync/pkg/sources"
)

// NewCommand creates the history command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		GroupID: "management",
		Short:   "List or delete ingestion history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newListCommand(app))
	cmd.AddCommand(newDeleteCommand(app))
	return cmd
}

func newListCommand(app appcontext.Interface) *cobra.Command {
	var filter struct {
		source string
		limit  int
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List history entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			entries, err := client.Store().History(cmd.Context(), ingest.HistoryFilter{
				Source: sources.ID(filter.source),
				Limit:  filter.limit,
			})
			if err != nil {
				return err
			}

			if output.DetectFormat(app.OutputFormat()) != output.FormatTable {
				return output.Write(cmd.OutOrStdout(), app.OutputFormat(), entries)
			}
			data := output.Data{
				Headers:      []string{"ID", "Source", "Artifact", "Records", "Status", "Time"},
				RightAligned: []int{3},
			}
			for _, e := range entries {
				data.Rows = append(data.Rows, []string{
					e.ID,
					string(e.Source),
					e.Artifact,
					strconv.Itoa(e.RecordCount),
					e.Status,
					e.Timestamp.Time.Local().Format(time.DateTime),
				})
			}
			return output.Write(cmd.OutOrStdout(), app.OutputFormat(), data)
		},
	}

	cmd.Flags().StringVarP(&filter.source, "source", "s", "", "only entries of this source")
	cmd.Flags().IntVarP(&filter.limit, "limit", "n", 50, "maximum entries (0 for all)")
	return cmd
}

func newDeleteCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			if err := client.Store().DeleteHistory(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.Logger().Info().Str("id", args[0]).Msg("History entry deleted")
			return nil
		},
	}
}
