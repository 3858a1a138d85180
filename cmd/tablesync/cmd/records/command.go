// Package records provides the records command.
package records

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablesync/internal/appcontext"
	"github.com/agentstation/tablesync/internal/cmd/output"
	"github.com/agentstation/tablesync/pkg/sources"
)

// NewCommand creates the records command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "records",
		GroupID: "management",
		Short:   "List, delete or clear stored canonical records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newListCommand(app))
	cmd.AddCommand(newDeleteCommand(app))
	cmd.AddCommand(newClearCommand(app))
	return cmd
}

func newListCommand(app appcontext.Interface) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored records grouped by source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			sets, err := client.Store().Records(cmd.Context(), sources.ID(source))
			if err != nil {
				return err
			}

			if output.DetectFormat(app.OutputFormat()) != output.FormatTable {
				return output.Write(cmd.OutOrStdout(), app.OutputFormat(), sets)
			}
			for _, set := range sets {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d records)\n", set.Source, len(set.Records))
				data := output.Data{Headers: append([]string{"ID"}, set.Columns...)}
				for _, rec := range set.Records {
					data.Rows = append(data.Rows, append([]string{rec.ID}, rec.Values...))
				}
				if err := output.Write(cmd.OutOrStdout(), app.OutputFormat(), data); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "only records of this source")
	return cmd
}

func newDeleteCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			if err := client.Store().DeleteRecord(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.Logger().Info().Str("id", args[0]).Msg("Record deleted")
			return nil
		},
	}
}

func newClearCommand(app appcontext.Interface) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every record, or every record of one source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			if err := client.Store().ClearRecords(cmd.Context(), sources.ID(source)); err != nil {
				return err
			}
			app.Logger().Info().Str("source", source).Msg("Records cleared")
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "only clear this source")
	return cmd
}
