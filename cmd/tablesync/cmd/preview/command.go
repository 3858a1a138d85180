// Package preview provides the preview command.
package preview

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablesync/internal/appcontext"
	"github.com/agentstation/tablesync/internal/cmd/output"
	"github.com/agentstation/tablesync/internal/workbook"
	"github.com/agentstation/tablesync/pkg/cell"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/normalize"
	"github.com/agentstation/tablesync/pkg/schema"
	"github.com/agentstation/tablesync/pkg/sources"
)

// NewCommand creates the preview command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		sourceID string
		limit    int
	)

	cmd := &cobra.Command{
		Use:     "preview <file>",
		GroupID: "core",
		Short:   "Show a spreadsheet as read, or as it would be ingested",
		Long: `Preview decodes an .xlsx or .csv file and prints its rows with resolved
cell values. With --source the file is mapped and normalized using that
source's declaration, showing the canonical records an ingest would store
without touching the ledger or the store.`,
		Example: `  tablesync preview export.xlsx
  tablesync preview export.xlsx --source acme`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			table, err := workbook.ReadFile(ctx, args[0])
			if err != nil {
				return err
			}

			var data output.Data
			if sourceID == "" {
				data = raw(table.Headers, table.Rows)
			} else {
				data, err = canonical(ctx, app, sources.ID(sourceID), table.Headers, table.Rows)
				if err != nil {
					return err
				}
			}

			if limit > 0 && len(data.Rows) > limit {
				data.Rows = data.Rows[:limit]
			}
			return output.Write(cmd.OutOrStdout(), app.OutputFormat(), data)
		},
	}

	cmd.Flags().StringVarP(&sourceID, "source", "s", "", "map and normalize with this source's declaration")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum rows to show (0 for all)")
	return cmd
}

func raw(headers []string, rows [][]any) output.Data {
	data := output.Data{Headers: headers}
	for _, r := range rows {
		values := make([]cell.Value, len(headers))
		for i := range headers {
			if i < len(r) {
				values[i] = cell.Resolve(r[i])
			}
		}
		data.Rows = append(data.Rows, cell.Strings(values))
	}
	return data
}

func canonical(ctx context.Context, app appcontext.Interface, id sources.ID, headers []string, rows [][]any) (output.Data, error) {
	settings := app.Settings()
	var src *sources.Source
	for i := range settings.Sources {
		if settings.Sources[i].ID == id {
			src = &settings.Sources[i]
		}
	}
	if src == nil {
		return output.Data{}, errors.NewNotFoundError("source", string(id))
	}

	tpl, err := settings.Template.Load(ctx)
	if err != nil {
		return output.Data{}, err
	}
	mapper, err := schema.NewMapper(headers, src.FieldMapping())
	if err != nil {
		return output.Data{}, err
	}
	if drift := mapper.DriftWith(src.Headers); len(drift) > 0 {
		app.Logger().Warn().Strs("missing", drift).Msg("Expected headers not found in file")
	}

	projected := make([]schema.Row, 0, len(rows))
	for _, r := range rows {
		projected = append(projected, mapper.Project(r))
	}
	res := normalize.New(tpl, src.Owner(), normalize.WithSeparator(settings.Separator)).Normalize(ctx, projected)

	data := output.Data{Headers: tpl.Columns()}
	for _, rec := range res.Records {
		data.Rows = append(data.Rows, rec.Strings())
	}
	return data, nil
}
