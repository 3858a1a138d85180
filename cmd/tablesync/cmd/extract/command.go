// Package extract provides the extract command.
package extract

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablesync/internal/appcontext"
	"github.com/agentstation/tablesync/internal/cmd/output"
	"github.com/agentstation/tablesync/internal/fsutil"
	"github.com/agentstation/tablesync/internal/workbook"
	"github.com/agentstation/tablesync/pkg/errors"
	pkgextract "github.com/agentstation/tablesync/pkg/extract"
)

// NewCommand creates the extract command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:     "extract [file]",
		GroupID: "core",
		Short:   "Recover a table from free text",
		Long: `Extract reads free text, such as a pasted email, and recovers a table
from it. A header line with known column keywords is used when present;
otherwise lines are parsed as "<product> <quantity> <price>"; as a last
resort every line becomes one row.

Reads from stdin when no file (or -) is given.`,
		Example: `  tablesync extract order.txt
  pbpaste | tablesync extract -o json
  tablesync extract order.txt --export extracted_data.xlsx`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			name := "stdin"
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.WrapIO("open", args[0], err)
				}
				defer f.Close()
				in, name = f, args[0]
			}

			text, err := io.ReadAll(in)
			if err != nil {
				return errors.WrapIO("read", name, err)
			}

			res, err := pkgextract.Extract(string(text))
			if err != nil {
				return err
			}
			app.Logger().Debug().Str("mode", string(res.Mode)).Int("rows", len(res.Records)).Msg("Text extracted")

			if exportPath != "" {
				data, err := workbook.Export(res.Columns, res.Rows())
				if err != nil {
					return err
				}
				if err := fsutil.WriteFileAtomic(exportPath, data); err != nil {
					return err
				}
				app.Logger().Info().Str("path", exportPath).Msg("Extraction exported")
				return nil
			}

			if output.DetectFormat(app.OutputFormat()) != output.FormatTable {
				return output.Write(cmd.OutOrStdout(), app.OutputFormat(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mode: %s\n", res.Mode)
			return output.Write(cmd.OutOrStdout(), app.OutputFormat(), output.Data{
				Headers: res.Columns,
				Rows:    res.Rows(),
			})
		},
	}

	cmd.Flags().StringVar(&exportPath, "export", "", "write the result as an xlsx workbook instead of printing it")
	return cmd
}
