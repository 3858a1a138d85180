// Package ingest provides the ingest command.
package ingest

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablesync"
	"github.com/agentstation/tablesync/internal/appcontext"
	"github.com/agentstation/tablesync/internal/cmd/output"
	"github.com/agentstation/tablesync/internal/fsutil"
	"github.com/agentstation/tablesync/internal/report"
	"github.com/agentstation/tablesync/internal/watch"
	pkgingest "github.com/agentstation/tablesync/pkg/ingest"
	"github.com/agentstation/tablesync/pkg/sources"
)

// Flags holds the ingest command flags.
type Flags struct {
	Sources  []string
	Interval time.Duration
	Watch    bool
	Report   string
}

// NewCommand creates the ingest command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "ingest",
		GroupID: "core",
		Short:   "Fetch and ingest new artifacts",
		Long: `Ingest fetches the newest artifact of every configured source, skips
artifacts already recorded in the ledger, maps and normalizes the rest,
and stores the canonical records.

With --interval or --watch the command keeps running until interrupted.`,
		Example: `  tablesync ingest                       # Run every source once
  tablesync ingest --source acme         # Run one source
  tablesync ingest --watch               # Re-run directory sources on new files
  tablesync ingest --interval 1h         # Re-run every hour
  tablesync ingest --report run.md       # Also write a markdown report`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceVarP(&flags.Sources, "source", "s", nil, "source IDs to ingest (default all)")
	cmd.Flags().DurationVar(&flags.Interval, "interval", 0, "keep running and ingest every interval")
	cmd.Flags().BoolVarP(&flags.Watch, "watch", "w", false, "keep running and ingest directory sources when files change")
	cmd.Flags().StringVar(&flags.Report, "report", "", "write a markdown run report to this file (- for stdout)")

	return cmd
}

func run(ctx context.Context, app appcontext.Interface, flags *Flags, w io.Writer) error {
	var (
		client tablesync.Client
		err    error
	)
	if flags.Interval > 0 {
		client, err = app.ClientWithOptions(tablesync.WithAutoIngestInterval(flags.Interval))
	} else {
		client, err = app.Client()
	}
	if err != nil {
		return err
	}

	ids := make([]sources.ID, 0, len(flags.Sources))
	for _, s := range flags.Sources {
		ids = append(ids, sources.ID(s))
	}

	summary, err := client.IngestSources(ctx, ids)
	if err != nil {
		return err
	}
	if err := emit(app, flags, w, summary); err != nil {
		return err
	}

	if flags.Interval <= 0 && !flags.Watch {
		return summary.Err()
	}
	return follow(ctx, app, client, flags, w)
}

// follow keeps ingesting until ctx is cancelled.
func follow(ctx context.Context, app appcontext.Interface, client tablesync.Client, flags *Flags, w io.Writer) error {
	logger := app.Logger()

	client.OnRunCompleted(func(s *pkgingest.Summary) {
		if err := emit(app, flags, w, s); err != nil {
			logger.Error().Err(err).Msg("Failed to print run summary")
		}
	})

	if flags.Interval > 0 {
		if err := client.AutoIngestOn(); err != nil {
			return err
		}
	}

	if !flags.Watch {
		<-ctx.Done()
		return nil
	}

	watcher, err := watch.New(client.Sources(), func(ctx context.Context, ids []sources.ID) {
		if _, err := client.IngestSources(ctx, ids); err != nil {
			logger.Error().Err(err).Msg("Watch-triggered ingest failed")
		}
	})
	if err != nil {
		return err
	}
	logger.Info().Int("dirs", watcher.Dirs()).Msg("Watching source directories")
	return watcher.Run(ctx)
}

func emit(app appcontext.Interface, flags *Flags, w io.Writer, summary *pkgingest.Summary) error {
	if err := printSummary(w, app.OutputFormat(), summary); err != nil {
		return err
	}
	switch flags.Report {
	case "":
		return nil
	case "-":
		return report.Write(w, summary)
	default:
		return fsutil.WriteFileAtomic(flags.Report, []byte(report.String(summary)))
	}
}

func printSummary(w io.Writer, format string, summary *pkgingest.Summary) error {
	if output.DetectFormat(format) != output.FormatTable {
		return output.Write(w, format, summary)
	}

	data := output.Data{
		Headers:      []string{"", "Source", "Status", "Artifact", "Records", "Splits", "Error"},
		RightAligned: []int{4, 5},
	}
	for _, o := range summary.Outcomes {
		data.Rows = append(data.Rows, []string{
			report.Icon(o.Status),
			string(o.Source),
			string(o.Status),
			o.Artifact,
			strconv.Itoa(o.Records),
			strconv.Itoa(o.Splits),
			o.Error,
		})
	}
	if err := output.Write(w, format, data); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%d ingested, %d unchanged, %d failed, %d records stored\n",
		summary.Count(pkgingest.StatusIngested),
		summary.Count(pkgingest.StatusNoNewData),
		summary.Count(pkgingest.StatusError),
		summary.Records())
	return err
}
