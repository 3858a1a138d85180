// Package report renders an ingestion run as a markdown document.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/tablesync/internal/cmd/emoji"
	"github.com/agentstation/tablesync/pkg/ingest"
)

// Icon returns the short status marker used in summaries.
func Icon(s ingest.Status) string {
	switch s {
	case ingest.StatusIngested:
		return emoji.Success
	case ingest.StatusNoNewData:
		return emoji.Idle
	default:
		return emoji.Error
	}
}

// Write renders summary to w.
func Write(w io.Writer, summary *ingest.Summary) error {
	doc := md.NewMarkdown(w)

	doc.H1("Ingestion Run").
		PlainText(fmt.Sprintf("Run %s started %s, took %s.",
			md.Code(summary.RunID),
			summary.StartedAt.UTC().Format(time.RFC3339),
			summary.Duration.Round(time.Millisecond))).LF()

	counts := make([]string, 0, len(ingest.Statuses()))
	for _, s := range ingest.Statuses() {
		counts = append(counts, fmt.Sprintf("%s %s: %d", Icon(s), s, summary.Count(s)))
	}
	counts = append(counts, fmt.Sprintf("records stored: %d", summary.Records()))
	doc.H2("Summary").BulletList(counts...).LF()

	rows := make([][]string, 0, len(summary.Outcomes))
	for _, o := range summary.Outcomes {
		rows = append(rows, []string{
			Icon(o.Status),
			string(o.Source),
			string(o.Status),
			dash(o.Artifact),
			fmt.Sprintf("%d", o.Records),
			fmt.Sprintf("%d", o.Splits),
			dash(o.Error),
		})
	}
	doc.H2("Sources").Table(md.TableSet{
		Header: []string{"", "Source", "Status", "Artifact", "Records", "Splits", "Error"},
		Rows:   rows,
	}).LF()

	var drift []string
	for _, o := range summary.Outcomes {
		if len(o.Drift) > 0 {
			drift = append(drift, fmt.Sprintf("%s: missing %s", o.Source, strings.Join(o.Drift, ", ")))
		}
	}
	if len(drift) > 0 {
		doc.H2("Schema Drift").BulletList(drift...).LF()
	}

	return doc.Build()
}

// String renders summary and returns the document.
func String(summary *ingest.Summary) string {
	var b strings.Builder
	_ = Write(&b, summary)
	return b.String()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
