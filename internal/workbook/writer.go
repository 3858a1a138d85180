package workbook

import (
	"context"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/tablesync/internal/fsutil"
	"github.com/agentstation/tablesync/pkg/cell"
	"github.com/agentstation/tablesync/pkg/constants"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/ingest"
	"github.com/agentstation/tablesync/pkg/logging"
	"github.com/agentstation/tablesync/pkg/normalize"
	"github.com/agentstation/tablesync/pkg/sources"
)

// Sheet names used in written workbooks.
const (
	ProcessedSheet = "Standardized Data"
	ExportSheet    = "Extracted Data"
)

var _ ingest.ArtifactWriter = (*Writer)(nil)

// Writer writes one canonical workbook per source into Dir.
type Writer struct {
	Dir string
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// ProcessedName is the file name written for a source.
func ProcessedName(source sources.ID) string {
	return constants.ProcessedPrefix + string(source) + ".xlsx"
}

// WriteProcessed implements ingest.ArtifactWriter. An existing file for the
// source is replaced.
func (w *Writer) WriteProcessed(ctx context.Context, source sources.ID, columns []string, records []normalize.Record) (string, error) {
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, recordRow(rec))
	}
	data, err := build(ProcessedSheet, columns, rows)
	if err != nil {
		return "", errors.WrapResource("build", "workbook", string(source), err)
	}

	name := ProcessedName(source)
	path := filepath.Join(w.Dir, name)
	if err := fsutil.WriteFileAtomic(path, data); err != nil {
		return "", err
	}
	logging.FromContext(ctx).Debug().Str("path", path).Int("records", len(records)).Msg("Processed workbook written")
	return name, nil
}

// Export renders an ad-hoc table, such as an extraction result, as xlsx bytes.
func Export(columns []string, rows [][]string) ([]byte, error) {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		row := make([]any, len(r))
		for i, v := range r {
			row[i] = v
		}
		out = append(out, row)
	}
	return build(ExportSheet, columns, out)
}

// recordRow converts values into types excelize stores natively.
func recordRow(rec normalize.Record) []any {
	row := make([]any, len(rec))
	for i, v := range rec {
		switch v.Kind {
		case cell.KindDate:
			row[i] = v.Time
		case cell.KindEmpty:
			row[i] = nil
		default:
			row[i] = v.String()
		}
	}
	return row
}

func build(sheet string, columns []string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, err
	}
	// mm-dd-yy, read back as a date by the reader
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return nil, err
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, err
	}
	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		for j, v := range row {
			if t, ok := v.(time.Time); ok {
				row[j] = excelize.Cell{StyleID: dateStyle, Value: t}
			}
		}
		if err := sw.SetRow(ref, row); err != nil {
			return nil, err
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
