// Package workbook reads and writes the spreadsheet artifacts exchanged with
// sources: xlsx workbooks through excelize and plain CSV exports.
package workbook

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/tablesync/pkg/cell"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/ingest"
	"github.com/agentstation/tablesync/pkg/logging"
	"github.com/agentstation/tablesync/pkg/sources"
)

var _ ingest.Reader = (*Reader)(nil)

// Reader decodes xlsx and csv artifacts. Only the first sheet of a workbook is read.
type Reader struct{}

// NewReader returns a Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read implements ingest.Reader.
func (r *Reader) Read(ctx context.Context, a *sources.Artifact) (*ingest.Table, error) {
	var (
		rows [][]any
		err  error
	)
	format := formatOf(a.Name)
	switch format {
	case "xlsx":
		rows, err = readXLSX(bytes.NewReader(a.Data))
	case "csv":
		rows, err = readCSV(bytes.NewReader(a.Data))
	default:
		return nil, errors.NewParseError(filepath.Ext(a.Name), a.Name, "unsupported artifact format", errors.ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, errors.WrapParse(format, a.Name, err)
	}

	table := toTable(rows)
	logging.FromContext(ctx).Debug().
		Int("columns", len(table.Headers)).
		Int("rows", len(table.Rows)).
		Msg("Artifact decoded")
	return table, nil
}

// ReadFile decodes the artifact at path.
func ReadFile(ctx context.Context, path string) (*ingest.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return NewReader().Read(ctx, &sources.Artifact{Name: filepath.Base(path), Data: data})
}

// ReadHeaders returns the first row of the file at path, e.g. a template workbook.
func ReadHeaders(ctx context.Context, path string) ([]string, error) {
	table, err := ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return table.Headers, nil
}

func formatOf(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return "xlsx"
	case ".csv":
		return "csv"
	default:
		return ""
	}
}

// readXLSX returns the first sheet with every cell in its most specific form:
// numbers, dates, booleans, formulas, rich text, hyperlinks or text.
func readXLSX(r io.Reader) ([][]any, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	sr := newSheetReader(f, sheets[0])
	width, height, err := sr.bounds()
	if err != nil {
		return nil, err
	}

	rows := make([][]any, 0, height)
	for y := 1; y <= height; y++ {
		row := make([]any, width)
		for x := 1; x <= width; x++ {
			if row[x-1], err = sr.cell(x, y); err != nil {
				return nil, err
			}
		}
		rows = append(rows, trimRow(row))
	}
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]any, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}

	// csv has no types; fields are typed by the mapper from their role
	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		rows[i] = row
	}
	return rows, nil
}

// toTable splits off the header row.
func toTable(rows [][]any) *ingest.Table {
	table := &ingest.Table{}
	if len(rows) == 0 {
		return table
	}
	table.Headers = make([]string, len(rows[0]))
	for i, v := range rows[0] {
		table.Headers[i] = cell.Resolve(v).String()
	}
	table.Rows = rows[1:]
	return table
}

func trimRow(row []any) []any {
	n := len(row)
	for n > 0 && row[n-1] == nil {
		n--
	}
	return row[:n]
}
