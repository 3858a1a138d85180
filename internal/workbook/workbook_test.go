package workbook

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/tablesync/pkg/cell"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/normalize"
	"github.com/agentstation/tablesync/pkg/sources"
	"github.com/agentstation/tablesync/pkg/template"
)

func TestWriteProcessedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	jan14 := time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)

	records := []normalize.Record{
		{cell.Text("INV-001"), cell.Text("ACME"), cell.Text("Mouse"), cell.Text("250"), cell.Text("250"), cell.Date(jan14)},
		{cell.Text("INV-002"), cell.Text("ACME"), cell.Text("Keyboard"), cell.Text("250"), cell.Text("250"), cell.Date(jan14)},
	}

	name, err := w.WriteProcessed(context.Background(), "acme", template.DefaultColumns(), records)
	require.NoError(t, err)
	assert.Equal(t, "processed_acme.xlsx", name)

	table, err := ReadFile(context.Background(), filepath.Join(dir, name))
	require.NoError(t, err)

	assert.Equal(t, template.DefaultColumns(), table.Headers)
	require.Len(t, table.Rows, 2)

	row := table.Rows[1]
	assert.Equal(t, "INV-002", cell.Resolve(row[0]).String())
	assert.Equal(t, "Keyboard", cell.Resolve(row[2]).String())

	date := cell.Resolve(row[5])
	assert.Equal(t, cell.KindDate, date.Kind)
	assert.Equal(t, "2024-01-14", date.String())
}

func TestReadCSV(t *testing.T) {
	data := "\ufeffID,Product,Amount,Date\nINV-001,Mouse/Keyboard,250,2024-01-14\nINV-002,\"Webcam, HD\",80\n"

	table, err := NewReader().Read(context.Background(), &sources.Artifact{Name: "export.CSV", Data: []byte(data)})
	require.NoError(t, err)

	assert.Equal(t, []string{"ID", "Product", "Amount", "Date"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Webcam, HD", cell.Resolve(table.Rows[1][1]).String())
	assert.Len(t, table.Rows[1], 3, "ragged rows are kept")
	assert.Equal(t, "2024-01-14", table.Rows[0][3], "csv cells are left untyped")
}

func TestReadXLSXTypedCells(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"ID", "Product", "Qty", "Date", "Total", "Invoice", "Paid"}))
	require.NoError(t, f.SetCellValue(sheet, "A2", "INV-001"))
	require.NoError(t, f.SetCellRichText(sheet, "B2", []excelize.RichTextRun{
		{Text: "Mouse"},
		{Text: "/Keyboard", Font: &excelize.Font{Bold: true}},
	}))
	require.NoError(t, f.SetCellValue(sheet, "C2", 125))
	require.NoError(t, f.SetCellValue(sheet, "D2", time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)))
	dmmmyy, err := f.NewStyle(&excelize.Style{NumFmt: 15})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "D2", "D2", dmmmyy))
	require.NoError(t, f.SetCellFormula(sheet, "E2", "C2*2"))
	require.NoError(t, f.SetCellValue(sheet, "F2", "Invoice 1"))
	require.NoError(t, f.SetCellHyperLink(sheet, "F2", "https://example.com/inv/1", "External"))
	require.NoError(t, f.SetCellBool(sheet, "G2", true))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := NewReader().Read(context.Background(), &sources.Artifact{Name: "typed.xlsx", Data: buf.Bytes()})
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Product", "Qty", "Date", "Total", "Invoice", "Paid"}, table.Headers)
	require.Len(t, table.Rows, 1)
	row := table.Rows[0]
	require.Len(t, row, 7)

	tests := []struct {
		name     string
		col      int
		wantKind cell.Kind
		want     string
	}{
		{"shared string", 0, cell.KindText, "INV-001"},
		{"rich text runs joined", 1, cell.KindText, "Mouse/Keyboard"},
		{"number", 2, cell.KindNumber, "125"},
		{"d-mmm-yy date", 3, cell.KindDate, "2024-01-14"},
		{"hyperlink display text", 5, cell.KindText, "Invoice 1"},
		{"bool", 6, cell.KindBool, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := cell.Resolve(row[tt.col])
			assert.Equal(t, tt.wantKind, v.Kind)
			assert.Equal(t, tt.want, v.String())
		})
	}

	t.Run("formula without cached value", func(t *testing.T) {
		formula, ok := row[4].(cell.Formula)
		require.True(t, ok, "got %T", row[4])
		assert.Equal(t, "C2*2", formula.Expr)
		assert.Nil(t, formula.Result)

		v := cell.Resolve(formula)
		assert.Equal(t, cell.KindText, v.Kind)
		assert.Contains(t, v.String(), "C2*2", "falls back to a structural form")
	})
}

func TestReadUnsupported(t *testing.T) {
	_, err := NewReader().Read(context.Background(), &sources.Artifact{Name: "notes.txt", Data: []byte("x")})
	assert.ErrorIs(t, err, errors.ErrUnsupportedFormat)

	_, err = NewReader().Read(context.Background(), &sources.Artifact{Name: "bad.xlsx", Data: []byte("not a zip")})
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestExport(t *testing.T) {
	data, err := Export([]string{"Item Name", "Quantity"}, [][]string{{"Widget", "3"}, {"Gadget", "1"}})
	require.NoError(t, err)

	table, err := NewReader().Read(context.Background(), &sources.Artifact{Name: "export.xlsx", Data: data})
	require.NoError(t, err)
	assert.Equal(t, []string{"Item Name", "Quantity"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Gadget", cell.Resolve(table.Rows[1][0]).String())
}

func TestReadHeaders(t *testing.T) {
	dir := t.TempDir()
	_, err := NewWriter(dir).WriteProcessed(context.Background(), "tpl", []string{"REPORT_ID", "REGION"}, nil)
	require.NoError(t, err)

	headers, err := ReadHeaders(context.Background(), filepath.Join(dir, ProcessedName("tpl")))
	require.NoError(t, err)
	assert.Equal(t, []string{"REPORT_ID", "REGION"}, headers)
}
