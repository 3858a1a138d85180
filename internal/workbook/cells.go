package workbook

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/tablesync/pkg/cell"
	"github.com/agentstation/tablesync/pkg/constants"
)

// sheetReader decodes the cells of one worksheet.
type sheetReader struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func newSheetReader(f *excelize.File, sheet string) *sheetReader {
	sr := &sheetReader{f: f, sheet: sheet, dateStyles: map[int]bool{}}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		sr.date1904 = *props.Date1904
	}
	return sr
}

// bounds returns the used width and height of the sheet. GetRows drops
// trailing cells without a value, such as formulas never evaluated, so the
// declared dimension is consulted too.
func (sr *sheetReader) bounds() (width, height int, err error) {
	display, err := sr.f.GetRows(sr.sheet)
	if err != nil {
		return 0, 0, err
	}
	height = len(display)
	for _, row := range display {
		width = max(width, len(row))
	}

	dim, err := sr.f.GetSheetDimension(sr.sheet)
	if err != nil || dim == "" {
		return width, height, nil
	}
	_, last, found := strings.Cut(dim, ":")
	if !found {
		last = dim
	}
	if x, y, err := excelize.CellNameToCoordinates(last); err == nil {
		width, height = max(width, x), max(height, y)
	}
	return width, height, nil
}

// cell returns the raw form of the cell at column x, row y (1-based), or
// nil for a cell without content.
func (sr *sheetReader) cell(x, y int) (any, error) {
	name, err := excelize.CoordinatesToCellName(x, y)
	if err != nil {
		return nil, err
	}

	expr, err := sr.f.GetCellFormula(sr.sheet, name)
	if err != nil {
		return nil, err
	}
	raw, err := sr.f.GetCellValue(sr.sheet, name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	text, err := sr.f.GetCellValue(sr.sheet, name)
	if err != nil {
		return nil, err
	}

	if expr != "" {
		f := cell.Formula{Expr: expr, Text: text}
		if raw != "" {
			if f.Result, err = sr.value(name, raw, text); err != nil {
				return nil, err
			}
		}
		return f, nil
	}
	if raw == "" && text == "" {
		return nil, nil
	}

	if link, target, err := sr.f.GetCellHyperLink(sr.sheet, name); err == nil && link {
		return cell.Hyperlink{Text: text, Target: target}, nil
	}
	return sr.value(name, raw, text)
}

// value types a stored cell value by its cell type and number format.
func (sr *sheetReader) value(name, raw, text string) (any, error) {
	typ, err := sr.f.GetCellType(sr.sheet, name)
	if err != nil {
		return nil, err
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil

	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", constants.DateFormat} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return text, nil

	case excelize.CellTypeError:
		return text, nil

	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		runs, err := sr.f.GetCellRichText(sr.sheet, name)
		if err == nil && len(runs) > 1 {
			parts := make(cell.RichText, len(runs))
			for i, run := range runs {
				parts[i] = run.Text
			}
			return parts, nil
		}
		return text, nil

	default:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return text, nil
		}
		if sr.isDate(name) {
			if t, err := excelize.ExcelDateToTime(n, sr.date1904); err == nil {
				return t, nil
			}
		}
		return n, nil
	}
}

// isDate reports whether the cell's number format renders a calendar date.
func (sr *sheetReader) isDate(name string) bool {
	idx, err := sr.f.GetCellStyle(sr.sheet, name)
	if err != nil || idx == 0 {
		return false
	}
	if d, ok := sr.dateStyles[idx]; ok {
		return d
	}
	style, err := sr.f.GetStyle(idx)
	d := err == nil && isDateFormat(style)
	sr.dateStyles[idx] = d
	return d
}

func isDateFormat(style *excelize.Style) bool {
	if style.CustomNumFmt != nil {
		return hasDateToken(*style.CustomNumFmt)
	}
	switch n := style.NumFmt; {
	case n >= 14 && n <= 17, n == 22:
		return true
	case n >= 27 && n <= 36, n >= 50 && n <= 58:
		// locale date formats
		return true
	default:
		return false
	}
}

// hasDateToken looks for day or year placeholders outside quoted literals
// and bracketed sections. "m" alone is ambiguous with minutes.
func hasDateToken(format string) bool {
	var quoted, bracket bool
	for _, r := range format {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case bracket:
		case r == 'd' || r == 'D' || r == 'y' || r == 'Y':
			return true
		}
	}
	return false
}
