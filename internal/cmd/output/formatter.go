// Package output provides formatters for command output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/tablesync/pkg/errors"
)

// Format types for output.
type Format string

const (
	// FormatTable represents table output format.
	FormatTable Format = "table"
	// FormatJSON represents JSON output format.
	FormatJSON Format = "json"
	// FormatYAML represents YAML output format.
	FormatYAML Format = "yaml"
)

// Formatter interface for all output types.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter creates appropriate formatter based on format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

// JSONFormatter outputs JSON format.
type JSONFormatter struct {
	Indent string
}

// Format implements the Formatter interface for JSON output.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	if d, ok := data.(Data); ok {
		data = d.Records()
	}
	encoder := json.NewEncoder(w)
	if f.Indent != "" {
		encoder.SetIndent("", f.Indent)
	}
	return encoder.Encode(data)
}

// YAMLFormatter outputs YAML format.
type YAMLFormatter struct{}

// Format outputs data in YAML format.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	if d, ok := data.(Data); ok {
		data = d.Records()
	}
	yamlData, err := yaml.MarshalWithOptions(data,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return err
	}
	_, err = w.Write(yamlData)
	return err
}

// TableFormatter outputs table format.
type TableFormatter struct{}

// Format outputs data in table format.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case Data:
		return f.formatTable(w, v)
	default:
		if tableData := toTableData(data); tableData != nil {
			return f.formatTable(w, *tableData)
		}
		// Fall back to JSON for non-table data
		return (&JSONFormatter{Indent: "  "}).Format(w, data)
	}
}

func (f *TableFormatter) formatTable(w io.Writer, data Data) error {
	var config tablewriter.Config
	if len(data.RightAligned) > 0 {
		align := make([]tw.Align, len(data.Headers))
		for i := range align {
			align[i] = tw.AlignLeft
		}
		for _, i := range data.RightAligned {
			if i >= 0 && i < len(align) {
				align[i] = tw.AlignRight
			}
		}
		config.Row.Alignment = tw.CellAlignment{PerColumn: align}
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(config))
	if len(data.Headers) > 0 {
		headers := make([]any, len(data.Headers))
		for i, h := range data.Headers {
			headers[i] = h
		}
		table.Header(headers...)
	}

	for _, row := range data.Rows {
		rowData := make([]any, len(row))
		for i, cell := range row {
			rowData[i] = cell
		}
		if err := table.Append(rowData...); err != nil {
			return err
		}
	}

	return table.Render()
}

// Data represents data formatted for table output.
type Data struct {
	Headers []string
	Rows    [][]string
	// RightAligned lists column indexes rendered right-aligned, typically counts.
	RightAligned []int
}

// Records converts the table into header-keyed maps for structured output.
func (d Data) Records() []map[string]string {
	out := make([]map[string]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		rec := make(map[string]string, len(d.Headers))
		for i, h := range d.Headers {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

// DetectFormat auto-detects format based on terminal and environment.
func DetectFormat(explicitFormat string) Format {
	if explicitFormat != "" {
		return Format(strings.ToLower(explicitFormat))
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return FormatTable
	}
	// Default to JSON for pipes/redirects
	return FormatJSON
}

// ParseFormat converts string to Format with validation.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(s))
	switch format {
	case FormatTable, FormatJSON, FormatYAML, "":
		return format, nil
	default:
		return "", errors.NewValidationError("format", s, "must be one of: table, json, yaml")
	}
}

// Write formats data for the detected format onto w.
func Write(w io.Writer, format string, data any) error {
	return NewFormatter(DetectFormat(format)).Format(w, data)
}

// toTableData converts a struct or a slice of structs using reflection.
func toTableData(data any) *Data {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}

	switch {
	case v.Kind() == reflect.Slice && v.Len() > 0 && v.Index(0).Kind() == reflect.Struct:
		elemType := v.Index(0).Type()
		out := &Data{Headers: headerNames(elemType)}
		for i := 0; i < v.Len(); i++ {
			elem := v.Index(i)
			var row []string
			for j := 0; j < elem.NumField(); j++ {
				if exported(elemType.Field(j)) {
					row = append(row, fmt.Sprintf("%v", elem.Field(j).Interface()))
				}
			}
			out.Rows = append(out.Rows, row)
		}
		return out
	case v.Kind() == reflect.Struct:
		elemType := v.Type()
		names := headerNames(elemType)
		out := &Data{Headers: []string{"Property", "Value"}}
		n := 0
		for i := 0; i < elemType.NumField(); i++ {
			if !exported(elemType.Field(i)) {
				continue
			}
			out.Rows = append(out.Rows, []string{names[n], fmt.Sprintf("%v", v.Field(i).Interface())})
			n++
		}
		return out
	}
	return nil
}

func exported(field reflect.StructField) bool {
	return field.IsExported() && field.Tag.Get("json") != "-"
}

// headerNames uses json tags if available, otherwise field names.
func headerNames(t reflect.Type) []string {
	caser := cases.Title(language.English)
	var headers []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !exported(field) {
			continue
		}
		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag != "" {
				name = caser.String(strings.ReplaceAll(tag, "_", " "))
			}
		}
		headers = append(headers, name)
	}
	return headers
}
