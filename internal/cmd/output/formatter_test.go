package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Source   string `json:"source"`
	Records  int    `json:"record_count"`
	internal string
	Secret   string `json:"-"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"", "", false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestTableFormatterData(t *testing.T) {
	var buf bytes.Buffer
	data := Data{
		Headers:      []string{"Source", "Records"},
		Rows:         [][]string{{"acme", "12"}, {"globex", "3"}},
		RightAligned: []int{1},
	}
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, data))

	out := buf.String()
	assert.Contains(t, out, "acme")
	assert.Contains(t, out, "globex")
	assert.Contains(t, out, "12")
}

func TestTableFormatterStructs(t *testing.T) {
	var buf bytes.Buffer
	rows := []entry{{Source: "acme", Records: 4, internal: "x", Secret: "hidden"}}
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, rows))

	out := buf.String()
	assert.Contains(t, out, "acme")
	assert.NotContains(t, out, "hidden")
}

func TestStructuredFormatsUseRecords(t *testing.T) {
	data := Data{Headers: []string{"id", "name"}, Rows: [][]string{{"1", "Widget"}}}

	var js bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&js, data))
	assert.JSONEq(t, `[{"id":"1","name":"Widget"}]`, js.String())

	var ym bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&ym, data))
	assert.Contains(t, ym.String(), "name: Widget")
}
