package schema_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablesync/pkg/cell"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/schema"
	"github.com/agentstation/tablesync/pkg/template"
)

var mapping = map[template.Role]string{
	template.RoleIdentifier:  "ID",
	template.RoleDescription: "Product",
	template.RoleAmount:      "Amount",
	template.RoleDate:        "Date",
}

func TestProject(t *testing.T) {
	headers := []string{"Date", "ID", "Amount", "Product"}
	date := time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)

	row, err := schema.Project(headers, []any{date, "INV-001", 250.0, "Mouse/Keyboard"}, mapping)
	require.NoError(t, err)

	assert.Equal(t, "INV-001", row.Get(template.RoleIdentifier).String())
	assert.Equal(t, "Mouse/Keyboard", row.Get(template.RoleDescription).String())
	assert.Equal(t, "250", row.Get(template.RoleAmount).String())
	assert.Equal(t, cell.KindDate, row.Get(template.RoleDate).Kind)
	assert.True(t, row.Get(template.RoleOwner).IsEmpty(), "unmapped field is empty")
}

func TestProjectSchemaDrift(t *testing.T) {
	// Amount renamed to Total in this export
	headers := []string{"ID", "Product", "Total", "Date"}

	m, err := schema.NewMapper(headers, mapping)
	require.NoError(t, err)
	assert.Equal(t, []string{"Amount"}, m.Drift())

	row := m.Project([]any{"INV-001", "Webcam", 99.0, "2024-01-14"})
	assert.True(t, row.Get(template.RoleAmount).IsEmpty())
	assert.Equal(t, "Webcam", row.Get(template.RoleDescription).String())
	assert.False(t, row.IsEmpty())
}

func TestProjectResolvesCells(t *testing.T) {
	headers := []string{"ID", "Product", "Amount"}
	row, err := schema.Project(headers, []any{
		cell.Hyperlink{Text: "INV-007", Target: "http://x/7"},
		cell.RichText{"Mouse", " / ", "Pad"},
		cell.Formula{Expr: "=B2*2", Result: 40.0},
	}, mapping)
	require.NoError(t, err)

	assert.Equal(t, "INV-007", row.Get(template.RoleIdentifier).String())
	assert.Equal(t, "Mouse / Pad", row.Get(template.RoleDescription).String())
	assert.Equal(t, "40", row.Get(template.RoleAmount).String())
}

func TestProjectShortRow(t *testing.T) {
	row, err := schema.Project([]string{"ID", "Product", "Amount", "Date"}, []any{"INV-001"}, mapping)
	require.NoError(t, err)
	assert.True(t, row.Get(template.RoleDate).IsEmpty())
	assert.Equal(t, "INV-001", row.Get(template.RoleIdentifier).String())
}

func TestEmptyMapping(t *testing.T) {
	_, err := schema.NewMapper([]string{"ID"}, nil)
	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestProjectTypesTextByField(t *testing.T) {
	headers := []string{"ID", "Product", "Amount", "Date"}
	row, err := schema.Project(headers, []any{"INV-001", "12/25/2024", "250.00", "01/14/2024"}, mapping)
	require.NoError(t, err)

	desc := row.Get(template.RoleDescription)
	assert.Equal(t, cell.KindText, desc.Kind, "date-shaped description stays text")
	assert.Equal(t, "12/25/2024", desc.String())

	amount := row.Get(template.RoleAmount)
	assert.Equal(t, cell.KindNumber, amount.Kind)
	assert.Equal(t, "250.00", amount.String())

	date := row.Get(template.RoleDate)
	assert.Equal(t, cell.KindDate, date.Kind)
	assert.Equal(t, "2024-01-14", date.String())
}

func TestMissing(t *testing.T) {
	tests := []struct {
		name     string
		expected []string
		actual   []string
		want     []string
	}{
		{name: "nothing declared", actual: []string{"ID"}},
		{name: "all present", expected: []string{"ID", "Date"}, actual: []string{" Date", "ID", "Notes"}},
		{name: "unmapped header gone", expected: []string{"ID", "Region", "Date"}, actual: []string{"ID", "Date"}, want: []string{"Region"}},
		{name: "empty artifact", expected: []string{"ID", "Date"}, want: []string{"ID", "Date"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schema.Missing(tt.expected, tt.actual))
		})
	}
}

func TestMapperDriftWith(t *testing.T) {
	partial := map[template.Role]string{
		template.RoleIdentifier: "ID",
		template.RoleAmount:     "Amount",
	}
	m, err := schema.NewMapper([]string{"ID", "Date"}, partial)
	require.NoError(t, err)

	assert.Equal(t, []string{"Amount"}, m.DriftWith(nil))
	assert.Equal(t, []string{"Amount", "Region"}, m.DriftWith([]string{"ID", "Amount", "Date", "Region"}))
}
