// Package schema projects raw export rows onto the canonical fields.
//
// Each canonical field is located in a raw row by looking up the raw header
// the source mapping names for it. A header that is absent from the artifact
// (schema drift) yields an empty value for that field; the row still maps.
package schema

import (
	"slices"
	"strings"

	"github.com/agentstation/tablesync/pkg/cell"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/template"
)

// Row is a raw row projected onto the canonical fields, in template.Fields order.
type Row struct {
	Fields []template.Role
	Values []cell.Value
}

// Get returns the value of a canonical field, or the empty value.
func (r Row) Get(role template.Role) cell.Value {
	for i, f := range r.Fields {
		if f == role {
			return r.Values[i]
		}
	}
	return cell.Empty()
}

// IsEmpty reports whether every field is empty.
func (r Row) IsEmpty() bool {
	for _, v := range r.Values {
		if !v.IsEmpty() {
			return false
		}
	}
	return true
}

// Mapper projects rows of one artifact. Header positions are resolved once.
type Mapper struct {
	headers []string
	index   map[template.Role]int
	drift   []string
}

// NewMapper resolves mapped headers against the artifact's header row.
// An empty mapping is a configuration error.
func NewMapper(rawHeaders []string, mapping map[template.Role]string) (*Mapper, error) {
	if len(mapping) == 0 {
		return nil, errors.NewConfigError("schema", "mapping is empty", nil)
	}

	m := &Mapper{headers: rawHeaders, index: make(map[template.Role]int, len(mapping))}
	for _, role := range template.Fields {
		header, ok := mapping[role]
		if !ok {
			continue
		}
		idx := indexOf(rawHeaders, header)
		if idx < 0 {
			m.drift = append(m.drift, header)
			continue
		}
		m.index[role] = idx
	}
	return m, nil
}

// Drift lists mapped headers that the artifact does not contain.
func (m *Mapper) Drift() []string {
	return append([]string(nil), m.drift...)
}

// DriftWith extends Drift with the declared headers the artifact lacks,
// mapped or not.
func (m *Mapper) DriftWith(declared []string) []string {
	drift := m.Drift()
	for _, h := range Missing(declared, m.headers) {
		if !slices.Contains(drift, h) {
			drift = append(drift, h)
		}
	}
	return drift
}

// Project maps one raw row. Raw cells are resolved before they are placed.
func (m *Mapper) Project(rawRow []any) Row {
	row := Row{
		Fields: append([]template.Role(nil), template.Fields...),
		Values: make([]cell.Value, len(template.Fields)),
	}
	for i, role := range row.Fields {
		idx, ok := m.index[role]
		if !ok || idx >= len(rawRow) {
			continue
		}
		row.Values[i] = typed(role, cell.Resolve(rawRow[idx]))
	}
	return row
}

// typed gives untyped text, as read from csv, the kind its field implies.
// Other fields keep their text so composite descriptions still split.
func typed(role template.Role, v cell.Value) cell.Value {
	if v.Kind != cell.KindText {
		return v
	}
	switch role {
	case template.RoleDate:
		return cell.ParseDate(v.Text)
	case template.RoleAmount:
		return cell.ParseNumber(v.Text)
	default:
		return v
	}
}

// Project is the one-shot form of NewMapper followed by Mapper.Project.
func Project(rawHeaders []string, rawRow []any, mapping map[template.Role]string) (Row, error) {
	m, err := NewMapper(rawHeaders, mapping)
	if err != nil {
		return Row{}, err
	}
	return m.Project(rawRow), nil
}

// Missing lists the expected headers absent from actual, in expected order.
func Missing(expected, actual []string) []string {
	var missing []string
	for _, h := range expected {
		if indexOf(actual, h) < 0 {
			missing = append(missing, h)
		}
	}
	return missing
}

func indexOf(headers []string, name string) int {
	name = strings.TrimSpace(name)
	for i, h := range headers {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}
