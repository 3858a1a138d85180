// Package template defines the canonical output schema and the rules that
// assign each canonical column a semantic role.
//
// Roles are resolved by keyword substring match against the upper-cased
// column name. Rules are evaluated in table order and the first match wins,
// so a column named "PRODUCT_ID" is an identifier, not a description.
package template

import (
	"strings"

	"github.com/agentstation/tablesync/pkg/errors"
)

// Role is the semantic meaning of a canonical column.
type Role string

// Roles understood by the normalizer. They double as the canonical field
// names a source mapping refers to.
const (
	RoleIdentifier  Role = "identifier"
	RoleOwner       Role = "owner"
	RoleDescription Role = "description"
	RoleAmount      Role = "amount"
	RoleDate        Role = "date"
	RoleUnmapped    Role = ""
)

// Fields are the canonical fields a source mapping may bind, in projection order.
var Fields = []Role{RoleIdentifier, RoleOwner, RoleDescription, RoleAmount, RoleDate}

// ParseRole converts a mapping key into a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range Fields {
		if f == r {
			return r, true
		}
	}
	return RoleUnmapped, false
}

// Rule assigns Role to any column containing one of Keywords.
type Rule struct {
	Role     Role     `json:"role" yaml:"role"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// DefaultRules is the standard keyword table.
func DefaultRules() []Rule {
	return []Rule{
		{Role: RoleIdentifier, Keywords: []string{"ID"}},
		{Role: RoleOwner, Keywords: []string{"NAME", "CUSTOMER"}},
		{Role: RoleDescription, Keywords: []string{"PRODUCT", "DESC"}},
		{Role: RoleAmount, Keywords: []string{"PRICE", "AMOUNT"}},
		{Role: RoleDate, Keywords: []string{"DATE"}},
	}
}

// DefaultColumns is the canonical header row used when none is configured.
func DefaultColumns() []string {
	return []string{"REPORT_ID", "CUSTOMER_NAME", "PRODUCT_DESC", "UNIT_PRICE", "TOTAL_AMOUNT", "DATE_OF_SALE"}
}

// RoleFor returns the role of a single column name under rules.
func RoleFor(column string, rules []Rule) Role {
	upper := strings.ToUpper(column)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(upper, strings.ToUpper(kw)) {
				return rule.Role
			}
		}
	}
	return RoleUnmapped
}

// Template is an ordered list of canonical columns with resolved roles.
type Template struct {
	columns []string
	roles   []Role
}

// New builds a template. Empty column names are dropped.
func New(columns []string, rules ...Rule) (*Template, error) {
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	t := &Template{}
	for _, c := range columns {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		t.columns = append(t.columns, c)
		t.roles = append(t.roles, RoleFor(c, rules))
	}
	if len(t.columns) == 0 {
		return nil, errors.NewConfigError("template", "at least one column is required", nil)
	}
	return t, nil
}

// Default returns the template built from DefaultColumns.
func Default() *Template {
	t, _ := New(DefaultColumns())
	return t
}

// Columns returns a copy of the column names.
func (t *Template) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Roles returns a copy of the per-column roles.
func (t *Template) Roles() []Role {
	return append([]Role(nil), t.roles...)
}

// Len returns the number of columns.
func (t *Template) Len() int {
	return len(t.columns)
}

// Role returns the role of column i.
func (t *Template) Role(i int) Role {
	return t.roles[i]
}
