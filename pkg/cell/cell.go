// Package cell models a single spreadsheet cell value after resolution.
//
// Raw cells coming out of a workbook reader may be formulas, rich text runs,
// hyperlinks or arbitrary structures. Resolve collapses them into a Value by
// a fixed priority: evaluated result, then display text, then rich text, then
// a structural serialization. Dates survive resolution as dates.
package cell

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/tablesync/pkg/constants"
)

// Kind classifies a resolved value.
type Kind int

// Value kinds.
const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindDate
	KindBool
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindBool:
		return "bool"
	default:
		return "empty"
	}
}

// Value is a resolved cell. Text always holds the display form as read,
// so amounts and identifiers are copied verbatim.
type Value struct {
	Kind Kind
	Text string
	Time time.Time
}

// Empty returns the empty value.
func Empty() Value { return Value{} }

// Text returns a text value, or the empty value for "".
func Text(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{Kind: KindText, Text: s}
}

// Number returns a numeric value rendered without trailing zeros.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Text: strconv.FormatFloat(f, 'f', -1, 64)}
}

// Date returns a date value.
func Date(t time.Time) Value {
	return Value{Kind: KindDate, Text: t.Format(constants.DateFormat), Time: t}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{Kind: KindBool, Text: strconv.FormatBool(b)}
}

// IsEmpty reports whether the value carries nothing.
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty || strings.TrimSpace(v.Text) == ""
}

// String renders the value. Dates render as ISO calendar dates.
func (v Value) String() string {
	if v.Kind == KindDate && !v.Time.IsZero() {
		return v.Time.Format(constants.DateFormat)
	}
	return v.Text
}

// MarshalJSON encodes the value as its string form.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// MarshalYAML encodes the value as its string form.
func (v Value) MarshalYAML() (any, error) {
	return v.String(), nil
}

// Formula is a formula cell with its cached evaluation result.
type Formula struct {
	Expr   string
	Result any
	Text   string
}

// RichText is a cell made of formatted text runs.
type RichText []string

// Hyperlink is a cell holding a link with display text.
type Hyperlink struct {
	Text   string
	Target string
}

// Resolve collapses a raw cell into a Value.
func Resolve(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Empty()
	case Value:
		return v
	case string:
		return Text(v)
	case time.Time:
		return Date(v)
	case bool:
		return Bool(v)
	case float64:
		return Number(v)
	case float32:
		return Number(float64(v))
	case int:
		return Number(float64(v))
	case int64:
		return Number(float64(v))
	case Formula:
		if v.Result != nil {
			return Resolve(v.Result)
		}
		if v.Text != "" {
			return Text(v.Text)
		}
		return structural(v)
	case *Formula:
		if v == nil {
			return Empty()
		}
		return Resolve(*v)
	case Hyperlink:
		if v.Text != "" {
			return Text(v.Text)
		}
		return Text(v.Target)
	case RichText:
		return Text(strings.Join(v, ""))
	case fmt.Stringer:
		return Text(v.String())
	default:
		return structural(v)
	}
}

func structural(v any) Value {
	data, err := json.Marshal(v)
	if err != nil {
		return Text(fmt.Sprint(v))
	}
	return Text(string(data))
}

// dateLayouts are the textual date forms found in plain exports.
var dateLayouts = []string{
	constants.DateFormat,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/06",
	"1/2/2006",
	"01/02/2006",
}

// ParseDate reads date-shaped text as a date. Anything else stays text.
// Only apply it to values known to hold dates: "12/25/2024" in a
// description column is text.
func ParseDate(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Empty()
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return Date(t)
		}
	}
	return Text(s)
}

// ParseNumber reads numeric text as a number, keeping the text verbatim.
func ParseNumber(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Empty()
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Value{Kind: KindNumber, Text: s}
	}
	return Text(s)
}

// Strings renders a row of values.
func Strings(values []Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
