// Package normalize turns projected rows into canonical records.
//
// A description cell may encode several logical items joined by a separator
// ("Mouse/Keyboard"). Each item becomes its own record with the amount and
// date of the originating row copied verbatim, and every emitted record takes
// the next identifier of a sequence seeded from the first identifier in the
// batch.
package normalize

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/tablesync/pkg/cell"
	"github.com/agentstation/tablesync/pkg/constants"
	"github.com/agentstation/tablesync/pkg/logging"
	"github.com/agentstation/tablesync/pkg/schema"
	"github.com/agentstation/tablesync/pkg/template"
)

// Record is one canonical row, one value per template column.
type Record []cell.Value

// Strings renders the record.
func (r Record) Strings() []string {
	return cell.Strings(r)
}

// Result is the output of one normalization batch.
type Result struct {
	Records []Record
	// Splits counts source rows that produced more than one record.
	Splits int
	// Regenerated is false when the seed identifier had no trailing numeral.
	Regenerated bool
}

// Normalizer emits canonical records for one source.
type Normalizer struct {
	tpl       *template.Template
	owner     string
	separator string
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithSeparator overrides the composite separator.
func WithSeparator(sep string) Option {
	return func(n *Normalizer) {
		if sep != "" {
			n.separator = sep
		}
	}
}

// New creates a normalizer writing owner (upper-cased) into owner columns.
func New(tpl *template.Template, owner string, opts ...Option) *Normalizer {
	n := &Normalizer{
		tpl:       tpl,
		owner:     cases.Upper(language.Und).String(owner),
		separator: constants.CompositeSeparator,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Split breaks a description into trimmed, non-empty items. Text without
// the separator is a single item, even when empty.
func Split(desc, sep string) []string {
	if !strings.Contains(desc, sep) {
		return []string{desc}
	}
	var items []string
	for _, part := range strings.Split(desc, sep) {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// Normalize processes one batch of rows, header row already excluded.
// Fully empty rows are skipped.
func (n *Normalizer) Normalize(ctx context.Context, rows []schema.Row) Result {
	logger := logging.FromContext(ctx)

	var (
		res    Result
		seq    *Sequence
		seeded bool
	)

	for _, row := range rows {
		if row.IsEmpty() {
			continue
		}

		rawID := row.Get(template.RoleIdentifier)
		if !seeded && !rawID.IsEmpty() {
			seeded = true
			s, err := ParseSequence(strings.TrimSpace(rawID.String()))
			if err != nil {
				logger.Warn().Err(err).Msg("Identifier regeneration disabled for batch")
			} else {
				seq = s
				res.Regenerated = true
			}
		}

		desc := row.Get(template.RoleDescription)
		items := Split(desc.String(), n.separator)
		if len(items) > 1 {
			res.Splits++
			logger.Debug().
				Str("description", desc.String()).
				Int("items", len(items)).
				Msg("Splitting composite row")
		}

		for _, item := range items {
			id := rawID
			if seq != nil {
				id = cell.Text(seq.Next())
			}
			res.Records = append(res.Records, n.record(row, id, item, desc))
		}
	}
	return res
}

func (n *Normalizer) record(row schema.Row, id cell.Value, item string, desc cell.Value) Record {
	rec := make(Record, n.tpl.Len())
	for i := range rec {
		switch n.tpl.Role(i) {
		case template.RoleIdentifier:
			rec[i] = id
		case template.RoleOwner:
			rec[i] = cell.Text(n.owner)
		case template.RoleDescription:
			if item == desc.String() {
				rec[i] = desc
			} else {
				rec[i] = cell.Text(item)
			}
		case template.RoleAmount:
			rec[i] = row.Get(template.RoleAmount)
		case template.RoleDate:
			rec[i] = row.Get(template.RoleDate)
		default:
			rec[i] = cell.Empty()
		}
	}
	return rec
}
