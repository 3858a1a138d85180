// Package extract recovers a table from free text such as a pasted email.
//
// Strategies are tried in order and the first one that yields at least one
// record wins:
//
//  1. header: a line with enough keyword-bearing tokens is a header row and
//     the following lines are its data rows
//  2. pattern: lines carrying currency amounts or quantities become items
//  3. raw: every non-empty line is kept verbatim
//
// Extraction of non-empty text never fails; the raw strategy always matches.
package extract

import (
	"strings"

	"github.com/agentstation/tablesync/pkg/errors"
)

// Mode names the strategy that produced a result.
type Mode string

// Extraction modes.
const (
	ModeHeader  Mode = "header"
	ModePattern Mode = "pattern"
	ModeRaw     Mode = "raw"
)

// Result is an extracted table.
type Result struct {
	Mode    Mode                `json:"mode" yaml:"mode"`
	Columns []string            `json:"columns" yaml:"columns"`
	Records []map[string]string `json:"data" yaml:"data"`
}

// Rows returns the records as ordered string slices following Columns.
func (r *Result) Rows() [][]string {
	out := make([][]string, 0, len(r.Records))
	for _, rec := range r.Records {
		row := make([]string, len(r.Columns))
		for i, c := range r.Columns {
			row[i] = rec[c]
		}
		out = append(out, row)
	}
	return out
}

// Strategy is one tier of the cascade.
type Strategy interface {
	Mode() Mode
	// TryParse returns ok=false when the strategy recognises nothing.
	TryParse(lines []string) (res *Result, ok bool)
}

// Extractor runs an ordered list of strategies.
type Extractor struct {
	strategies []Strategy
}

// New creates an extractor. Without strategies the default cascade is used.
func New(strategies ...Strategy) *Extractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Extractor{strategies: strategies}
}

// DefaultStrategies returns header, pattern and raw strategies in priority order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		NewHeaderStrategy(),
		NewPatternStrategy(),
		RawLineStrategy{},
	}
}

// Extract runs the cascade over text.
func (e *Extractor) Extract(text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.ErrNoInput
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for _, s := range e.strategies {
		if res, ok := s.TryParse(lines); ok && len(res.Records) > 0 {
			res.Mode = s.Mode()
			return res, nil
		}
	}
	// only reachable with a custom chain lacking a catch-all
	return &Result{Mode: ModeRaw, Columns: []string{RawColumn}, Records: []map[string]string{}}, nil
}

var defaultExtractor = New()

// Extract runs the default cascade.
func Extract(text string) (*Result, error) {
	return defaultExtractor.Extract(text)
}
