package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agentstation/tablesync/pkg/constants"
)

// Column names produced by the pattern and raw strategies.
const (
	ItemColumn      = "Item Name"
	QuantityColumn  = "Quantity"
	UnitPriceColumn = "Unit Price"
	TotalColumn     = "Total"
	RawColumn       = "Original Text"
)

// DefaultKeywords mark header tokens.
var DefaultKeywords = []string{
	"id", "date", "product", "item", "quantity", "qty",
	"price", "amount", "total", "region", "description",
}

// DefaultSalutations end a header-mode table once a record was captured.
var DefaultSalutations = []string{"best regards", "sincerely"}

var tokenSeparator = regexp.MustCompile(`[ \t]*\t[ \t]*|[ \t]{2,}`)

// Tokens splits a line on tabs or runs of two or more spaces.
func Tokens(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	return tokenSeparator.Split(line, -1)
}

// HeaderStrategy finds a keyword-bearing header line and reads the rows below it.
type HeaderStrategy struct {
	Keywords    []string
	Salutations []string
	MinKeywords int
}

// NewHeaderStrategy returns a header strategy with default settings.
func NewHeaderStrategy() *HeaderStrategy {
	return &HeaderStrategy{
		Keywords:    DefaultKeywords,
		Salutations: DefaultSalutations,
		MinKeywords: constants.MinHeaderKeywords,
	}
}

// Mode implements Strategy.
func (s *HeaderStrategy) Mode() Mode { return ModeHeader }

// TryParse implements Strategy.
func (s *HeaderStrategy) TryParse(lines []string) (*Result, bool) {
	start := -1
	var columns []string
	for i, line := range lines {
		tokens := Tokens(line)
		if s.isHeader(tokens) {
			start, columns = i, tokens
			break
		}
	}
	if start < 0 {
		return nil, false
	}

	res := &Result{Columns: columns}
	for _, line := range lines[start+1:] {
		if len(res.Records) > 0 && s.isSalutation(line) {
			break
		}
		tokens := Tokens(line)
		if len(tokens) == 0 || len(tokens) < len(columns)-1 {
			continue
		}
		rec := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(tokens) {
				rec[col] = tokens[i]
			} else {
				rec[col] = ""
			}
		}
		res.Records = append(res.Records, rec)
	}
	return res, len(res.Records) > 0
}

func (s *HeaderStrategy) isHeader(tokens []string) bool {
	hits := 0
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		for _, kw := range s.Keywords {
			if strings.Contains(lower, kw) {
				hits++
				break
			}
		}
	}
	return hits >= s.MinKeywords
}

func (s *HeaderStrategy) isSalutation(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range s.Salutations {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// PatternStrategy reads currency amounts and quantities out of prose lines.
type PatternStrategy struct {
	MinLength int
	currency  *regexp.Regexp
	quantity  *regexp.Regexp
}

// NewPatternStrategy returns a pattern strategy with default expressions.
func NewPatternStrategy() *PatternStrategy {
	return &PatternStrategy{
		MinLength: constants.MinPatternLineLength,
		currency:  regexp.MustCompile(`(\$|£|€)?\s?\d+(\.\d+)?`),
		quantity:  regexp.MustCompile(`(?i)\b\d+\s?(unit|qty|x|pcs)?\b`),
	}
}

// Mode implements Strategy.
func (s *PatternStrategy) Mode() Mode { return ModePattern }

// TryParse implements Strategy.
func (s *PatternStrategy) TryParse(lines []string) (*Result, bool) {
	res := &Result{Columns: []string{ItemColumn, QuantityColumn, UnitPriceColumn, TotalColumn}}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= s.MinLength {
			continue
		}

		amounts := s.currency.FindAllString(line, -1)
		qty := s.quantity.FindString(line)
		if len(amounts) == 0 && qty == "" {
			continue
		}

		name := s.currency.ReplaceAllString(line, "")
		if loc := s.quantity.FindStringIndex(name); loc != nil {
			name = name[:loc[0]] + name[loc[1]:]
		}

		rec := map[string]string{
			ItemColumn:      strings.TrimSpace(name),
			QuantityColumn:  constants.DefaultQuantity,
			UnitPriceColumn: "",
			TotalColumn:     "",
		}
		if qty != "" {
			rec[QuantityColumn] = strings.TrimSpace(qty)
		}
		if len(amounts) > 0 {
			rec[UnitPriceColumn] = strings.TrimSpace(amounts[0])
			rec[TotalColumn] = rec[UnitPriceColumn]
			if len(amounts) > 1 {
				rec[TotalColumn] = strings.TrimSpace(amounts[len(amounts)-1])
			}
		}
		res.Records = append(res.Records, rec)
	}
	return res, len(res.Records) > 0
}

// RawLineStrategy keeps every non-empty line as a one-column record.
type RawLineStrategy struct{}

// Mode implements Strategy.
func (RawLineStrategy) Mode() Mode { return ModeRaw }

// TryParse implements Strategy.
func (RawLineStrategy) TryParse(lines []string) (*Result, bool) {
	res := &Result{Columns: []string{RawColumn}}
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			res.Records = append(res.Records, map[string]string{RawColumn: line})
		}
	}
	return res, len(res.Records) > 0
}
