package normalize

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/agentstation/tablesync/pkg/errors"
)

var trailingNumeral = regexp.MustCompile(`^(.*?)(\d+)$`)

var one = big.NewInt(1)

// Sequence regenerates identifiers as prefix + zero-padded counter. The
// counter is arbitrary precision: exports carry numerals of any length.
type Sequence struct {
	Prefix  string
	Counter *big.Int
	Width   int
}

// ParseSequence derives a sequence from a seed identifier such as "INV-001".
// Identifiers without a trailing numeral yield a MalformedIdentifierError.
func ParseSequence(id string) (*Sequence, error) {
	m := trailingNumeral.FindStringSubmatch(id)
	if m == nil {
		return nil, &errors.MalformedIdentifierError{Identifier: id}
	}
	n, ok := new(big.Int).SetString(m[2], 10)
	if !ok {
		return nil, &errors.MalformedIdentifierError{Identifier: id}
	}
	return &Sequence{Prefix: m[1], Counter: n, Width: len(m[2])}, nil
}

// Next returns the current identifier and advances the counter by one.
func (s *Sequence) Next() string {
	digits := s.Counter.String()
	if pad := s.Width - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	s.Counter.Add(s.Counter, one)
	return s.Prefix + digits
}
