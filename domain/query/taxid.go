// Package query provides the search session model and the capabilities
// needed to resolve, search and page through nucleotide records.
package query

import (
	"fmt"
	"strconv"
	"strings"
)

// TaxID is a positive NCBI taxonomy identifier.
type TaxID int64

// ParseTaxID parses a decimal taxonomy identifier.
func ParseTaxID(s string) (TaxID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidTaxID)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not numeric", ErrInvalidTaxID, s)
	}
	return NewTaxID(n)
}

// NewTaxID validates n as a taxonomy identifier.
func NewTaxID(n int64) (TaxID, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d must be positive", ErrInvalidTaxID, n)
	}
	return TaxID(n), nil
}

// String returns the decimal form.
func (t TaxID) String() string {
	return strconv.FormatInt(int64(t), 10)
}

// Term returns the nucleotide search term selecting records of this organism.
func (t TaxID) Term() string {
	return "txid" + t.String() + "[Organism]"
}
