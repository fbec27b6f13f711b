package run

import (
	"errors"
	"fmt"

	"github.com/helixml/taxseq/domain/query"
	"github.com/helixml/taxseq/domain/sequence"
)

// DefaultBatchSize is the number of records fetched per request.
const DefaultBatchSize = 100

// ErrInvalidBatchSize indicates a non-positive batch size.
var ErrInvalidBatchSize = errors.New("batch size must be positive")

// Params are the inputs of one run.
type Params struct {
	taxID     query.TaxID
	bounds    sequence.Bounds
	batchSize int
}

// NewParams validates and creates Params. A zero batch size selects
// DefaultBatchSize.
func NewParams(taxID query.TaxID, minLen, maxLen, batchSize int) (Params, error) {
	if taxID <= 0 {
		return Params{}, fmt.Errorf("%w: %d", query.ErrInvalidTaxID, taxID)
	}
	bounds, err := sequence.NewBounds(minLen, maxLen)
	if err != nil {
		return Params{}, err
	}
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	if batchSize < 0 {
		return Params{}, fmt.Errorf("%w: %d", ErrInvalidBatchSize, batchSize)
	}
	return Params{taxID: taxID, bounds: bounds, batchSize: batchSize}, nil
}

// TaxID returns the taxonomy identifier.
func (p Params) TaxID() query.TaxID { return p.taxID }

// Bounds returns the length bounds.
func (p Params) Bounds() sequence.Bounds { return p.bounds }

// BatchSize returns the batch size.
func (p Params) BatchSize() int { return p.batchSize }
