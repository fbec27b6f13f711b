package sequence

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidBounds indicates a length range that cannot match anything.
var ErrInvalidBounds = errors.New("invalid length bounds")

// Bounds is an inclusive sequence length range.
type Bounds struct {
	min int
	max int
}

// NewBounds creates Bounds after checking 0 <= min <= max.
func NewBounds(minLen, maxLen int) (Bounds, error) {
	if minLen < 0 {
		return Bounds{}, fmt.Errorf("%w: minimum length %d is negative", ErrInvalidBounds, minLen)
	}
	if minLen > maxLen {
		return Bounds{}, fmt.Errorf("%w: minimum length %d exceeds maximum %d", ErrInvalidBounds, minLen, maxLen)
	}
	return Bounds{min: minLen, max: maxLen}, nil
}

// Min returns the lower bound.
func (b Bounds) Min() int { return b.min }

// Max returns the upper bound.
func (b Bounds) Max() int { return b.max }

// Contains reports whether min <= n <= max.
func (b Bounds) Contains(n int) bool {
	return b.min <= n && n <= b.max
}

// Filter derives a FilteredRecord from raw when its length is within bounds.
// Zero-length records never match since a FilteredRecord length is positive.
func Filter(raw RawRecord, bounds Bounds) (FilteredRecord, bool) {
	n := raw.Len()
	if n <= 0 || !bounds.Contains(n) {
		return FilteredRecord{}, false
	}
	return NewFilteredRecord(raw.Accession(), n, raw.Description()), true
}

// Accumulator collects filtered records in observation order.
// Duplicated accessions are kept as they arrive.
type Accumulator struct {
	mu      sync.Mutex
	records []FilteredRecord
	frozen  bool
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{records: []FilteredRecord{}}
}

// ErrFrozen is returned when appending to a completed collection.
var ErrFrozen = errors.New("collection is frozen")

// Append adds a whole batch of records at once so a batch is either fully
// present or absent.
func (a *Accumulator) Append(records ...FilteredRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		return ErrFrozen
	}
	a.records = append(a.records, records...)
	return nil
}

// Freeze marks the collection complete; later appends fail.
func (a *Accumulator) Freeze() {
	a.mu.Lock()
	a.frozen = true
	a.mu.Unlock()
}

// Len returns the number of accumulated records.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

// Records returns a copy of the accumulated records.
func (a *Accumulator) Records() []FilteredRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]FilteredRecord, len(a.records))
	copy(out, a.records)
	return out
}
