// Package sequence provides nucleotide record types and the length filter.
package sequence

import "sort"

// RawRecord is a parsed database record as it comes off the wire.
// It lives only for the duration of one batch.
type RawRecord struct {
	accession   string
	sequence    []byte
	length      int
	description string
}

// NewRawRecord creates a RawRecord whose length is the number of symbols in seq.
func NewRawRecord(accession string, seq []byte, description string) RawRecord {
	s := make([]byte, len(seq))
	copy(s, seq)
	return RawRecord{
		accession:   accession,
		sequence:    s,
		length:      len(s),
		description: description,
	}
}

// NewRawRecordWithLength creates a RawRecord for entries that declare a
// length but carry no sequence body (for example GenBank CONTIG records).
func NewRawRecordWithLength(accession string, length int, description string) RawRecord {
	return RawRecord{
		accession:   accession,
		length:      length,
		description: description,
	}
}

// Accession returns the accession identifier.
func (r RawRecord) Accession() string { return r.accession }

// Sequence returns a copy of the nucleotide symbols.
func (r RawRecord) Sequence() []byte {
	s := make([]byte, len(r.sequence))
	copy(s, r.sequence)
	return s
}

// Len returns the sequence length.
func (r RawRecord) Len() int { return r.length }

// Description returns the free-text description.
func (r RawRecord) Description() string { return r.description }

// FilteredRecord is the durable output unit of a run.
type FilteredRecord struct {
	accession   string
	length      int
	description string
}

// NewFilteredRecord creates a FilteredRecord.
func NewFilteredRecord(accession string, length int, description string) FilteredRecord {
	return FilteredRecord{
		accession:   accession,
		length:      length,
		description: description,
	}
}

// Accession returns the accession identifier.
func (r FilteredRecord) Accession() string { return r.accession }

// Length returns the sequence length.
func (r FilteredRecord) Length() int { return r.length }

// Description returns the free-text description.
func (r FilteredRecord) Description() string { return r.description }

// SortedByLengthDesc returns a copy of records ordered by descending length.
// Records of equal length keep their relative order.
func SortedByLengthDesc(records []FilteredRecord) []FilteredRecord {
	out := make([]FilteredRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].length > out[j].length
	})
	return out
}
