package query

import "fmt"

// RecordFormat selects the flat-file format requested for record batches.
type RecordFormat string

// RecordFormat values.
const (
	RecordFormatGenBank RecordFormat = "genbank"
	RecordFormatFASTA   RecordFormat = "fasta"
)

// ParseRecordFormat parses a record format name.
func ParseRecordFormat(s string) (RecordFormat, error) {
	switch RecordFormat(s) {
	case RecordFormatGenBank, RecordFormatFASTA:
		return RecordFormat(s), nil
	case "":
		return RecordFormatGenBank, nil
	}
	return "", fmt.Errorf("unknown record format %q", s)
}

// RetType returns the efetch rettype for the format.
func (f RecordFormat) RetType() string {
	if f == RecordFormatFASTA {
		return "fasta"
	}
	return "gb"
}

// ParsePolicy decides what a malformed record does to its batch.
type ParsePolicy string

// ParsePolicy values.
const (
	// ParsePolicySkipRecord drops malformed records and keeps the rest of the batch.
	ParsePolicySkipRecord ParsePolicy = "skip_record"
	// ParsePolicyAbortBatch fails the whole batch on the first malformed record.
	ParsePolicyAbortBatch ParsePolicy = "abort_batch"
)

// ParseParsePolicy parses a parse policy name.
func ParseParsePolicy(s string) (ParsePolicy, error) {
	switch ParsePolicy(s) {
	case ParsePolicySkipRecord, ParsePolicyAbortBatch:
		return ParsePolicy(s), nil
	case "":
		return ParsePolicySkipRecord, nil
	}
	return "", fmt.Errorf("unknown parse policy %q", s)
}
