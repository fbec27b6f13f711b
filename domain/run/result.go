package run

import (
	"time"

	"github.com/helixml/taxseq/domain/query"
	"github.com/helixml/taxseq/domain/sequence"
)

// SkippedBatch describes a batch that was skipped after a failure.
type SkippedBatch struct {
	Offset int
	Size   int
	Cause  string
}

// NewSkippedBatch creates a SkippedBatch from a batch failure.
func NewSkippedBatch(f query.BatchFailure) SkippedBatch {
	cause := ""
	if f.Err != nil {
		cause = f.Err.Error()
	}
	return SkippedBatch{
		Offset: f.Request.Offset(),
		Size:   f.Request.Size(),
		Cause:  cause,
	}
}

// Result is the outcome of a run.
type Result struct {
	id             string
	params         Params
	organismName   string
	resultCount    int
	state          State
	records        []sequence.FilteredRecord
	recordCount    int
	batchesPlanned int
	batchesFetched int
	skipped        []SkippedBatch
	malformed      int
	errorMessage   string
	startedAt      time.Time
	finishedAt     time.Time
}

// ResultFields carries every Result field for reconstruction from storage.
type ResultFields struct {
	ID             string
	Params         Params
	OrganismName   string
	ResultCount    int
	State          State
	Records        []sequence.FilteredRecord
	RecordCount    int
	BatchesPlanned int
	BatchesFetched int
	Skipped        []SkippedBatch
	Malformed      int
	ErrorMessage   string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// ReconstructResult recreates a Result from persisted fields. RecordCount
// is used when Records is not loaded.
func ReconstructResult(f ResultFields) Result {
	count := f.RecordCount
	if len(f.Records) > 0 {
		count = len(f.Records)
	}
	return Result{
		id:             f.ID,
		params:         f.Params,
		organismName:   f.OrganismName,
		resultCount:    f.ResultCount,
		state:          f.State,
		records:        append([]sequence.FilteredRecord{}, f.Records...),
		recordCount:    count,
		batchesPlanned: f.BatchesPlanned,
		batchesFetched: f.BatchesFetched,
		skipped:        append([]SkippedBatch{}, f.Skipped...),
		malformed:      f.Malformed,
		errorMessage:   f.ErrorMessage,
		startedAt:      f.StartedAt,
		finishedAt:     f.FinishedAt,
	}
}

// ID returns the run identifier.
func (r Result) ID() string { return r.id }

// Params returns the run inputs.
func (r Result) Params() Params { return r.params }

// TaxID returns the taxonomy identifier.
func (r Result) TaxID() query.TaxID { return r.params.taxID }

// OrganismName returns the resolved scientific name.
func (r Result) OrganismName() string { return r.organismName }

// ResultCount returns the number of records the search matched.
func (r Result) ResultCount() int { return r.resultCount }

// State returns the final state.
func (r Result) State() State { return r.state }

// Records returns a copy of the filtered records in fetch order.
func (r Result) Records() []sequence.FilteredRecord {
	out := make([]sequence.FilteredRecord, len(r.records))
	copy(out, r.records)
	return out
}

// RecordCount returns the number of filtered records.
func (r Result) RecordCount() int { return r.recordCount }

// BatchesPlanned returns the number of batches the search required.
func (r Result) BatchesPlanned() int { return r.batchesPlanned }

// BatchesFetched returns the number of batches fetched successfully.
func (r Result) BatchesFetched() int { return r.batchesFetched }

// SkippedBatches returns the batches skipped after failures.
func (r Result) SkippedBatches() []SkippedBatch {
	out := make([]SkippedBatch, len(r.skipped))
	copy(out, r.skipped)
	return out
}

// MalformedRecords returns how many records were dropped as unparsable.
func (r Result) MalformedRecords() int { return r.malformed }

// ErrorMessage returns the failure cause for failed or cancelled runs.
func (r Result) ErrorMessage() string { return r.errorMessage }

// StartedAt returns when the run started.
func (r Result) StartedAt() time.Time { return r.startedAt }

// FinishedAt returns when the run reached a terminal state.
func (r Result) FinishedAt() time.Time { return r.finishedAt }

// Duration returns the run's wall time.
func (r Result) Duration() time.Duration {
	if r.finishedAt.IsZero() {
		return 0
	}
	return r.finishedAt.Sub(r.startedAt)
}

// Complete reports whether every planned batch was fetched and no record
// was dropped as malformed.
func (r Result) Complete() bool {
	switch r.state {
	case StateEmptyResult:
		return true
	case StateDone:
		return len(r.skipped) == 0 && r.malformed == 0 && r.batchesFetched == r.batchesPlanned
	}
	return false
}
