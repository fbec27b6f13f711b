package run

import "context"

// Progress is a snapshot of a run in flight.
type Progress struct {
	runID          string
	taxID          string
	state          State
	batchesPlanned int
	batchesFetched int
	batchesSkipped int
	recordsKept    int
	errorMessage   string
}

// ProgressFields holds the values of a Progress snapshot.
type ProgressFields struct {
	RunID          string
	TaxID          string
	State          State
	BatchesPlanned int
	BatchesFetched int
	BatchesSkipped int
	RecordsKept    int
	ErrorMessage   string
}

// NewProgress creates a Progress from its fields.
func NewProgress(f ProgressFields) Progress {
	return Progress{
		runID:          f.RunID,
		taxID:          f.TaxID,
		state:          f.State,
		batchesPlanned: f.BatchesPlanned,
		batchesFetched: f.BatchesFetched,
		batchesSkipped: f.BatchesSkipped,
		recordsKept:    f.RecordsKept,
		errorMessage:   f.ErrorMessage,
	}
}

// RunID returns the run identifier.
func (p Progress) RunID() string { return p.runID }

// TaxID returns the queried taxonomy identifier.
func (p Progress) TaxID() string { return p.taxID }

// State returns the run state at the time of the snapshot.
func (p Progress) State() State { return p.state }

// BatchesPlanned returns the number of batches the search requires.
func (p Progress) BatchesPlanned() int { return p.batchesPlanned }

// BatchesFetched returns the number of batches fetched successfully.
func (p Progress) BatchesFetched() int { return p.batchesFetched }

// BatchesSkipped returns the number of batches that failed.
func (p Progress) BatchesSkipped() int { return p.batchesSkipped }

// RecordsKept returns the number of records kept so far.
func (p Progress) RecordsKept() int { return p.recordsKept }

// ErrorMessage returns the failure or cancellation cause, if any.
func (p Progress) ErrorMessage() string { return p.errorMessage }

// CompletionPercent returns the share of planned batches attempted.
// Terminal runs always report 100.
func (p Progress) CompletionPercent() float64 {
	if p.state.IsTerminal() {
		return 100
	}
	if p.batchesPlanned == 0 {
		return 0
	}
	return float64(p.batchesFetched+p.batchesSkipped) / float64(p.batchesPlanned) * 100
}

// Reporter receives progress snapshots.
type Reporter interface {
	OnProgress(ctx context.Context, progress Progress) error
}

// Progress returns a snapshot of the tracked run.
func (t *Tracker) Progress() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Progress{
		runID:          t.id,
		taxID:          t.params.TaxID().String(),
		state:          t.state,
		batchesPlanned: t.batchesPlanned,
		batchesFetched: t.batchesFetched,
		batchesSkipped: len(t.skipped),
		recordsKept:    t.collection.Len(),
		errorMessage:   t.errorMessage,
	}
}
