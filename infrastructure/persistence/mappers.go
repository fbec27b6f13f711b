package persistence

import (
	"fmt"
	"time"

	"github.com/helixml/taxseq/domain/query"
	"github.com/helixml/taxseq/domain/run"
	"github.com/helixml/taxseq/domain/sequence"
)

// RunMapper maps between domain run.Result and persistence RunModel.
type RunMapper struct{}

// ToDomain converts a RunModel to a domain Result.
func (m RunMapper) ToDomain(e RunModel) (run.Result, error) {
	params, err := run.NewParams(query.TaxID(e.TaxID), e.MinLength, e.MaxLength, e.BatchSize)
	if err != nil {
		return run.Result{}, fmt.Errorf("run %s: %w", e.ID, err)
	}
	state, err := run.ParseState(e.State)
	if err != nil {
		return run.Result{}, fmt.Errorf("run %s: %w", e.ID, err)
	}

	var finishedAt time.Time
	if e.FinishedAt != nil {
		finishedAt = *e.FinishedAt
	}

	skipped := make([]run.SkippedBatch, len(e.Skipped))
	for i, s := range e.Skipped {
		skipped[i] = run.SkippedBatch{Offset: s.BatchOffset, Size: s.BatchSize, Cause: s.Cause}
	}

	records := make([]sequence.FilteredRecord, len(e.Records))
	for i, r := range e.Records {
		records[i] = sequence.NewFilteredRecord(r.Accession, r.Length, r.Description)
	}

	return run.ReconstructResult(run.ResultFields{
		ID:             e.ID,
		Params:         params,
		OrganismName:   e.Organism,
		ResultCount:    e.ResultCount,
		State:          state,
		Records:        records,
		RecordCount:    e.RecordCount,
		BatchesPlanned: e.BatchesPlanned,
		BatchesFetched: e.BatchesFetched,
		Skipped:        skipped,
		Malformed:      e.MalformedRecords,
		ErrorMessage:   e.ErrorMessage,
		StartedAt:      e.StartedAt,
		FinishedAt:     finishedAt,
	}), nil
}

// ToModel converts a domain Result to a RunModel with its children.
func (m RunMapper) ToModel(r run.Result) RunModel {
	var finishedAt *time.Time
	if !r.FinishedAt().IsZero() {
		t := r.FinishedAt()
		finishedAt = &t
	}

	params := r.Params()
	model := RunModel{
		ID:               r.ID(),
		TaxID:            int64(r.TaxID()),
		Organism:         r.OrganismName(),
		MinLength:        params.Bounds().Min(),
		MaxLength:        params.Bounds().Max(),
		BatchSize:        params.BatchSize(),
		State:            r.State().String(),
		ResultCount:      r.ResultCount(),
		RecordCount:      r.RecordCount(),
		BatchesPlanned:   r.BatchesPlanned(),
		BatchesFetched:   r.BatchesFetched(),
		MalformedRecords: r.MalformedRecords(),
		ErrorMessage:     r.ErrorMessage(),
		StartedAt:        r.StartedAt(),
		FinishedAt:       finishedAt,
	}

	for _, s := range r.SkippedBatches() {
		model.Skipped = append(model.Skipped, SkippedBatchModel{
			RunID:       r.ID(),
			BatchOffset: s.Offset,
			BatchSize:   s.Size,
			Cause:       s.Cause,
		})
	}
	for i, rec := range r.Records() {
		model.Records = append(model.Records, RecordModel{
			RunID:       r.ID(),
			Position:    i,
			Accession:   rec.Accession(),
			Length:      rec.Length(),
			Description: rec.Description(),
		})
	}
	return model
}
