package jsonapi

import (
	"github.com/helixml/taxseq/domain/run"
	"github.com/helixml/taxseq/domain/sequence"
)

// Resource type names.
const (
	TypeRun      = "run"
	TypeSequence = "sequence"
)

// RunAttributes represents run attributes in JSON:API format.
type RunAttributes struct {
	TaxID            string                   `json:"taxid"`
	OrganismName     string                   `json:"organism_name,omitempty"`
	MinLength        int                      `json:"min_length"`
	MaxLength        int                      `json:"max_length"`
	BatchSize        int                      `json:"batch_size"`
	State            string                   `json:"state"`
	Complete         bool                     `json:"complete"`
	ResultCount      int                      `json:"result_count"`
	RecordCount      int                      `json:"record_count"`
	BatchesPlanned   int                      `json:"batches_planned"`
	BatchesFetched   int                      `json:"batches_fetched"`
	MalformedRecords int                      `json:"malformed_records"`
	SkippedBatches   []SkippedBatchAttributes `json:"skipped_batches,omitempty"`
	Error            string                   `json:"error,omitempty"`
	StartedAt        DateTime                 `json:"started_at"`
	FinishedAt       DateTime                 `json:"finished_at"`
	DurationSeconds  float64                  `json:"duration_seconds"`
}

// SkippedBatchAttributes describes a batch that was skipped.
type SkippedBatchAttributes struct {
	Offset int    `json:"offset"`
	Size   int    `json:"size"`
	Cause  string `json:"cause"`
}

// SequenceAttributes represents a kept record in JSON:API format.
type SequenceAttributes struct {
	Accession   string `json:"accession"`
	Length      int    `json:"length"`
	Description string `json:"description"`
}

// ReportLinks lists the files written for a run.
type ReportLinks struct {
	CSV     string `json:"csv,omitempty"`
	Chart   string `json:"chart,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// RunCreateAttributes are the inputs of a new run.
type RunCreateAttributes struct {
	TaxID     string `json:"taxid"`
	MinLength *int   `json:"min_length"`
	MaxLength *int   `json:"max_length"`
	BatchSize int    `json:"batch_size,omitempty"`
	OutputDir string `json:"output_dir,omitempty"`
}

// RunCreateData wraps RunCreateAttributes.
type RunCreateData struct {
	Type       string              `json:"type"`
	Attributes RunCreateAttributes `json:"attributes"`
}

// RunCreateRequest is the JSON:API body of POST /runs.
type RunCreateRequest struct {
	Data RunCreateData `json:"data"`
}

// Serializer converts domain objects to JSON:API resources.
type Serializer struct{}

// NewSerializer creates a new Serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// RunResource converts a run result to a JSON:API resource.
func (s *Serializer) RunResource(r run.Result) *Resource {
	bounds := r.Params().Bounds()
	attrs := &RunAttributes{
		TaxID:            r.TaxID().String(),
		OrganismName:     r.OrganismName(),
		MinLength:        bounds.Min(),
		MaxLength:        bounds.Max(),
		BatchSize:        r.Params().BatchSize(),
		State:            r.State().String(),
		Complete:         r.Complete(),
		ResultCount:      r.ResultCount(),
		RecordCount:      r.RecordCount(),
		BatchesPlanned:   r.BatchesPlanned(),
		BatchesFetched:   r.BatchesFetched(),
		MalformedRecords: r.MalformedRecords(),
		Error:            r.ErrorMessage(),
		StartedAt:        NewDateTime(r.StartedAt()),
		FinishedAt:       NewDateTime(r.FinishedAt()),
		DurationSeconds:  r.Duration().Seconds(),
	}
	for _, b := range r.SkippedBatches() {
		attrs.SkippedBatches = append(attrs.SkippedBatches, SkippedBatchAttributes{
			Offset: b.Offset,
			Size:   b.Size,
			Cause:  b.Cause,
		})
	}

	res := NewResource(TypeRun, r.ID(), attrs)
	res.Links = &Links{Self: "/api/v1/runs/" + r.ID()}
	return res
}

// RunResources converts multiple run results to JSON:API resources.
func (s *Serializer) RunResources(results []run.Result) []*Resource {
	resources := make([]*Resource, len(results))
	for i, r := range results {
		resources[i] = s.RunResource(r)
	}
	return resources
}

// SequenceResource converts a kept record to a JSON:API resource.
func (s *Serializer) SequenceResource(rec sequence.FilteredRecord) *Resource {
	return NewResource(TypeSequence, rec.Accession(), &SequenceAttributes{
		Accession:   rec.Accession(),
		Length:      rec.Length(),
		Description: rec.Description(),
	})
}

// SequenceResources converts kept records to JSON:API resources.
func (s *Serializer) SequenceResources(records []sequence.FilteredRecord) []*Resource {
	resources := make([]*Resource, len(records))
	for i, rec := range records {
		resources[i] = s.SequenceResource(rec)
	}
	return resources
}

// ReportMeta builds document meta from the files written for a run.
func ReportMeta(rep run.Report) *Meta {
	if rep.SummaryPath == "" {
		return nil
	}
	return &Meta{"report": ReportLinks{
		CSV:     rep.CSVPath,
		Chart:   rep.ChartPath,
		Summary: rep.SummaryPath,
	}}
}
