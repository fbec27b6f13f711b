package report

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/helixml/taxseq/domain/run"
)

// Summary is the YAML document written alongside a run's records.
type Summary struct {
	RunID          string         `yaml:"run_id"`
	TaxID          string         `yaml:"taxid"`
	Organism       string         `yaml:"organism"`
	MinLength      int            `yaml:"min_length"`
	MaxLength      int            `yaml:"max_length"`
	BatchSize      int            `yaml:"batch_size"`
	State          string         `yaml:"state"`
	Matched        int            `yaml:"matched"`
	Kept           int            `yaml:"kept"`
	BatchesPlanned int            `yaml:"batches_planned"`
	BatchesFetched int            `yaml:"batches_fetched"`
	SkippedBatches []SkippedBatch `yaml:"skipped_batches,omitempty"`
	Malformed      int            `yaml:"malformed_records"`
	Complete       bool           `yaml:"complete"`
	StartedAt      time.Time      `yaml:"started_at"`
	FinishedAt     time.Time      `yaml:"finished_at"`
	Files          Files          `yaml:"files"`
}

// SkippedBatch is a skipped batch in the summary.
type SkippedBatch struct {
	Offset int    `yaml:"offset"`
	Size   int    `yaml:"size"`
	Cause  string `yaml:"cause"`
}

// Files lists the sibling output files of a summary.
type Files struct {
	CSV   string `yaml:"csv,omitempty"`
	Chart string `yaml:"chart,omitempty"`
}

// NewSummary builds a Summary from a run result.
func NewSummary(result run.Result, files Files) Summary {
	params := result.Params()
	s := Summary{
		RunID:          result.ID(),
		TaxID:          result.TaxID().String(),
		Organism:       result.OrganismName(),
		MinLength:      params.Bounds().Min(),
		MaxLength:      params.Bounds().Max(),
		BatchSize:      params.BatchSize(),
		State:          result.State().String(),
		Matched:        result.ResultCount(),
		Kept:           result.RecordCount(),
		BatchesPlanned: result.BatchesPlanned(),
		BatchesFetched: result.BatchesFetched(),
		Malformed:      result.MalformedRecords(),
		Complete:       result.Complete(),
		StartedAt:      result.StartedAt(),
		FinishedAt:     result.FinishedAt(),
		Files:          files,
	}
	for _, b := range result.SkippedBatches() {
		s.SkippedBatches = append(s.SkippedBatches, SkippedBatch(b))
	}
	return s
}

// WriteSummary writes the summary as YAML.
func WriteSummary(w io.Writer, s Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return enc.Close()
}
