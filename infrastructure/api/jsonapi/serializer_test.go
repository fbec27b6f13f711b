package jsonapi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/taxseq/domain/run"
	"github.com/helixml/taxseq/domain/sequence"
)

func TestSerializer_RunResource(t *testing.T) {
	params, err := run.NewParams(562, 100, 900, 25)
	require.NoError(t, err)
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	result := run.ReconstructResult(run.ResultFields{
		ID:             "abc",
		Params:         params,
		OrganismName:   "Escherichia coli",
		ResultCount:    60,
		State:          run.StateDone,
		RecordCount:    7,
		BatchesPlanned: 3,
		BatchesFetched: 2,
		Skipped:        []run.SkippedBatch{{Offset: 25, Size: 25, Cause: "timeout"}},
		StartedAt:      start,
		FinishedAt:     start.Add(1500 * time.Millisecond),
	})

	res := NewSerializer().RunResource(result)
	assert.Equal(t, TypeRun, res.Type)
	assert.Equal(t, "abc", res.ID)
	assert.Equal(t, "/api/v1/runs/abc", res.Links.Self)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "run",
		"id": "abc",
		"links": {"self": "/api/v1/runs/abc"},
		"attributes": {
			"taxid": "562",
			"organism_name": "Escherichia coli",
			"min_length": 100,
			"max_length": 900,
			"batch_size": 25,
			"state": "done",
			"complete": false,
			"result_count": 60,
			"record_count": 7,
			"batches_planned": 3,
			"batches_fetched": 2,
			"malformed_records": 0,
			"skipped_batches": [{"offset": 25, "size": 25, "cause": "timeout"}],
			"started_at": "2025-03-01T12:00:00Z",
			"finished_at": "2025-03-01T12:00:01Z",
			"duration_seconds": 1.5
		}
	}`, string(b))
}

func TestSerializer_SequenceResources(t *testing.T) {
	records := []sequence.FilteredRecord{
		sequence.NewFilteredRecord("NC_1", 10, "first"),
		sequence.NewFilteredRecord("NC_2", 20, "second"),
	}

	res := NewSerializer().SequenceResources(records)
	require.Len(t, res, 2)
	assert.Equal(t, TypeSequence, res[1].Type)
	assert.Equal(t, "NC_2", res[1].ID)
	assert.Equal(t, &SequenceAttributes{Accession: "NC_2", Length: 20, Description: "second"}, res[1].Attributes)
}

func TestReportMeta(t *testing.T) {
	assert.Nil(t, ReportMeta(run.Report{}))

	meta := ReportMeta(run.Report{SummaryPath: "/out/s.yaml"})
	require.NotNil(t, meta)
	assert.Equal(t, ReportLinks{Summary: "/out/s.yaml"}, (*meta)["report"])
}
