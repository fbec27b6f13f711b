package persistence_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/taxseq/domain/run"
	"github.com/helixml/taxseq/domain/sequence"
	"github.com/helixml/taxseq/infrastructure/persistence"
	"github.com/helixml/taxseq/internal/testdb"
)

func newResult(t *testing.T, id string, started time.Time, n int, skipped ...run.SkippedBatch) run.Result {
	t.Helper()
	params, err := run.NewParams(562, 100, 2000, 100)
	require.NoError(t, err)
	records := make([]sequence.FilteredRecord, n)
	for i := range records {
		records[i] = sequence.NewFilteredRecord(fmt.Sprintf("EC%04d.1", n-i), 100+i, fmt.Sprintf("record %d", i))
	}
	return run.ReconstructResult(run.ResultFields{
		ID:             id,
		Params:         params,
		OrganismName:   "Escherichia coli",
		ResultCount:    n + 5,
		State:          run.StateDone,
		Records:        records,
		BatchesPlanned: 2,
		BatchesFetched: 2 - len(skipped),
		Skipped:        skipped,
		Malformed:      1,
		StartedAt:      started,
		FinishedAt:     started.Add(time.Minute),
	})
}

func TestRunStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewRunStore(testdb.New(t))
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	want := newResult(t, "run-a", started, 3, run.SkippedBatch{Offset: 100, Size: 100, Cause: "HTTP 500"})

	require.NoError(t, store.Save(ctx, want))
	got, err := store.Get(ctx, "run-a")

	require.NoError(t, err)
	assert.Equal(t, want.ID(), got.ID())
	assert.Equal(t, want.TaxID(), got.TaxID())
	assert.Equal(t, want.Params(), got.Params())
	assert.Equal(t, want.OrganismName(), got.OrganismName())
	assert.Equal(t, want.State(), got.State())
	assert.Equal(t, want.Records(), got.Records(), "records keep fetch order")
	assert.Equal(t, want.SkippedBatches(), got.SkippedBatches())
	assert.Equal(t, 1, got.MalformedRecords())
	assert.True(t, want.StartedAt().Equal(got.StartedAt()))
	assert.True(t, want.FinishedAt().Equal(got.FinishedAt()))
	assert.False(t, got.Complete())
}

func TestRunStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewRunStore(testdb.New(t))
	started := time.Now().UTC()

	require.NoError(t, store.Save(ctx, newResult(t, "run-a", started, 5)))
	require.NoError(t, store.Save(ctx, newResult(t, "run-a", started, 2)))

	got, err := store.Get(ctx, "run-a")
	require.NoError(t, err)
	assert.Len(t, got.Records(), 2)
	assert.Equal(t, 2, got.RecordCount())
}

func TestRunStore_GetMissing(t *testing.T) {
	store := persistence.NewRunStore(testdb.New(t))

	_, err := store.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, run.ErrNotFound)
}

func TestRunStore_List(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewRunStore(testdb.New(t))
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, newResult(t, "old", base, 1)))
	require.NoError(t, store.Save(ctx, newResult(t, "new", base.Add(time.Hour), 4)))
	require.NoError(t, store.Save(ctx, newResult(t, "mid", base.Add(time.Minute), 2)))

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.ID()
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
	assert.Equal(t, 4, all[0].RecordCount(), "list keeps the record count")
	assert.Empty(t, all[0].Records(), "list does not load records")

	limited, err := store.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "new", limited[0].ID())
}

func TestRunStore_FailedRunWithoutRecords(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewRunStore(testdb.New(t))
	params, err := run.NewParams(1, 0, 10, 100)
	require.NoError(t, err)
	failed := run.ReconstructResult(run.ResultFields{
		ID:           "failed",
		Params:       params,
		State:        run.StateFailed,
		ErrorMessage: "taxonomy identifier not found",
		StartedAt:    time.Now().UTC(),
	})

	require.NoError(t, store.Save(ctx, failed))
	got, err := store.Get(ctx, "failed")

	require.NoError(t, err)
	assert.Equal(t, run.StateFailed, got.State())
	assert.Equal(t, "taxonomy identifier not found", got.ErrorMessage())
	assert.True(t, got.FinishedAt().IsZero())
	assert.Zero(t, got.RecordCount())
}
