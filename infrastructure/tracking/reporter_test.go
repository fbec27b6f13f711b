package tracking_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/taxseq/domain/run"
	"github.com/helixml/taxseq/infrastructure/tracking"
)

func TestLoggingReporter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reporter := tracking.NewLoggingReporter(logger)

	require.NoError(t, reporter.OnProgress(context.Background(), run.NewProgress(run.ProgressFields{
		RunID:          "run-1",
		TaxID:          "562",
		State:          run.StatePaginating,
		BatchesPlanned: 4,
		BatchesFetched: 1,
		BatchesSkipped: 1,
		RecordsKept:    12,
	})))

	out := buf.String()
	assert.Contains(t, out, `"level":"INFO"`)
	assert.Contains(t, out, `"msg":"retrieval progress"`)
	assert.Contains(t, out, `"run_id":"run-1"`)
	assert.Contains(t, out, `"completion_percent":50`)
	assert.Contains(t, out, `"batches_skipped":1`)
	assert.Contains(t, out, `"records_kept":12`)

	buf.Reset()
	require.NoError(t, reporter.OnProgress(context.Background(), run.NewProgress(run.ProgressFields{
		RunID:        "run-1",
		State:        run.StateFailed,
		ErrorMessage: "taxonomy identifier not found",
	})))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"error":"taxonomy identifier not found"`)
}

type failingReporter struct{}

func (failingReporter) OnProgress(context.Context, run.Progress) error {
	return errors.New("subscriber down")
}

func TestBroadcast_DeliversToAllSubscribers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	first := &fakeReporter{}
	second := &fakeReporter{}

	b := tracking.NewBroadcast(logger, first, failingReporter{})
	b.Subscribe(second)

	require.NoError(t, b.OnProgress(context.Background(), progress("a", run.StatePaginating, 1)))

	assert.Equal(t, 1, first.count())
	assert.Equal(t, 1, second.count())
	assert.Contains(t, buf.String(), "subscriber down")
}
