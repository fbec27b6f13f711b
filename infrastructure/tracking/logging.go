package tracking

import (
	"context"
	"log/slog"

	"github.com/helixml/taxseq/domain/run"
)

// LoggingReporter logs progress snapshots.
type LoggingReporter struct {
	logger *slog.Logger
}

// NewLoggingReporter creates a new LoggingReporter.
func NewLoggingReporter(logger *slog.Logger) *LoggingReporter {
	return &LoggingReporter{logger: logger}
}

// OnProgress logs the snapshot. Failed runs log at error level.
func (r *LoggingReporter) OnProgress(ctx context.Context, p run.Progress) error {
	attrs := []slog.Attr{
		slog.String("run_id", p.RunID()),
		slog.String("taxid", p.TaxID()),
		slog.String("state", p.State().String()),
		slog.Float64("completion_percent", p.CompletionPercent()),
		slog.Int("batches_fetched", p.BatchesFetched()),
		slog.Int("batches_planned", p.BatchesPlanned()),
		slog.Int("records_kept", p.RecordsKept()),
	}
	if n := p.BatchesSkipped(); n > 0 {
		attrs = append(attrs, slog.Int("batches_skipped", n))
	}

	level := slog.LevelInfo
	if p.State() == run.StateFailed {
		level = slog.LevelError
		attrs = append(attrs, slog.String("error", p.ErrorMessage()))
	}
	r.logger.LogAttrs(ctx, level, "retrieval progress", attrs...)
	return nil
}
