package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/helixml/taxseq/domain/run"
)

// Pipeline drives one retrieval from taxonomy lookup to the filtered
// collection.
type Pipeline struct {
	sessions  *SessionBuilder
	paginator *Paginator
	filter    *BatchFilter
	metrics   *Metrics
	reporter  run.Reporter
	logger    *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithProgressReporter delivers progress snapshots to reporter as batches
// complete and when the run ends.
func WithProgressReporter(reporter run.Reporter) PipelineOption {
	return func(p *Pipeline) { p.reporter = reporter }
}

// NewPipeline creates a new Pipeline.
func NewPipeline(
	sessions *SessionBuilder,
	paginator *Paginator,
	filter *BatchFilter,
	metrics *Metrics,
	logger *slog.Logger,
	opts ...PipelineOption,
) *Pipeline {
	if filter == nil {
		filter = NewBatchFilter(1)
	}
	p := &Pipeline{
		sessions:  sessions,
		paginator: paginator,
		filter:    filter,
		metrics:   metrics,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the pipeline. The returned result is always populated; on
// failure it carries the failed state, and on cancellation the records
// collected so far.
func (p *Pipeline) Run(ctx context.Context, params run.Params) (run.Result, error) {
	tracker := run.NewTracker(params)
	logger := p.logger.With(slog.String("run_id", tracker.ID()))

	p.metrics.runStarted()
	defer func() {
		p.metrics.runFinished(tracker.State())
		p.report(ctx, tracker)
	}()

	if err := tracker.Transition(run.StateSearching); err != nil {
		return tracker.Result(), err
	}

	session, err := p.sessions.Open(ctx, params.TaxID())
	if err != nil {
		if ctx.Err() != nil {
			return p.cancel(tracker, ctx.Err())
		}
		_ = tracker.Fail(err)
		logger.ErrorContext(ctx, "retrieval failed", slog.String("error", err.Error()))
		return tracker.Result(), err
	}

	cursor := p.paginator.Open(session, params.BatchSize())
	tracker.Opened(session, cursor.Planned())
	p.report(ctx, tracker)

	if session.Empty() {
		if err := tracker.Transition(run.StateEmptyResult); err != nil {
			return tracker.Result(), err
		}
		return tracker.Result(), nil
	}

	if err := tracker.Transition(run.StatePaginating); err != nil {
		return tracker.Result(), err
	}

	bounds := params.Bounds()
	for {
		batch, ok := cursor.Next(ctx)
		if !ok {
			break
		}
		if batch.Failed() {
			tracker.Skipped(*batch.Failure)
			p.report(ctx, tracker)
			continue
		}
		tracker.Fetched(batch.Malformed)

		if err := tracker.Transition(run.StateFiltering); err != nil {
			return tracker.Result(), err
		}
		kept, err := p.filter.Apply(ctx, batch.Records, bounds)
		if err != nil {
			return p.cancel(tracker, err)
		}
		if err := tracker.Collect(kept); err != nil {
			return tracker.Result(), err
		}
		p.metrics.observeRecords(len(kept), len(batch.Records)-len(kept), batch.Malformed)

		if err := tracker.Transition(run.StatePaginating); err != nil {
			return tracker.Result(), err
		}
		p.report(ctx, tracker)
	}

	if err := cursor.Err(); err != nil {
		return p.cancel(tracker, err)
	}

	if err := tracker.Transition(run.StateDone); err != nil {
		return tracker.Result(), err
	}

	result := tracker.Result()
	logger.InfoContext(ctx, "retrieval finished",
		slog.String("organism", result.OrganismName()),
		slog.Int("matched", result.ResultCount()),
		slog.Int("kept", result.RecordCount()),
		slog.Int("batches_fetched", result.BatchesFetched()),
		slog.Int("batches_skipped", len(result.SkippedBatches())),
		slog.Int("malformed", result.MalformedRecords()),
	)
	return result, nil
}

func (p *Pipeline) report(ctx context.Context, tracker *run.Tracker) {
	if p.reporter == nil {
		return
	}
	// terminal snapshots are delivered even after ctx is cancelled
	if err := p.reporter.OnProgress(context.WithoutCancel(ctx), tracker.Progress()); err != nil {
		p.logger.WarnContext(ctx, "progress report failed", slog.String("error", err.Error()))
	}
}

func (p *Pipeline) cancel(tracker *run.Tracker, cause error) (run.Result, error) {
	err := fmt.Errorf("%w: %w", run.ErrCancelled, cause)
	if terr := tracker.Cancel(err); terr != nil {
		return tracker.Result(), errors.Join(err, terr)
	}
	p.logger.Warn("retrieval cancelled",
		slog.String("run_id", tracker.ID()),
		slog.Int("kept", tracker.Result().RecordCount()),
	)
	return tracker.Result(), err
}
