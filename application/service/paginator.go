package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/helixml/taxseq/domain/query"
	"github.com/helixml/taxseq/domain/sequence"
)

// Batch is the outcome of one planned request.
type Batch struct {
	Request   query.BatchRequest
	Records   []sequence.RawRecord
	Malformed int
	Failure   *query.BatchFailure
}

// Failed reports whether the batch was skipped.
func (b Batch) Failed() bool { return b.Failure != nil }

// Paginator turns a search session into a sequence of fetched batches.
type Paginator struct {
	fetcher  query.BatchFetcher
	throttle Throttle
	policy   query.ParsePolicy
	metrics  *Metrics
	logger   *slog.Logger
}

// PaginatorOption configures a Paginator.
type PaginatorOption func(*Paginator)

// WithThrottle sets the pacing between batches.
func WithThrottle(t Throttle) PaginatorOption {
	return func(p *Paginator) { p.throttle = t }
}

// WithParsePolicy sets how malformed records affect their batch.
func WithParsePolicy(policy query.ParsePolicy) PaginatorOption {
	return func(p *Paginator) { p.policy = policy }
}

// WithPaginatorMetrics sets the metrics sink.
func WithPaginatorMetrics(m *Metrics) PaginatorOption {
	return func(p *Paginator) { p.metrics = m }
}

// NewPaginator creates a new Paginator.
func NewPaginator(fetcher query.BatchFetcher, logger *slog.Logger, opts ...PaginatorOption) *Paginator {
	p := &Paginator{
		fetcher:  fetcher,
		throttle: FixedDelay(DefaultBatchDelay),
		policy:   query.ParsePolicySkipRecord,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open plans the batches of session. The returned cursor performs no
// request until Next is called.
func (p *Paginator) Open(session query.QuerySession, size int) *Cursor {
	return &Cursor{
		paginator: p,
		session:   session,
		plan:      query.Plan(session.ResultCount(), size),
	}
}

// Cursor walks a plan one batch at a time. It cannot be restarted.
type Cursor struct {
	paginator *Paginator
	session   query.QuerySession
	plan      []query.BatchRequest
	next      int
	err       error
}

// Planned returns the number of batches in the plan.
func (c *Cursor) Planned() int { return len(c.plan) }

// Err returns the context error that stopped the cursor, if any.
func (c *Cursor) Err() error { return c.err }

// Next fetches the next batch and then waits on the throttle unless the plan
// is exhausted. It returns false once the plan is exhausted or ctx is done;
// a batch in flight when ctx ends is dropped.
func (c *Cursor) Next(ctx context.Context) (Batch, bool) {
	if c.err != nil || c.next >= len(c.plan) {
		return Batch{}, false
	}
	if err := ctx.Err(); err != nil {
		c.err = err
		return Batch{}, false
	}

	request := c.plan[c.next]
	c.next++

	batch := c.paginator.fetch(ctx, c.session, request)
	if err := ctx.Err(); err != nil {
		c.err = err
		return Batch{}, false
	}

	// the pause only spaces out requests, so none follows the last batch
	if c.next < len(c.plan) {
		if err := c.paginator.throttle.Wait(ctx); err != nil {
			c.err = err
		}
	}
	return batch, true
}

func (p *Paginator) fetch(ctx context.Context, session query.QuerySession, request query.BatchRequest) Batch {
	p.logger.InfoContext(ctx, fmt.Sprintf("fetching records %d to %d", request.Offset()+1, request.End()),
		slog.String("taxid", session.TaxID().String()),
	)

	start := time.Now()
	result, err := p.fetcher.Fetch(ctx, session, request)
	p.metrics.observeFetch(time.Since(start), err)

	if err == nil && len(result.Malformed) > 0 && p.policy == query.ParsePolicyAbortBatch {
		err = fmt.Errorf("%d malformed records: %w", len(result.Malformed), errors.Join(result.Malformed...))
	}

	if err != nil {
		if ctx.Err() == nil {
			p.logger.WarnContext(ctx, "skipping batch",
				slog.Int("offset", request.Offset()),
				slog.Int("size", request.Size()),
				slog.String("error", err.Error()),
			)
		}
		return Batch{
			Request: request,
			Failure: &query.BatchFailure{Request: request, Err: err},
		}
	}

	for _, m := range result.Malformed {
		p.logger.WarnContext(ctx, "skipping malformed record", slog.Int("offset", request.Offset()), slog.String("error", m.Error()))
	}
	return Batch{
		Request:   request,
		Records:   result.Records,
		Malformed: len(result.Malformed),
	}
}
