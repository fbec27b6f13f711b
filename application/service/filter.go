package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/helixml/taxseq/domain/sequence"
)

// BatchFilter applies the length filter to a batch, optionally split
// across goroutines. Output order always matches input order.
type BatchFilter struct {
	parallelism int
}

// NewBatchFilter creates a BatchFilter. Parallelism below 2 filters inline.
func NewBatchFilter(parallelism int) *BatchFilter {
	if parallelism < 1 {
		parallelism = 1
	}
	return &BatchFilter{parallelism: parallelism}
}

// Apply returns the records of raw that fall within bounds.
func (f *BatchFilter) Apply(ctx context.Context, raw []sequence.RawRecord, bounds sequence.Bounds) ([]sequence.FilteredRecord, error) {
	if f.parallelism == 1 || len(raw) < 2*f.parallelism {
		return filterSlice(raw, bounds), nil
	}

	chunkSize := (len(raw) + f.parallelism - 1) / f.parallelism
	chunks := make([][]sequence.FilteredRecord, (len(raw)+chunkSize-1)/chunkSize)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.parallelism)
	for i := range chunks {
		lo := i * chunkSize
		hi := min(lo+chunkSize, len(raw))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			chunks[i] = filterSlice(raw[lo:hi], bounds)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []sequence.FilteredRecord
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out, nil
}

func filterSlice(raw []sequence.RawRecord, bounds sequence.Bounds) []sequence.FilteredRecord {
	var out []sequence.FilteredRecord
	for _, r := range raw {
		if rec, ok := sequence.Filter(r, bounds); ok {
			out = append(out, rec)
		}
	}
	return out
}
