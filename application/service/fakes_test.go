package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/helixml/taxseq/domain/query"
	"github.com/helixml/taxseq/domain/run"
	"github.com/helixml/taxseq/domain/sequence"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeResolver struct {
	names map[query.TaxID]string
	err   error
	calls int
}

func (f *fakeResolver) ScientificName(_ context.Context, taxID query.TaxID) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	name, ok := f.names[taxID]
	if !ok {
		return "", query.ErrNotFound
	}
	return name, nil
}

type fakeSearcher struct {
	count int
	err   error
	calls int
}

func (f *fakeSearcher) Search(_ context.Context, _ string) (query.SearchResult, error) {
	f.calls++
	if f.err != nil {
		return query.SearchResult{}, f.err
	}
	if f.count == 0 {
		return query.SearchResult{}, nil
	}
	return query.SearchResult{Count: f.count, SessionToken: "WEBENV", QueryKey: "1"}, nil
}

type fakeFetcher struct {
	mu        sync.Mutex
	records   []sequence.RawRecord
	fail      map[int]error
	malformed map[int][]error
	calls     []query.BatchRequest
	onFetch   func(query.BatchRequest)
}

func (f *fakeFetcher) Fetch(ctx context.Context, _ query.QuerySession, req query.BatchRequest) (query.FetchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	hook := f.onFetch
	err := f.fail[req.Offset()]
	malformed := f.malformed[req.Offset()]
	f.mu.Unlock()

	if hook != nil {
		hook(req)
	}
	if err := ctx.Err(); err != nil {
		return query.FetchResult{}, err
	}
	if err != nil {
		return query.FetchResult{}, err
	}
	end := min(req.End(), len(f.records))
	return query.FetchResult{
		Records:   append([]sequence.RawRecord{}, f.records[req.Offset():end]...),
		Malformed: malformed,
	}, nil
}

func (f *fakeFetcher) offsets() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Offset()
	}
	return out
}

type countingThrottle struct {
	mu    sync.Mutex
	waits int
}

func (c *countingThrottle) Wait(ctx context.Context) error {
	c.mu.Lock()
	c.waits++
	c.mu.Unlock()
	return ctx.Err()
}

func (c *countingThrottle) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waits
}

// rawRecords builds n records whose lengths come from length(i).
func rawRecords(n int, length func(i int) int) []sequence.RawRecord {
	out := make([]sequence.RawRecord, n)
	for i := range out {
		out[i] = sequence.NewRawRecordWithLength(fmt.Sprintf("ACC%04d.1", i), length(i), fmt.Sprintf("record %d", i))
	}
	return out
}

type fakeStore struct {
	mu      sync.Mutex
	results map[string]run.Result
	order   []string
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{results: map[string]run.Result{}}
}

func (f *fakeStore) Save(_ context.Context, r run.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.results[r.ID()]; !ok {
		f.order = append(f.order, r.ID())
	}
	f.results[r.ID()] = r
	return nil
}

func (f *fakeStore) Get(_ context.Context, id string) (run.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.results[id]
	if !ok {
		return run.Result{}, run.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) List(_ context.Context, limit int) ([]run.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []run.Result
	for i := len(f.order) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, f.results[f.order[i]])
	}
	return out, nil
}

type fakeReports struct {
	mu     sync.Mutex
	writes []string
}

func (f *fakeReports) Write(_ context.Context, r run.Result, dir string) (run.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, r.ID())
	return run.Report{SummaryPath: dir + "/summary.yaml"}, nil
}

type recordingReporter struct {
	mu       sync.Mutex
	received []run.Progress
}

func (r *recordingReporter) OnProgress(_ context.Context, p run.Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.received = append(r.received, p)
	return nil
}

func (r *recordingReporter) snapshots() []run.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]run.Progress{}, r.received...)
}
