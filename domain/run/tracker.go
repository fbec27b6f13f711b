package run

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/helixml/taxseq/domain/query"
	"github.com/helixml/taxseq/domain/sequence"
)

// Tracker follows a run through its states and collects its outcome.
type Tracker struct {
	mu             sync.Mutex
	id             string
	params         Params
	state          State
	organismName   string
	resultCount    int
	batchesPlanned int
	batchesFetched int
	skipped        []SkippedBatch
	malformed      int
	errorMessage   string
	collection     *sequence.Accumulator
	startedAt      time.Time
	finishedAt     time.Time
	now            func() time.Time
}

// NewTracker creates a Tracker in the idle state with a fresh run ID.
func NewTracker(params Params) *Tracker {
	return newTracker(params, func() time.Time { return time.Now().UTC() })
}

func newTracker(params Params, now func() time.Time) *Tracker {
	return &Tracker{
		id:         uuid.NewString(),
		params:     params,
		state:      StateIdle,
		collection: sequence.NewAccumulator(),
		startedAt:  now(),
		now:        now,
	}
}

// ID returns the run identifier.
func (t *Tracker) ID() string { return t.id }

// State returns the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Transition moves to next, rejecting illegal changes.
func (t *Tracker) Transition(next State) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, t.state, next)
	}
	t.state = next
	if next.IsTerminal() {
		t.finishedAt = t.now()
		t.collection.Freeze()
	}
	return nil
}

// Fail moves to the failed state and records cause.
func (t *Tracker) Fail(cause error) error {
	t.mu.Lock()
	if cause != nil {
		t.errorMessage = cause.Error()
	}
	t.mu.Unlock()
	return t.Transition(StateFailed)
}

// Cancel moves to the cancelled state and records cause.
func (t *Tracker) Cancel(cause error) error {
	t.mu.Lock()
	if cause != nil {
		t.errorMessage = cause.Error()
	}
	t.mu.Unlock()
	return t.Transition(StateCancelled)
}

// Opened records the search session and the number of planned batches.
func (t *Tracker) Opened(session query.QuerySession, batches int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.organismName = session.OrganismName()
	t.resultCount = session.ResultCount()
	t.batchesPlanned = batches
}

// Fetched records a successfully fetched batch and its malformed records.
func (t *Tracker) Fetched(malformed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.batchesFetched++
	t.malformed += malformed
}

// Skipped records a batch that failed.
func (t *Tracker) Skipped(f query.BatchFailure) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.skipped = append(t.skipped, NewSkippedBatch(f))
}

// Collect appends one batch's filtered records.
func (t *Tracker) Collect(records []sequence.FilteredRecord) error {
	return t.collection.Append(records...)
}

// Result returns a snapshot of the run outcome.
func (t *Tracker) Result() Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	records := t.collection.Records()
	return Result{
		id:             t.id,
		params:         t.params,
		organismName:   t.organismName,
		resultCount:    t.resultCount,
		state:          t.state,
		records:        records,
		recordCount:    len(records),
		batchesPlanned: t.batchesPlanned,
		batchesFetched: t.batchesFetched,
		skipped:        append([]SkippedBatch{}, t.skipped...),
		malformed:      t.malformed,
		errorMessage:   t.errorMessage,
		startedAt:      t.startedAt,
		finishedAt:     t.finishedAt,
	}
}
