// Package run models one execution of the retrieval pipeline.
package run

import (
	"errors"
	"fmt"
)

// ErrCancelled indicates a run stopped at a batch boundary because its
// context was cancelled.
var ErrCancelled = errors.New("run cancelled")

// ErrIllegalTransition indicates a state change the pipeline does not allow.
var ErrIllegalTransition = errors.New("illegal state transition")

// State is a pipeline state.
type State string

// State values.
const (
	StateIdle        State = "idle"
	StateSearching   State = "searching"
	StateEmptyResult State = "empty_result"
	StatePaginating  State = "paginating"
	StateFiltering   State = "filtering"
	StateDone        State = "done"
	StateFailed      State = "failed"
	StateCancelled   State = "cancelled"
)

var transitions = map[State][]State{
	StateIdle:       {StateSearching, StateFailed, StateCancelled},
	StateSearching:  {StateEmptyResult, StatePaginating, StateFailed, StateCancelled},
	StatePaginating: {StateFiltering, StateDone, StateFailed, StateCancelled},
	StateFiltering:  {StatePaginating, StateDone, StateFailed, StateCancelled},
}

// IsTerminal returns true if no further transitions are possible.
func (s State) IsTerminal() bool {
	return s == StateEmptyResult ||
		s == StateDone ||
		s == StateFailed ||
		s == StateCancelled
}

// CanTransitionTo reports whether next may follow s.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseState parses a stored state name.
func ParseState(s string) (State, error) {
	st := State(s)
	switch st {
	case StateIdle, StateSearching, StateEmptyResult, StatePaginating,
		StateFiltering, StateDone, StateFailed, StateCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown run state %q", s)
}

func (s State) String() string { return string(s) }
