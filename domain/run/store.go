package run

import (
	"context"
	"errors"
)

// ErrNotFound indicates no run exists with the requested ID.
var ErrNotFound = errors.New("run not found")

// Store persists run results.
type Store interface {
	// Save inserts or replaces a result and its records.
	Save(ctx context.Context, result Result) error
	// Get returns a result with its records.
	Get(ctx context.Context, id string) (Result, error)
	// List returns the most recent results first, without records.
	List(ctx context.Context, limit int) ([]Result, error)
}
