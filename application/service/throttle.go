package service

import (
	"context"
	"time"
)

// DefaultBatchDelay is the pause between consecutive batch requests.
const DefaultBatchDelay = 400 * time.Millisecond

// Throttle paces consecutive batch requests.
type Throttle interface {
	Wait(ctx context.Context) error
}

// FixedDelay waits a constant duration.
type FixedDelay time.Duration

// Wait blocks for the delay or until ctx is done.
func (d FixedDelay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoDelay never waits.
type NoDelay struct{}

// Wait returns immediately.
func (NoDelay) Wait(ctx context.Context) error {
	return ctx.Err()
}
