// Package tracking delivers run progress to loggers and other reporters.
package tracking

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/helixml/taxseq/domain/run"
)

var (
	_ run.Reporter = (*Cooldown)(nil)
	_ io.Closer    = (*Cooldown)(nil)
)

// Cooldown wraps a Reporter and limits how often progress for each run is
// delivered. Terminal states are delivered immediately. Other updates are
// delivered at most once per interval; the latest pending snapshot is
// flushed when the interval elapses or a terminal state arrives.
type Cooldown struct {
	inner    run.Reporter
	interval time.Duration
	mu       sync.Mutex
	entries  map[string]*cooldownEntry
}

type cooldownEntry struct {
	lastFlush time.Time
	pending   *run.Progress
	timer     *time.Timer
}

// NewCooldown creates a Cooldown delivering to inner at most once per
// interval for each run.
func NewCooldown(inner run.Reporter, interval time.Duration) *Cooldown {
	return &Cooldown{
		inner:    inner,
		interval: interval,
		entries:  make(map[string]*cooldownEntry),
	}
}

// OnProgress receives a progress snapshot.
func (c *Cooldown) OnProgress(ctx context.Context, progress run.Progress) error {
	id := progress.RunID()

	c.mu.Lock()

	if progress.State().IsTerminal() {
		if entry := c.entries[id]; entry != nil {
			if entry.timer != nil {
				entry.timer.Stop()
			}
			delete(c.entries, id)
		}
		c.mu.Unlock()
		return c.inner.OnProgress(ctx, progress)
	}

	entry, exists := c.entries[id]
	if !exists {
		entry = &cooldownEntry{}
		c.entries[id] = entry
	}

	elapsed := time.Since(entry.lastFlush)
	if elapsed >= c.interval {
		if entry.timer != nil {
			entry.timer.Stop()
			entry.timer = nil
		}
		entry.pending = nil
		entry.lastFlush = time.Now()
		c.mu.Unlock()
		return c.inner.OnProgress(ctx, progress)
	}

	latest := progress
	entry.pending = &latest
	if entry.timer == nil {
		entry.timer = time.AfterFunc(c.interval-elapsed, func() {
			c.flushPending(id)
		})
	}

	c.mu.Unlock()
	return nil
}

// Close flushes pending snapshots and stops all timers.
func (c *Cooldown) Close() error {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[string]*cooldownEntry)
	c.mu.Unlock()

	for _, entry := range entries {
		if entry.timer != nil {
			entry.timer.Stop()
		}
		if entry.pending != nil {
			_ = c.inner.OnProgress(context.Background(), *entry.pending)
		}
	}
	return nil
}

func (c *Cooldown) flushPending(id string) {
	c.mu.Lock()
	entry, exists := c.entries[id]
	if !exists {
		c.mu.Unlock()
		return
	}
	entry.timer = nil
	if entry.pending == nil {
		c.mu.Unlock()
		return
	}

	progress := *entry.pending
	entry.pending = nil
	entry.lastFlush = time.Now()
	c.mu.Unlock()

	_ = c.inner.OnProgress(context.Background(), progress)
}
