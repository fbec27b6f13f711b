package tracking

import (
	"context"
	"log/slog"
	"sync"

	"github.com/helixml/taxseq/domain/run"
)

// Broadcast forwards progress to every subscribed reporter. A failing
// reporter is logged and does not stop delivery to the others.
type Broadcast struct {
	mu          sync.RWMutex
	subscribers []run.Reporter
	logger      *slog.Logger
}

// NewBroadcast creates a Broadcast with the given initial subscribers.
func NewBroadcast(logger *slog.Logger, subscribers ...run.Reporter) *Broadcast {
	return &Broadcast{
		subscribers: append([]run.Reporter{}, subscribers...),
		logger:      logger,
	}
}

// Subscribe adds a reporter.
func (b *Broadcast) Subscribe(reporter run.Reporter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, reporter)
}

// OnProgress delivers progress to all subscribers.
func (b *Broadcast) OnProgress(ctx context.Context, progress run.Progress) error {
	b.mu.RLock()
	subscribers := make([]run.Reporter, len(b.subscribers))
	copy(subscribers, b.subscribers)
	b.mu.RUnlock()

	for _, s := range subscribers {
		if err := s.OnProgress(ctx, progress); err != nil {
			b.logger.ErrorContext(ctx, "failed to notify subscriber",
				slog.String("error", err.Error()),
				slog.String("run_id", progress.RunID()),
			)
		}
	}
	return nil
}
