package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/helixml/taxseq/domain/query"
)

// SessionBuilder resolves a taxonomy identifier and opens a search session
// for its nucleotide records.
type SessionBuilder struct {
	resolver query.TaxonomyResolver
	searcher query.Searcher
	logger   *slog.Logger
}

// NewSessionBuilder creates a new SessionBuilder.
func NewSessionBuilder(resolver query.TaxonomyResolver, searcher query.Searcher, logger *slog.Logger) *SessionBuilder {
	return &SessionBuilder{
		resolver: resolver,
		searcher: searcher,
		logger:   logger,
	}
}

// Open performs one taxonomy lookup and one search. A search with no
// matches returns an empty session and no error.
func (b *SessionBuilder) Open(ctx context.Context, taxID query.TaxID) (query.QuerySession, error) {
	name, err := b.resolver.ScientificName(ctx, taxID)
	if err != nil {
		return query.QuerySession{}, fmt.Errorf("resolve taxonomy %s: %w", taxID, classify(ctx, err))
	}
	b.logger.InfoContext(ctx, "resolved organism", slog.String("taxid", taxID.String()), slog.String("organism", name))

	result, err := b.searcher.Search(ctx, taxID.Term())
	if err != nil {
		return query.QuerySession{}, fmt.Errorf("search nucleotide records for %s: %w", taxID, classify(ctx, err))
	}

	if result.Count == 0 {
		b.logger.InfoContext(ctx, "no nucleotide records found", slog.String("taxid", taxID.String()))
		return query.NewEmptySession(taxID, name), nil
	}

	b.logger.Info("found nucleotide records",
		slog.String("taxid", taxID.String()),
		slog.Int("count", result.Count),
	)
	return query.NewQuerySession(taxID, name, result.Count, result.SessionToken, result.QueryKey), nil
}

// classify makes sure a lookup failure matches one of the query errors so
// callers can tell a missing organism from an unreachable service.
func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, query.ErrNotFound), errors.Is(err, query.ErrTransport):
		return err
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return err
	}
	return fmt.Errorf("%w: %w", query.ErrTransport, err)
}
