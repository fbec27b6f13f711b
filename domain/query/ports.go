package query

import (
	"context"

	"github.com/helixml/taxseq/domain/sequence"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// TaxonomyResolver maps a taxonomy identifier to its scientific name.
// It returns ErrNotFound for unknown identifiers.
type TaxonomyResolver interface {
	ScientificName(ctx context.Context, taxID TaxID) (string, error)
}

// Searcher runs a nucleotide search and keeps its results server-side.
type Searcher interface {
	Search(ctx context.Context, term string) (SearchResult, error)
}

// BatchFetcher retrieves one window of a stored search.
type BatchFetcher interface {
	Fetch(ctx context.Context, session QuerySession, request BatchRequest) (FetchResult, error)
}

// FetchResult holds the records parsed from one batch and the errors of
// records that could not be parsed.
type FetchResult struct {
	Records   []sequence.RawRecord
	Malformed []error
}
