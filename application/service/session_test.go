package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/helixml/taxseq/domain/query"
	"github.com/helixml/taxseq/domain/query/mocks"
)

func TestSessionBuilder_Open(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockTaxonomyResolver(ctrl)
	searcher := mocks.NewMockSearcher(ctrl)

	resolver.EXPECT().ScientificName(gomock.Any(), query.TaxID(9606)).Return("Homo sapiens", nil).Times(1)
	searcher.EXPECT().Search(gomock.Any(), "txid9606[Organism]").
		Return(query.SearchResult{Count: 250, SessionToken: "MCID_abc", QueryKey: "1"}, nil).Times(1)

	b := NewSessionBuilder(resolver, searcher, discardLogger())
	session, err := b.Open(context.Background(), 9606)

	require.NoError(t, err)
	assert.Equal(t, "Homo sapiens", session.OrganismName())
	assert.Equal(t, 250, session.ResultCount())
	assert.Equal(t, "MCID_abc", session.SessionToken())
	assert.Equal(t, "1", session.QueryKey())
	assert.False(t, session.Empty())
}

func TestSessionBuilder_Open_NoMatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockTaxonomyResolver(ctrl)
	searcher := mocks.NewMockSearcher(ctrl)

	resolver.EXPECT().ScientificName(gomock.Any(), gomock.Any()).Return("Obscurus rarus", nil)
	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(query.SearchResult{}, nil)

	session, err := NewSessionBuilder(resolver, searcher, discardLogger()).Open(context.Background(), 123)

	require.NoError(t, err)
	assert.True(t, session.Empty())
	assert.Equal(t, "Obscurus rarus", session.OrganismName())
}

func TestSessionBuilder_Open_NotFoundSkipsSearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockTaxonomyResolver(ctrl)
	searcher := mocks.NewMockSearcher(ctrl)

	resolver.EXPECT().ScientificName(gomock.Any(), gomock.Any()).Return("", query.ErrNotFound)

	_, err := NewSessionBuilder(resolver, searcher, discardLogger()).Open(context.Background(), 999999999)

	assert.ErrorIs(t, err, query.ErrNotFound)
	assert.NotErrorIs(t, err, query.ErrTransport)
}

func TestSessionBuilder_Open_UnclassifiedErrorsAreTransport(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockTaxonomyResolver(ctrl)
	searcher := mocks.NewMockSearcher(ctrl)

	resolver.EXPECT().ScientificName(gomock.Any(), gomock.Any()).Return("Homo sapiens", nil)
	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(query.SearchResult{}, errors.New("connection reset"))

	_, err := NewSessionBuilder(resolver, searcher, discardLogger()).Open(context.Background(), 9606)

	assert.ErrorIs(t, err, query.ErrTransport)
	assert.Contains(t, err.Error(), "connection reset")
}
