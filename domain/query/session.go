package query

// QuerySession is the server-side handle for one organism's search results.
// It is built once and never modified.
type QuerySession struct {
	taxID        TaxID
	organismName string
	resultCount  int
	sessionToken string
	queryKey     string
}

// NewQuerySession creates a QuerySession.
func NewQuerySession(taxID TaxID, organismName string, resultCount int, sessionToken, queryKey string) QuerySession {
	if resultCount < 0 {
		resultCount = 0
	}
	return QuerySession{
		taxID:        taxID,
		organismName: organismName,
		resultCount:  resultCount,
		sessionToken: sessionToken,
		queryKey:     queryKey,
	}
}

// NewEmptySession creates a session for a search with no matches.
func NewEmptySession(taxID TaxID, organismName string) QuerySession {
	return QuerySession{taxID: taxID, organismName: organismName}
}

// TaxID returns the taxonomy identifier.
func (s QuerySession) TaxID() TaxID { return s.taxID }

// OrganismName returns the resolved scientific name.
func (s QuerySession) OrganismName() string { return s.organismName }

// ResultCount returns the number of matching records.
func (s QuerySession) ResultCount() int { return s.resultCount }

// SessionToken returns the server-side history token (WebEnv).
func (s QuerySession) SessionToken() string { return s.sessionToken }

// QueryKey returns the key of the stored search within the session.
func (s QuerySession) QueryKey() string { return s.queryKey }

// Empty reports whether the search matched nothing.
func (s QuerySession) Empty() bool { return s.resultCount == 0 }

// SearchResult is what a nucleotide search returns.
type SearchResult struct {
	Count        int
	SessionToken string
	QueryKey     string
}
