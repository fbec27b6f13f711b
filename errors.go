package taxseq

import (
	"errors"

	"github.com/helixml/taxseq/domain/query"
	"github.com/helixml/taxseq/domain/run"
)

// Exported errors for library consumers.
var (
	// ErrNoDatabase indicates no database was configured.
	ErrNoDatabase = errors.New("taxseq: no database configured")

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("taxseq: client is closed")

	// ErrNotFound indicates an unknown taxonomy identifier.
	ErrNotFound = query.ErrNotFound

	// ErrTransport indicates the record service could not be reached.
	ErrTransport = query.ErrTransport

	// ErrInvalidTaxID indicates a malformed taxonomy identifier.
	ErrInvalidTaxID = query.ErrInvalidTaxID

	// ErrCancelled indicates a run stopped before pagination finished.
	ErrCancelled = run.ErrCancelled

	// ErrRunNotFound indicates an unknown run ID.
	ErrRunNotFound = run.ErrNotFound
)
