package query

import (
	"errors"
	"fmt"
)

// Query errors.
var (
	ErrNotFound      = errors.New("taxonomy identifier not found")
	ErrTransport     = errors.New("remote service unavailable")
	ErrInvalidTaxID  = errors.New("invalid taxonomy identifier")
	ErrMalformedData = errors.New("malformed record data")
)

// BatchFailure records a batch that was skipped. It is recoverable.
type BatchFailure struct {
	Request BatchRequest
	Err     error
}

// Error implements error.
func (f BatchFailure) Error() string {
	return fmt.Sprintf("batch at offset %d (size %d): %v", f.Request.Offset(), f.Request.Size(), f.Err)
}

// Unwrap returns the underlying cause.
func (f BatchFailure) Unwrap() error {
	return f.Err
}
