package entrez

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/helixml/taxseq/domain/query"
)

// Error describes a failed E-utilities call.
type Error struct {
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

// NewError creates a new Error.
func NewError(operation string, statusCode int, message string, cause error) *Error {
	return &Error{
		Operation:  operation,
		StatusCode: statusCode,
		Message:    message,
		Err:        cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Operation
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: HTTP %d", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is worth another attempt.
func (e *Error) Retryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// isRetryable determines if an error should be retried.
func isRetryable(err error) bool {
	var entrezErr *Error
	if errors.As(err, &entrezErr) && entrezErr.StatusCode != 0 {
		return entrezErr.Retryable()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// transportError wraps a network failure so callers can match query.ErrTransport.
func transportError(operation string, cause error) *Error {
	return NewError(operation, 0, "", fmt.Errorf("%w: %w", query.ErrTransport, cause))
}

// statusError builds an Error for a non-2xx response.
func statusError(operation string, statusCode int, body []byte) *Error {
	msg := string(body)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return NewError(operation, statusCode, msg, query.ErrTransport)
}
