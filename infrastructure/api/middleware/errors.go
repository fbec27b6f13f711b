package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/helixml/taxseq/application/service"
	"github.com/helixml/taxseq/domain/query"
	"github.com/helixml/taxseq/domain/run"
	"github.com/helixml/taxseq/domain/sequence"
	"github.com/helixml/taxseq/infrastructure/api/jsonapi"
	"github.com/helixml/taxseq/internal/config"
)

// Sentinel errors for errors.Is matching.
var (
	ErrAuthentication = errors.New("authentication failed")
	ErrServer         = errors.New("server error")
)

// APIError is an error with an explicit HTTP status.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates a new APIError.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{code: code, message: message, cause: cause}
}

// Code returns the HTTP status code.
func (e *APIError) Code() int { return e.code }

// Message returns the client-facing message.
func (e *APIError) Message() string { return e.message }

// Error implements error.
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

// Unwrap returns the cause.
func (e *APIError) Unwrap() error { return e.cause }

// AuthenticationError indicates a missing or invalid API key.
type AuthenticationError struct {
	message string
}

// NewAuthenticationError creates a new AuthenticationError.
func NewAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{message: message}
}

// Error implements error.
func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.message
}

// Is matches ErrAuthentication.
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// ServerError indicates a failure on the server side.
type ServerError struct {
	statusCode int
	message    string
}

// NewServerError creates a new ServerError.
func NewServerError(statusCode int, message string) *ServerError {
	return &ServerError{statusCode: statusCode, message: message}
}

// StatusCode returns the HTTP status code.
func (e *ServerError) StatusCode() int { return e.statusCode }

// Message returns the client-facing message.
func (e *ServerError) Message() string { return e.message }

// Error implements error.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.statusCode, e.message)
}

// Is matches ErrServer.
func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}

// WriteError writes a JSON:API formatted error response.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := http.StatusInternalServerError
	title := "Internal Server Error"
	detail := err.Error()

	var apiErr *APIError
	var serverErr *ServerError
	var authErr *AuthenticationError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code()
		title = http.StatusText(status)
		detail = apiErr.Message()
	case errors.As(err, &serverErr):
		status = serverErr.StatusCode()
		title = "Server Error"
		detail = serverErr.Message()
	case errors.As(err, &authErr):
		status = http.StatusUnauthorized
		title = "Authentication Failed"
	case errors.Is(err, query.ErrNotFound), errors.Is(err, run.ErrNotFound):
		status = http.StatusNotFound
		title = "Not Found"
	case errors.Is(err, query.ErrInvalidTaxID),
		errors.Is(err, sequence.ErrInvalidBounds),
		errors.Is(err, run.ErrInvalidBatchSize),
		errors.Is(err, config.ErrInvalidParams),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr):
		status = http.StatusBadRequest
		title = "Validation Error"
	case errors.Is(err, query.ErrTransport):
		status = http.StatusBadGateway
		title = "Bad Gateway"
	case errors.Is(err, run.ErrCancelled):
		status = http.StatusServiceUnavailable
		title = "Run Cancelled"
	case errors.Is(err, service.ErrNoStore):
		status = http.StatusNotImplemented
		title = "Not Implemented"
	}

	requestID := middleware.GetReqID(r.Context())

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "request error",
			slog.Int("status", status),
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path),
		)
	}

	e := jsonapi.NewError(strconv.Itoa(status), title, detail)
	e.ID = requestID

	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonapi.NewErrorResponse(e))
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
