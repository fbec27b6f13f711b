package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/taxseq/domain/query"
	"github.com/helixml/taxseq/domain/run"
	"github.com/helixml/taxseq/domain/sequence"
	"github.com/helixml/taxseq/infrastructure/api/jsonapi"
	"github.com/helixml/taxseq/internal/config"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError(404, "resource not found", nil)

	assert.Equal(t, 404, err.Code())
	assert.Equal(t, "resource not found", err.Message())
	assert.Equal(t, "api error 404: resource not found", err.Error())
	assert.NoError(t, err.Unwrap())

	cause := errors.New("underlying error")
	wrapped := NewAPIError(500, "internal error", cause)
	assert.Equal(t, "api error 500: internal error: underlying error", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestAuthenticationError(t *testing.T) {
	err := NewAuthenticationError("invalid token")
	assert.Equal(t, "authentication failed: invalid token", err.Error())
	assert.ErrorIs(t, err, ErrAuthentication)

	wrapped := fmt.Errorf("request failed: %w", err)
	assert.ErrorIs(t, wrapped, ErrAuthentication)
	var target *AuthenticationError
	assert.ErrorAs(t, wrapped, &target)
}

func TestServerError(t *testing.T) {
	err := NewServerError(503, "service unavailable")

	assert.Equal(t, 503, err.StatusCode())
	assert.Equal(t, "service unavailable", err.Message())
	assert.Equal(t, "server error 503: service unavailable", err.Error())
	assert.ErrorIs(t, err, ErrServer)
}

func TestWriteError_StatusMapping(t *testing.T) {
	var syntaxErr error = json.Unmarshal([]byte("{"), &struct{}{})

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown taxid", fmt.Errorf("open: %w", query.ErrNotFound), http.StatusNotFound},
		{"unknown run", fmt.Errorf("%w: abc", run.ErrNotFound), http.StatusNotFound},
		{"invalid taxid", query.ErrInvalidTaxID, http.StatusBadRequest},
		{"invalid bounds", sequence.ErrInvalidBounds, http.StatusBadRequest},
		{"invalid batch size", run.ErrInvalidBatchSize, http.StatusBadRequest},
		{"invalid params", config.ErrInvalidParams, http.StatusBadRequest},
		{"bad json", syntaxErr, http.StatusBadRequest},
		{"transport", fmt.Errorf("esearch: %w", query.ErrTransport), http.StatusBadGateway},
		{"cancelled", run.ErrCancelled, http.StatusServiceUnavailable},
		{"api error", NewAPIError(http.StatusConflict, "busy", nil), http.StatusConflict},
		{"server error", NewServerError(http.StatusServiceUnavailable, "draining"), http.StatusServiceUnavailable},
		{"auth", NewAuthenticationError("nope"), http.StatusUnauthorized},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
			w := httptest.NewRecorder()

			WriteError(w, req, tt.err, nil)

			assert.Equal(t, tt.status, w.Code)
			var doc jsonapi.Document
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
			require.Len(t, doc.Errors, 1)
			assert.Equal(t, fmt.Sprint(tt.status), doc.Errors[0].Status)
			assert.NotEmpty(t, doc.Errors[0].Detail)
		})
	}
}

func TestWriteError_LogsAtErrorForServerFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/x", nil)
	WriteError(httptest.NewRecorder(), req, errors.New("disk full"), logger)
	WriteError(httptest.NewRecorder(), req, run.ErrNotFound, logger)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"level":"ERROR"`)
	assert.Contains(t, lines[0], `"status":500`)
	assert.Contains(t, lines[1], `"level":"WARN"`)
	assert.Contains(t, lines[1], `"status":404`)
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusCreated, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
