package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/taxseq/infrastructure/api/jsonapi"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, method, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", nil)
	if key != "" {
		req.Header.Set(APIKeyHeader, key)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestWriteProtect_SafeMethodsPassWithoutKey(t *testing.T) {
	handler := WriteProtect(NewAuthConfigWithKeys([]string{"secret"}))(okHandler())

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		t.Run(method, func(t *testing.T) {
			assert.Equal(t, http.StatusOK, serve(handler, method, "").Code)
		})
	}
}

func TestWriteProtect_MutatingMethods(t *testing.T) {
	handler := WriteProtect(NewAuthConfigWithKeys([]string{"secret"}))(okHandler())

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, serve(handler, method, "").Code)
			assert.Equal(t, http.StatusUnauthorized, serve(handler, method, "wrong").Code)
			assert.Equal(t, http.StatusOK, serve(handler, method, "secret").Code)
		})
	}
}

func TestWriteProtect_RejectionIsJSONAPIError(t *testing.T) {
	handler := WriteProtectAuth([]string{"secret"})(okHandler())

	w := serve(handler, http.MethodPost, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/vnd.api+json", w.Header().Get("Content-Type"))

	var doc jsonapi.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Len(t, doc.Errors, 1)
	assert.Equal(t, "401", doc.Errors[0].Status)
	assert.Contains(t, doc.Errors[0].Detail, APIKeyHeader)
}

func TestWriteProtect_DisabledPassesAll(t *testing.T) {
	for _, keys := range [][]string{nil, {""}} {
		handler := WriteProtect(NewAuthConfigWithKeys(keys))(okHandler())
		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
			assert.Equal(t, http.StatusOK, serve(handler, method, "").Code, method)
		}
	}
}
