package entrez

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachingTransport_CacheHit(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		_, _ = w.Write([]byte(`{"esearchresult":{"count":"0"}}`))
	}))
	defer srv.Close()

	transport, err := NewCachingTransport(t.TempDir(), srv.Client().Transport)
	require.NoError(t, err)

	for i := range 3 {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/esearch.fcgi?db=nucleotide&term=x", nil)
		resp, err := transport.RoundTrip(req)
		require.NoError(t, err, "request %d", i)
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		assert.Equal(t, `{"esearchresult":{"count":"0"}}`, string(body))
	}

	assert.Equal(t, int32(1), count.Load())
}

func TestCachingTransport_IgnoresCredentials(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	transport, err := NewCachingTransport(t.TempDir(), srv.Client().Transport)
	require.NoError(t, err)

	for _, key := range []string{"a", "b"} {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/efetch.fcgi?db=taxonomy&id=1&api_key="+key, nil)
		resp, err := transport.RoundTrip(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	assert.Equal(t, int32(1), count.Load())
}

func TestCachingTransport_ErrorNotCached(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := t.TempDir()
	transport, err := NewCachingTransport(dir, srv.Client().Transport)
	require.NoError(t, err)

	for range 2 {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/efetch.fcgi", nil)
		resp, err := transport.RoundTrip(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		_ = resp.Body.Close()
	}

	assert.Equal(t, int32(2), count.Load())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
