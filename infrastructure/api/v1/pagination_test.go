package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", DefaultPageSize},
		{"?limit=5", 5},
		{"?limit=0", DefaultPageSize},
		{"?limit=-3", DefaultPageSize},
		{"?limit=abc", DefaultPageSize},
		{"?limit=1000", MaxPageSize},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/runs"+tt.query, nil)
		assert.Equal(t, tt.want, ParseLimit(req), tt.query)
	}
}
