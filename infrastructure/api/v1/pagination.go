package v1

import (
	"net/http"
	"strconv"
)

// DefaultPageSize is the default number of runs listed.
const DefaultPageSize = 20

// MaxPageSize is the maximum allowed page size.
const MaxPageSize = 100

// ParseLimit reads the limit query parameter. Missing or invalid values
// fall back to DefaultPageSize and large values are capped at MaxPageSize.
func ParseLimit(r *http.Request) int {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return DefaultPageSize
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return DefaultPageSize
	}
	return min(n, MaxPageSize)
}
