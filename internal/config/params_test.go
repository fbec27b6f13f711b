package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/taxseq/domain/query"
)

func TestLoadSearchParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	content := `taxid: 562
min_length: 1000
max_length: 5000
batch_size: 50
output_dir: ./out
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := LoadSearchParams(path)
	require.NoError(t, err)

	assert.Equal(t, "562", p.TaxID)
	assert.Equal(t, 1000, p.MinLength)
	assert.Equal(t, 5000, p.MaxLength)
	assert.Equal(t, 50, p.BatchSize)
	assert.Equal(t, "./out", p.OutputDir)

	params, err := p.RunParams(100)
	require.NoError(t, err)
	assert.Equal(t, query.TaxID(562), params.TaxID())
	assert.Equal(t, 50, params.BatchSize())
	assert.Equal(t, 1000, params.Bounds().Min())
}

func TestSearchParams_RunParams_FallbackBatchSize(t *testing.T) {
	p := SearchParams{TaxID: "9606", MinLength: 0, MaxLength: 10}

	params, err := p.RunParams(25)
	require.NoError(t, err)
	assert.Equal(t, 25, params.BatchSize())
}

func TestDecodeSearchParams_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"non numeric taxid", "taxid: abc\nmin_length: 1\nmax_length: 2\n"},
		{"missing taxid", "min_length: 1\nmax_length: 2\n"},
		{"negative min", "taxid: 1\nmin_length: -1\nmax_length: 2\n"},
		{"min above max", "taxid: 1\nmin_length: 3\nmax_length: 2\n"},
		{"negative batch", "taxid: 1\nmin_length: 1\nmax_length: 2\nbatch_size: -5\n"},
		{"unknown key", "taxid: 1\nmin_length: 1\nmax_length: 2\nspecies: coli\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSearchParams(strings.NewReader(tt.content))
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestDecodeSearchParams_EqualBounds(t *testing.T) {
	p, err := DecodeSearchParams(strings.NewReader("taxid: \"7\"\nmin_length: 500\nmax_length: 500\n"))
	require.NoError(t, err)
	assert.Equal(t, 500, p.MinLength)
	assert.Equal(t, 500, p.MaxLength)
}
