package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/helixml/taxseq/domain/query"
	"github.com/helixml/taxseq/domain/run"
)

// ErrInvalidParams indicates a search parameters file that fails validation.
var ErrInvalidParams = errors.New("invalid search parameters")

// SearchParams is the on-disk form of one run's inputs.
//
//	taxid: "562"
//	min_length: 1000
//	max_length: 5000
//	batch_size: 100
//	output_dir: ./out
type SearchParams struct {
	TaxID     string `yaml:"taxid"`
	MinLength int    `yaml:"min_length"`
	MaxLength int    `yaml:"max_length"`
	BatchSize int    `yaml:"batch_size,omitempty"`
	OutputDir string `yaml:"output_dir,omitempty"`
}

// LoadSearchParams reads and validates a search parameters file.
func LoadSearchParams(path string) (SearchParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SearchParams{}, fmt.Errorf("read search parameters: %w", err)
	}
	return DecodeSearchParams(bytes.NewReader(data))
}

// DecodeSearchParams decodes and validates search parameters. Unknown keys
// are rejected.
func DecodeSearchParams(r io.Reader) (SearchParams, error) {
	var p SearchParams
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return SearchParams{}, fmt.Errorf("%w: empty document", ErrInvalidParams)
		}
		return SearchParams{}, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	p.TaxID = strings.TrimSpace(p.TaxID)
	if err := p.Validate(); err != nil {
		return SearchParams{}, err
	}
	return p, nil
}

// Validate checks the parameters without touching the network.
func (p SearchParams) Validate() error {
	if _, err := query.ParseTaxID(p.TaxID); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if p.MinLength < 0 {
		return fmt.Errorf("%w: min_length must not be negative", ErrInvalidParams)
	}
	if p.MinLength > p.MaxLength {
		return fmt.Errorf("%w: min_length %d exceeds max_length %d", ErrInvalidParams, p.MinLength, p.MaxLength)
	}
	if p.BatchSize < 0 {
		return fmt.Errorf("%w: batch_size must be positive", ErrInvalidParams)
	}
	return nil
}

// RunParams converts the file into run parameters. A missing batch size
// falls back to fallbackBatchSize.
func (p SearchParams) RunParams(fallbackBatchSize int) (run.Params, error) {
	taxID, err := query.ParseTaxID(p.TaxID)
	if err != nil {
		return run.Params{}, err
	}
	size := p.BatchSize
	if size == 0 {
		size = fallbackBatchSize
	}
	return run.NewParams(taxID, p.MinLength, p.MaxLength, size)
}
