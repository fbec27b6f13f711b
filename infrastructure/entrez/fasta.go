package entrez

import (
	"errors"
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/helixml/taxseq/domain/query"
	"github.com/helixml/taxseq/domain/sequence"
)

// ParseFASTA reads FASTA records. A read error after the first record is
// reported in Malformed and ends the scan.
func ParseFASTA(r io.Reader) (query.FetchResult, error) {
	reader := fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNAredundant))

	var result query.FetchResult
	for {
		s, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if len(result.Records) == 0 && len(result.Malformed) == 0 {
				return result, fmt.Errorf("%w: %w", query.ErrMalformedData, err)
			}
			result.Malformed = append(result.Malformed, fmt.Errorf("%w: %w", query.ErrMalformedData, err))
			break
		}

		ls, ok := s.(*linear.Seq)
		if !ok {
			result.Malformed = append(result.Malformed, fmt.Errorf("%w: unexpected sequence type %T", query.ErrMalformedData, s))
			continue
		}
		if ls.Name() == "" {
			result.Malformed = append(result.Malformed, fmt.Errorf("%w: FASTA record without identifier", query.ErrMalformedData))
			continue
		}

		letters := make([]byte, len(ls.Seq))
		for i, l := range ls.Seq {
			letters[i] = byte(l)
		}
		result.Records = append(result.Records, sequence.NewRawRecord(ls.Name(), letters, ls.Description()))
	}
	return result, nil
}
