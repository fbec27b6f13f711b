// Package report writes run output files: the record table, the length
// chart and the run summary.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/helixml/taxseq/domain/sequence"
)

// CSVHeader is the header row of the record table.
var CSVHeader = []string{"accession", "length", "description"}

// WriteCSV writes records as CSV in the order given.
func WriteCSV(w io.Writer, records []sequence.FilteredRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{r.Accession(), strconv.Itoa(r.Length()), r.Description()}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.Accession(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}
