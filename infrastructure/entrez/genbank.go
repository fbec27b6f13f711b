package entrez

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/helixml/taxseq/domain/query"
	"github.com/helixml/taxseq/domain/sequence"
)

const maxLineSize = 4 << 20

// genbankEntry accumulates the fields of one flat-file record.
type genbankEntry struct {
	line        int
	locusName   string
	locusLength int
	definition  []string
	accession   string
	version     string
	sequence    []byte
	hasOrigin   bool
	section     string
}

func (e *genbankEntry) id() string {
	if e.version != "" {
		return e.version
	}
	if e.accession != "" {
		return e.accession
	}
	return e.locusName
}

func (e *genbankEntry) record() (sequence.RawRecord, error) {
	id := e.id()
	if id == "" {
		return sequence.RawRecord{}, fmt.Errorf("%w: record at line %d has no accession", query.ErrMalformedData, e.line)
	}

	description := strings.TrimSuffix(strings.Join(e.definition, " "), ".")

	if e.hasOrigin {
		if e.locusLength > 0 && e.locusLength != len(e.sequence) {
			return sequence.RawRecord{}, fmt.Errorf("%w: %s declares %d bp but carries %d", query.ErrMalformedData, id, e.locusLength, len(e.sequence))
		}
		return sequence.NewRawRecord(id, e.sequence, description), nil
	}

	if e.locusLength < 0 {
		return sequence.RawRecord{}, fmt.Errorf("%w: %s has no sequence length", query.ErrMalformedData, id)
	}
	return sequence.NewRawRecordWithLength(id, e.locusLength, description), nil
}

// ParseGenBank reads GenBank flat-file records. Records that cannot be
// understood are reported in Malformed and do not stop the scan. An error
// is returned only when the input holds no record at all.
func ParseGenBank(r io.Reader) (query.FetchResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var (
		result  query.FetchResult
		current *genbankEntry
		lineNo  int
		content bool
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) != "" {
			content = true
		}

		if keyword(line) == "LOCUS" {
			if current != nil {
				result.Malformed = append(result.Malformed, fmt.Errorf("%w: record %q at line %d is not terminated", query.ErrMalformedData, current.id(), current.line))
			}
			current = newGenbankEntry(line, lineNo)
			continue
		}
		if current == nil {
			continue
		}

		if strings.HasPrefix(line, "//") {
			rec, err := current.record()
			if err != nil {
				result.Malformed = append(result.Malformed, err)
			} else {
				result.Records = append(result.Records, rec)
			}
			current = nil
			continue
		}

		current.consume(line)
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("%w: %w", query.ErrMalformedData, err)
	}

	if current != nil {
		result.Malformed = append(result.Malformed, fmt.Errorf("%w: record %q at line %d is truncated", query.ErrMalformedData, current.id(), current.line))
	}

	if content && len(result.Records) == 0 && len(result.Malformed) == 0 {
		return result, fmt.Errorf("%w: no GenBank records in response", query.ErrMalformedData)
	}
	return result, nil
}

func newGenbankEntry(line string, lineNo int) *genbankEntry {
	e := &genbankEntry{line: lineNo, locusLength: -1, section: "LOCUS"}
	fields := strings.Fields(line)
	if len(fields) > 1 {
		e.locusName = fields[1]
	}
	for i := 2; i < len(fields)-1; i++ {
		if fields[i+1] == "bp" || fields[i+1] == "aa" {
			if n, err := strconv.Atoi(fields[i]); err == nil {
				e.locusLength = n
			}
			break
		}
	}
	return e
}

func (e *genbankEntry) consume(line string) {
	if kw := keyword(line); kw != "" {
		e.section = kw
		value := strings.TrimSpace(line[len(kw):])
		switch kw {
		case "DEFINITION":
			if value != "" {
				e.definition = append(e.definition, value)
			}
		case "ACCESSION":
			if fields := strings.Fields(value); len(fields) > 0 {
				e.accession = fields[0]
			}
		case "VERSION":
			if fields := strings.Fields(value); len(fields) > 0 {
				e.version = fields[0]
			}
		case "ORIGIN":
			e.hasOrigin = true
		}
		return
	}

	switch e.section {
	case "DEFINITION":
		if value := strings.TrimSpace(line); value != "" {
			e.definition = append(e.definition, value)
		}
	case "ORIGIN":
		for i := 0; i < len(line); i++ {
			c := line[i]
			switch {
			case c >= 'a' && c <= 'z':
				e.sequence = append(e.sequence, c-'a'+'A')
			case c >= 'A' && c <= 'Z', c == '-', c == '*':
				e.sequence = append(e.sequence, c)
			}
		}
	}
}

// keyword returns the section keyword starting at column zero, if any.
func keyword(line string) string {
	if line == "" || line[0] == ' ' || line[0] == '\t' {
		return ""
	}
	end := strings.IndexAny(line, " \t")
	if end < 0 {
		end = len(line)
	}
	kw := line[:end]
	if kw == "//" {
		return ""
	}
	for i := 0; i < len(kw); i++ {
		if kw[i] < 'A' || kw[i] > 'Z' {
			return ""
		}
	}
	return kw
}
