// Package entreztest provides an in-process E-utilities stand-in for tests.
package entreztest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Record is a nucleotide entry served by the fake.
type Record struct {
	Accession   string
	Length      int
	Description string
}

// Server is a fake E-utilities endpoint.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	organisms   map[string]string
	records     map[string][]Record
	failOffsets map[int]int
	calls       map[string]int
	offsets     []int
	params      []map[string]string
}

// New starts a fake server that is closed when the test finishes.
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		organisms:   map[string]string{},
		records:     map[string][]Record{},
		failOffsets: map[int]int{},
		calls:       map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// BaseURL returns the endpoint base with a trailing slash.
func (s *Server) BaseURL() string {
	return s.URL + "/"
}

// AddOrganism registers a taxonomy identifier with its records.
func (s *Server) AddOrganism(taxID, name string, records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organisms[taxID] = name
	s.records[taxID] = records
}

// FailBatch makes the batch starting at offset answer HTTP 500 the given
// number of times.
func (s *Server) FailBatch(offset, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOffsets[offset] = times
}

// Calls returns how many requests hit an endpoint, keyed by "db:endpoint".
func (s *Server) Calls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

// FetchedOffsets returns the retstart of every nucleotide fetch in order.
func (s *Server) FetchedOffsets() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int{}, s.offsets...)
}

// LastParams returns the query parameters of the most recent request.
func (s *Server) LastParams() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.params) == 0 {
		return nil
	}
	return s.params[len(s.params)-1]
}

// Records generates n records with lengths produced by length(i).
func Records(prefix string, n int, length func(i int) int) []Record {
	out := make([]Record, n)
	for i := range out {
		out[i] = Record{
			Accession:   fmt.Sprintf("%s%06d.1", prefix, i),
			Length:      length(i),
			Description: fmt.Sprintf("Synthetic sequence %d", i),
		}
	}
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	endpoint := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".fcgi")

	s.mu.Lock()
	s.calls[q.Get("db")+":"+endpoint]++
	params := map[string]string{}
	for k := range q {
		params[k] = q.Get(k)
	}
	s.params = append(s.params, params)
	s.mu.Unlock()

	switch {
	case endpoint == "efetch" && q.Get("db") == "taxonomy":
		s.taxonomy(w, q.Get("id"))
	case endpoint == "esearch" && q.Get("db") == "nucleotide":
		s.search(w, q.Get("term"))
	case endpoint == "efetch" && q.Get("db") == "nucleotide":
		s.fetch(w, q.Get("WebEnv"), q.Get("rettype"), q.Get("retstart"), q.Get("retmax"))
	default:
		http.Error(w, "unsupported request", http.StatusBadRequest)
	}
}

func (s *Server) taxonomy(w http.ResponseWriter, id string) {
	s.mu.Lock()
	name, ok := s.organisms[id]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/xml")
	if !ok {
		_, _ = fmt.Fprint(w, `<?xml version="1.0" ?>
<!DOCTYPE TaxaSet PUBLIC "-//NLM//DTD Taxon, 14th January 2002//EN" "https://www.ncbi.nlm.nih.gov/entrez/query/DTD/taxon.dtd">
<TaxaSet></TaxaSet>`)
		return
	}
	_, _ = fmt.Fprintf(w, `<?xml version="1.0" ?>
<!DOCTYPE TaxaSet PUBLIC "-//NLM//DTD Taxon, 14th January 2002//EN" "https://www.ncbi.nlm.nih.gov/entrez/query/DTD/taxon.dtd">
<TaxaSet><Taxon>
    <TaxId>%s</TaxId>
    <ScientificName>%s</ScientificName>
    <Rank>species</Rank>
</Taxon>
</TaxaSet>`, id, name)
}

func (s *Server) search(w http.ResponseWriter, term string) {
	taxID := strings.TrimSuffix(strings.TrimPrefix(term, "txid"), "[Organism]")

	s.mu.Lock()
	n := len(s.records[taxID])
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if n == 0 {
		_, _ = fmt.Fprint(w, `{"header":{"type":"esearch","version":"0.3"},"esearchresult":{"count":"0","retmax":"0","retstart":"0","idlist":[]}}`)
		return
	}
	_, _ = fmt.Fprintf(w, `{"header":{"type":"esearch","version":"0.3"},"esearchresult":{"count":"%d","retmax":"20","retstart":"0","querykey":"1","webenv":"WEBENV_%s","idlist":[]}}`, n, taxID)
}

func (s *Server) fetch(w http.ResponseWriter, webEnv, retType, retStart, retMax string) {
	taxID := strings.TrimPrefix(webEnv, "WEBENV_")
	start, _ := strconv.Atoi(retStart)
	size, _ := strconv.Atoi(retMax)

	s.mu.Lock()
	s.offsets = append(s.offsets, start)
	if s.failOffsets[start] > 0 {
		s.failOffsets[start]--
		s.mu.Unlock()
		http.Error(w, "backend unavailable", http.StatusInternalServerError)
		return
	}
	records := s.records[taxID]
	s.mu.Unlock()

	end := min(start+size, len(records))
	var b strings.Builder
	for i := start; i < end; i++ {
		if retType == "fasta" {
			writeFASTA(&b, records[i])
		} else {
			writeGenBank(&b, records[i])
		}
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, b.String())
}

func writeFASTA(b *strings.Builder, r Record) {
	fmt.Fprintf(b, ">%s %s\n", r.Accession, r.Description)
	seq := strings.Repeat("ACGT", r.Length/4+1)[:r.Length]
	for i := 0; i < len(seq); i += 70 {
		fmt.Fprintln(b, seq[i:min(i+70, len(seq))])
	}
}

// GenBank renders one record in GenBank flat-file format.
func GenBank(r Record) string {
	var b strings.Builder
	writeGenBank(&b, r)
	return b.String()
}

func writeGenBank(b *strings.Builder, r Record) {
	accession, _, _ := strings.Cut(r.Accession, ".")
	fmt.Fprintf(b, "LOCUS       %-16s %11d bp    DNA     linear   PLN 01-JAN-2024\n", accession, r.Length)
	fmt.Fprintf(b, "DEFINITION  %s.\n", r.Description)
	fmt.Fprintf(b, "ACCESSION   %s\n", accession)
	fmt.Fprintf(b, "VERSION     %s\n", r.Accession)
	fmt.Fprintf(b, "KEYWORDS    .\n")
	fmt.Fprintf(b, "SOURCE      synthetic\n  ORGANISM  synthetic\n")
	fmt.Fprintf(b, "FEATURES             Location/Qualifiers\n")
	fmt.Fprintf(b, "     source          1..%d\n", r.Length)
	fmt.Fprintf(b, "ORIGIN      \n")
	seq := strings.Repeat("acgt", r.Length/4+1)[:r.Length]
	for i := 0; i < len(seq); i += 60 {
		fmt.Fprintf(b, "%9d", i+1)
		line := seq[i:min(i+60, len(seq))]
		for j := 0; j < len(line); j += 10 {
			fmt.Fprintf(b, " %s", line[j:min(j+10, len(line))])
		}
		b.WriteString("\n")
	}
	b.WriteString("//\n")
}
