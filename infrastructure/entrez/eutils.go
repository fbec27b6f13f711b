package entrez

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/helixml/taxseq/domain/query"
)

// taxonomyResponse matches both a TaxaSet document and the eFetchResult
// error document NCBI returns for unknown identifiers.
type taxonomyResponse struct {
	Taxa []struct {
		TaxID          string `xml:"TaxId"`
		ScientificName string `xml:"ScientificName"`
	} `xml:"Taxon"`
	Error string `xml:"ERROR"`
}

func parseTaxonomy(body []byte) (string, error) {
	if strings.TrimSpace(string(body)) == "" {
		return "", query.ErrNotFound
	}

	var resp taxonomyResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decode taxonomy: %w", query.ErrTransport, err)
	}
	if len(resp.Taxa) == 0 {
		return "", query.ErrNotFound
	}

	name := strings.TrimSpace(resp.Taxa[0].ScientificName)
	if name == "" {
		return "", query.ErrNotFound
	}
	return name, nil
}

type searchResponse struct {
	Result struct {
		Count    string `json:"count"`
		WebEnv   string `json:"webenv"`
		QueryKey string `json:"querykey"`
		Error    string `json:"ERROR"`
	} `json:"esearchresult"`
	Error string `json:"error"`
}

func parseSearch(body []byte) (query.SearchResult, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return query.SearchResult{}, fmt.Errorf("%w: decode search: %w", query.ErrTransport, err)
	}

	if msg := firstNonEmpty(resp.Error, resp.Result.Error); msg != "" {
		return query.SearchResult{}, fmt.Errorf("%w: %s", query.ErrTransport, msg)
	}

	count := 0
	if resp.Result.Count != "" {
		n, err := strconv.Atoi(resp.Result.Count)
		if err != nil {
			return query.SearchResult{}, fmt.Errorf("%w: invalid count %q", query.ErrTransport, resp.Result.Count)
		}
		count = n
	}

	if count > 0 && (resp.Result.WebEnv == "" || resp.Result.QueryKey == "") {
		return query.SearchResult{}, fmt.Errorf("%w: search returned %d results without history", query.ErrTransport, count)
	}

	return query.SearchResult{
		Count:        count,
		SessionToken: resp.Result.WebEnv,
		QueryKey:     resp.Result.QueryKey,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
