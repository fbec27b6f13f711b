// Package entrez is a client for the NCBI E-utilities taxonomy and
// nucleotide endpoints.
package entrez

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/helixml/taxseq/domain/query"
)

// DefaultBaseURL is the public E-utilities endpoint.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/"

// DefaultTool identifies this program to NCBI.
const DefaultTool = "taxseq"

// NCBI request ceilings.
const (
	AnonymousRequestsPerSecond = 3
	KeyedRequestsPerSecond     = 10
)

const maxResponseSize = 512 << 20

// Client talks to E-utilities. It implements query.TaxonomyResolver,
// query.Searcher and query.BatchFetcher.
type Client struct {
	httpClient        *http.Client
	baseURL           string
	email             string
	apiKey            string
	tool              string
	timeout           time.Duration
	maxRetries        int
	initialDelay      time.Duration
	backoffFactor     float64
	requestsPerSecond float64
	limiter           *rate.Limiter
	format            query.RecordFormat
	logger            *slog.Logger
	maxResponseSize   int64
}

// Option is a functional option for Client.
type Option func(*Client)

// WithBaseURL sets the E-utilities base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" && !strings.HasSuffix(u, "/") {
			u += "/"
		}
		c.baseURL = u
	}
}

// WithEmail sets the contact address sent with every request.
func WithEmail(email string) Option {
	return func(c *Client) { c.email = email }
}

// WithAPIKey sets the NCBI API key.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithTool sets the tool name sent with every request.
func WithTool(tool string) Option {
	return func(c *Client) { c.tool = tool }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithTransport sets the HTTP transport, for example a CachingTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// WithMaxRetries sets the maximum retry count.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithInitialDelay sets the initial retry delay.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Client) { c.initialDelay = d }
}

// WithBackoffFactor sets the backoff multiplier.
func WithBackoffFactor(f float64) Option {
	return func(c *Client) { c.backoffFactor = f }
}

// WithRequestsPerSecond overrides the request ceiling. Zero picks the NCBI
// limit for the configured credentials; a negative value disables limiting.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) { c.requestsPerSecond = rps }
}

// WithRecordFormat selects the flat-file format fetched for record batches.
func WithRecordFormat(f query.RecordFormat) Option {
	return func(c *Client) { c.format = f }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a new Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:      &http.Client{},
		baseURL:         DefaultBaseURL,
		tool:            DefaultTool,
		timeout:         60 * time.Second,
		maxRetries:      3,
		initialDelay:    time.Second,
		backoffFactor:   2.0,
		format:          query.RecordFormatGenBank,
		logger:          slog.Default(),
		maxResponseSize: maxResponseSize,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.httpClient.Timeout = c.timeout

	rps := c.requestsPerSecond
	if rps == 0 {
		rps = AnonymousRequestsPerSecond
		if c.apiKey != "" {
			rps = KeyedRequestsPerSecond
		}
	}
	if rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return c
}

// RecordFormat returns the configured record format.
func (c *Client) RecordFormat() query.RecordFormat { return c.format }

// ScientificName resolves a taxonomy identifier to its scientific name.
func (c *Client) ScientificName(ctx context.Context, taxID query.TaxID) (string, error) {
	params := url.Values{}
	params.Set("db", "taxonomy")
	params.Set("id", taxID.String())
	params.Set("retmode", "xml")

	body, err := c.get(ctx, "efetch", "efetch.fcgi", params)
	if err != nil {
		return "", err
	}

	name, err := parseTaxonomy(body)
	if err != nil {
		return "", NewError("efetch", 0, fmt.Sprintf("taxonomy %s", taxID), err)
	}
	return name, nil
}

// Search runs a nucleotide search with history enabled.
func (c *Client) Search(ctx context.Context, term string) (query.SearchResult, error) {
	params := url.Values{}
	params.Set("db", "nucleotide")
	params.Set("term", term)
	params.Set("usehistory", "y")
	params.Set("retmode", "json")

	body, err := c.get(ctx, "esearch", "esearch.fcgi", params)
	if err != nil {
		return query.SearchResult{}, err
	}

	result, err := parseSearch(body)
	if err != nil {
		return query.SearchResult{}, NewError("esearch", 0, term, err)
	}
	return result, nil
}

// Fetch retrieves and parses one batch of a stored search.
func (c *Client) Fetch(ctx context.Context, session query.QuerySession, request query.BatchRequest) (query.FetchResult, error) {
	params := url.Values{}
	params.Set("db", "nucleotide")
	params.Set("rettype", c.format.RetType())
	params.Set("retmode", "text")
	params.Set("retstart", fmt.Sprint(request.Offset()))
	params.Set("retmax", fmt.Sprint(request.Size()))
	params.Set("WebEnv", session.SessionToken())
	params.Set("query_key", session.QueryKey())

	body, err := c.get(ctx, "efetch", "efetch.fcgi", params)
	if err != nil {
		return query.FetchResult{}, err
	}

	var parse func(io.Reader) (query.FetchResult, error)
	switch c.format {
	case query.RecordFormatFASTA:
		parse = ParseFASTA
	default:
		parse = ParseGenBank
	}

	result, err := parse(bytes.NewReader(body))
	if err != nil {
		return query.FetchResult{}, NewError("efetch", 0, fmt.Sprintf("records %d-%d", request.Offset()+1, request.End()), err)
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, operation, endpoint string, params url.Values) ([]byte, error) {
	c.identify(params)
	target := c.baseURL + endpoint + "?" + params.Encode()

	var body []byte
	err := c.withRetry(ctx, func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return NewError(operation, 0, "build request", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return transportError(operation, err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize+1))
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return transportError(operation, err)
		}
		if int64(len(data)) > c.maxResponseSize {
			return transportError(operation, fmt.Errorf("response exceeds %d bytes", c.maxResponseSize))
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return statusError(operation, resp.StatusCode, data)
		}

		body = data
		return nil
	})
	return body, err
}

func (c *Client) identify(params url.Values) {
	if c.tool != "" {
		params.Set("tool", c.tool)
	}
	if c.email != "" {
		params.Set("email", c.email)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
}

// withRetry executes fn with exponential backoff retry.
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	delay := c.initialDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !isRetryable(lastErr) {
			return lastErr
		}

		if attempt < c.maxRetries {
			c.logger.Debug("retrying entrez request",
				slog.Int("attempt", attempt+1),
				slog.Duration("delay", delay),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * c.backoffFactor)
			}
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
