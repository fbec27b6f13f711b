package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/helixml/taxseq/domain/query"
)

// Default configuration values.
const (
	DefaultHost                = "0.0.0.0"
	DefaultPort                = 8080
	DefaultLogLevel            = "INFO"
	DefaultOutputDir           = "."
	DefaultDatabaseName        = "taxseq.db"
	DefaultEntrezTool          = "taxseq"
	DefaultEntrezTimeout       = 60 * time.Second
	DefaultEntrezMaxRetries    = 3
	DefaultEntrezInitialDelay  = time.Second
	DefaultEntrezBackoffFactor = 2.0
	DefaultBatchSize           = 100
	DefaultBatchDelay          = 400 * time.Millisecond
	DefaultFilterParallelism   = 1
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// EntrezConfig configures the E-utilities client.
type EntrezConfig struct {
	baseURL           string
	email             string
	apiKey            string
	tool              string
	timeout           time.Duration
	maxRetries        int
	initialDelay      time.Duration
	backoffFactor     float64
	requestsPerSecond float64
}

// NewEntrezConfig creates an EntrezConfig with defaults and applies options.
func NewEntrezConfig(opts ...EntrezOption) EntrezConfig {
	e := EntrezConfig{
		tool:          DefaultEntrezTool,
		timeout:       DefaultEntrezTimeout,
		maxRetries:    DefaultEntrezMaxRetries,
		initialDelay:  DefaultEntrezInitialDelay,
		backoffFactor: DefaultEntrezBackoffFactor,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// BaseURL returns the E-utilities base URL; empty means the public endpoint.
func (e EntrezConfig) BaseURL() string { return e.baseURL }

// Email returns the contact email sent to NCBI.
func (e EntrezConfig) Email() string { return e.email }

// APIKey returns the NCBI API key.
func (e EntrezConfig) APIKey() string { return e.apiKey }

// Tool returns the tool name sent to NCBI.
func (e EntrezConfig) Tool() string { return e.tool }

// Timeout returns the per-request timeout.
func (e EntrezConfig) Timeout() time.Duration { return e.timeout }

// MaxRetries returns the maximum number of retries.
func (e EntrezConfig) MaxRetries() int { return e.maxRetries }

// InitialDelay returns the first retry delay.
func (e EntrezConfig) InitialDelay() time.Duration { return e.initialDelay }

// BackoffFactor returns the retry backoff multiplier.
func (e EntrezConfig) BackoffFactor() float64 { return e.backoffFactor }

// RequestsPerSecond returns the request ceiling override.
func (e EntrezConfig) RequestsPerSecond() float64 { return e.requestsPerSecond }

// EntrezOption is a functional option for EntrezConfig.
type EntrezOption func(*EntrezConfig)

// WithEntrezBaseURL sets the base URL.
func WithEntrezBaseURL(url string) EntrezOption {
	return func(e *EntrezConfig) { e.baseURL = url }
}

// WithEntrezEmail sets the contact email.
func WithEntrezEmail(email string) EntrezOption {
	return func(e *EntrezConfig) { e.email = email }
}

// WithEntrezAPIKey sets the API key.
func WithEntrezAPIKey(key string) EntrezOption {
	return func(e *EntrezConfig) { e.apiKey = key }
}

// WithEntrezTool sets the tool name.
func WithEntrezTool(tool string) EntrezOption {
	return func(e *EntrezConfig) { e.tool = tool }
}

// WithEntrezTimeout sets the request timeout.
func WithEntrezTimeout(d time.Duration) EntrezOption {
	return func(e *EntrezConfig) { e.timeout = d }
}

// WithEntrezMaxRetries sets the maximum retries.
func WithEntrezMaxRetries(n int) EntrezOption {
	return func(e *EntrezConfig) { e.maxRetries = n }
}

// WithEntrezInitialDelay sets the first retry delay.
func WithEntrezInitialDelay(d time.Duration) EntrezOption {
	return func(e *EntrezConfig) { e.initialDelay = d }
}

// WithEntrezBackoffFactor sets the backoff multiplier.
func WithEntrezBackoffFactor(f float64) EntrezOption {
	return func(e *EntrezConfig) { e.backoffFactor = f }
}

// WithEntrezRequestsPerSecond sets the request ceiling override.
func WithEntrezRequestsPerSecond(rps float64) EntrezOption {
	return func(e *EntrezConfig) { e.requestsPerSecond = rps }
}

// PipelineConfig configures batch retrieval and filtering.
type PipelineConfig struct {
	batchSize         int
	batchDelay        time.Duration
	filterParallelism int
	recordFormat      query.RecordFormat
	parsePolicy       query.ParsePolicy
}

// NewPipelineConfig creates a new PipelineConfig with defaults.
func NewPipelineConfig() PipelineConfig {
	return PipelineConfig{
		batchSize:         DefaultBatchSize,
		batchDelay:        DefaultBatchDelay,
		filterParallelism: DefaultFilterParallelism,
		recordFormat:      query.RecordFormatGenBank,
		parsePolicy:       query.ParsePolicySkipRecord,
	}
}

// BatchSize returns the default number of records per request.
func (p PipelineConfig) BatchSize() int { return p.batchSize }

// BatchDelay returns the pause after every batch request.
func (p PipelineConfig) BatchDelay() time.Duration { return p.batchDelay }

// FilterParallelism returns the number of filter goroutines per batch.
func (p PipelineConfig) FilterParallelism() int { return p.filterParallelism }

// RecordFormat returns the fetched flat-file format.
func (p PipelineConfig) RecordFormat() query.RecordFormat { return p.recordFormat }

// ParsePolicy returns the malformed record policy.
func (p PipelineConfig) ParsePolicy() query.ParsePolicy { return p.parsePolicy }

// WithBatchSize returns a new config with the batch size set. Non-positive
// values are ignored.
func (p PipelineConfig) WithBatchSize(n int) PipelineConfig {
	if n > 0 {
		p.batchSize = n
	}
	return p
}

// WithBatchDelay returns a new config with the batch delay set. Negative
// values are ignored.
func (p PipelineConfig) WithBatchDelay(d time.Duration) PipelineConfig {
	if d >= 0 {
		p.batchDelay = d
	}
	return p
}

// WithFilterParallelism returns a new config with the filter parallelism set.
func (p PipelineConfig) WithFilterParallelism(n int) PipelineConfig {
	if n > 0 {
		p.filterParallelism = n
	}
	return p
}

// WithRecordFormat returns a new config with the record format set.
func (p PipelineConfig) WithRecordFormat(f query.RecordFormat) PipelineConfig {
	p.recordFormat = f
	return p
}

// WithParsePolicy returns a new config with the parse policy set.
func (p PipelineConfig) WithParsePolicy(policy query.ParsePolicy) PipelineConfig {
	p.parsePolicy = policy
	return p
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host         string
	port         int
	dataDir      string
	dbURL        string
	outputDir    string
	logLevel     string
	logFormat    LogFormat
	apiKeys      []string
	httpCacheDir string
	entrez       EntrezConfig
	pipeline     PipelineConfig
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taxseq"
	}
	return filepath.Join(home, ".taxseq")
}

// PrepareDataDir creates the data directory if it does not exist and returns it.
func PrepareDataDir(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dataDir, nil
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:      DefaultHost,
		port:      DefaultPort,
		dataDir:   dataDir,
		dbURL:     defaultDBURL(dataDir),
		outputDir: DefaultOutputDir,
		logLevel:  DefaultLogLevel,
		logFormat: LogFormatPretty,
		apiKeys:   []string{},
		entrez:    NewEntrezConfig(),
		pipeline:  NewPipelineConfig(),
	}
}

func defaultDBURL(dataDir string) string {
	return "sqlite:///" + filepath.Join(dataDir, DefaultDatabaseName)
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// OutputDir returns the default report directory.
func (c AppConfig) OutputDir() string { return c.outputDir }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// APIKeys returns the configured API keys.
func (c AppConfig) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

// HTTPCacheDir returns the response cache directory; empty disables caching.
func (c AppConfig) HTTPCacheDir() string { return c.httpCacheDir }

// Entrez returns the E-utilities client config.
func (c AppConfig) Entrez() EntrezConfig { return c.entrez }

// Pipeline returns the pipeline config.
func (c AppConfig) Pipeline() PipelineConfig { return c.pipeline }

// EnsureDataDir creates the data directory if it doesn't exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		// keep an explicit DB_URL, move the default one
		if c.dbURL == "" || c.dbURL == defaultDBURL(c.dataDir) {
			c.dbURL = defaultDBURL(dir)
		}
		c.dataDir = dir
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithOutputDir sets the default report directory.
func WithOutputDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.outputDir = dir }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithAPIKeys sets the API keys.
func WithAPIKeys(keys []string) AppConfigOption {
	return func(c *AppConfig) {
		c.apiKeys = make([]string, len(keys))
		copy(c.apiKeys, keys)
	}
}

// WithHTTPCacheDir sets the response cache directory.
func WithHTTPCacheDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.httpCacheDir = dir }
}

// WithEntrez sets the E-utilities client config.
func WithEntrez(e EntrezConfig) AppConfigOption {
	return func(c *AppConfig) { c.entrez = e }
}

// WithPipeline sets the pipeline config.
func WithPipeline(p PipelineConfig) AppConfigOption {
	return func(c *AppConfig) { c.pipeline = p }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Sensitive values like API keys are masked or shown as counts.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("data_dir", c.dataDir),
		slog.String("output_dir", c.outputDir),
		slog.String("log_level", c.logLevel),
		slog.String("db_url", c.maskedDBURL()),
		slog.String("http_cache_dir", c.httpCacheDir),
		slog.String("entrez_base_url", c.entrezBaseURL()),
		slog.String("entrez_email", c.entrez.email),
		slog.String("entrez_api_key", mask(c.entrez.apiKey)),
		slog.Int("api_keys_count", len(c.apiKeys)),
		slog.Int("batch_size", c.pipeline.batchSize),
		slog.Duration("batch_delay", c.pipeline.batchDelay),
		slog.String("record_format", string(c.pipeline.recordFormat)),
		slog.String("parse_policy", string(c.pipeline.parsePolicy)),
	}
}

func (c AppConfig) maskedDBURL() string {
	if c.dbURL == "" {
		return "(default)"
	}
	if strings.HasPrefix(c.dbURL, "sqlite:") {
		return c.dbURL
	}
	return "postgres://***@***"
}

func (c AppConfig) entrezBaseURL() string {
	if c.entrez.baseURL == "" {
		return "(default)"
	}
	return c.entrez.baseURL
}

func mask(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return "***"
}

// ParseAPIKeys parses a comma-separated string of API keys.
func ParseAPIKeys(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}
