// Package config provides application configuration.
package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/helixml/taxseq/domain/query"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., ENTREZ_BASE_URL).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.taxseq
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/taxseq.db
	DBURL string `envconfig:"DB_URL"`

	// OutputDir is where report files are written.
	// Env: OUTPUT_DIR (default: .)
	OutputDir string `envconfig:"OUTPUT_DIR" default:"."`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// APIKeys is a comma-separated list of valid API keys for the HTTP server.
	// Env: API_KEYS
	APIKeys string `envconfig:"API_KEYS"`

	// HTTPCacheDir is the directory for caching E-utilities responses to disk.
	// Env: HTTP_CACHE_DIR
	HTTPCacheDir string `envconfig:"HTTP_CACHE_DIR"`

	// Entrez configures the NCBI E-utilities client.
	Entrez EntrezEnv `envconfig:"ENTREZ"`

	// Pipeline configures batch retrieval and filtering.
	Pipeline PipelineEnv `envconfig:"PIPELINE"`
}

// EntrezEnv holds environment configuration for the E-utilities client.
type EntrezEnv struct {
	// BaseURL is the E-utilities base URL.
	// Env: ENTREZ_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Email identifies the caller to NCBI.
	// Env: ENTREZ_EMAIL
	Email string `envconfig:"EMAIL"`

	// APIKey raises the NCBI request ceiling.
	// Env: ENTREZ_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Tool names the calling program.
	// Env: ENTREZ_TOOL (default: taxseq)
	Tool string `envconfig:"TOOL" default:"taxseq"`

	// Timeout is the request timeout in seconds.
	// Env: ENTREZ_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// MaxRetries is the maximum number of retries.
	// Env: ENTREZ_MAX_RETRIES (default: 3)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"3"`

	// InitialDelay is the initial retry delay in seconds.
	// Env: ENTREZ_INITIAL_DELAY (default: 1.0)
	InitialDelay float64 `envconfig:"INITIAL_DELAY" default:"1.0"`

	// BackoffFactor is the retry backoff multiplier.
	// Env: ENTREZ_BACKOFF_FACTOR (default: 2.0)
	BackoffFactor float64 `envconfig:"BACKOFF_FACTOR" default:"2.0"`

	// RequestsPerSecond overrides the request ceiling. Zero picks the NCBI
	// limit for the configured credentials; negative disables limiting.
	// Env: ENTREZ_REQUESTS_PER_SECOND (default: 0)
	RequestsPerSecond float64 `envconfig:"REQUESTS_PER_SECOND" default:"0"`
}

// PipelineEnv holds environment configuration for the retrieval pipeline.
type PipelineEnv struct {
	// BatchSize is the number of records fetched per request.
	// Env: PIPELINE_BATCH_SIZE (default: 100)
	BatchSize int `envconfig:"BATCH_SIZE" default:"100"`

	// BatchDelay is the pause after every batch request in seconds.
	// Env: PIPELINE_BATCH_DELAY (default: 0.4)
	BatchDelay float64 `envconfig:"BATCH_DELAY" default:"0.4"`

	// FilterParallelism is the number of goroutines filtering one batch.
	// Env: PIPELINE_FILTER_PARALLELISM (default: 1)
	FilterParallelism int `envconfig:"FILTER_PARALLELISM" default:"1"`

	// RecordFormat is the fetched flat-file format (genbank or fasta).
	// Env: PIPELINE_RECORD_FORMAT (default: genbank)
	RecordFormat string `envconfig:"RECORD_FORMAT" default:"genbank"`

	// ParsePolicy decides what a malformed record does to its batch
	// (skip_record or abort_batch).
	// Env: PIPELINE_PARSE_POLICY (default: skip_record)
	ParsePolicy string `envconfig:"PARSE_POLICY" default:"skip_record"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "TAXSEQ" would require TAXSEQ_DATA_DIR instead of DATA_DIR.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// Normalize trims whitespace and lowercases enumerated values.
func (e EnvConfig) Normalize() EnvConfig {
	e.LogFormat = strings.ToLower(strings.TrimSpace(e.LogFormat))
	e.Pipeline.RecordFormat = strings.ToLower(strings.TrimSpace(e.Pipeline.RecordFormat))
	e.Pipeline.ParsePolicy = strings.ToLower(strings.TrimSpace(e.Pipeline.ParsePolicy))
	e.Entrez.Email = strings.TrimSpace(e.Entrez.Email)
	e.Entrez.APIKey = strings.TrimSpace(e.Entrez.APIKey)
	return e
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() (AppConfig, error) {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.DataDir != "" {
		cfg = applyOption(cfg, WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		cfg = applyOption(cfg, WithDBURL(e.DBURL))
	}
	if e.OutputDir != "" {
		cfg = applyOption(cfg, WithOutputDir(e.OutputDir))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.APIKeys != "" {
		cfg = applyOption(cfg, WithAPIKeys(ParseAPIKeys(e.APIKeys)))
	}
	if e.HTTPCacheDir != "" {
		cfg = applyOption(cfg, WithHTTPCacheDir(e.HTTPCacheDir))
	}

	cfg = applyOption(cfg, WithEntrez(e.Entrez.ToEntrezConfig()))

	pipeline, err := e.Pipeline.ToPipelineConfig()
	if err != nil {
		return AppConfig{}, err
	}
	cfg = applyOption(cfg, WithPipeline(pipeline))

	return cfg, nil
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// ToEntrezConfig converts EntrezEnv to EntrezConfig.
func (e EntrezEnv) ToEntrezConfig() EntrezConfig {
	opts := []EntrezOption{
		WithEntrezTimeout(seconds(e.Timeout)),
		WithEntrezMaxRetries(e.MaxRetries),
		WithEntrezInitialDelay(seconds(e.InitialDelay)),
		WithEntrezBackoffFactor(e.BackoffFactor),
		WithEntrezRequestsPerSecond(e.RequestsPerSecond),
	}
	if e.BaseURL != "" {
		opts = append(opts, WithEntrezBaseURL(e.BaseURL))
	}
	if e.Email != "" {
		opts = append(opts, WithEntrezEmail(e.Email))
	}
	if e.APIKey != "" {
		opts = append(opts, WithEntrezAPIKey(e.APIKey))
	}
	if e.Tool != "" {
		opts = append(opts, WithEntrezTool(e.Tool))
	}
	return NewEntrezConfig(opts...)
}

// ToPipelineConfig converts PipelineEnv to PipelineConfig. Unknown record
// formats and parse policies are rejected.
func (p PipelineEnv) ToPipelineConfig() (PipelineConfig, error) {
	format, err := query.ParseRecordFormat(p.RecordFormat)
	if err != nil {
		return PipelineConfig{}, err
	}
	policy, err := query.ParseParsePolicy(p.ParsePolicy)
	if err != nil {
		return PipelineConfig{}, err
	}
	return NewPipelineConfig().
		WithBatchSize(p.BatchSize).
		WithBatchDelay(seconds(p.BatchDelay)).
		WithFilterParallelism(p.FilterParallelism).
		WithRecordFormat(format).
		WithParsePolicy(policy), nil
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
