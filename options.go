package taxseq

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/helixml/taxseq/application/service"
	"github.com/helixml/taxseq/domain/run"
	"github.com/helixml/taxseq/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	dbURL            string
	dataDir          string
	outputDir        string
	httpCacheDir     string
	entrez           config.EntrezConfig
	pipeline         config.PipelineConfig
	throttle         service.Throttle
	transport        http.RoundTripper
	registry         *prometheus.Registry
	reporters        []run.Reporter
	progressInterval time.Duration
	logger           *slog.Logger
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		dataDir:          config.DefaultDataDir(),
		outputDir:        config.DefaultOutputDir,
		entrez:           config.NewEntrezConfig(),
		pipeline:         config.NewPipelineConfig(),
		progressInterval: DefaultProgressInterval,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithConfig applies a loaded application configuration.
func WithConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) {
		c.dbURL = cfg.DBURL()
		c.dataDir = cfg.DataDir()
		c.outputDir = cfg.OutputDir()
		c.httpCacheDir = cfg.HTTPCacheDir()
		c.entrez = cfg.Entrez()
		c.pipeline = cfg.Pipeline()
	}
}

// WithSQLite stores run history in a SQLite file.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		if path != ":memory:" {
			path = filepath.Clean(path)
		}
		c.dbURL = "sqlite:///" + path
	}
}

// WithPostgres stores run history in PostgreSQL.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.dbURL = dsn
	}
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.dataDir = dir
	}
}

// WithOutputDir sets the default report directory.
func WithOutputDir(dir string) Option {
	return func(c *clientConfig) {
		c.outputDir = dir
	}
}

// WithEntrez sets the E-utilities client configuration.
func WithEntrez(e config.EntrezConfig) Option {
	return func(c *clientConfig) {
		c.entrez = e
	}
}

// WithPipeline sets the batch retrieval configuration.
func WithPipeline(p config.PipelineConfig) Option {
	return func(c *clientConfig) {
		c.pipeline = p
	}
}

// WithBatchDelay overrides the pause after every batch request. Zero
// disables it, which is useful against local fakes.
func WithBatchDelay(d time.Duration) Option {
	return func(c *clientConfig) {
		if d <= 0 {
			c.throttle = service.NoDelay{}
			return
		}
		c.throttle = service.FixedDelay(d)
	}
}

// WithHTTPCacheDir caches E-utilities responses on disk.
func WithHTTPCacheDir(dir string) Option {
	return func(c *clientConfig) {
		c.httpCacheDir = dir
	}
}

// WithTransport sets the HTTP transport used for E-utilities requests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *clientConfig) {
		c.transport = rt
	}
}

// WithRegistry registers pipeline metrics with reg instead of a private
// registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(c *clientConfig) {
		c.registry = reg
	}
}

// WithProgressReporter subscribes reporter to run progress alongside the
// progress log.
func WithProgressReporter(reporter run.Reporter) Option {
	return func(c *clientConfig) {
		c.reporters = append(c.reporters, reporter)
	}
}

// WithProgressInterval sets how often in-flight progress is delivered per
// run. Terminal snapshots are always delivered.
func WithProgressInterval(d time.Duration) Option {
	return func(c *clientConfig) {
		if d >= 0 {
			c.progressInterval = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
