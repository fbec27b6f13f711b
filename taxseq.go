// Package taxseq retrieves nucleotide records for an NCBI taxonomy
// identifier, keeps those whose sequence length falls within inclusive
// bounds, and writes a CSV table, a length chart and a run summary.
//
// Basic usage:
//
//	client, err := taxseq.New(
//	    taxseq.WithSQLite(".taxseq/taxseq.db"),
//	    taxseq.WithEntrez(config.NewEntrezConfig(config.WithEntrezEmail("me@example.org"))),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	params, err := run.NewParams(562, 1000, 5000, 0)
//	exec, err := client.Runs.Execute(ctx, params)
//	fmt.Println(exec.Report.CSVPath)
package taxseq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/helixml/taxseq/application/service"
	"github.com/helixml/taxseq/domain/run"
	"github.com/helixml/taxseq/infrastructure/entrez"
	"github.com/helixml/taxseq/infrastructure/persistence"
	"github.com/helixml/taxseq/infrastructure/report"
	"github.com/helixml/taxseq/infrastructure/tracking"
	"github.com/helixml/taxseq/internal/config"
	"github.com/helixml/taxseq/internal/database"
)

// DefaultProgressInterval bounds how often in-flight progress is logged
// per run.
const DefaultProgressInterval = 2 * time.Second

// Client is the main entry point for the taxseq library.
//
//	client.Runs.Execute(ctx, params)
//	client.Runs.List(ctx, 20)
type Client struct {
	Runs *service.Runs

	db        database.Database
	registry  *prometheus.Registry
	progress  *tracking.Cooldown
	batchSize int
	logger    *slog.Logger
	closed    atomic.Bool
	mu        sync.Mutex
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.dbURL == "" {
		return nil, ErrNoDatabase
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := config.PrepareDataDir(cfg.dataDir); err != nil {
		return nil, err
	}

	transport := cfg.transport
	if cfg.httpCacheDir != "" {
		cached, err := entrez.NewCachingTransport(cfg.httpCacheDir, transport)
		if err != nil {
			return nil, fmt.Errorf("http cache: %w", err)
		}
		transport = cached
		logger.Info("caching E-utilities responses", slog.String("dir", cfg.httpCacheDir))
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, cfg.dbURL, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	registry := cfg.registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := service.NewMetrics(registry)

	client := entrez.NewClient(entrezOptions(cfg, transport, logger)...)

	throttle := cfg.throttle
	if throttle == nil {
		throttle = service.FixedDelay(cfg.pipeline.BatchDelay())
	}

	sessions := service.NewSessionBuilder(client, client, logger)
	paginator := service.NewPaginator(client, logger,
		service.WithThrottle(throttle),
		service.WithParsePolicy(cfg.pipeline.ParsePolicy()),
		service.WithPaginatorMetrics(metrics),
	)
	filter := service.NewBatchFilter(cfg.pipeline.FilterParallelism())
	progress := tracking.NewCooldown(
		tracking.NewBroadcast(logger, append([]run.Reporter{tracking.NewLoggingReporter(logger)}, cfg.reporters...)...),
		cfg.progressInterval,
	)
	pipeline := service.NewPipeline(sessions, paginator, filter, metrics, logger,
		service.WithProgressReporter(progress),
	)

	store := persistence.NewRunStore(db)
	reports := report.NewWriter(logger)

	return &Client{
		Runs:      service.NewRuns(pipeline, store, reports, cfg.outputDir, logger),
		db:        db,
		registry:  registry,
		progress:  progress,
		batchSize: cfg.pipeline.BatchSize(),
		logger:    logger,
	}, nil
}

func entrezOptions(cfg *clientConfig, transport http.RoundTripper, logger *slog.Logger) []entrez.Option {
	e := cfg.entrez
	opts := []entrez.Option{
		entrez.WithTimeout(e.Timeout()),
		entrez.WithMaxRetries(e.MaxRetries()),
		entrez.WithInitialDelay(e.InitialDelay()),
		entrez.WithBackoffFactor(e.BackoffFactor()),
		entrez.WithRequestsPerSecond(e.RequestsPerSecond()),
		entrez.WithRecordFormat(cfg.pipeline.RecordFormat()),
		entrez.WithLogger(logger),
	}
	if e.BaseURL() != "" {
		opts = append(opts, entrez.WithBaseURL(e.BaseURL()))
	}
	if e.Email() != "" {
		opts = append(opts, entrez.WithEmail(e.Email()))
	}
	if e.APIKey() != "" {
		opts = append(opts, entrez.WithAPIKey(e.APIKey()))
	}
	if e.Tool() != "" {
		opts = append(opts, entrez.WithTool(e.Tool()))
	}
	if transport != nil {
		opts = append(opts, entrez.WithTransport(transport))
	}
	return opts
}

// Close releases the database connection.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.progress.Close()
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	c.logger.Info("taxseq client closed")
	return nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Gatherer exposes the pipeline metrics for a /metrics endpoint.
func (c *Client) Gatherer() prometheus.Gatherer {
	return c.registry
}

// DefaultBatchSize returns the configured batch size used when a request
// does not name one.
func (c *Client) DefaultBatchSize() int {
	return c.batchSize
}
