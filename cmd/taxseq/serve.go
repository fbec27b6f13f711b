package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/helixml/taxseq/infrastructure/api"
	"github.com/helixml/taxseq/internal/config"
)

const shutdownTimeout = 30 * time.Second

func serveCmd(envFile *string) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 8080)
  DATA_DIR                     Data directory (default: ~/.taxseq)
  DB_URL                       Database URL (default: sqlite:///{data_dir}/taxseq.db)
  OUTPUT_DIR                   Report directory (default: .)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  API_KEYS                     Comma-separated keys required to create runs
  HTTP_CACHE_DIR               Cache E-utilities responses on disk

  ENTREZ_*                     NCBI E-utilities client
    EMAIL                      Contact address sent with every request
    API_KEY                    NCBI API key (raises the rate ceiling to 10/s)
    TOOL                       Tool name (default: taxseq)
    BASE_URL                   E-utilities base URL
    TIMEOUT                    Request timeout in seconds (default: 60)
    MAX_RETRIES                Retry attempts (default: 3)
    INITIAL_DELAY              First retry delay in seconds (default: 1)
    BACKOFF_FACTOR             Retry delay multiplier (default: 2)
    REQUESTS_PER_SECOND        Rate ceiling, 0 picks 3 or 10, negative disables

  PIPELINE_*                   Batch retrieval
    BATCH_SIZE                 Records per request (default: 100)
    BATCH_DELAY                Pause after each batch in seconds (default: 0.4)
    FILTER_PARALLELISM         Concurrent filter workers (default: 1)
    RECORD_FORMAT              genbank or fasta (default: genbank)
    PARSE_POLICY               skip_record or abort_batch (default: skip_record)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)

	client, logger, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer closeClient(client, logger)

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	logger.LogAttrs(context.Background(), slog.LevelInfo, "starting taxseq", attrs...)

	apiServer := api.NewAPIServer(client, cfg.APIKeys(), version)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := apiServer.ListenAndServe(cfg.Addr()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
