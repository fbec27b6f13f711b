package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/helixml/taxseq"
	"github.com/helixml/taxseq/internal/config"
	"github.com/helixml/taxseq/internal/log"
)

// newClient configures logging and opens a Client from cfg. Logs go to
// stderr.
func newClient(cfg config.AppConfig) (*taxseq.Client, *slog.Logger, error) {
	logger := log.Configure(cfg).Slog()

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	logger.LogAttrs(context.Background(), slog.LevelDebug, "configuration", attrs...)

	client, err := taxseq.New(
		taxseq.WithConfig(cfg),
		taxseq.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create taxseq client: %w", err)
	}
	return client, logger, nil
}

func closeClient(client *taxseq.Client, logger *slog.Logger) {
	if err := client.Close(); err != nil {
		logger.Error("failed to close taxseq client", slog.String("error", err.Error()))
	}
}
