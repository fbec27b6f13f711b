package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/helixml/taxseq/internal/mcp"
)

func stdioCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This lets AI assistants fetch and inspect sequence runs. Configuration is
loaded from environment variables and .env file. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(*envFile)
		},
	}
}

func runStdio(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	client, logger, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer closeClient(client, logger)

	logger.Info("starting MCP server",
		slog.String("version", version),
		slog.String("data_dir", cfg.DataDir()),
	)

	return mcp.NewServer(client.Runs, client.DefaultBatchSize(), version, logger).ServeStdio()
}
