// Package main is the entry point for the taxseq CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixml/taxseq/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "taxseq",
		Short: "Retrieve and filter nucleotide records by NCBI taxonomy ID",
		Long: `taxseq retrieves every nucleotide record filed under an NCBI taxonomy
identifier, keeps those whose sequence length falls within inclusive bounds,
and writes a CSV table, a length chart and a run summary.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory, if present)")

	cmd.AddCommand(fetchCmd(&envFile))
	cmd.AddCommand(serveCmd(&envFile))
	cmd.AddCommand(stdioCmd(&envFile))
	cmd.AddCommand(runsCmd(&envFile))
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from a .env file and environment variables.
// An explicitly named file must exist.
func loadConfig(envFile string) (config.AppConfig, error) {
	load := config.LoadConfig
	if envFile != "" {
		load = config.LoadConfigStrict
	}
	cfg, err := load(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
