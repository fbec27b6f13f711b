package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/helixml/taxseq/application/service"
	"github.com/helixml/taxseq/domain/run"
	"github.com/helixml/taxseq/internal/config"
)

type fetchFlags struct {
	paramsFile string
	taxID      string
	minLength  int
	maxLength  int
	batchSize  int
	outputDir  string
}

func fetchCmd(envFile *string) *cobra.Command {
	var f fetchFlags

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Retrieve, filter and report records for a taxonomy ID",
		Long: `Retrieve every nucleotide record for a taxonomy ID, keep those whose length
is within [--min-length, --max-length] and write the reports.

Parameters come from flags or from a YAML file given with --params; flags
override values from the file:

  taxid: "562"
  min_length: 1000
  max_length: 5000
  batch_size: 100
  output_dir: ./out

Report paths are printed to stdout. Interrupting the command stops
retrieval at the next batch boundary; the partial run is saved.`,
		Example: `  taxseq fetch --taxid 562 --min-length 1000 --max-length 5000
  taxseq fetch --params search.yaml --output-dir ./reports`,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := f.searchParams(cmd)
			if err != nil {
				return err
			}
			return runFetch(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), *envFile, params)
		},
	}

	cmd.Flags().StringVar(&f.paramsFile, "params", "", "YAML search parameters file")
	cmd.Flags().StringVar(&f.taxID, "taxid", "", "NCBI taxonomy identifier")
	cmd.Flags().IntVar(&f.minLength, "min-length", 0, "Minimum sequence length, inclusive")
	cmd.Flags().IntVar(&f.maxLength, "max-length", 0, "Maximum sequence length, inclusive")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "Records per fetch request (default: PIPELINE_BATCH_SIZE)")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "Report directory (default: OUTPUT_DIR)")

	return cmd
}

// searchParams merges the parameters file with explicitly set flags.
func (f fetchFlags) searchParams(cmd *cobra.Command) (config.SearchParams, error) {
	var p config.SearchParams
	if f.paramsFile != "" {
		loaded, err := config.LoadSearchParams(f.paramsFile)
		if err != nil {
			return config.SearchParams{}, err
		}
		p = loaded
	} else {
		for _, name := range []string{"taxid", "min-length", "max-length"} {
			if !cmd.Flags().Changed(name) {
				return config.SearchParams{}, fmt.Errorf("--%s is required unless --params is given", name)
			}
		}
	}

	flags := cmd.Flags()
	if flags.Changed("taxid") {
		p.TaxID = f.taxID
	}
	if flags.Changed("min-length") {
		p.MinLength = f.minLength
	}
	if flags.Changed("max-length") {
		p.MaxLength = f.maxLength
	}
	if flags.Changed("batch-size") {
		p.BatchSize = f.batchSize
	}
	if flags.Changed("output-dir") {
		p.OutputDir = f.outputDir
	}

	if err := p.Validate(); err != nil {
		return config.SearchParams{}, err
	}
	return p, nil
}

func runFetch(ctx context.Context, stdout, stderr io.Writer, envFile string, p config.SearchParams) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	params, err := p.RunParams(cfg.Pipeline().BatchSize())
	if err != nil {
		return err
	}

	client, logger, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer closeClient(client, logger)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []service.ExecuteOption
	if p.OutputDir != "" {
		opts = append(opts, service.WithOutputDir(p.OutputDir))
	}

	exec, err := client.Runs.Execute(ctx, params, opts...)
	if err != nil {
		if errors.Is(err, run.ErrCancelled) {
			r := exec.Result
			logger.Warn("run interrupted",
				slog.String("run_id", r.ID()),
				slog.Int("batches_fetched", r.BatchesFetched()),
				slog.Int("batches_planned", r.BatchesPlanned()),
				slog.Int("records_kept", r.RecordCount()),
			)
		}
		return err
	}

	printExecution(stdout, stderr, exec)
	return nil
}

// printExecution writes report paths to stdout and the human-facing notes
// to stderr.
func printExecution(stdout, stderr io.Writer, exec service.Execution) {
	r := exec.Result
	bounds := r.Params().Bounds()

	switch {
	case r.State() == run.StateEmptyResult:
		_, _ = fmt.Fprintf(stderr, "No records found for taxid %s.\n", r.TaxID())
	case r.RecordCount() == 0:
		_, _ = fmt.Fprintf(stderr, "No records found after filtering by length (%d-%d bp).\n", bounds.Min(), bounds.Max())
	default:
		_, _ = fmt.Fprintf(stderr, "Kept %d of %d records for %s (%d-%d bp).\n",
			r.RecordCount(), r.ResultCount(), r.OrganismName(), bounds.Min(), bounds.Max())
	}
	if !r.Complete() {
		_, _ = fmt.Fprintf(stderr, "Warning: incomplete run, %d batch(es) skipped and %d malformed record(s) dropped.\n",
			len(r.SkippedBatches()), r.MalformedRecords())
	}

	rep := exec.Report
	if rep.CSVPath != "" {
		_, _ = fmt.Fprintln(stdout, rep.CSVPath)
	}
	if rep.ChartPath != "" {
		_, _ = fmt.Fprintln(stdout, rep.ChartPath)
	}
	if rep.SummaryPath != "" {
		_, _ = fmt.Fprintln(stdout, rep.SummaryPath)
	}
}
