package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/helixml/taxseq/domain/run"
	"github.com/helixml/taxseq/infrastructure/report"
)

func runsCmd(envFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored runs",
	}

	cmd.AddCommand(runsListCmd(envFile))
	cmd.AddCommand(runsShowCmd(envFile))
	cmd.AddCommand(runsRecordsCmd(envFile))

	return cmd
}

func runsListCmd(envFile *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuns(cmd.Context(), *envFile, func(ctx context.Context, runs runHistory) error {
				results, err := runs.List(ctx, limit)
				if err != nil {
					return err
				}
				return writeRunTable(cmd.OutOrStdout(), results)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")

	return cmd
}

func runsShowCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuns(cmd.Context(), *envFile, func(ctx context.Context, runs runHistory) error {
				result, err := runs.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return writeRunDetail(cmd.OutOrStdout(), result)
			})
		},
	}
}

func runsRecordsCmd(envFile *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "records <run-id>",
		Short: "Print the kept records of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "csv" && format != "json" {
				return fmt.Errorf("unsupported format %q: use csv or json", format)
			}
			return withRuns(cmd.Context(), *envFile, func(ctx context.Context, runs runHistory) error {
				result, err := runs.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return writeRecords(cmd.OutOrStdout(), result, format)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv or json")

	return cmd
}

type runHistory interface {
	Get(ctx context.Context, id string) (run.Result, error)
	List(ctx context.Context, limit int) ([]run.Result, error)
}

func withRuns(ctx context.Context, envFile string, fn func(context.Context, runHistory) error) error {
	cfg, err := loadConfig(envFile)
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
	return fn(ctx, client.Runs)
}

func writeRunTable(w io.Writer, results []run.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTAXID\tORGANISM\tBOUNDS\tSTATE\tKEPT\tFOUND\tSTARTED")
	for _, r := range results {
		b := r.Params().Bounds()
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d-%d\t%s\t%d\t%d\t%s\n",
			r.ID(), r.TaxID(), r.OrganismName(), b.Min(), b.Max(), r.State(),
			r.RecordCount(), r.ResultCount(), r.StartedAt().Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func writeRunDetail(w io.Writer, r run.Result) error {
	b := r.Params().Bounds()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"id", r.ID()},
		{"taxid", r.TaxID().String()},
		{"organism", r.OrganismName()},
		{"bounds", fmt.Sprintf("%d-%d bp", b.Min(), b.Max())},
		{"batch size", fmt.Sprint(r.Params().BatchSize())},
		{"state", r.State().String()},
		{"complete", fmt.Sprint(r.Complete())},
		{"records found", fmt.Sprint(r.ResultCount())},
		{"records kept", fmt.Sprint(r.RecordCount())},
		{"batches", fmt.Sprintf("%d/%d", r.BatchesFetched(), r.BatchesPlanned())},
		{"malformed", fmt.Sprint(r.MalformedRecords())},
		{"started", r.StartedAt().Local().Format(time.DateTime)},
		{"duration", r.Duration().Round(time.Millisecond).String()},
	}
	if msg := r.ErrorMessage(); msg != "" {
		rows = append(rows, [2]string{"error", msg})
	}
	for _, row := range rows {
		_, _ = fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
	}
	for _, s := range r.SkippedBatches() {
		_, _ = fmt.Fprintf(tw, "skipped:\toffset %d size %d (%s)\n", s.Offset, s.Size, s.Cause)
	}
	return tw.Flush()
}

type recordJSON struct {
	Accession   string `json:"accession"`
	Length      int    `json:"length"`
	Description string `json:"description"`
}

func writeRecords(w io.Writer, r run.Result, format string) error {
	records := r.Records()
	if format == "csv" {
		return report.WriteCSV(w, records)
	}

	out := make([]recordJSON, len(records))
	for i, rec := range records {
		out[i] = recordJSON{Accession: rec.Accession(), Length: rec.Length(), Description: rec.Description()}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
