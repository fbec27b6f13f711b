package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/helixml/taxseq/domain/run"
)

// CSVName returns the record table file name for a taxonomy identifier.
func CSVName(taxID string) string {
	return fmt.Sprintf("taxid_%s_filtered_sequences.csv", taxID)
}

// ChartName returns the chart file name.
func ChartName(taxID string) string {
	return fmt.Sprintf("taxid_%s_length_plot.png", taxID)
}

// SummaryName returns the run summary file name.
func SummaryName(taxID string) string {
	return fmt.Sprintf("taxid_%s_summary.yaml", taxID)
}

// Writer writes the output files of a run.
type Writer struct {
	logger *slog.Logger
}

// NewWriter creates a new Writer.
func NewWriter(logger *slog.Logger) *Writer {
	return &Writer{logger: logger}
}

// Write creates dir if needed and writes the CSV, chart and summary. The
// CSV and chart are skipped when the run kept no records.
func (w *Writer) Write(ctx context.Context, result run.Result, dir string) (run.Report, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return run.Report{}, fmt.Errorf("create output dir: %w", err)
	}

	taxID := result.TaxID().String()
	records := result.Records()
	var rep run.Report

	if len(records) == 0 {
		w.logger.InfoContext(ctx, "no records found after filtering by length", slog.String("taxid", taxID))
	} else {
		csvPath := filepath.Join(dir, CSVName(taxID))
		if err := writeFile(csvPath, func(f io.Writer) error { return WriteCSV(f, records) }); err != nil {
			return rep, err
		}
		rep.CSVPath = csvPath
		w.logger.InfoContext(ctx, "saved csv report", slog.String("path", csvPath), slog.Int("records", len(records)))

		chartPath := filepath.Join(dir, ChartName(taxID))
		if err := writeFile(chartPath, func(f io.Writer) error { return WriteChart(f, records) }); err != nil {
			return rep, err
		}
		rep.ChartPath = chartPath
		w.logger.InfoContext(ctx, "saved plot", slog.String("path", chartPath))
	}

	summaryPath := filepath.Join(dir, SummaryName(taxID))
	var files Files
	if rep.HasRecords() {
		files = Files{CSV: filepath.Base(rep.CSVPath), Chart: filepath.Base(rep.ChartPath)}
	}
	summary := NewSummary(result, files)
	if err := writeFile(summaryPath, func(f io.Writer) error { return WriteSummary(f, summary) }); err != nil {
		return rep, err
	}
	rep.SummaryPath = summaryPath

	return rep, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", filepath.Base(path), cerr)
		}
	}()
	return write(f)
}
