package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/helixml/taxseq/domain/run"
)

// ReportWriter renders a run's output files into a directory.
type ReportWriter interface {
	Write(ctx context.Context, result run.Result, dir string) (run.Report, error)
}

// Execution is a finished run together with the files written for it.
type Execution struct {
	Result run.Result
	Report run.Report
}

// Runs executes pipelines, writes their reports and keeps their history.
type Runs struct {
	pipeline  *Pipeline
	store     run.Store
	reports   ReportWriter
	outputDir string
	logger    *slog.Logger
}

// NewRuns creates a new Runs service. store and reports may be nil to
// skip persistence or report output.
func NewRuns(pipeline *Pipeline, store run.Store, reports ReportWriter, outputDir string, logger *slog.Logger) *Runs {
	return &Runs{
		pipeline:  pipeline,
		store:     store,
		reports:   reports,
		outputDir: outputDir,
		logger:    logger,
	}
}

// ExecuteOption configures a single execution.
type ExecuteOption func(*executeConfig)

type executeConfig struct {
	outputDir string
}

// WithOutputDir overrides the report directory for one execution.
func WithOutputDir(dir string) ExecuteOption {
	return func(c *executeConfig) { c.outputDir = dir }
}

// Execute runs the pipeline, saves the result and writes the report.
// Failed and cancelled runs are saved but produce no report.
func (s *Runs) Execute(ctx context.Context, params run.Params, opts ...ExecuteOption) (Execution, error) {
	cfg := executeConfig{outputDir: s.outputDir}
	for _, opt := range opts {
		opt(&cfg)
	}

	result, runErr := s.pipeline.Run(ctx, params)
	exec := Execution{Result: result}

	if s.store != nil {
		if err := s.store.Save(context.WithoutCancel(ctx), result); err != nil {
			s.logger.Error("failed to save run", slog.String("run_id", result.ID()), slog.String("error", err.Error()))
			if runErr == nil {
				return exec, fmt.Errorf("save run: %w", err)
			}
		}
	}

	if runErr != nil {
		return exec, runErr
	}

	if s.reports != nil && cfg.outputDir != "" {
		report, err := s.reports.Write(ctx, result, cfg.outputDir)
		if err != nil {
			return exec, fmt.Errorf("write report: %w", err)
		}
		exec.Report = report
	}

	return exec, nil
}

// Get returns a stored run with its records.
func (s *Runs) Get(ctx context.Context, id string) (run.Result, error) {
	if s.store == nil {
		return run.Result{}, ErrNoStore
	}
	return s.store.Get(ctx, id)
}

// List returns stored runs, most recent first.
func (s *Runs) List(ctx context.Context, limit int) ([]run.Result, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.List(ctx, limit)
}
