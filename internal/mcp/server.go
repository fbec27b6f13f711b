// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/taxseq/application/service"
	"github.com/helixml/taxseq/domain/query"
	"github.com/helixml/taxseq/domain/run"
)

// ServerName is the name reported to MCP clients.
const ServerName = "taxseq"

// MaxListedRecords caps the records returned inline by get_run.
const MaxListedRecords = 200

// Runs executes and looks up pipeline runs for MCP tools.
type Runs interface {
	Execute(ctx context.Context, params run.Params, opts ...service.ExecuteOption) (service.Execution, error)
	Get(ctx context.Context, id string) (run.Result, error)
	List(ctx context.Context, limit int) ([]run.Result, error)
}

// Server wraps the MCP server with the sequence retrieval tools.
type Server struct {
	mcpServer        *server.MCPServer
	runs             Runs
	defaultBatchSize int
	version          string
	logger           *slog.Logger
}

// NewServer creates a new MCP server. defaultBatchSize is used when a tool
// call does not name one.
func NewServer(runs Runs, defaultBatchSize int, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultBatchSize <= 0 {
		defaultBatchSize = run.DefaultBatchSize
	}

	s := &Server{
		runs:             runs,
		defaultBatchSize: defaultBatchSize,
		version:          version,
		logger:           logger,
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(mcp.NewTool("fetch_sequences",
		mcp.WithDescription("Retrieve nucleotide records for an NCBI taxonomy ID, keep those whose length is within inclusive bounds, and write the CSV, chart and summary reports"),
		mcp.WithString("taxid",
			mcp.Required(),
			mcp.Description("NCBI taxonomy identifier, e.g. 562"),
		),
		mcp.WithNumber("min_length",
			mcp.Required(),
			mcp.Description("Minimum sequence length, inclusive"),
		),
		mcp.WithNumber("max_length",
			mcp.Required(),
			mcp.Description("Maximum sequence length, inclusive"),
		),
		mcp.WithNumber("batch_size",
			mcp.Description("Records per fetch request"),
		),
	), s.handleFetchSequences)

	mcpServer.AddTool(mcp.NewTool("get_run",
		mcp.WithDescription("Get a stored run with its kept records"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Run ID returned by fetch_sequences or list_runs"),
		),
	), s.handleGetRun)

	mcpServer.AddTool(mcp.NewTool("list_runs",
		mcp.WithDescription("List stored runs, most recent first"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum runs to return (default: 20)"),
		),
	), s.handleListRuns)

	mcpServer.AddTool(mcp.NewTool("get_version",
		mcp.WithDescription("Get the taxseq server version"),
	), s.handleGetVersion)
}

type runSummary struct {
	ID               string         `json:"id"`
	TaxID            string         `json:"taxid"`
	OrganismName     string         `json:"organism_name,omitempty"`
	MinLength        int            `json:"min_length"`
	MaxLength        int            `json:"max_length"`
	State            string         `json:"state"`
	Complete         bool           `json:"complete"`
	ResultCount      int            `json:"result_count"`
	RecordCount      int            `json:"record_count"`
	BatchesPlanned   int            `json:"batches_planned"`
	BatchesFetched   int            `json:"batches_fetched"`
	SkippedBatches   int            `json:"skipped_batches"`
	MalformedRecords int            `json:"malformed_records"`
	Error            string         `json:"error,omitempty"`
	Report           *reportFiles   `json:"report,omitempty"`
	Records          []recordResult `json:"records,omitempty"`
	Truncated        bool           `json:"truncated,omitempty"`
}

type reportFiles struct {
	CSV     string `json:"csv,omitempty"`
	Chart   string `json:"chart,omitempty"`
	Summary string `json:"summary"`
}

type recordResult struct {
	Accession   string `json:"accession"`
	Length      int    `json:"length"`
	Description string `json:"description"`
}

func summarize(r run.Result) runSummary {
	bounds := r.Params().Bounds()
	return runSummary{
		ID:               r.ID(),
		TaxID:            r.TaxID().String(),
		OrganismName:     r.OrganismName(),
		MinLength:        bounds.Min(),
		MaxLength:        bounds.Max(),
		State:            r.State().String(),
		Complete:         r.Complete(),
		ResultCount:      r.ResultCount(),
		RecordCount:      r.RecordCount(),
		BatchesPlanned:   r.BatchesPlanned(),
		BatchesFetched:   r.BatchesFetched(),
		SkippedBatches:   len(r.SkippedBatches()),
		MalformedRecords: r.MalformedRecords(),
		Error:            r.ErrorMessage(),
	}
}

func (s *Server) handleFetchSequences(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taxIDStr, err := request.RequireString("taxid")
	if err != nil {
		return mcp.NewToolResultError("taxid is required"), nil
	}
	taxID, err := query.ParseTaxID(strings.TrimSpace(taxIDStr))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	if _, ok := args["min_length"]; !ok {
		return mcp.NewToolResultError("min_length is required"), nil
	}
	if _, ok := args["max_length"]; !ok {
		return mcp.NewToolResultError("max_length is required"), nil
	}

	params, err := run.NewParams(
		taxID,
		request.GetInt("min_length", 0),
		request.GetInt("max_length", 0),
		request.GetInt("batch_size", s.defaultBatchSize),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	exec, err := s.runs.Execute(ctx, params)
	if err != nil && !errors.Is(err, run.ErrCancelled) {
		s.logger.ErrorContext(ctx, "fetch_sequences failed", slog.String("taxid", taxID.String()), slog.String("error", err.Error()))
		return mcp.NewToolResultError(fmt.Sprintf("fetch failed: %v", err)), nil
	}

	summary := summarize(exec.Result)
	if exec.Report.SummaryPath != "" {
		summary.Report = &reportFiles{
			CSV:     exec.Report.CSVPath,
			Chart:   exec.Report.ChartPath,
			Summary: exec.Report.SummaryPath,
		}
	}
	return jsonResult(summary)
}

func (s *Server) handleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}

	result, err := s.runs.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get run: %v", err)), nil
	}

	summary := summarize(result)
	records := result.Records()
	if len(records) > MaxListedRecords {
		records = records[:MaxListedRecords]
		summary.Truncated = true
	}
	summary.Records = make([]recordResult, len(records))
	for i, rec := range records {
		summary.Records[i] = recordResult{
			Accession:   rec.Accession(),
			Length:      rec.Length(),
			Description: rec.Description(),
		}
	}
	return jsonResult(summary)
}

func (s *Server) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}

	results, err := s.runs.List(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}

	summaries := make([]runSummary, len(results))
	for i, r := range results {
		summaries[i] = summarize(r)
	}
	return jsonResult(summaries)
}

func (s *Server) handleGetVersion(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.version), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
