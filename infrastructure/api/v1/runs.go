// Package v1 provides the v1 API routes.
package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/helixml/taxseq"
	"github.com/helixml/taxseq/domain/query"
	"github.com/helixml/taxseq/domain/run"
	"github.com/helixml/taxseq/infrastructure/api/jsonapi"
	"github.com/helixml/taxseq/infrastructure/api/middleware"
	"github.com/helixml/taxseq/infrastructure/report"
)

// ReadTimeout bounds the read-only run endpoints.
const ReadTimeout = 60 * time.Second

// RunsRouter handles run API endpoints.
type RunsRouter struct {
	client     *taxseq.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewRunsRouter creates a new RunsRouter.
func NewRunsRouter(client *taxseq.Client) *RunsRouter {
	return &RunsRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for run endpoints. Creating a run is not
// bounded by ReadTimeout since it lasts as long as the retrieval.
func (r *RunsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Create)
	router.Group(func(g chi.Router) {
		g.Use(chimiddleware.Timeout(ReadTimeout))
		g.Get("/", r.List)
		g.Get("/{id}", r.Get)
		g.Get("/{id}/records", r.Records)
		g.Get("/{id}/chart", r.Chart)
	})

	return router
}

// Create handles POST /api/v1/runs. The run executes synchronously and the
// response carries the finished run. A cancelled request stops the run at
// the next batch boundary.
func (r *RunsRouter) Create(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body jsonapi.RunCreateRequest
	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid request body: "+err.Error(), err), r.logger)
		return
	}

	params, err := r.params(body.Data.Attributes)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	exec, err := r.client.Runs.Execute(ctx, params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc := jsonapi.NewSingleResponse(r.serializer.RunResource(exec.Result))
	doc.Meta = jsonapi.ReportMeta(exec.Report)
	w.Header().Set("Location", "/api/v1/runs/"+exec.Result.ID())
	middleware.WriteJSON(w, http.StatusCreated, doc)
}

func (r *RunsRouter) params(attrs jsonapi.RunCreateAttributes) (run.Params, error) {
	taxID, err := query.ParseTaxID(strings.TrimSpace(attrs.TaxID))
	if err != nil {
		return run.Params{}, err
	}
	if attrs.MinLength == nil || attrs.MaxLength == nil {
		return run.Params{}, middleware.NewAPIError(http.StatusBadRequest, "min_length and max_length are required", nil)
	}
	size := attrs.BatchSize
	if size == 0 {
		size = r.client.DefaultBatchSize()
	}
	return run.NewParams(taxID, *attrs.MinLength, *attrs.MaxLength, size)
}

// List handles GET /api/v1/runs.
func (r *RunsRouter) List(w http.ResponseWriter, req *http.Request) {
	limit := ParseLimit(req)

	results, err := r.client.Runs.List(req.Context(), limit)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc := jsonapi.NewListResponse(r.serializer.RunResources(results))
	doc.Meta = &jsonapi.Meta{"limit": limit, "count": len(results)}
	middleware.WriteJSON(w, http.StatusOK, doc)
}

// Get handles GET /api/v1/runs/{id}.
func (r *RunsRouter) Get(w http.ResponseWriter, req *http.Request) {
	result, err := r.client.Runs.Get(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.RunResource(result)))
}

// Records handles GET /api/v1/runs/{id}/records. The format query parameter
// selects json (default) or csv.
func (r *RunsRouter) Records(w http.ResponseWriter, req *http.Request) {
	format := strings.ToLower(req.URL.Query().Get("format"))
	if format != "" && format != "json" && format != "csv" {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format), nil), r.logger)
		return
	}

	result, err := r.client.Runs.Get(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.CSVName(result.TaxID().String())))
		if err := report.WriteCSV(w, result.Records()); err != nil {
			r.logger.ErrorContext(req.Context(), "failed to stream csv", slog.String("error", err.Error()))
		}
		return
	}

	doc := jsonapi.NewListResponse(r.serializer.SequenceResources(result.Records()))
	doc.Meta = &jsonapi.Meta{"run_id": result.ID(), "count": result.RecordCount()}
	middleware.WriteJSON(w, http.StatusOK, doc)
}

// Chart handles GET /api/v1/runs/{id}/chart and renders the length chart
// as PNG.
func (r *RunsRouter) Chart(w http.ResponseWriter, req *http.Request) {
	result, err := r.client.Runs.Get(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if len(result.Records()) == 0 {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusNotFound, "run kept no records", nil), r.logger)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := report.WriteChart(w, result.Records()); err != nil {
		r.logger.ErrorContext(req.Context(), "failed to render chart", slog.String("error", err.Error()))
	}
}
