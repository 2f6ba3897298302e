package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fidelity-backend/internal/analysis"
	"fidelity-backend/internal/config"
	"fidelity-backend/internal/datasource"
	"fidelity-backend/internal/evaluate"
	"fidelity-backend/internal/metrics"
	"fidelity-backend/internal/models"
	"fidelity-backend/internal/sanitize"
	"fidelity-backend/internal/table"
)

// OpenFunc connects to a database source.
type OpenFunc func(ctx context.Context, cfg datasource.Config, logger *slog.Logger) (datasource.DataSource, error)

// OpenSQL opens a database/sql backed source.
func OpenSQL(ctx context.Context, cfg datasource.Config, logger *slog.Logger) (datasource.DataSource, error) {
	return datasource.Open(ctx, cfg, logger)
}

type Handler struct {
	Evaluator  *evaluate.Evaluator
	Config     *config.Config
	OpenSource OpenFunc
	Logger     *slog.Logger
}

func NewHandler(ev *evaluate.Evaluator, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Evaluator:  ev,
		Config:     cfg,
		OpenSource: OpenSQL,
		Logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)
	r.Post("/evaluate", h.Evaluate)
	r.Post("/evaluate/", h.Evaluate)
	r.Post("/preprocess", h.Preprocess)
	r.Post("/preprocess/", h.Preprocess)

	r.Get("/api/metrics", h.ListMetrics)
	r.Post("/api/db/tables", h.ListTables)
	r.Post("/api/db/evaluate", h.EvaluateTables)

	r.Handle("/metrics", promhttp.Handler())
}

// ============================================================================
// Health
// ============================================================================

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// ============================================================================
// Evaluation
// ============================================================================

// Evaluate compares uploaded real and synthetic CSV files.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Config.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.Config.Server.MaxUploadBytes); err != nil {
		http.Error(w, "File too large or malformed form", http.StatusBadRequest)
		return
	}

	real, err := h.readUpload(r, "real")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	synth, err := h.readUpload(r, "synthetic")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.respondEvaluation(w, r, evaluate.Request{
		Real:      real,
		Synthetic: synth,
		Set:       r.FormValue("set"),
		Metrics:   splitList(r.FormValue("metrics")),
	})
}

// EvaluateTables compares two tables of a database source.
func (h *Handler) EvaluateTables(w http.ResponseWriter, r *http.Request) {
	var req models.DBEvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.RealTable == "" || req.SyntheticTable == "" {
		http.Error(w, "real_table and synthetic_table are required", http.StatusBadRequest)
		return
	}

	src, err := h.OpenSource(r.Context(), req.Source, h.Logger)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to connect: %v", err), sourceStatus(err))
		return
	}
	defer src.Close()

	limit := req.Limit
	if limit <= 0 || limit > h.Config.Evaluation.MaxRows {
		limit = h.Config.Evaluation.MaxRows
	}
	real, err := src.LoadTable(r.Context(), req.RealTable, limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error loading %s: %v", req.RealTable, err), sourceStatus(err))
		return
	}
	synth, err := src.LoadTable(r.Context(), req.SyntheticTable, limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error loading %s: %v", req.SyntheticTable, err), sourceStatus(err))
		return
	}

	h.respondEvaluation(w, r, evaluate.Request{
		Real:      real,
		Synthetic: synth,
		Set:       req.Set,
		Metrics:   req.Metrics,
	})
}

func (h *Handler) respondEvaluation(w http.ResponseWriter, r *http.Request, req evaluate.Request) {
	report, err := h.Evaluator.Evaluate(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := models.NewEvaluateResponse(report)
	if n := h.Config.Evaluation.PreviewRows; n > 0 {
		resp.Preview = &models.Preview{
			Real:      preview(req.Real, n),
			Synthetic: preview(req.Synthetic, n),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// Preprocess
// ============================================================================

// Preprocess returns a describe-style summary of an uploaded CSV file.
func (h *Handler) Preprocess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Config.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.Config.Server.MaxUploadBytes); err != nil {
		http.Error(w, "File too large or malformed form", http.StatusBadRequest)
		return
	}

	tbl, err := h.readUpload(r, "file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, models.PreprocessResponse{
		Rows:        tbl.Len(),
		Columns:     len(tbl.Columns),
		ColumnNames: tbl.Headers(),
		Summary:     analysis.Describe(tbl),
	})
}

// ============================================================================
// Metrics catalogue
// ============================================================================

func (h *Handler) ListMetrics(w http.ResponseWriter, r *http.Request) {
	membership := make(map[string][]string)
	for _, set := range []string{metrics.SetCore, metrics.SetAlternates, metrics.SetAll} {
		names, _ := metrics.SetNames(set)
		for _, n := range names {
			membership[n] = append(membership[n], set)
		}
	}

	var out []models.MetricInfo
	for _, d := range h.Evaluator.Library() {
		out = append(out, models.MetricInfo{
			Name:        d.Name,
			Description: d.Description,
			Bounded:     d.Bounded,
			Fallback:    d.Ineligible.String(),
			Sets:        membership[d.Name],
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ============================================================================
// Database sources
// ============================================================================

// ListTables returns tables of a database source.
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	var req models.TablesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	src, err := h.OpenSource(r.Context(), req.Source, h.Logger)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to connect: %v", err), sourceStatus(err))
		return
	}
	defer src.Close()

	tables, err := src.ListTables(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Error listing tables: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, models.TablesResponse{Tables: tables})
}

// ============================================================================
// Helpers
// ============================================================================

func (h *Handler) readUpload(r *http.Request, field string) (*table.Table, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("No %s file uploaded", field)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".csv" && ext != ".tsv" && ext != ".txt" {
		return nil, fmt.Errorf("Only CSV files are allowed (%s)", field)
	}

	tbl, err := analysis.ReadCSV(file, header.Filename, analysis.Options{MaxRows: h.Config.Evaluation.MaxRows})
	if err != nil {
		return nil, fmt.Errorf("Failed to parse %s CSV: %v", field, err)
	}
	return tbl, nil
}

func sourceStatus(err error) int {
	switch {
	case errors.Is(err, datasource.ErrUnsupportedType), errors.Is(err, datasource.ErrUnknownTable):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func preview(t *table.Table, n int) []map[string]interface{} {
	n = min(n, t.Len())
	rows := make([]map[string]interface{}, n)
	for i := 0; i < n; i++ {
		row := make(map[string]interface{}, len(t.Columns))
		for _, c := range t.Columns {
			switch {
			case c.Kind == table.Numeric:
				row[c.Name] = c.Num[i]
			case table.IsMissing(c.Raw[i]):
				row[c.Name] = nil
			default:
				row[c.Name] = c.Raw[i]
			}
		}
		rows[i] = row
	}
	return rows
}

// writeJSON nulls NaN and Inf anywhere in v before encoding.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(sanitize.Value(v))
}
