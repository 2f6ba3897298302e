package models

import (
	"fidelity-backend/internal/align"
	"fidelity-backend/internal/analysis"
	"fidelity-backend/internal/datasource"
	"fidelity-backend/internal/evaluate"
)

// EvaluateResponse is returned by /evaluate/ and /api/db/evaluate
type EvaluateResponse struct {
	ID         string              `json:"id"`
	Metrics    map[string]*float64 `json:"metrics"`
	Details    []MetricDetail      `json:"details"`
	Alignment  AlignmentReport     `json:"alignment"`
	Preview    *Preview            `json:"preview,omitempty"`
	DurationMs int64               `json:"duration_ms"`
}

// NewEvaluateResponse flattens an evaluation report. Preview is left empty.
func NewEvaluateResponse(report *evaluate.Report) EvaluateResponse {
	resp := EvaluateResponse{
		ID:      report.ID,
		Metrics: report.Scores,
		Alignment: AlignmentReport{
			Shared:        report.Alignment.Shared,
			RealOnly:      report.Alignment.RealOnly,
			SyntheticOnly: report.Alignment.SynthOnly,
			Coercions:     report.Alignment.Coercions,
		},
		DurationMs: report.Duration.Milliseconds(),
	}
	for _, d := range report.Details() {
		resp.Details = append(resp.Details, MetricDetail(d))
	}
	return resp
}

// MetricDetail explains how a metric value was produced
type MetricDetail struct {
	Metric   string `json:"metric"`
	Status   string `json:"status"`
	Fallback string `json:"fallback"`
	Error    string `json:"error,omitempty"`
}

// AlignmentReport summarizes column reconciliation
type AlignmentReport struct {
	Shared        []string         `json:"shared"`
	RealOnly      []string         `json:"real_only"`
	SyntheticOnly []string         `json:"synthetic_only"`
	Coercions     []align.Coercion `json:"coercions"`
}

// Preview holds the first rows of both inputs. Numeric cells are numbers,
// missing cells are null.
type Preview struct {
	Real      []map[string]interface{} `json:"real"`
	Synthetic []map[string]interface{} `json:"synthetic"`
}

// PreprocessResponse is returned by /preprocess/
type PreprocessResponse struct {
	Rows        int              `json:"rows"`
	Columns     int              `json:"columns"`
	ColumnNames []string         `json:"column_names"`
	Summary     analysis.Summary `json:"summary"`
}

// MetricInfo describes an available metric for /api/metrics
type MetricInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Bounded     bool     `json:"bounded"`
	Fallback    string   `json:"fallback"`
	Sets        []string `json:"sets"`
}

// TablesRequest for /api/db/tables
type TablesRequest struct {
	Source datasource.Config `json:"source"`
}

// TablesResponse for /api/db/tables
type TablesResponse struct {
	Tables []string `json:"tables"`
}

// DBEvaluateRequest for /api/db/evaluate
type DBEvaluateRequest struct {
	Source         datasource.Config `json:"source"`
	RealTable      string            `json:"real_table"`
	SyntheticTable string            `json:"synthetic_table"`
	Limit          int               `json:"limit"`
	Set            string            `json:"set"`
	Metrics        []string          `json:"metrics"`
}
