// Package evaluate runs the fidelity metrics over a pair of tables.
package evaluate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fidelity-backend/internal/align"
	"fidelity-backend/internal/distance"
	"fidelity-backend/internal/metrics"
	"fidelity-backend/internal/sanitize"
	"fidelity-backend/internal/table"
)

// Options configures an Evaluator.
type Options struct {
	// Workers bounds parallel metric and distance tasks. 0 means GOMAXPROCS.
	Workers int
	// ChunkRows is the distance block size.
	ChunkRows int
	// DefaultSet is used when a request names neither metrics nor a set.
	DefaultSet string
	Logger     *slog.Logger
}

// Evaluator is safe for concurrent use; it holds no per-request state.
type Evaluator struct {
	library    []metrics.Descriptor
	distances  *distance.Computer
	defaultSet string
	logger     *slog.Logger
}

// New creates an Evaluator over a fixed metric library.
func New(library []metrics.Descriptor, opts Options) *Evaluator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lib := make([]metrics.Descriptor, len(library))
	copy(lib, library)
	return &Evaluator{
		library:    lib,
		distances:  distance.NewComputer(opts.ChunkRows, opts.Workers),
		defaultSet: opts.DefaultSet,
		logger:     logger,
	}
}

// Library returns a copy of the metric descriptors.
func (e *Evaluator) Library() []metrics.Descriptor {
	lib := make([]metrics.Descriptor, len(e.library))
	copy(lib, e.library)
	return lib
}

// Request names the tables to compare and the metrics to compute.
// Metrics takes precedence over Set.
type Request struct {
	Real      *table.Table
	Synthetic *table.Table
	Set       string
	Metrics   []string
}

// Detail describes how one metric was produced.
type Detail struct {
	Metric   string `json:"metric"`
	Status   string `json:"status"`
	Fallback string `json:"fallback"`
	Error    string `json:"error,omitempty"`
}

// Report is the outcome of one evaluation.
type Report struct {
	ID        string
	Scores    map[string]*float64
	Outcomes  []metrics.Outcome
	Alignment align.Result
	Duration  time.Duration
}

// Details lists per-metric statuses in evaluation order.
func (r *Report) Details() []Detail {
	out := make([]Detail, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		d := Detail{Metric: o.Name, Status: o.Status.String(), Fallback: o.Fallback.String()}
		if o.Err != nil {
			d.Error = o.Err.Error()
		}
		out = append(out, d)
	}
	return out
}

// Select resolves the descriptors a request asks for.
func (e *Evaluator) Select(set string, names []string) ([]metrics.Descriptor, error) {
	if len(names) == 0 {
		if set == "" {
			set = e.defaultSet
		}
		var err error
		if names, err = metrics.SetNames(set); err != nil {
			return nil, err
		}
	}
	return metrics.Select(e.library, names)
}

// Evaluate aligns the tables, builds the shared distance basis when a selected
// metric needs it, runs the selected metrics in parallel and returns sanitized
// scores. Only metric selection can fail.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (*Report, error) {
	selected, err := e.Select(req.Set, req.Metrics)
	if err != nil {
		return nil, err
	}

	if req.Real == nil {
		req.Real = table.FromColumns("real", nil)
	}
	if req.Synthetic == nil {
		req.Synthetic = table.FromColumns("synthetic", nil)
	}

	start := time.Now()
	report := &Report{ID: uuid.NewString()}
	logger := e.logger.With("evaluation_id", report.ID)

	report.Alignment = align.Align(req.Real, req.Synthetic)
	for _, c := range report.Alignment.Coercions {
		if c.Action != align.Kept {
			logger.Debug("column reconciled", "column", c.Column, "action", c.Action,
				"real", c.Real, "synthetic", c.Synthetic, "result", c.Result)
		}
	}

	var basis *distance.Basis
	if needsBasis(selected) {
		basis = e.buildBasis(ctx, logger, report.Alignment)
	}
	in := metrics.NewInput(report.Alignment, basis)

	report.Outcomes = e.runMetrics(ctx, selected, in)

	raw := make(map[string]*float64, len(report.Outcomes))
	for _, o := range report.Outcomes {
		raw[o.Name] = o.Score()
		metricOutcomes.WithLabelValues(o.Name, o.Status.String()).Inc()
		if o.Status == metrics.Failed {
			logger.Warn("metric failed", "metric", o.Name, "error", o.Err)
		} else {
			logger.Debug("metric computed", "metric", o.Name, "status", o.Status.String())
		}
	}
	report.Scores = sanitize.Scores(raw)

	report.Duration = time.Since(start)
	evaluationDuration.Observe(report.Duration.Seconds())
	logger.Info("evaluation complete",
		"real_rows", req.Real.Len(),
		"synthetic_rows", req.Synthetic.Len(),
		"shared_columns", len(report.Alignment.Shared),
		"metrics", len(selected),
		"duration_ms", report.Duration.Milliseconds())
	return report, nil
}

func needsBasis(selected []metrics.Descriptor) bool {
	for _, d := range selected {
		if d.NeedsBasis {
			return true
		}
	}
	return false
}

// buildBasis returns nil when either numeric projection is empty or the computation is cancelled.
func (e *Evaluator) buildBasis(ctx context.Context, logger *slog.Logger, res align.Result) *distance.Basis {
	columns := metrics.NewInput(res, nil).SharedNumeric()
	real := distance.Project(res.Real, columns)
	synth := distance.Project(res.Synthetic, columns)
	distanceRows.WithLabelValues("real").Observe(float64(real.Rows))
	distanceRows.WithLabelValues("synthetic").Observe(float64(synth.Rows))

	basis, err := e.distances.Compute(ctx, real, synth)
	switch {
	case errors.Is(err, distance.ErrEmptyProjection):
		logger.Info("distance basis unavailable", "numeric_columns", len(columns),
			"real_rows", real.Rows, "synthetic_rows", synth.Rows)
		return nil
	case err != nil:
		logger.Warn("distance basis failed", "error", err)
		return nil
	}
	return basis
}

// runMetrics runs every descriptor on its own task. Descriptors never fail, so
// the group only bounds concurrency.
func (e *Evaluator) runMetrics(ctx context.Context, selected []metrics.Descriptor, in *metrics.Input) []metrics.Outcome {
	outcomes := make([]metrics.Outcome, len(selected))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(e.distances.Workers)
	for i, d := range selected {
		i, d := i, d
		g.Go(func() error {
			outcomes[i] = d.Run(in)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}
