// Package distance computes nearest-neighbour Euclidean distances between the
// numeric rows of two tables.
//
// The pairwise matrices (real×synthetic, real×real) are evaluated in blocks of
// rows and reduced to row-wise minima as they are produced, so memory stays
// linear in the row counts while time remains O(n·m).
package distance

import (
	"context"
	"errors"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"fidelity-backend/internal/table"
)

// ErrEmptyProjection is returned when either side has no numeric rows or columns.
var ErrEmptyProjection = errors.New("distance: empty numeric projection")

// Points is a row-major matrix of numeric row vectors.
type Points struct {
	Columns []string
	Data    []float64
	Rows    int
}

// Dim returns the vector dimension.
func (p *Points) Dim() int { return len(p.Columns) }

// Empty reports whether the projection has no rows or no columns.
func (p *Points) Empty() bool { return p == nil || p.Rows == 0 || len(p.Columns) == 0 }

func (p *Points) row(i int) []float64 {
	d := len(p.Columns)
	return p.Data[i*d : (i+1)*d]
}

// Project extracts the given numeric columns as row vectors.
// Rows with a missing value in any of the columns are dropped.
func Project(t *table.Table, columns []string) *Points {
	p := &Points{Columns: columns}
	cols := make([]*table.Column, 0, len(columns))
	for _, name := range columns {
		c, ok := t.Column(name)
		if !ok || c.Kind != table.Numeric {
			return &Points{}
		}
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		return p
	}

	vec := make([]float64, len(cols))
rows:
	for i := 0; i < t.Len(); i++ {
		for j, c := range cols {
			v := c.Num[i]
			if math.IsNaN(v) {
				continue rows
			}
			vec[j] = v
		}
		p.Data = append(p.Data, vec...)
		p.Rows++
	}
	return p
}

// Basis holds the distance structures shared by the distance-based metrics.
type Basis struct {
	// RealToSynthetic[i] is the distance from real row i to its closest synthetic row.
	RealToSynthetic []float64
	// SyntheticToReal[j] is the distance from synthetic row j to its closest real row.
	SyntheticToReal []float64
	// RealMeanNN is the mean distance from each real row to its closest other real row.
	// +Inf when the real side has a single row, which has no other row to match.
	RealMeanNN float64
}

// HasRealNN reports whether the real-to-real baseline is available.
func (b *Basis) HasRealNN() bool {
	return b != nil && !math.IsNaN(b.RealMeanNN)
}

// Computer evaluates distance bases in parallel blocks.
type Computer struct {
	// ChunkRows is the number of query rows handled per task.
	ChunkRows int
	// Workers bounds concurrent tasks. 0 means GOMAXPROCS.
	Workers int
}

// NewComputer returns a Computer with defaults applied.
func NewComputer(chunkRows, workers int) *Computer {
	if chunkRows <= 0 {
		chunkRows = 256
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Computer{ChunkRows: chunkRows, Workers: workers}
}

// Compute builds the three distance structures from two projections over the same columns.
func (c *Computer) Compute(ctx context.Context, real, synth *Points) (*Basis, error) {
	if real.Empty() || synth.Empty() || real.Dim() != synth.Dim() {
		return nil, ErrEmptyProjection
	}

	b := &Basis{}
	var err error
	if b.RealToSynthetic, err = c.MinDistances(ctx, real, synth, false); err != nil {
		return nil, err
	}
	if b.SyntheticToReal, err = c.MinDistances(ctx, synth, real, false); err != nil {
		return nil, err
	}

	b.RealMeanNN = math.Inf(1)
	if real.Rows > 1 {
		self, err := c.MinDistances(ctx, real, real, true)
		if err != nil {
			return nil, err
		}
		// Scale before summing so large distances do not overflow.
		floats.Scale(1/float64(len(self)), self)
		b.RealMeanNN = floats.Sum(self)
	}
	return b, nil
}

// MinDistances returns, for every row of from, the Euclidean distance to the closest
// row of to. With excludeSelf, row i of from is never matched to row i of to, which
// is the diagonal of a self-comparison treated as +Inf.
func (c *Computer) MinDistances(ctx context.Context, from, to *Points, excludeSelf bool) ([]float64, error) {
	out := make([]float64, from.Rows)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.Workers)

	for start := 0; start < from.Rows; start += c.ChunkRows {
		start := start
		end := min(start+c.ChunkRows, from.Rows)

		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				out[i] = nearest(from.row(i), to, i, excludeSelf)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func nearest(q []float64, to *Points, self int, excludeSelf bool) float64 {
	best := math.Inf(1)
	for j := 0; j < to.Rows; j++ {
		if excludeSelf && j == self {
			continue
		}
		if d := floats.Distance(q, to.row(j), 2); d < best {
			best = d
		}
	}
	return best
}
