package metrics

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const epsilon = 1e-10

var (
	errNoValues  = errors.New("no values")
	errNonFinite = errors.New("non-finite score")
)

func bounds(sets ...[]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range sets {
		if len(s) == 0 {
			continue
		}
		lo = math.Min(lo, floats.Min(s))
		hi = math.Max(hi, floats.Max(s))
	}
	return lo, hi
}

// halfSpan is (hi-lo)/2, which stays finite for any finite lo and hi.
func halfSpan(lo, hi float64) float64 {
	return hi/2 - lo/2
}

// minMaxScale maps values onto [0,1] using the given range. A zero-width or
// non-finite range maps everything to 0.
func minMaxScale(values []float64, lo, hi float64) []float64 {
	out := make([]float64, len(values))
	span := halfSpan(lo, hi)
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return out
	}
	for i, v := range values {
		out[i] = math.Max(0, math.Min(1, (v/2-lo/2)/span))
	}
	return out
}

// wasserstein is the first Wasserstein distance between two empirical
// distributions: the area between their cumulative distribution functions.
func wasserstein(u, v []float64) (float64, error) {
	if len(u) == 0 || len(v) == 0 {
		return 0, errNoValues
	}
	us := append([]float64(nil), u...)
	vs := append([]float64(nil), v...)
	sort.Float64s(us)
	sort.Float64s(vs)

	all := make([]float64, 0, len(us)+len(vs))
	all = append(all, us...)
	all = append(all, vs...)
	sort.Float64s(all)

	var dist float64
	i, j := 0, 0
	for k := 0; k < len(all)-1; k++ {
		x := all[k]
		for i < len(us) && us[i] <= x {
			i++
		}
		for j < len(vs) && vs[j] <= x {
			j++
		}
		cdfU := float64(i) / float64(len(us))
		cdfV := float64(j) / float64(len(vs))
		dist += math.Abs(cdfU-cdfV) * (all[k+1] - x)
	}
	return dist, nil
}

// histogram bins values already scaled onto [0,1] into equal-width bins.
// The last bin is closed.
func histogram(scaled []float64, bins int) []float64 {
	dividers := floats.Span(make([]float64, bins+1), 0, 1)
	dividers[bins] = math.Nextafter(1, 2)

	x := append([]float64(nil), scaled...)
	sort.Float64s(x)
	return stat.Histogram(nil, dividers, x, nil)
}

// binWidth is the width of one of n equal bins over [lo, hi].
func binWidth(lo, hi float64, n int) float64 {
	return halfSpan(lo, hi) / float64(n) * 2
}

// density normalizes counts so they integrate to one over the bin width, then
// adds epsilon to every bin so later ratios never divide by zero.
func density(counts []float64, width float64) []float64 {
	total := floats.Sum(counts)
	if width <= 0 || math.IsInf(width, 0) {
		width = 1
	}
	out := make([]float64, len(counts))
	for i, c := range counts {
		if total > 0 {
			out[i] = c / (total * width)
		}
		out[i] += epsilon
	}
	return out
}

// klDivergence computes D(p||q) after normalizing both to probability vectors.
func klDivergence(p, q []float64) float64 {
	pn := append([]float64(nil), p...)
	qn := append([]float64(nil), q...)
	floats.Scale(1/floats.Sum(pn), pn)
	floats.Scale(1/floats.Sum(qn), qn)
	return stat.KullbackLeibler(pn, qn)
}

// chiSquared runs Pearson's chi-squared test of independence on a contingency
// table without continuity correction, returning the statistic, the degrees of
// freedom and the p-value.
func chiSquared(observed [][]float64) (chi2 float64, dof int, p float64, err error) {
	rows := len(observed)
	if rows < 2 || len(observed[0]) < 2 {
		return 0, 0, 0, errors.New("contingency table must be at least 2x2")
	}
	cols := len(observed[0])

	rowSum := make([]float64, rows)
	colSum := make([]float64, cols)
	for i, row := range observed {
		rowSum[i] = floats.Sum(row)
		floats.Add(colSum, row)
	}
	total := floats.Sum(rowSum)
	if total == 0 {
		return 0, 0, 0, errNoValues
	}

	obs := make([]float64, 0, rows*cols)
	exp := make([]float64, 0, rows*cols)
	for i := range observed {
		for j := range observed[i] {
			e := rowSum[i] * colSum[j] / total
			if e == 0 {
				return 0, 0, 0, errors.New("zero expected frequency")
			}
			obs = append(obs, observed[i][j])
			exp = append(exp, e)
		}
	}
	chi2 = stat.ChiSquare(obs, exp)
	dof = (rows - 1) * (cols - 1)
	return chi2, dof, distuv.ChiSquared{K: float64(dof)}.Survival(chi2), nil
}
