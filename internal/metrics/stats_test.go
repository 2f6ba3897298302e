package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWasserstein(t *testing.T) {
	tests := []struct {
		name string
		u, v []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"shifted", []float64{0, 1}, []float64{2, 3}, 2},
		{"scipy example", []float64{0, 1, 3}, []float64{5, 6, 8}, 5},
		{"different sizes", []float64{0}, []float64{0, 1}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := wasserstein(tt.u, tt.v)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	_, err := wasserstein(nil, []float64{1})
	assert.Error(t, err)
}

func TestMinMaxScale(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, minMaxScale([]float64{2, 3, 4}, 2, 4))
	assert.Equal(t, []float64{0, 0}, minMaxScale([]float64{5, 5}, 5, 5))
}

func TestMinMaxScaleWideRange(t *testing.T) {
	// hi-lo overflows float64 here.
	got := minMaxScale([]float64{-1e308, 0, 1e308}, -1e308, 1e308)
	assert.Equal(t, []float64{0, 0.5, 1}, got)

	assert.Equal(t, []float64{0, 0}, minMaxScale([]float64{1, math.Inf(1)}, 1, math.Inf(1)))
}

func TestHistogramClosesLastBin(t *testing.T) {
	assert.Equal(t, []float64{1, 2}, histogram([]float64{1, 0, 0.5}, 2))
	assert.Equal(t, []float64{2, 0, 0, 0}, histogram([]float64{0, 0}, 4))
}

func TestBinWidth(t *testing.T) {
	assert.InDelta(t, 0.5, binWidth(0, 10, 20), 1e-12)
	assert.False(t, math.IsInf(binWidth(-1e308, 1e308, 20), 0))
}

func TestKLDivergence(t *testing.T) {
	p := []float64{0.5, 0.5}
	assert.InDelta(t, 0, klDivergence(p, p), 1e-12)
	assert.InDelta(t, 0.5*math.Log(0.5/0.25)+0.5*math.Log(0.5/0.75), klDivergence(p, []float64{1, 3}), 1e-12)
}

func TestChiSquared(t *testing.T) {
	stat, dof, p, err := chiSquared([][]float64{{10, 20}, {20, 10}})
	require.NoError(t, err)
	assert.Equal(t, 1, dof)
	assert.InDelta(t, 6.666667, stat, 1e-6)
	// Survival of chi-squared(1) at 20/3.
	assert.InDelta(t, 0.0098233, p, 1e-6)

	stat, _, p, err = chiSquared([][]float64{{5, 5}, {5, 5}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, stat)
	assert.Equal(t, 1.0, p)

	_, _, _, err = chiSquared([][]float64{{1, 2}})
	assert.Error(t, err)
}
