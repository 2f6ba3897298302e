package distance

import (
	"context"
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fidelity-backend/internal/table"
)

func column(values ...string) [][]string {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{v}
	}
	return rows
}

func TestProjectDropsMissingRows(t *testing.T) {
	tbl := table.New("t", []string{"x", "y", "label"}, [][]string{
		{"1", "2", "a"},
		{"", "3", "b"},
		{"4", "5", "c"},
	})

	p := Project(tbl, []string{"x", "y"})
	assert.Equal(t, 2, p.Rows)
	assert.Equal(t, []float64{1, 2, 4, 5}, p.Data)

	assert.True(t, Project(tbl, []string{"label"}).Empty())
	assert.True(t, Project(tbl, nil).Empty())
}

func TestComputeIdentical(t *testing.T) {
	tbl := table.New("t", []string{"v"}, column("1", "2", "3", "4", "5"))
	p := Project(tbl, []string{"v"})

	b, err := NewComputer(2, 2).Compute(context.Background(), p, p)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0, 0, 0, 0}, b.RealToSynthetic)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, b.SyntheticToReal)
	assert.True(t, b.HasRealNN())
	assert.InDelta(t, 1.0, b.RealMeanNN, 1e-12)
}

func TestComputeExcludesSelfMatches(t *testing.T) {
	real := Project(table.New("r", []string{"v"}, column("0", "0", "0")), []string{"v"})
	synth := Project(table.New("s", []string{"v"}, column("100", "100", "100")), []string{"v"})

	b, err := NewComputer(0, 0).Compute(context.Background(), real, synth)
	require.NoError(t, err)

	assert.Equal(t, 0.0, b.RealMeanNN)
	assert.Equal(t, []float64{100, 100, 100}, b.SyntheticToReal)
}

func TestComputeSingleRealRow(t *testing.T) {
	p := Project(table.New("r", []string{"v"}, column("3")), []string{"v"})

	b, err := NewComputer(0, 0).Compute(context.Background(), p, p)
	require.NoError(t, err)
	assert.True(t, b.HasRealNN())
	assert.True(t, math.IsInf(b.RealMeanNN, 1))
}

func TestComputeLargeCoordinatesStayFinite(t *testing.T) {
	real := Project(table.New("r", []string{"a", "b"}, [][]string{{"-1e200", "1e200"}, {"1e200", "-1e200"}}), []string{"a", "b"})
	synth := Project(table.New("s", []string{"a", "b"}, [][]string{{"0", "0"}}), []string{"a", "b"})

	b, err := NewComputer(0, 0).Compute(context.Background(), real, synth)
	require.NoError(t, err)

	want := math.Sqrt2 * 1e200
	for _, d := range b.RealToSynthetic {
		assert.InEpsilon(t, want, d, 1e-12)
	}
	assert.InEpsilon(t, want, b.SyntheticToReal[0], 1e-12)
	assert.InEpsilon(t, 2*want, b.RealMeanNN, 1e-12)
}

func TestComputeEmptyProjection(t *testing.T) {
	full := Project(table.New("r", []string{"v"}, column("1")), []string{"v"})

	_, err := NewComputer(0, 0).Compute(context.Background(), &Points{}, full)
	assert.ErrorIs(t, err, ErrEmptyProjection)
	_, err = NewComputer(0, 0).Compute(context.Background(), full, &Points{Columns: []string{"v"}})
	assert.ErrorIs(t, err, ErrEmptyProjection)
}

func TestMinDistancesMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	gen := func(n int) *Points {
		rows := make([][]string, n)
		for i := range rows {
			rows[i] = []string{
				strconv.FormatFloat(rng.NormFloat64(), 'g', -1, 64),
				strconv.FormatFloat(rng.NormFloat64()*3, 'g', -1, 64),
			}
		}
		return Project(table.New("g", []string{"a", "b"}, rows), []string{"a", "b"})
	}
	from, to := gen(37), gen(23)

	got, err := NewComputer(5, 3).MinDistances(context.Background(), from, to, false)
	require.NoError(t, err)

	for i := 0; i < from.Rows; i++ {
		want := math.Inf(1)
		for j := 0; j < to.Rows; j++ {
			dx := from.row(i)[0] - to.row(j)[0]
			dy := from.row(i)[1] - to.row(j)[1]
			want = math.Min(want, math.Hypot(dx, dy))
		}
		assert.InDelta(t, want, got[i], 1e-9)
	}
}

func TestMinDistancesCancelled(t *testing.T) {
	p := Project(table.New("r", []string{"v"}, column("1", "2")), []string{"v"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewComputer(1, 1).MinDistances(ctx, p, p, false)
	assert.ErrorIs(t, err, context.Canceled)
}
