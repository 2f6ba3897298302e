package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fidelity-backend/internal/table"
)

func kinds(t *testing.T, res Result, name string) (table.Kind, table.Kind) {
	t.Helper()
	rc, ok := res.Real.Column(name)
	require.True(t, ok)
	sc, ok := res.Synthetic.Column(name)
	require.True(t, ok)
	return rc.Kind, sc.Kind
}

func TestAlignMatchingKindsPassThrough(t *testing.T) {
	real := table.New("real", []string{"a", "b"}, [][]string{{"1", "x"}})
	synth := table.New("synth", []string{"a", "b"}, [][]string{{"2", "y"}})

	res := Align(real, synth)

	assert.Equal(t, []string{"a", "b"}, res.Shared)
	assert.Same(t, real, res.Real)
	assert.Same(t, synth, res.Synthetic)
	for _, c := range res.Coercions {
		assert.Equal(t, Kept, c.Action)
	}
	assert.Equal(t, 0, res.Mismatched())
}

func TestAlignCastsSyntheticToRealKind(t *testing.T) {
	real := table.New("real", []string{"v"}, [][]string{{"a"}, {"b"}})
	synth := table.New("synth", []string{"v"}, [][]string{{"1"}, {"2"}})

	res := Align(real, synth)

	rk, sk := kinds(t, res, "v")
	assert.Equal(t, table.Categorical, rk)
	assert.Equal(t, table.Categorical, sk)
	require.Len(t, res.Coercions, 1)
	assert.Equal(t, CastSynthetic, res.Coercions[0].Action)
	assert.Equal(t, "numeric", res.Coercions[0].Synthetic)

	orig, _ := synth.Column("v")
	assert.Equal(t, table.Numeric, orig.Kind, "input table must not be mutated")
}

func TestAlignFallsBackToText(t *testing.T) {
	real := table.New("real", []string{"v"}, [][]string{{"1"}, {"2"}})
	synth := table.New("synth", []string{"v"}, [][]string{{"one"}, {"2"}})

	res := Align(real, synth)

	rk, sk := kinds(t, res, "v")
	assert.Equal(t, table.Text, rk)
	assert.Equal(t, table.Text, sk)
	assert.Equal(t, FallbackText, res.Coercions[0].Action)
	assert.NotEmpty(t, res.Coercions[0].Reason)
	assert.Equal(t, "text", res.Coercions[0].Result)
	assert.Equal(t, 0, res.Mismatched())
}

func TestAlignDisjointColumns(t *testing.T) {
	real := table.New("real", []string{"a"}, [][]string{{"1"}})
	synth := table.New("synth", []string{"b"}, [][]string{{"1"}})

	res := Align(real, synth)

	assert.Empty(t, res.Shared)
	assert.Equal(t, []string{"a"}, res.RealOnly)
	assert.Equal(t, []string{"b"}, res.SynthOnly)
}
