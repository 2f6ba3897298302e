package sanitize

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestScores(t *testing.T) {
	in := map[string]*float64{
		"ok":   ptr(0.5),
		"nan":  ptr(math.NaN()),
		"inf":  ptr(math.Inf(-1)),
		"null": nil,
	}

	out := Scores(in)

	require.Len(t, out, 4)
	assert.Equal(t, 0.5, *out["ok"])
	assert.Nil(t, out["nan"])
	assert.Nil(t, out["inf"])
	assert.Nil(t, out["null"])
	assert.False(t, out["ok"] == in["ok"], "result must not alias the input")
}

func TestValueNested(t *testing.T) {
	in := map[string]any{
		"metrics": map[string]*float64{"a": ptr(math.Inf(1)), "b": ptr(1)},
		"preview": []map[string]any{{"x": math.NaN(), "y": "text", "z": 3}},
		"f32":     float32(math.NaN()),
		"ok":      true,
	}

	out, ok := Value(in).(map[string]any)
	require.True(t, ok)

	metrics := out["metrics"].(map[string]any)
	assert.Nil(t, metrics["a"])
	assert.Equal(t, 1.0, metrics["b"])

	row := out["preview"].([]any)[0].(map[string]any)
	assert.Nil(t, row["x"])
	assert.Equal(t, "text", row["y"])
	assert.Equal(t, 3, row["z"])
	assert.Nil(t, out["f32"])
	assert.Equal(t, true, out["ok"])

	_, err := json.Marshal(out)
	assert.NoError(t, err)
}

type Inner struct {
	Score float64 `json:"score"`
}

type report struct {
	Inner
	ID      string     `json:"id"`
	Mean    *float64   `json:"mean,omitempty"`
	Values  []float64  `json:"values"`
	When    time.Time  `json:"when"`
	Hidden  float64    `json:"-"`
	private float64
	Nested  *Inner
}

func TestValueStructs(t *testing.T) {
	r := report{
		Inner:   Inner{Score: math.NaN()},
		ID:      "x",
		Values:  []float64{1, math.Inf(1)},
		When:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Hidden:  math.NaN(),
		private: 1,
		Nested:  &Inner{Score: 2},
	}

	out := Value(&r).(map[string]any)

	assert.Contains(t, out, "score")
	assert.Nil(t, out["score"])
	assert.Equal(t, "x", out["id"])
	assert.NotContains(t, out, "mean")
	assert.Equal(t, []any{1.0, nil}, out["values"])
	assert.NotContains(t, out, "Hidden")
	assert.NotContains(t, out, "private")
	assert.Equal(t, map[string]any{"score": 2.0}, out["Nested"])

	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"when":"2024-01-02T03:04:05Z"`)
}

func TestValueNil(t *testing.T) {
	assert.Nil(t, Value(nil))
	var m map[string]any
	assert.Nil(t, Value(m))
}
