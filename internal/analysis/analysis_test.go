package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fidelity-backend/internal/table"
)

func TestReadCSV(t *testing.T) {
	in := "age, city ,score\n31,Riga,1.5\n42,Oslo,\n27,Riga,3\n"

	tbl, err := ReadCSV(strings.NewReader(in), "people.csv", Options{})
	require.NoError(t, err)

	assert.Equal(t, "people.csv", tbl.Name)
	assert.Equal(t, []string{"age", "city", "score"}, tbl.Headers())
	assert.Equal(t, 3, tbl.Len())

	age, _ := tbl.Column("age")
	city, _ := tbl.Column("city")
	score, _ := tbl.Column("score")
	assert.Equal(t, table.Numeric, age.Kind)
	assert.Equal(t, table.Categorical, city.Kind)
	assert.Equal(t, table.Numeric, score.Kind)
	assert.Equal(t, []float64{1.5, 3}, score.Values())
}

func TestReadCSVDelimiters(t *testing.T) {
	for name, in := range map[string]string{
		"semicolon": "a;b\n1;2\n",
		"tab":       "a\tb\n1\t2\n",
	} {
		t.Run(name, func(t *testing.T) {
			tbl, err := ReadCSV(strings.NewReader(in), name, Options{})
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, tbl.Headers())
			assert.Equal(t, 1, tbl.Len())
		})
	}
}

func TestReadCSVMaxRows(t *testing.T) {
	in := "v\n1\n2\n3\n4\n"
	tbl, err := ReadCSV(strings.NewReader(in), "v", Options{MaxRows: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), "empty", Options{})
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestReadCSVHeaderOnly(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,b\n"), "h", Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.Len(t, tbl.Columns, 2)
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "real.csv")
	require.NoError(t, os.WriteFile(path, []byte("x\n1\n"), 0o644))

	tbl, err := ReadCSVFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, "real.csv", tbl.Name)

	_, err = ReadCSVFile(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	tbl := table.New("t", []string{"n", "c"}, [][]string{
		{"1", "a"},
		{"2", "a"},
		{"3", "b"},
		{"4", ""},
	})

	s := Describe(tbl)
	require.Len(t, s.Columns, 2)
	assert.Equal(t, 4, s.Rows)

	n := s.Columns[0]
	assert.Equal(t, "numeric", n.Kind)
	assert.Equal(t, 4, n.Count)
	require.NotNil(t, n.Mean)
	assert.InDelta(t, 2.5, *n.Mean, 1e-12)
	assert.InDelta(t, 1.2909944, *n.Std, 1e-6)
	assert.Equal(t, 1.0, *n.Min)
	assert.Equal(t, 4.0, *n.Max)
	assert.InDelta(t, 1.75, *n.Q25, 1e-12)
	assert.InDelta(t, 2.5, *n.Median, 1e-12)
	assert.InDelta(t, 3.25, *n.Q75, 1e-12)
	assert.InDelta(t, 2.0, n.Entropy, 1e-12)

	c := s.Columns[1]
	assert.Equal(t, "categorical", c.Kind)
	assert.Equal(t, 3, c.Count)
	assert.Equal(t, 1, c.Missing)
	assert.InDelta(t, 0.25, c.NullRate, 1e-12)
	assert.Equal(t, 2, c.Unique)
	assert.Equal(t, "a", c.Top)
	assert.Equal(t, 2, c.Freq)
	assert.Nil(t, c.Mean)
}

func TestDescribeSingleValueHasNoStd(t *testing.T) {
	s := Describe(table.New("t", []string{"n"}, [][]string{{"7"}}))
	assert.Nil(t, s.Columns[0].Std)
	assert.Equal(t, 7.0, *s.Columns[0].Mean)
}
