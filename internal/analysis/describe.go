package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"fidelity-backend/internal/table"
)

// ColumnSummary holds describe-style statistics for a column.
// Numeric fields are nil for non-numeric columns or when undefined.
type ColumnSummary struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Count    int      `json:"count"`
	Missing  int      `json:"missing"`
	NullRate float64  `json:"null_rate"`
	Unique   int      `json:"unique"`
	Top      string   `json:"top,omitempty"`
	Freq     int      `json:"freq,omitempty"`
	Entropy  float64  `json:"entropy"`
	Mean     *float64 `json:"mean,omitempty"`
	Std      *float64 `json:"std,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Q25      *float64 `json:"25%,omitempty"`
	Median   *float64 `json:"50%,omitempty"`
	Q75      *float64 `json:"75%,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

// Summary describes every column of a table.
type Summary struct {
	Name    string          `json:"name"`
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
}

// Describe computes per-column statistics.
func Describe(t *table.Table) Summary {
	s := Summary{Name: t.Name, Rows: t.Len(), Columns: make([]ColumnSummary, 0, len(t.Columns))}
	for _, col := range t.Columns {
		s.Columns = append(s.Columns, describeColumn(col))
	}
	return s
}

func describeColumn(col *table.Column) ColumnSummary {
	cs := ColumnSummary{Name: col.Name, Kind: col.Kind.String()}

	counts := make(map[string]int)
	for i := range col.Raw {
		if table.IsMissing(col.Raw[i]) || (col.Kind == table.Numeric && math.IsNaN(col.Num[i])) {
			cs.Missing++
			continue
		}
		counts[col.Key(i)]++
	}
	cs.Count = len(col.Raw) - cs.Missing
	cs.Unique = len(counts)
	if len(col.Raw) > 0 {
		cs.NullRate = float64(cs.Missing) / float64(len(col.Raw))
	}
	cs.Entropy = entropy(counts, cs.Count)

	if col.Kind != table.Numeric {
		cs.Top, cs.Freq = mostFrequent(counts)
		return cs
	}

	values := col.Values()
	if len(values) == 0 {
		return cs
	}
	sort.Float64s(values)
	mean, std := stat.MeanStdDev(values, nil)
	cs.Mean = &mean
	if len(values) > 1 {
		cs.Std = &std
	}
	cs.Min = &values[0]
	cs.Max = &values[len(values)-1]
	q25, q50, q75 := quantile(values, 0.25), quantile(values, 0.5), quantile(values, 0.75)
	cs.Q25, cs.Median, cs.Q75 = &q25, &q50, &q75
	return cs
}

// entropy computes Shannon entropy in bits.
func entropy(valueCounts map[string]int, total int) float64 {
	if total == 0 {
		return 0
	}
	p := make([]float64, 0, len(valueCounts))
	for _, count := range valueCounts {
		p = append(p, float64(count))
	}
	floats.Scale(1/float64(total), p)
	return stat.Entropy(p) / math.Ln2
}

// mostFrequent breaks ties by the lexically smallest value so output is stable.
func mostFrequent(counts map[string]int) (string, int) {
	top, freq := "", 0
	for v, n := range counts {
		if n > freq || (n == freq && v < top) {
			top, freq = v, n
		}
	}
	return top, freq
}

// quantile interpolates linearly between closest ranks of sorted values, the
// way pandas does. LinInterp interpolates the empirical CDF, so q is shifted
// onto the matching CDF position first.
func quantile(sorted []float64, q float64) float64 {
	n := float64(len(sorted))
	return stat.Quantile(((n-1)*q+1)/n, stat.LinInterp, sorted, nil)
}
