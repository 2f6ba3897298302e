package metrics

import (
	"sort"
)

const significance = 0.05

// contingencyTables builds, per shared text column, a 2×k table of value counts
// (row 0 real, row 1 synthetic). Columns where either dimension would be 1 are skipped.
func contingencyTables(in *Input) [][][]float64 {
	var tables [][][]float64
	for _, name := range in.SharedText() {
		rc, sc := in.Pair(name)
		rv, sv := rc.Strings(), sc.Strings()
		if len(rv) == 0 || len(sv) == 0 {
			continue
		}

		index := make(map[string]int)
		for _, v := range rv {
			index[v] = 0
		}
		for _, v := range sv {
			index[v] = 0
		}
		if len(index) < 2 {
			continue
		}
		values := make([]string, 0, len(index))
		for v := range index {
			values = append(values, v)
		}
		sort.Strings(values)
		for i, v := range values {
			index[v] = i
		}

		observed := [][]float64{make([]float64, len(index)), make([]float64, len(index))}
		for _, v := range rv {
			observed[0][index[v]]++
		}
		for _, v := range sv {
			observed[1][index[v]]++
		}
		tables = append(tables, observed)
	}
	return tables
}

// chiSquaredTest averages, over eligible columns, whether the real and synthetic
// value distributions are not significantly different.
func chiSquaredTest(in *Input) (float64, error) {
	tables := contingencyTables(in)
	if len(tables) == 0 {
		return 0, errNoValues
	}

	passed := 0
	for _, observed := range tables {
		_, _, p, err := chiSquared(observed)
		if err != nil {
			return 0, err
		}
		if p > significance {
			passed++
		}
	}
	return float64(passed) / float64(len(tables)), nil
}
