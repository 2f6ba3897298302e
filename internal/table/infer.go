package table

import (
	"fmt"
	"math"
	"strconv"
)

// CategoricalMaxDistinct is the largest distinct count always treated as categorical.
const CategoricalMaxDistinct = 50

// InferKind picks the narrowest kind able to hold every non-missing cell.
// A column with no values at all is numeric, like a column of NaNs.
func InferKind(raw []string) Kind {
	isNumeric := true
	distinct := make(map[string]struct{})
	nonMissing := 0

	for _, val := range raw {
		if IsMissing(val) {
			continue
		}
		nonMissing++
		distinct[val] = struct{}{}
		if isNumeric && !isNumericString(val) {
			isNumeric = false
		}
	}

	if isNumeric {
		return Numeric
	}
	if len(distinct) <= CategoricalMaxDistinct || len(distinct)*2 <= nonMissing {
		return Categorical
	}
	return Text
}

func isNumericString(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// parseNumeric converts cells to floats. Missing or non-finite cells become NaN.
// The error reports the first cell that is present but not a number.
func parseNumeric(raw []string) ([]float64, error) {
	out := make([]float64, len(raw))
	for i, val := range raw {
		if IsMissing(val) {
			out[i] = math.NaN()
			continue
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %q is not numeric", i, val)
		}
		if math.IsInf(f, 0) {
			f = math.NaN()
		}
		out[i] = f
	}
	return out, nil
}

// Cast converts the column to kind k. Only casts to Numeric can fail.
func (c *Column) Cast(k Kind) (*Column, error) {
	if c.Kind == k {
		return c, nil
	}
	out := &Column{Name: c.Name, Kind: k, Raw: c.Raw}
	if k == Numeric {
		num, err := parseNumeric(c.Raw)
		if err != nil {
			return nil, fmt.Errorf("cast %s to %s: %w", c.Name, k, err)
		}
		out.Num = num
	}
	return out, nil
}
