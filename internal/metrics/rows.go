package metrics

import (
	"strings"
)

func dataMismatch(in *Input) (float64, error) {
	return float64(in.Mismatched) / float64(len(in.Shared)), nil
}

// commonRowsProportion matches rows on every shared column. Missing cells match each other.
func commonRowsProportion(in *Input) (float64, error) {
	seen := make(map[string]struct{}, in.Synthetic.Len())
	for i := 0; i < in.Synthetic.Len(); i++ {
		seen[rowKey(in, i, false)] = struct{}{}
	}

	matched := 0
	for i := 0; i < in.Real.Len(); i++ {
		if _, ok := seen[rowKey(in, i, true)]; ok {
			matched++
		}
	}
	return float64(matched) / float64(in.Real.Len()), nil
}

func rowKey(in *Input, row int, real bool) string {
	var sb strings.Builder
	for k, name := range in.Shared {
		rc, sc := in.Pair(name)
		col := sc
		if real {
			col = rc
		}
		if k > 0 {
			sb.WriteByte(0x1f)
		}
		sb.WriteString(col.Key(row))
	}
	return sb.String()
}
