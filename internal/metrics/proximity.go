package metrics

import "gonum.org/v1/gonum/stat"

const (
	closeFactor   = 0.1
	distantFactor = 2.0
)

// nearestSynNeighborDistance min-max normalizes the real-to-synthetic minima
// across real rows and averages them. Equal minima normalize to zero.
func nearestSynNeighborDistance(in *Input) (float64, error) {
	d := in.Basis.RealToSynthetic
	if len(d) == 0 {
		return 0, errNoValues
	}
	lo, hi := bounds(d)
	return stat.Mean(minMaxScale(d, lo, hi), nil), nil
}

func closeValuesProbability(in *Input) (float64, error) {
	threshold := closeFactor * in.Basis.RealMeanNN
	return fractionWhere(in.Basis.SyntheticToReal, func(d float64) bool { return d < threshold })
}

func distantValuesProbability(in *Input) (float64, error) {
	threshold := distantFactor * in.Basis.RealMeanNN
	return fractionWhere(in.Basis.SyntheticToReal, func(d float64) bool { return d > threshold })
}

func fractionWhere(values []float64, pred func(float64) bool) (float64, error) {
	if len(values) == 0 {
		return 0, errNoValues
	}
	n := 0
	for _, v := range values {
		if pred(v) {
			n++
		}
	}
	return float64(n) / float64(len(values)), nil
}
