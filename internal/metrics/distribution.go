package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const histogramBins = 20

func featureDistributionSimilarity(in *Input) (float64, error) {
	_, real, synth := in.numericPairs(2)
	if len(real) == 0 {
		return 0, errNoValues
	}

	total := 0.0
	for k := range real {
		lo, hi := bounds(real[k], synth[k])
		d, err := wasserstein(minMaxScale(real[k], lo, hi), minMaxScale(synth[k], lo, hi))
		if err != nil {
			return 0, err
		}
		total += d
	}
	return 1 / (1 + total/float64(len(real))), nil
}

// inverseKLDivergence bins both samples over their joint range so the two
// histograms share edges.
func inverseKLDivergence(in *Input) (float64, error) {
	_, real, synth := in.numericPairs(1)
	if len(real) == 0 {
		return 0, errNoValues
	}

	total := 0.0
	for k := range real {
		lo, hi := bounds(real[k], synth[k])
		width := binWidth(lo, hi, histogramBins)
		p := density(histogram(minMaxScale(real[k], lo, hi), histogramBins), width)
		q := density(histogram(minMaxScale(synth[k], lo, hi), histogramBins), width)
		total += 1 / (klDivergence(p, q) + epsilon)
	}
	return total / float64(len(real)), nil
}

func maxMeanDiscrepancy(in *Input) (float64, error) {
	_, real, synth := in.numericPairs(2)
	if len(real) == 0 {
		return 0, errNoValues
	}

	var meanSq, stdSq float64
	for k := range real {
		dm := stat.Mean(real[k], nil) - stat.Mean(synth[k], nil)
		ds := stat.StdDev(real[k], nil) - stat.StdDev(synth[k], nil)
		meanSq += dm * dm
		stdSq += ds * ds
	}
	return math.Sqrt(meanSq) + math.Sqrt(stdSq), nil
}
