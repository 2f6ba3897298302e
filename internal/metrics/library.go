package metrics

import (
	"errors"
	"fmt"
	"strings"
)

// Metric names as reported in results.
const (
	DataMismatch                  = "data_mismatch"
	CommonRowsProportion          = "common_rows_proportion"
	NearestSynNeighborDistance    = "nearest_syn_neighbor_distance"
	CloseValuesProbability        = "close_values_probability"
	DistantValuesProbability      = "distant_values_probability"
	FeatureDistributionSimilarity = "feature_distribution_similarity"
	InverseKLDivergence           = "inverse_kl_divergence"
	ChiSquaredTest                = "chi_squared_test"
	MaxMeanDiscrepancy            = "max_mean_discrepancy"
)

// Named metric sets.
const (
	SetCore       = "core"
	SetAlternates = "alternates"
	SetAll        = "all"
)

// ErrUnknownMetric is returned when a requested metric or set does not exist.
var ErrUnknownMetric = errors.New("unknown metric")

var coreNames = []string{
	DataMismatch,
	CommonRowsProportion,
	NearestSynNeighborDistance,
	CloseValuesProbability,
	DistantValuesProbability,
	FeatureDistributionSimilarity,
}

var alternateNames = []string{
	InverseKLDivergence,
	ChiSquaredTest,
	MaxMeanDiscrepancy,
}

// Library returns descriptors of every supported metric in report order.
func Library() []Descriptor {
	return []Descriptor{
		{
			Name:        DataMismatch,
			Description: "fraction of shared columns whose kinds still differ after alignment",
			Bounded:     true,
			Ineligible:  FallbackZero,
			Eligible:    hasShared,
			Score:       dataMismatch,
		},
		{
			Name:        CommonRowsProportion,
			Description: "fraction of real rows with an exact match in the synthetic table",
			Bounded:     true,
			Ineligible:  FallbackZero,
			Eligible:    func(in *Input) bool { return hasShared(in) && in.Real.Len() > 0 },
			Score:       commonRowsProportion,
		},
		{
			Name:        NearestSynNeighborDistance,
			Description: "mean min-max normalized distance from real rows to their closest synthetic row",
			Bounded:     true,
			NeedsBasis:  true,
			Ineligible:  FallbackZero,
			Eligible:    func(in *Input) bool { return in.Basis != nil },
			Score:       nearestSynNeighborDistance,
		},
		{
			Name:        CloseValuesProbability,
			Description: "fraction of synthetic rows closer to the real data than 10% of the real nearest-neighbour distance",
			Bounded:     true,
			NeedsBasis:  true,
			Ineligible:  FallbackZero,
			Eligible:    hasRealBaseline,
			Score:       closeValuesProbability,
		},
		{
			Name:        DistantValuesProbability,
			Description: "fraction of synthetic rows farther from the real data than twice the real nearest-neighbour distance",
			Bounded:     true,
			NeedsBasis:  true,
			Ineligible:  FallbackZero,
			Eligible:    hasRealBaseline,
			Score:       distantValuesProbability,
		},
		{
			Name:        FeatureDistributionSimilarity,
			Description: "1/(1+mean Wasserstein distance) over jointly min-max scaled numeric columns",
			Bounded:     true,
			Ineligible:  FallbackZero,
			Eligible:    func(in *Input) bool { n, _, _ := in.numericPairs(2); return len(n) > 0 },
			Score:       featureDistributionSimilarity,
		},
		{
			Name:        InverseKLDivergence,
			Description: "mean inverse KL divergence of 20-bin histograms over numeric columns",
			Ineligible:  FallbackNull,
			Eligible:    func(in *Input) bool { n, _, _ := in.numericPairs(1); return len(n) > 0 },
			Score:       inverseKLDivergence,
		},
		{
			Name:        ChiSquaredTest,
			Description: "fraction of categorical columns not significantly different under a chi-squared test",
			Bounded:     true,
			Ineligible:  FallbackNull,
			Eligible:    func(in *Input) bool { return len(contingencyTables(in)) > 0 },
			Score:       chiSquaredTest,
		},
		{
			Name:        MaxMeanDiscrepancy,
			Description: "norm of the difference of column means plus norm of the difference of column standard deviations",
			Ineligible:  FallbackNull,
			Eligible:    func(in *Input) bool { n, _, _ := in.numericPairs(2); return len(n) > 0 },
			Score:       maxMeanDiscrepancy,
		},
	}
}

func hasShared(in *Input) bool { return len(in.Shared) > 0 }

func hasRealBaseline(in *Input) bool { return in.Basis.HasRealNN() }

// SetNames returns the metric names of a named set.
func SetNames(set string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(set)) {
	case SetCore:
		return append([]string(nil), coreNames...), nil
	case SetAlternates:
		return append([]string(nil), alternateNames...), nil
	case SetAll, "":
		return append(append([]string(nil), coreNames...), alternateNames...), nil
	}
	return nil, fmt.Errorf("%w set %q", ErrUnknownMetric, set)
}

// Select returns the descriptors with the given names, in library order.
func Select(lib []Descriptor, names []string) ([]Descriptor, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			want[n] = true
		}
	}
	var out []Descriptor
	for _, d := range lib {
		if want[d.Name] {
			out = append(out, d)
			delete(want, d.Name)
		}
	}
	for n := range want {
		return nil, fmt.Errorf("%w %q", ErrUnknownMetric, n)
	}
	return out, nil
}
