// Package metrics implements the fidelity scorers comparing a real and a
// synthetic table.
//
// Every scorer is described by a Descriptor carrying its eligibility predicate
// and its fallback policy. Running a descriptor never fails: an ineligible
// input yields the descriptor's fallback (zero or undefined), and an error or
// panic while scoring yields a Failed outcome worth zero.
package metrics

import (
	"fmt"
	"math"

	"fidelity-backend/internal/align"
	"fidelity-backend/internal/distance"
	"fidelity-backend/internal/table"
)

// Fallback is the policy applied when a metric's preconditions are not met.
type Fallback int

const (
	// FallbackZero reports 0.0, meaning no evidence of similarity.
	FallbackZero Fallback = iota
	// FallbackNull reports no value, meaning the metric is undefined for the input.
	FallbackNull
)

func (f Fallback) String() string {
	if f == FallbackNull {
		return "null"
	}
	return "zero"
}

// Status classifies how an outcome was produced.
type Status int

const (
	Scored Status = iota
	Ineligible
	Failed
)

func (s Status) String() string {
	switch s {
	case Scored:
		return "scored"
	case Ineligible:
		return "ineligible"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Input is the read-only data every scorer works from.
type Input struct {
	Real      *table.Table
	Synthetic *table.Table
	// Shared names columns present in both tables after alignment.
	Shared     []string
	Mismatched int
	// Basis is nil when no numeric distance basis could be built.
	Basis *distance.Basis
}

// NewInput wraps an alignment result and an optional distance basis.
func NewInput(res align.Result, basis *distance.Basis) *Input {
	return &Input{
		Real:       res.Real,
		Synthetic:  res.Synthetic,
		Shared:     res.Shared,
		Mismatched: res.Mismatched(),
		Basis:      basis,
	}
}

// Pair returns the real and synthetic column of a shared name.
func (in *Input) Pair(name string) (*table.Column, *table.Column) {
	rc, _ := in.Real.Column(name)
	sc, _ := in.Synthetic.Column(name)
	return rc, sc
}

// SharedNumeric lists shared columns that are numeric on both sides.
func (in *Input) SharedNumeric() []string {
	var names []string
	for _, name := range in.Shared {
		rc, sc := in.Pair(name)
		if rc.Kind == table.Numeric && sc.Kind == table.Numeric {
			names = append(names, name)
		}
	}
	return names
}

// SharedText lists shared columns compared as strings on both sides.
func (in *Input) SharedText() []string {
	var names []string
	for _, name := range in.Shared {
		rc, sc := in.Pair(name)
		if rc.Kind.IsText() && sc.Kind.IsText() {
			names = append(names, name)
		}
	}
	return names
}

// numericPairs returns value slices of shared numeric columns having at least
// minValues non-missing values on both sides.
func (in *Input) numericPairs(minValues int) (names []string, real, synth [][]float64) {
	for _, name := range in.SharedNumeric() {
		rc, sc := in.Pair(name)
		rv, sv := rc.Values(), sc.Values()
		if len(rv) < minValues || len(sv) < minValues {
			continue
		}
		names = append(names, name)
		real = append(real, rv)
		synth = append(synth, sv)
	}
	return names, real, synth
}

// Descriptor declares one metric.
type Descriptor struct {
	Name        string
	Description string
	// Bounded metrics are clamped to [0,1].
	Bounded bool
	// NeedsBasis marks metrics reading the shared distance basis.
	NeedsBasis bool
	// Ineligible is the policy used when Eligible returns false.
	Ineligible Fallback
	Eligible   func(in *Input) bool
	Score      func(in *Input) (float64, error)
}

// Outcome is the result of running one descriptor.
type Outcome struct {
	Name     string
	Status   Status
	Value    float64
	Fallback Fallback
	Err      error
}

// Score returns the reported value: nil when the metric is undefined.
func (o Outcome) Score() *float64 {
	var v float64
	switch o.Status {
	case Scored:
		v = o.Value
	case Ineligible:
		if o.Fallback == FallbackNull {
			return nil
		}
	}
	return &v
}

// Run evaluates the metric. It never panics and never returns an error.
func (d Descriptor) Run(in *Input) (out Outcome) {
	out = Outcome{Name: d.Name, Fallback: d.Ineligible}

	defer func() {
		if r := recover(); r != nil {
			out.Status, out.Value, out.Err = Failed, 0, fmt.Errorf("%s: panic: %v", d.Name, r)
		}
	}()

	if d.Eligible != nil && !d.Eligible(in) {
		out.Status = Ineligible
		return out
	}

	v, err := d.Score(in)
	if err != nil {
		out.Status, out.Err = Failed, fmt.Errorf("%s: %w", d.Name, err)
		return out
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		out.Status, out.Err = Failed, fmt.Errorf("%s: %w", d.Name, errNonFinite)
		return out
	}
	if d.Bounded {
		v = math.Max(0, math.Min(1, v))
	}
	out.Status, out.Value = Scored, v
	return out
}
