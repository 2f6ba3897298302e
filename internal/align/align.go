// Package align reconciles column kinds between a real and a synthetic table
// so that every column present in both has a single comparable kind.
package align

import (
	"fidelity-backend/internal/table"
)

// Action describes what happened to a shared column.
type Action string

const (
	Kept          Action = "kept"
	CastSynthetic Action = "cast_synthetic"
	FallbackText  Action = "fallback_text"
)

// Coercion records the reconciliation of one shared column.
type Coercion struct {
	Column    string `json:"column"`
	Real      string `json:"real"`
	Synthetic string `json:"synthetic"`
	Result    string `json:"result"`
	Action    Action `json:"action"`
	Reason    string `json:"reason,omitempty"`
}

// Result is the output of Align. Real and Synthetic share kinds on every Shared
// column. Shared lists names present in both tables, in real-table order.
type Result struct {
	Real      *table.Table
	Synthetic *table.Table
	Shared    []string
	Coercions []Coercion
	RealOnly  []string
	SynthOnly []string
}

// castable lists the (synthetic kind, real kind) pairs for which a direct cast of
// the synthetic column is attempted. Unlisted pairs go straight to text.
// Only casts into Numeric can fail.
var castable = map[table.Kind]map[table.Kind]bool{
	table.Numeric:     {table.Categorical: true, table.Text: true},
	table.Categorical: {table.Numeric: true, table.Text: true},
	table.Text:        {table.Numeric: true, table.Categorical: true},
}

// Align casts each shared synthetic column to the real column's kind, falling back
// to text on both sides when the cast fails. It never fails.
func Align(real, synth *table.Table) Result {
	res := Result{Real: real, Synthetic: synth}

	for _, name := range real.Headers() {
		rc, _ := real.Column(name)
		sc, ok := synth.Column(name)
		if !ok {
			res.RealOnly = append(res.RealOnly, name)
			continue
		}
		res.Shared = append(res.Shared, name)

		c := Coercion{Column: name, Real: rc.Kind.String(), Synthetic: sc.Kind.String()}
		switch {
		case rc.Kind == sc.Kind:
			c.Action = Kept
		case castable[sc.Kind][rc.Kind]:
			cast, err := sc.Cast(rc.Kind)
			if err == nil {
				res.Synthetic = res.Synthetic.WithColumn(cast)
				c.Action = CastSynthetic
				break
			}
			c.Reason = err.Error()
			fallthrough
		default:
			res.Real, res.Synthetic = toText(res.Real, rc), toText(res.Synthetic, sc)
			c.Action = FallbackText
		}
		final, _ := res.Synthetic.Column(name)
		c.Result = final.Kind.String()
		res.Coercions = append(res.Coercions, c)
	}

	for _, name := range synth.Headers() {
		if _, ok := real.Column(name); !ok {
			res.SynthOnly = append(res.SynthOnly, name)
		}
	}
	return res
}

func toText(t *table.Table, col *table.Column) *table.Table {
	txt, _ := col.Cast(table.Text)
	return t.WithColumn(txt)
}

// Mismatched counts shared columns whose kinds still differ.
func (r Result) Mismatched() int {
	n := 0
	for _, name := range r.Shared {
		rc, _ := r.Real.Column(name)
		sc, _ := r.Synthetic.Column(name)
		if rc.Kind != sc.Kind {
			n++
		}
	}
	return n
}
