package bias

import (
	"gonum.org/v1/gonum/floats"

	"github.com/maastricht-university/asr-bias/errs"
	"github.com/maastricht-university/asr-bias/ordered"
)

// SweepPoint is total IWPB per model for one weight pair.
type SweepPoint struct {
	W1     float64               `json:"w1" yaml:"w1"`
	W2     float64               `json:"w2" yaml:"w2"`
	Totals *ordered.Map[float64] `json:"totals" yaml:"totals"`
}

// Sweep evaluates total IWPB for steps evenly spaced w1 in [0,1], with w2 = 1-w1.
func Sweep(t *Table, steps int) ([]SweepPoint, error) {
	if steps < 2 {
		return nil, errs.InvalidParam("bias.sweep", "need at least 2 steps, got %d", steps)
	}
	w1s := floats.Span(make([]float64, steps), 0, 1)
	out := make([]SweepPoint, 0, steps)
	for _, w1 := range w1s {
		w := Weights{W1: w1, W2: 1 - w1}
		totals, err := TotalIntergroupWeightedBias(t, w)
		if err != nil {
			return nil, err
		}
		out = append(out, SweepPoint{W1: w.W1, W2: w.W2, Totals: totals})
	}
	return out, nil
}
