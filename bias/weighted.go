package bias

import (
	"math"

	"github.com/maastricht-university/asr-bias/errs"
	"github.com/maastricht-university/asr-bias/ordered"
)

// round2 reports a value with two decimals.
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// term is the weighted contribution of a single difference record.
func term(op string, d Difference, w Weights) (float64, error) {
	if d.BaselinePerformance == 0 {
		return 0, errs.DivideByZero(op, "baseline performance is 0", d.Model, d.Group, d.SpeakingStyle)
	}
	return w.W1*(d.PerformanceDiff/d.BaselinePerformance) + w.W2*d.BasePerformance, nil
}

// firstInStyle returns the first record of recs recorded for style.
func firstInStyle(recs []Difference, style string) (Difference, bool) {
	for _, d := range recs {
		if d.SpeakingStyle == style {
			return d, true
		}
	}
	return Difference{}, false
}

// WeightedBias averages the weighted term over every record of each
// (model, group) bucket.
func WeightedBias(t *Table, w Weights) (*Scores, error) {
	const op = "bias.wpb"
	out := newScores()
	for _, model := range t.Models() {
		groups := out.GetOrInit(model, ordered.New[float64])
		for _, group := range t.Groups(model) {
			recs := t.Records(model, group)
			if len(recs) == 0 {
				return nil, errs.DivideByZero(op, "no difference records", model, group, "")
			}
			var total float64
			for _, d := range recs {
				v, err := term(op, d, w)
				if err != nil {
					return nil, err
				}
				total += v
			}
			groups.Set(group, total/float64(len(recs)))
		}
	}
	return out, nil
}

// StyleWeightedBias reports, per speaking style and model, the mean weighted
// term over groups, taking each group's first record of that style. Values
// are scaled by 100 and rounded to two decimals.
func StyleWeightedBias(t *Table, w Weights, styles []string) (*Scores, error) {
	const op = "bias.wpb.style"
	out := newScores()
	for _, style := range styles {
		models := out.GetOrInit(style, ordered.New[float64])
		for _, model := range t.Models() {
			var total float64
			n := 0
			for _, group := range t.Groups(model) {
				d, ok := firstInStyle(t.Records(model, group), style)
				if !ok {
					continue
				}
				v, err := term(op, d, w)
				if err != nil {
					return nil, err
				}
				total += v
				n++
			}
			if n == 0 {
				return nil, errs.DivideByZero(op, "no group has records for this style", model, "", style)
			}
			models.Set(model, round2(100*total/float64(n)))
		}
	}
	return out, nil
}

// intergroup computes, for each representative i, the mean over j≠i of
// w1·|base_i-base_j|/baseline_j + w2·base_i. With fewer than two groups every
// value is 0.
func intergroup(op string, reps []Difference, w Weights) ([]float64, error) {
	n := len(reps)
	out := make([]float64, n)
	if n <= 1 {
		return out, nil
	}
	for i, ri := range reps {
		var total float64
		for j, rj := range reps {
			if i == j {
				continue
			}
			if rj.BaselinePerformance == 0 {
				return nil, errs.DivideByZero(op, "baseline performance is 0", rj.Model, rj.Group, rj.SpeakingStyle)
			}
			total += w.W1*(math.Abs(ri.BasePerformance-rj.BasePerformance)/rj.BaselinePerformance) + w.W2*ri.BasePerformance
		}
		out[i] = total / float64(n-1)
	}
	return out, nil
}

// representatives picks the first record of every group of model.
func representatives(t *Table, model string) ([]string, []Difference) {
	var (
		groups []string
		reps   []Difference
	)
	for _, group := range t.Groups(model) {
		recs := t.Records(model, group)
		if len(recs) == 0 {
			continue
		}
		groups = append(groups, group)
		reps = append(reps, recs[0])
	}
	return groups, reps
}

// IntergroupWeightedBias computes IWPB per (model, group). Each group is
// represented by its first record.
func IntergroupWeightedBias(t *Table, w Weights) (*Scores, error) {
	const op = "bias.iwpb"
	out := newScores()
	for _, model := range t.Models() {
		groups, reps := representatives(t, model)
		vals, err := intergroup(op, reps, w)
		if err != nil {
			return nil, err
		}
		scores := out.GetOrInit(model, ordered.New[float64])
		for i, g := range groups {
			scores.Set(g, vals[i])
		}
	}
	return out, nil
}

// StyleIntergroup is IWPB restricted to one speaking style at a time.
type StyleIntergroup struct {
	// PerGroup maps style → model → group → IWPB.
	PerGroup *ordered.Map[*Scores] `json:"per_group" yaml:"per_group"`
	// Overall maps style → model → 100·mean over groups, rounded to two decimals.
	Overall *Scores `json:"overall" yaml:"overall"`
}

// StyleIntergroupWeightedBias computes IWPB per style. Each group is
// represented by its first record of that style; groups without one are left out.
func StyleIntergroupWeightedBias(t *Table, w Weights, styles []string) (*StyleIntergroup, error) {
	const op = "bias.iwpb.style"
	res := &StyleIntergroup{PerGroup: ordered.New[*Scores](), Overall: newScores()}
	for _, style := range styles {
		perModel := res.PerGroup.GetOrInit(style, newScores)
		overall := res.Overall.GetOrInit(style, ordered.New[float64])
		for _, model := range t.Models() {
			var (
				groups []string
				reps   []Difference
			)
			for _, group := range t.Groups(model) {
				if d, ok := firstInStyle(t.Records(model, group), style); ok {
					groups = append(groups, group)
					reps = append(reps, d)
				}
			}
			if len(reps) == 0 {
				return nil, errs.DivideByZero(op, "no group has records for this style", model, "", style)
			}
			vals, err := intergroup(op, reps, w)
			if err != nil {
				return nil, err
			}
			scores := perModel.GetOrInit(model, ordered.New[float64])
			var sum float64
			for i, g := range groups {
				scores.Set(g, vals[i])
				sum += vals[i]
			}
			overall.Set(model, round2(100*sum/float64(len(vals))))
		}
	}
	return res, nil
}

// TotalWeightedBias collapses WPB to one value per model: the sum of the
// weighted terms of all records of all groups over the number of records.
func TotalWeightedBias(t *Table, w Weights) (*ordered.Map[float64], error) {
	const op = "bias.wpb.total"
	out := ordered.New[float64]()
	for _, model := range t.Models() {
		var total float64
		n := 0
		for _, group := range t.Groups(model) {
			for _, d := range t.Records(model, group) {
				v, err := term(op, d, w)
				if err != nil {
					return nil, err
				}
				total += v
				n++
			}
		}
		if n == 0 {
			return nil, errs.DivideByZero(op, "no difference records", model, "", "")
		}
		out.Set(model, total/float64(n))
	}
	return out, nil
}

// TotalIntergroupWeightedBias collapses IWPB to one value per model: the sum
// over all ordered pairs i≠j divided by n(n-1). Models with a single group get 0.
func TotalIntergroupWeightedBias(t *Table, w Weights) (*ordered.Map[float64], error) {
	const op = "bias.iwpb.total"
	out := ordered.New[float64]()
	for _, model := range t.Models() {
		_, reps := representatives(t, model)
		vals, err := intergroup(op, reps, w)
		if err != nil {
			return nil, err
		}
		n := len(reps)
		if n <= 1 {
			out.Set(model, 0)
			continue
		}
		// vals[i] is already divided by n-1.
		var sum float64
		for _, v := range vals {
			sum += v
		}
		out.Set(model, sum/float64(n))
	}
	return out, nil
}

// GroupBias holds the unweighted bias derived directly from performance differences.
type GroupBias struct {
	// PerGroup maps style → model → group → 100·diff, rounded.
	PerGroup *ordered.Map[*Scores] `json:"per_group" yaml:"per_group"`
	// Overall maps style → model → mean of PerGroup, rounded.
	Overall *Scores `json:"overall" yaml:"overall"`
}

// DifferenceBias reports each group's first difference of every style as a
// percentage, plus the per-model mean per style.
func DifferenceBias(t *Table, styles []string) (*GroupBias, error) {
	const op = "bias.difference"
	res := &GroupBias{PerGroup: ordered.New[*Scores](), Overall: newScores()}
	for _, style := range styles {
		perModel := res.PerGroup.GetOrInit(style, newScores)
		overall := res.Overall.GetOrInit(style, ordered.New[float64])
		for _, model := range t.Models() {
			scores := perModel.GetOrInit(model, ordered.New[float64])
			var sum float64
			for _, group := range t.Groups(model) {
				d, ok := firstInStyle(t.Records(model, group), style)
				if !ok {
					continue
				}
				v := round2(100 * d.PerformanceDiff)
				scores.Set(group, v)
				sum += v
			}
			if scores.Len() == 0 {
				return nil, errs.DivideByZero(op, "no group has records for this style", model, "", style)
			}
			overall.Set(model, round2(sum/float64(scores.Len())))
		}
	}
	return res, nil
}
