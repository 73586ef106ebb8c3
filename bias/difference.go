package bias

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/maastricht-university/asr-bias/errs"
	"github.com/maastricht-university/asr-bias/ordered"
	"github.com/maastricht-university/asr-bias/rates"
)

// groupBy buckets items by key, keeping buckets and their items in first-seen order.
func groupBy[T any](items []T, key func(T) string) *ordered.Map[[]T] {
	out := ordered.New[[]T]()
	for _, it := range items {
		k := key(it)
		bucket, _ := out.Get(k)
		out.Set(k, append(bucket, it))
	}
	return out
}

// Baseline reduces the rates of one (model, rate type, style) partition to its reference value.
func Baseline(values []float64, bt BaselineType) (float64, error) {
	if len(values) == 0 {
		return 0, errs.DivideByZero("bias.baseline", "empty partition", "", "", "")
	}
	switch bt {
	case Min:
		return floats.Min(values), nil
	case Norm:
		return stat.Mean(values, nil), nil
	}
	return 0, errs.InvalidParam("bias.baseline", "invalid baseline type %q", bt)
}

// Differences compares every group's rate against the baseline of its
// (model, rate type, style) partition.
func Differences(records []rates.Record, bt BaselineType, dt DiffType) (*Table, error) {
	const op = "bias.differences"
	if _, err := ParseBaseline(string(bt)); err != nil {
		return nil, err
	}
	if _, err := ParseDiff(string(dt)); err != nil {
		return nil, err
	}

	out := NewTable()
	byModel := groupBy(records, func(r rates.Record) string { return r.Model })
	var err error
	byModel.Range(func(model string, modelRecs []rates.Record) bool {
		byRate := groupBy(modelRecs, func(r rates.Record) string { return string(r.RateType) })
		byRate.Range(func(rateType string, rateRecs []rates.Record) bool {
			byStyle := groupBy(rateRecs, func(r rates.Record) string { return r.SpeakingStyle })
			byStyle.Range(func(style string, part []rates.Record) bool {
				err = partitionDifferences(out, part, bt, dt)
				if err != nil {
					err = errs.At(err, model, "", style)
				}
				return err == nil
			})
			return err == nil
		})
		return err == nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s/%s: %w", op, bt, dt, err)
	}
	return out, nil
}

func partitionDifferences(out *Table, part []rates.Record, bt BaselineType, dt DiffType) error {
	values := make([]float64, len(part))
	for i, r := range part {
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			return &errs.Error{Kind: errs.InvalidParameter, Op: "bias.rate",
				Msg: fmt.Sprintf("%s is not finite (%g)", r.RateType, r.Value), Model: r.Model, Group: r.Group, Style: r.SpeakingStyle}
		}
		values[i] = r.Value
	}
	b, err := Baseline(values, bt)
	if err != nil {
		return err
	}
	for _, r := range part {
		diff := math.Abs(r.Value - b)
		if dt == Relative {
			if b == 0 {
				return errs.DivideByZero("bias.relative",
					fmt.Sprintf("%s baseline of %s is 0", bt, r.RateType), r.Model, "", r.SpeakingStyle)
			}
			diff /= b
		}
		out.Add(Difference{
			Model:               r.Model,
			Group:               r.Group,
			RateType:            r.RateType,
			SpeakingStyle:       r.SpeakingStyle,
			PerformanceDiff:     diff,
			BasePerformance:     r.Value,
			BaselinePerformance: b,
			BaselineType:        bt,
		})
	}
	return nil
}

// Combine concatenates the buckets of tables per (model, group) in argument
// order. Keys missing from a table contribute nothing.
func Combine(tables ...*Table) *Table {
	out := NewTable()
	for _, t := range tables {
		for _, model := range t.Models() {
			for _, group := range t.Groups(model) {
				for _, d := range t.Records(model, group) {
					out.Add(d)
				}
			}
		}
	}
	return out
}
