package bias

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/maastricht-university/asr-bias/ordered"
	"github.com/maastricht-university/asr-bias/rates"
)

type Options struct {
	Weights Weights
	// Styles fixes the order of per-style results. Empty means first-seen order in the records.
	Styles []string
	// SweepSteps is the number of w1 values in the weight sweep; 0 disables it.
	SweepSteps int
}

// Variant names one (baseline, diff) combination.
type Variant struct {
	Baseline BaselineType
	Diff     DiffType
}

// Variants lists the four difference sets in combination order: min before
// norm within each diff family.
var Variants = []Variant{
	{Min, Absolute},
	{Norm, Absolute},
	{Min, Relative},
	{Norm, Relative},
}

// Document is the result document name of the variant.
func (v Variant) Document() string {
	return fmt.Sprintf("performance_difference_%s_%s", v.Baseline, v.Diff)
}

// Key is the short key used in the difference-bias documents, e.g. abs_min.
func (v Variant) Key() string { return v.Diff.Short() + "_" + string(v.Baseline) }

// Report carries every bias result of one run.
type Report struct {
	Weights     Weights
	Differences *ordered.Map[*Table] // keyed by Variant.Document
	CombinedAbs *Table
	CombinedRel *Table

	DifferenceBias        *ordered.Map[*ordered.Map[*Scores]] // Variant.Key → style → model → group
	OverallDifferenceBias *ordered.Map[*Scores]               // Variant.Key → style → model

	WPB      *Scores
	StyleWPB *Scores
	TotalWPB *ordered.Map[float64]

	IWPB      *Scores
	StyleIWPB *StyleIntergroup
	TotalIWPB *ordered.Map[float64]

	Sweep []SweepPoint
}

// Analyze runs the bias pipeline over per-group rates. The four difference
// variants are independent and computed concurrently; everything after the
// combination step runs on the combined tables.
func Analyze(ctx context.Context, records []rates.Record, opts Options) (*Report, error) {
	if err := opts.Weights.Validate(); err != nil {
		return nil, err
	}
	styles := opts.Styles
	if len(styles) == 0 {
		styles = groupBy(records, func(r rates.Record) string { return r.SpeakingStyle }).Keys()
	}

	tables := make([]*Table, len(Variants))
	g, gctx := errgroup.WithContext(ctx)
	for i, v := range Variants {
		i, v := i, v
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, err := Differences(records, v.Baseline, v.Diff)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := &Report{
		Weights:               opts.Weights,
		Differences:           ordered.New[*Table](),
		DifferenceBias:        ordered.New[*ordered.Map[*Scores]](),
		OverallDifferenceBias: ordered.New[*Scores](),
		CombinedAbs:           Combine(tables[0], tables[1]),
		CombinedRel:           Combine(tables[2], tables[3]),
	}
	for i, v := range Variants {
		rep.Differences.Set(v.Document(), tables[i])
		gb, err := DifferenceBias(tables[i], styles)
		if err != nil {
			return nil, err
		}
		rep.DifferenceBias.Set(v.Key(), gb.PerGroup)
		rep.OverallDifferenceBias.Set(v.Key(), gb.Overall)
	}

	var err error
	w := opts.Weights
	if rep.WPB, err = WeightedBias(rep.CombinedAbs, w); err != nil {
		return nil, err
	}
	if rep.StyleWPB, err = StyleWeightedBias(rep.CombinedAbs, w, styles); err != nil {
		return nil, err
	}
	if rep.TotalWPB, err = TotalWeightedBias(rep.CombinedAbs, w); err != nil {
		return nil, err
	}
	if rep.IWPB, err = IntergroupWeightedBias(rep.CombinedAbs, w); err != nil {
		return nil, err
	}
	if rep.StyleIWPB, err = StyleIntergroupWeightedBias(rep.CombinedAbs, w, styles); err != nil {
		return nil, err
	}
	if rep.TotalIWPB, err = TotalIntergroupWeightedBias(rep.CombinedAbs, w); err != nil {
		return nil, err
	}
	if opts.SweepSteps > 0 {
		if rep.Sweep, err = Sweep(rep.CombinedAbs, opts.SweepSteps); err != nil {
			return nil, err
		}
	}
	return rep, nil
}
