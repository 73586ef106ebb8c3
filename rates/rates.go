// Package rates turns per-speaker error counts into word and match error rates.
package rates

import (
	"gonum.org/v1/gonum/stat"

	"github.com/maastricht-university/asr-bias/errs"
	"github.com/maastricht-university/asr-bias/ordered"
)

type RateType string

const (
	WER RateType = "WER"
	MER RateType = "MER"
)

func ParseRateType(s string) (RateType, error) {
	switch RateType(s) {
	case WER, MER:
		return RateType(s), nil
	}
	return "", errs.InvalidParam("rates.parse", "unsupported rate type %q (use WER or MER)", s)
}

// ParseRateTypes parses every name, failing on the first unsupported one.
func ParseRateTypes(names []string) ([]RateType, error) {
	out := make([]RateType, 0, len(names))
	for _, n := range names {
		rt, err := ParseRateType(n)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, nil
}

// Counts is one speaker's alignment summary for a (model, group, style).
type Counts struct {
	Speaker       string
	Substitutions int
	Insertions    int
	Deletions     int
	Correct       int
	TotalWords    int
}

func (c Counts) Errors() int { return c.Substitutions + c.Insertions + c.Deletions }

// Record is one aggregated rate of a grid cell.
type Record struct {
	Model         string   `json:"Model" yaml:"Model"`
	Group         string   `json:"Group" yaml:"Group"`
	SpeakingStyle string   `json:"SpeakingStyle" yaml:"SpeakingStyle"`
	RateType      RateType `json:"RateType" yaml:"RateType"`
	Value         float64  `json:"Rate" yaml:"Rate"`
}

// Result holds per-speaker and aggregated values keyed by rate type name.
type Result struct {
	PerSpeaker *ordered.Map[[]float64]
	Aggregate  *ordered.Map[float64]
}

// Compute derives the requested rate types from rows.
func Compute(rows []Counts, types []RateType) (Result, error) {
	res := Result{PerSpeaker: ordered.New[[]float64](), Aggregate: ordered.New[float64]()}
	for _, rt := range types {
		var (
			per []float64
			agg float64
			err error
		)
		switch rt {
		case WER:
			per, agg, err = WordErrorRate(rows)
		case MER:
			per, agg, err = MatchErrorRate(rows)
		default:
			err = errs.InvalidParam("rates.compute", "unsupported rate type %q", rt)
		}
		if err != nil {
			return Result{}, err
		}
		res.PerSpeaker.Set(string(rt), per)
		res.Aggregate.Set(string(rt), agg)
	}
	return res, nil
}

// WordErrorRate returns (sub+ins+del)/words per speaker and the
// micro-averaged rate over all speakers.
func WordErrorRate(rows []Counts) ([]float64, float64, error) {
	const op = "rates.wer"
	per := make([]float64, 0, len(rows))
	var errSum, words int
	for _, r := range rows {
		if r.TotalWords <= 0 {
			return nil, 0, errs.DivideByZero(op, "total words is 0 for speaker "+r.Speaker, "", "", "")
		}
		per = append(per, float64(r.Errors())/float64(r.TotalWords))
		errSum += r.Errors()
		words += r.TotalWords
	}
	if words == 0 {
		return nil, 0, errs.DivideByZero(op, "sum of total words is 0", "", "", "")
	}
	return per, float64(errSum) / float64(words), nil
}

// MatchErrorRate returns (sub+ins+del)/(sub+ins+del+corr) per speaker and
// 1 - sum(corr)/sum(sub+ins+del+corr) overall.
func MatchErrorRate(rows []Counts) ([]float64, float64, error) {
	const op = "rates.mer"
	per := make([]float64, 0, len(rows))
	var correct, denom int
	for _, r := range rows {
		d := r.Errors() + r.Correct
		if d == 0 {
			return nil, 0, errs.DivideByZero(op, "no aligned words for speaker "+r.Speaker, "", "", "")
		}
		per = append(per, float64(r.Errors())/float64(d))
		correct += r.Correct
		denom += d
	}
	if denom == 0 {
		return nil, 0, errs.DivideByZero(op, "no aligned words", "", "", "")
	}
	return per, 1 - float64(correct)/float64(denom), nil
}

// FromSpeakerRates aggregates precomputed per-speaker rates. Without counts
// the only available aggregate is the arithmetic mean.
func FromSpeakerRates(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errs.DivideByZero("rates.mean", "no speaker rates", "", "", "")
	}
	return stat.Mean(values, nil), nil
}
