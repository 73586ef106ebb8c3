// Package bias computes baseline-relative performance differences between
// speaker groups and the weighted bias metrics derived from them.
package bias

import (
	"encoding/json"

	"github.com/maastricht-university/asr-bias/errs"
	"github.com/maastricht-university/asr-bias/ordered"
	"github.com/maastricht-university/asr-bias/rates"
)

type BaselineType string

const (
	Min  BaselineType = "min"
	Norm BaselineType = "norm"
)

func ParseBaseline(s string) (BaselineType, error) {
	switch BaselineType(s) {
	case Min, Norm:
		return BaselineType(s), nil
	}
	return "", errs.InvalidParam("bias.baseline", "invalid baseline type %q (use min or norm)", s)
}

type DiffType string

const (
	Absolute DiffType = "absolute"
	Relative DiffType = "relative"
)

func ParseDiff(s string) (DiffType, error) {
	switch DiffType(s) {
	case Absolute, Relative:
		return DiffType(s), nil
	}
	return "", errs.InvalidParam("bias.diff", "invalid diff type %q (use absolute or relative)", s)
}

// Short is the abbreviated family name used in document keys.
func (d DiffType) Short() string {
	if d == Relative {
		return "rel"
	}
	return "abs"
}

// Difference is one group's rate compared against its partition baseline.
type Difference struct {
	Model               string         `json:"Model" yaml:"Model"`
	Group               string         `json:"Group" yaml:"Group"`
	RateType            rates.RateType `json:"RateType" yaml:"RateType"`
	SpeakingStyle       string         `json:"SpeakingStyle" yaml:"SpeakingStyle"`
	PerformanceDiff     float64        `json:"PerformanceDiff" yaml:"PerformanceDiff"`
	BasePerformance     float64        `json:"BasePerformance" yaml:"BasePerformance"`
	BaselinePerformance float64        `json:"BaselinePerformance" yaml:"BaselinePerformance"`
	BaselineType        BaselineType   `json:"BaselineType" yaml:"BaselineType"`
}

// Table maps model → group → differences, both levels in first-seen order.
type Table struct {
	m *ordered.Map[*ordered.Map[[]Difference]]
}

func NewTable() *Table {
	return &Table{m: ordered.New[*ordered.Map[[]Difference]]()}
}

// Add appends d to the bucket of its model and group.
func (t *Table) Add(d Difference) {
	groups := t.m.GetOrInit(d.Model, ordered.New[[]Difference])
	recs, _ := groups.Get(d.Group)
	groups.Set(d.Group, append(recs, d))
}

func (t *Table) Models() []string {
	if t == nil {
		return nil
	}
	return t.m.Keys()
}

func (t *Table) Groups(model string) []string {
	if t == nil {
		return nil
	}
	groups, _ := t.m.Get(model)
	return groups.Keys()
}

// Records returns the bucket of (model, group); absent keys yield nil.
func (t *Table) Records(model, group string) []Difference {
	if t == nil {
		return nil
	}
	groups, _ := t.m.Get(model)
	recs, _ := groups.Get(group)
	return recs
}

// Len counts all records.
func (t *Table) Len() int {
	n := 0
	for _, model := range t.Models() {
		for _, group := range t.Groups(model) {
			n += len(t.Records(model, group))
		}
	}
	return n
}

func (t *Table) MarshalJSON() ([]byte, error) { return json.Marshal(t.m) }

func (t *Table) MarshalYAML() (any, error) { return t.m.MarshalYAML() }

// Scores is a two-level ordered grid of scalar results, e.g. model → group.
type Scores = ordered.Map[*ordered.Map[float64]]

func newScores() *Scores { return ordered.New[*ordered.Map[float64]]() }

// Weights blends the difference term (W1) with raw performance (W2).
type Weights struct {
	W1 float64 `json:"w1" yaml:"w1"`
	W2 float64 `json:"w2" yaml:"w2"`
}

func (w Weights) Validate() error {
	if w.W1 < 0 || w.W1 > 1 || w.W2 < 0 || w.W2 > 1 {
		return errs.InvalidParam("bias.weights", "weights must lie in [0,1], got w1=%g w2=%g", w.W1, w.W2)
	}
	return nil
}
