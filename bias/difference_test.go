package bias

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/asr-bias/errs"
	"github.com/maastricht-university/asr-bias/rates"
)

func rec(model, group, style string, v float64) rates.Record {
	return rates.Record{Model: model, Group: group, SpeakingStyle: style, RateType: rates.WER, Value: v}
}

var threeGroups = []rates.Record{
	rec("NoAug", "A", "read", 0.10),
	rec("NoAug", "B", "read", 0.20),
	rec("NoAug", "C", "read", 0.30),
}

func diffsOf(t *testing.T, tbl *Table, model string, groups ...string) []float64 {
	t.Helper()
	var out []float64
	for _, g := range groups {
		recs := tbl.Records(model, g)
		require.Len(t, recs, 1, g)
		out = append(out, recs[0].PerformanceDiff)
	}
	return out
}

func TestDifferencesMinBaseline(t *testing.T) {
	abs, err := Differences(threeGroups, Min, Absolute)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.10, 0.20}, diffsOf(t, abs, "NoAug", "A", "B", "C"), 1e-12)

	rel, err := Differences(threeGroups, Min, Relative)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1, 2}, diffsOf(t, rel, "NoAug", "A", "B", "C"), 1e-12)

	d := abs.Records("NoAug", "C")[0]
	assert.Equal(t, Difference{
		Model: "NoAug", Group: "C", RateType: rates.WER, SpeakingStyle: "read",
		PerformanceDiff: d.PerformanceDiff, BasePerformance: 0.30, BaselinePerformance: 0.10, BaselineType: Min,
	}, d)
}

func TestDifferencesNormBaseline(t *testing.T) {
	abs, err := Differences(threeGroups, Norm, Absolute)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.10, 0, 0.10}, diffsOf(t, abs, "NoAug", "A", "B", "C"), 1e-12)
	for _, g := range []string{"A", "B", "C"} {
		assert.InDelta(t, 0.20, abs.Records("NoAug", g)[0].BaselinePerformance, 1e-12)
	}
}

func TestBaselineProperties(t *testing.T) {
	records := []rates.Record{
		rec("M", "a", "read", 0.31), rec("M", "b", "read", 0.07), rec("M", "c", "read", 0.15),
		rec("M", "a", "spont", 0.42), rec("M", "b", "spont", 0.40),
	}
	minT, err := Differences(records, Min, Absolute)
	require.NoError(t, err)
	normT, err := Differences(records, Norm, Relative)
	require.NoError(t, err)

	for _, g := range minT.Groups("M") {
		for _, d := range minT.Records("M", g) {
			assert.LessOrEqual(t, d.BaselinePerformance, d.BasePerformance)
			assert.GreaterOrEqual(t, d.PerformanceDiff, 0.0)
		}
	}
	means := map[string]float64{"read": (0.31 + 0.07 + 0.15) / 3, "spont": 0.41}
	for _, g := range normT.Groups("M") {
		for _, d := range normT.Records("M", g) {
			assert.InDelta(t, means[d.SpeakingStyle], d.BaselinePerformance, 1e-12)
			assert.InDelta(t, abs(d.BasePerformance-d.BaselinePerformance)/d.BaselinePerformance, d.PerformanceDiff, 1e-12)
		}
	}
	// one record per (rate type, style), in style order
	recs := minT.Records("M", "a")
	require.Len(t, recs, 2)
	assert.Equal(t, "read", recs[0].SpeakingStyle)
	assert.Equal(t, "spont", recs[1].SpeakingStyle)
	assert.Len(t, minT.Records("M", "c"), 1)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestDifferencesPartitionsPerModelAndRateType(t *testing.T) {
	records := []rates.Record{
		rec("NoAug", "A", "read", 0.10),
		rec("NoAug", "B", "read", 0.50),
		rec("Whisper", "A", "read", 0.40),
		rec("Whisper", "B", "read", 0.20),
		{Model: "NoAug", Group: "A", SpeakingStyle: "read", RateType: rates.MER, Value: 0.05},
		{Model: "NoAug", Group: "B", SpeakingStyle: "read", RateType: rates.MER, Value: 0.15},
	}
	tbl, err := Differences(records, Min, Absolute)
	require.NoError(t, err)

	assert.Equal(t, []string{"NoAug", "Whisper"}, tbl.Models())
	noAugB := tbl.Records("NoAug", "B")
	require.Len(t, noAugB, 2)
	assert.Equal(t, rates.WER, noAugB[0].RateType)
	assert.InDelta(t, 0.40, noAugB[0].PerformanceDiff, 1e-12)
	assert.Equal(t, rates.MER, noAugB[1].RateType)
	assert.InDelta(t, 0.10, noAugB[1].PerformanceDiff, 1e-12)
	assert.InDelta(t, 0.20, tbl.Records("Whisper", "A")[0].PerformanceDiff, 1e-12)
}

func TestRelativeZeroBaseline(t *testing.T) {
	records := []rates.Record{rec("Whisper", "A", "read", 0), rec("Whisper", "B", "read", 0.2)}
	_, err := Differences(records, Min, Relative)
	require.ErrorIs(t, err, errs.DivisionByZero)
	assert.Contains(t, err.Error(), "model=Whisper")
	assert.Contains(t, err.Error(), "style=read")

	_, err = Differences(records, Min, Absolute)
	assert.NoError(t, err)
}

func TestDifferencesInvalidParameters(t *testing.T) {
	_, err := Differences(threeGroups, "max", Absolute)
	assert.ErrorIs(t, err, errs.InvalidParameter)
	_, err = Differences(threeGroups, Min, "squared")
	assert.ErrorIs(t, err, errs.InvalidParameter)

	_, err = ParseBaseline("norm")
	assert.NoError(t, err)
	_, err = ParseDiff("relative")
	assert.NoError(t, err)
}

func TestCombine(t *testing.T) {
	minT, err := Differences(threeGroups, Min, Absolute)
	require.NoError(t, err)
	normT, err := Differences(threeGroups, Norm, Absolute)
	require.NoError(t, err)

	combined := Combine(minT, normT, nil)
	assert.Equal(t, []string{"A", "B", "C"}, combined.Groups("NoAug"))
	recs := combined.Records("NoAug", "B")
	require.Len(t, recs, 2)
	assert.Equal(t, Min, recs[0].BaselineType)
	assert.Equal(t, Norm, recs[1].BaselineType)
	assert.Equal(t, 6, combined.Len())
}

func TestCombineWithEmptyIsIdentity(t *testing.T) {
	records := append([]rates.Record{rec("Whisper", "X", "spont", 0.7)}, threeGroups...)
	tbl, err := Differences(records, Min, Absolute)
	require.NoError(t, err)

	for _, got := range []*Table{Combine(tbl, NewTable()), Combine(NewTable(), tbl)} {
		assert.Equal(t, tbl.Models(), got.Models())
		for _, m := range tbl.Models() {
			assert.Equal(t, tbl.Groups(m), got.Groups(m))
			for _, g := range tbl.Groups(m) {
				assert.Equal(t, tbl.Records(m, g), got.Records(m, g))
			}
		}
	}
}

func TestCombineDisjointKeys(t *testing.T) {
	a := NewTable()
	a.Add(Difference{Model: "M1", Group: "g1", PerformanceDiff: 1})
	b := NewTable()
	b.Add(Difference{Model: "M1", Group: "g2", PerformanceDiff: 2})
	b.Add(Difference{Model: "M2", Group: "g1", PerformanceDiff: 3})

	c := Combine(a, b)
	assert.Equal(t, []string{"M1", "M2"}, c.Models())
	assert.Equal(t, []string{"g1", "g2"}, c.Groups("M1"))
	assert.Nil(t, c.Records("M2", "g2"))
	assert.Nil(t, c.Records("M3", "g1"))
}

func TestBaseline(t *testing.T) {
	b, err := Baseline([]float64{0.3, 0.1, 0.2}, Min)
	require.NoError(t, err)
	assert.Equal(t, 0.1, b)

	b, err = Baseline([]float64{0.3, 0.1, 0.2}, Norm)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, b, 1e-12)

	_, err = Baseline(nil, Min)
	assert.ErrorIs(t, err, errs.DivisionByZero)
}

func TestDifferencesRejectNonFiniteRates(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		records := []rates.Record{rec("M1", "A", "read", 0.1), rec("M1", "B", "read", v)}
		_, err := Differences(records, Norm, Absolute)
		require.ErrorIs(t, err, errs.InvalidParameter)
		assert.Contains(t, err.Error(), "model=M1 group=B style=read")

		_, err = Analyze(context.Background(), records, Options{Weights: Weights{W1: 0.5, W2: 0.5}})
		assert.ErrorIs(t, err, errs.InvalidParameter)
	}
}
