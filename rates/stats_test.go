package rates

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/asr-bias/errs"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   map[Metric]float64
	}{
		{
			name:   "odd count",
			values: []float64{0.3, 0.1, 0.2},
			want:   map[Metric]float64{Median: 0.2, Max: 0.3, Min: 0.1, Mean: 0.2, Std: 0.1},
		},
		{
			name:   "even count",
			values: []float64{0.4, 0.1, 0.2, 0.3},
			want:   map[Metric]float64{Median: 0.25, Max: 0.4, Min: 0.1, Mean: 0.25, Std: math.Sqrt(0.05 / 3)},
		},
		{
			name:   "single value",
			values: []float64{0.5},
			want:   map[Metric]float64{Median: 0.5, Max: 0.5, Min: 0.5, Mean: 0.5, Std: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Summarize(tt.values, []Metric{Median, Std, Max, Min, Mean})
			require.NoError(t, err)
			assert.Equal(t, []string{"median", "std", "max", "min", "mean"}, got.Keys())
			for m, want := range tt.want {
				v, ok := got.Get(string(m))
				require.True(t, ok)
				assert.InDelta(t, want, v, 1e-9, string(m))
			}
		})
	}
}

func TestSummarizeDoesNotReorderInput(t *testing.T) {
	in := []float64{0.3, 0.1, 0.2}
	_, err := Summarize(in, DefaultMetrics)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.3, 0.1, 0.2}, in)
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize(nil, DefaultMetrics)
	assert.ErrorIs(t, err, errs.DivisionByZero)
}

func TestParseMetrics(t *testing.T) {
	got, err := ParseMetrics([]string{"Median", " std", "max"})
	require.NoError(t, err)
	assert.Equal(t, []Metric{Median, Std, Max}, got)

	_, err = ParseMetrics([]string{"variance"})
	assert.ErrorIs(t, err, errs.InvalidParameter)
}
