package rates

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/maastricht-university/asr-bias/errs"
	"github.com/maastricht-university/asr-bias/ordered"
)

// Metric names a descriptive statistic over per-speaker rates.
type Metric string

const (
	Median Metric = "median"
	Std    Metric = "std"
	Max    Metric = "max"
	Min    Metric = "min"
	Mean   Metric = "mean"
)

// DefaultMetrics is the set reported when none is requested.
var DefaultMetrics = []Metric{Median, Std, Max, Min}

var metricFuncs = map[Metric]func(sorted []float64) float64{
	Median: median,
	Std:    std,
	Max:    func(x []float64) float64 { return floats.Max(x) },
	Min:    func(x []float64) float64 { return floats.Min(x) },
	Mean:   func(x []float64) float64 { return stat.Mean(x, nil) },
}

func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := metricFuncs[m]; !ok {
		return "", errs.InvalidParam("rates.metric", "unknown metric %q (use median, std, max, min or mean)", s)
	}
	return m, nil
}

func ParseMetrics(names []string) ([]Metric, error) {
	out := make([]Metric, 0, len(names))
	for _, n := range names {
		m, err := ParseMetric(n)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Summarize evaluates metrics over values, keyed by metric name in request order.
func Summarize(values []float64, metrics []Metric) (*ordered.Map[float64], error) {
	if len(values) == 0 {
		return nil, errs.DivideByZero("rates.summarize", "no values", "", "", "")
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	out := ordered.New[float64]()
	for _, m := range metrics {
		fn, ok := metricFuncs[m]
		if !ok {
			return nil, errs.InvalidParam("rates.summarize", "unknown metric %q", m)
		}
		out.Set(string(m), fn(sorted))
	}
	return out, nil
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// std is the sample standard deviation; a single value has no spread.
func std(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return stat.StdDev(x, nil)
}
