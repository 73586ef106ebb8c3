package orchestrator

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/asr-bias/bias"
	"github.com/maastricht-university/asr-bias/clients"
	cfg "github.com/maastricht-university/asr-bias/config"
	"github.com/maastricht-university/asr-bias/paths"
	"github.com/maastricht-university/asr-bias/rates"
)

type Pipeline struct {
	cfg       *cfg.Root
	log       logrus.FieldLogger
	resolver  *paths.Resolver
	rateTypes []rates.RateType
	http      *clients.HTTP
	now       func() time.Time
}

type Option func(*Pipeline)

// WithClock replaces time.Now for session naming.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func NewPipeline(c *cfg.Root, log logrus.FieldLogger, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:      c,
		log:      log,
		resolver: paths.New(c),
		http:     clients.NewHTTP(cfg.DurSeconds(c.Visualization.Timeout)),
		now:      time.Now,
	}
	if c.Ingestion.Mode == cfg.ModeCounts {
		rt, err := rates.ParseRateTypes(c.ErrorRates)
		if err != nil {
			return nil, err
		}
		p.rateTypes = rt
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

func (p *Pipeline) weights() bias.Weights {
	return bias.Weights{W1: p.cfg.Bias.W1, W2: p.cfg.Bias.W2}
}

// Run executes the full pipeline: load and rate every cell, compute all bias
// metrics, persist the documents and request charts.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	p.log.WithField("mode", p.cfg.Ingestion.Mode).Info("loading error data")
	ds, err := p.collect(ctx, rates.DefaultMetrics)
	if err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{"records": len(ds.records), "skipped": len(ds.skipped)}).Info("computing bias")

	rep, err := bias.Analyze(ctx, ds.records, bias.Options{
		Weights:    p.weights(),
		Styles:     ds.styles,
		SweepSteps: p.cfg.Bias.SweepSteps,
	})
	if err != nil {
		return nil, err
	}

	sum, err := p.persist("run", reportDocuments(ds, rep, true), ds)
	if err != nil {
		return nil, err
	}
	p.publish(ctx, sum.SessionDir, ds, rep)
	return sum, nil
}

// Simulate writes only the weight sweep of total IWPB.
func (p *Pipeline) Simulate(ctx context.Context, steps int) (*Summary, error) {
	ds, err := p.collect(ctx, nil)
	if err != nil {
		return nil, err
	}
	minAbs, err := bias.Differences(ds.records, bias.Min, bias.Absolute)
	if err != nil {
		return nil, err
	}
	normAbs, err := bias.Differences(ds.records, bias.Norm, bias.Absolute)
	if err != nil {
		return nil, err
	}
	sweep, err := bias.Sweep(bias.Combine(minAbs, normAbs), steps)
	if err != nil {
		return nil, err
	}
	return p.persist("simulate", []document{{"iwpb_simulation", sweep}}, ds)
}

// Statistics writes only the per-speaker rate statistics.
func (p *Pipeline) Statistics(ctx context.Context, metrics []rates.Metric) (*Summary, error) {
	if len(metrics) == 0 {
		metrics = rates.DefaultMetrics
	}
	ds, err := p.collect(ctx, metrics)
	if err != nil {
		return nil, err
	}
	return p.persist("stats", []document{{"error_rate_statistics", ds.statistics}}, ds)
}

// publish asks the visualization service for charts. Failures are logged only.
func (p *Pipeline) publish(ctx context.Context, outDir string, ds *dataset, rep *bias.Report) {
	url := p.cfg.Visualization.URL
	if url == "" {
		return
	}
	reqs := []clients.ChartReq{
		{Kind: clients.ChartStatistics, Title: "Error rate statistics", Data: ds.statistics},
		{Kind: clients.ChartPerformanceDifferences, Title: "Performance differences", Data: map[string]*bias.Table{
			"absolute": rep.CombinedAbs,
			"relative": rep.CombinedRel,
		}},
		{Kind: clients.ChartWPB, Title: "Weighted Performance Bias by Model and Group", Data: rep.WPB},
		{Kind: clients.ChartIWPB, Title: "Intergroup Weighted Performance Bias by Model and Group", Data: rep.IWPB},
	}
	if rep.Sweep != nil {
		reqs = append(reqs, clients.ChartReq{Kind: clients.ChartIWPBSimulation, Title: "IWPB Simulation with Different Weights", Data: rep.Sweep})
	}
	for _, r := range reqs {
		r.OutputDir = outDir
		resp, err := p.http.GenerateChart(ctx, url, r)
		log := p.log.WithField("chart", r.Kind)
		if err != nil {
			log.WithError(err).Warn("chart request failed")
			continue
		}
		log.WithField("path", resp.Path).Info("chart generated")
	}
}
