package orchestrator

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/asr-bias/config"
	"github.com/maastricht-university/asr-bias/errs"
	"github.com/maastricht-university/asr-bias/loader"
	"github.com/maastricht-university/asr-bias/ordered"
	"github.com/maastricht-university/asr-bias/paths"
	"github.com/maastricht-university/asr-bias/rates"
)

func appendAt[T any](m *ordered.Map[*ordered.Map[[]T]], model, group string, v T) {
	groups := m.GetOrInit(model, ordered.New[[]T])
	items, _ := groups.Get(group)
	groups.Set(group, append(items, v))
}

// loadCell reads and rates one (model, group, style) cell.
func (p *Pipeline) loadCell(t paths.Triple) (rates.Result, error) {
	if p.cfg.Ingestion.Mode == config.ModeRates {
		res := rates.Result{PerSpeaker: ordered.New[[]float64](), Aggregate: ordered.New[float64]()}
		for _, rt := range p.cfg.ErrorRates {
			path, err := p.resolver.Rates(rt, t)
			if err != nil {
				return rates.Result{}, err
			}
			p.log.WithFields(logrus.Fields{"path": path, "rate_type": rt}).Debug("loading speaker rates")
			values, err := loader.LoadRates(path)
			if err != nil {
				return rates.Result{}, err
			}
			agg, err := rates.FromSpeakerRates(values)
			if err != nil {
				return rates.Result{}, err
			}
			res.PerSpeaker.Set(rt, values)
			res.Aggregate.Set(rt, agg)
		}
		return res, nil
	}

	path, err := p.resolver.Counts(t)
	if err != nil {
		return rates.Result{}, err
	}
	p.log.WithField("path", path).Debug("loading error counts")
	rows, err := loader.LoadCounts(path)
	if err != nil {
		return rates.Result{}, err
	}
	return rates.Compute(rows, p.rateTypes)
}

// collect walks the whole grid. Missing inputs are logged and skipped; any
// other failure aborts. When metrics is non-empty the per-speaker values are
// also summarised.
func (p *Pipeline) collect(ctx context.Context, metrics []rates.Metric) (*dataset, error) {
	ds := &dataset{
		perSpeaker: ordered.New[*ordered.Map[[]SpeakerRates]](),
		perGroup:   ordered.New[*ordered.Map[[]rates.Record]](),
		statistics: ordered.New[*ordered.Map[[]Statistic]](),
	}
	seenStyle := map[string]bool{}

	for _, t := range p.resolver.Grid() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log := p.log.WithFields(logrus.Fields{"model": t.Model, "group": t.Group, "style": t.Style})

		res, err := p.loadCell(t)
		if errs.KindOf(err) == errs.MissingData {
			log.WithError(err).Warn("skipping cell without data")
			ds.skipped = append(ds.skipped, t)
			continue
		}
		if err != nil {
			return nil, errs.At(err, t.Model, t.Group, t.Style)
		}

		seenStyle[t.Style] = true
		for _, rt := range res.Aggregate.Keys() {
			agg, _ := res.Aggregate.Get(rt)
			per, _ := res.PerSpeaker.Get(rt)
			r := rates.Record{Model: t.Model, Group: t.Group, SpeakingStyle: t.Style, RateType: rates.RateType(rt), Value: agg}
			ds.records = append(ds.records, r)
			appendAt(ds.perGroup, t.Model, t.Group, r)
			appendAt(ds.perSpeaker, t.Model, t.Group, SpeakerRates{SpeakingStyle: t.Style, RateType: rt, Values: per})

			if len(metrics) == 0 {
				continue
			}
			sum, err := rates.Summarize(per, metrics)
			if err != nil {
				return nil, errs.At(err, t.Model, t.Group, t.Style)
			}
			appendAt(ds.statistics, t.Model, t.Group, Statistic{SpeakingStyle: t.Style, RateType: rt, Values: sum})
		}
		log.WithField("speakers", speakerCount(res)).Debug("cell rated")
	}

	for _, s := range p.cfg.SpeakingStyleFolders {
		if seenStyle[s] {
			ds.styles = append(ds.styles, s)
		}
	}
	if len(ds.records) == 0 {
		return nil, errs.Missing("orchestrator.collect", "no input data found under "+p.cfg.BasePath, nil)
	}
	return ds, nil
}

func speakerCount(res rates.Result) int {
	for _, v := range res.PerSpeaker.Values() {
		return len(v)
	}
	return 0
}
