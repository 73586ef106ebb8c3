package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/asr-bias/bias"
	"github.com/maastricht-university/asr-bias/store"
)

// openStore builds the configured sinks for one session directory.
func (p *Pipeline) openStore(runID, dir string) (store.Store, error) {
	fs, err := store.NewFileStore(dir, p.cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	sinks := store.Multi{fs}
	if p.cfg.Output.SQLite != "" {
		db, err := store.NewSQLiteStore(p.cfg.Output.SQLite, runID)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, db)
	}
	return sinks, nil
}

// persist writes docs plus a manifest into a fresh session directory.
func (p *Pipeline) persist(command string, docs []document, ds *dataset) (*Summary, error) {
	now := p.now()
	runID := uuid.NewString()
	sid, dir, err := store.SessionDir(p.cfg.Output.Dir, now)
	if err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	st, err := p.openStore(runID, dir)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	log := p.log.WithFields(logrus.Fields{"run_id": runID, "session": sid})
	names, err := writeAll(st, docs, log)
	if err == nil {
		err = st.Put("manifest", Manifest{
			RunID:       runID,
			SessionID:   sid,
			Pipeline:    p.cfg.Pipeline.Name,
			Command:     command,
			GeneratedAt: now,
			Mode:        p.cfg.Ingestion.Mode,
			Weights:     bias.Weights{W1: p.cfg.Bias.W1, W2: p.cfg.Bias.W2},
			Models:      p.cfg.ASRModels,
			Groups:      p.cfg.SpeakerGroups,
			Styles:      ds.styles,
			RateTypes:   p.cfg.ErrorRates,
			Documents:   names,
			Skipped:     ds.skipped,
		})
	}
	if err != nil {
		if d, ok := st.(store.Discarder); ok {
			if derr := d.Discard(); derr != nil {
				log.WithError(derr).Warn("failed to discard partial results")
			}
		}
	}
	if cerr := st.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"documents": len(names), "dir": filepath.Clean(dir)}).Info("results written")

	return &Summary{RunID: runID, SessionDir: dir, Documents: names, Skipped: ds.skipped}, nil
}

func writeAll(st store.Store, docs []document, log logrus.FieldLogger) ([]string, error) {
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		if err := st.Put(d.name, d.body); err != nil {
			return nil, err
		}
		log.WithField("document", d.name).Debug("document written")
		names = append(names, d.name)
	}
	return names, nil
}

// reportDocuments lists every result document of a full run in write order.
func reportDocuments(ds *dataset, rep *bias.Report, withStats bool) []document {
	docs := []document{
		{"error_rates_per_speaker", ds.perSpeaker},
		{"error_rates_per_group", ds.perGroup},
	}
	if withStats {
		docs = append(docs, document{"error_rate_statistics", ds.statistics})
	}
	for _, name := range rep.Differences.Keys() {
		t, _ := rep.Differences.Get(name)
		docs = append(docs, document{name, t})
	}
	docs = append(docs,
		document{"performance_differences_combined_abs", rep.CombinedAbs},
		document{"performance_differences_combined_rel", rep.CombinedRel},
		document{"performance_difference_bias", rep.DifferenceBias},
		document{"overall_performance_difference_bias", rep.OverallDifferenceBias},
		document{"weighted_performance_bias", rep.WPB},
		document{"overall_weighted_performance_bias", rep.StyleWPB},
		document{"total_weighted_performance_bias", rep.TotalWPB},
		document{"intergroup_weighted_performance_bias", rep.IWPB},
		document{"intergroup_weighted_performance_bias_per_style", rep.StyleIWPB.PerGroup},
		document{"overall_intergroup_weighted_performance_bias", rep.StyleIWPB.Overall},
		document{"total_intergroup_weighted_performance_bias", rep.TotalIWPB},
	)
	if rep.Sweep != nil {
		docs = append(docs, document{"iwpb_simulation", rep.Sweep})
	}
	return docs
}
