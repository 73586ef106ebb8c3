package orchestrator

import (
	"time"

	"github.com/maastricht-university/asr-bias/bias"
	"github.com/maastricht-university/asr-bias/ordered"
	"github.com/maastricht-university/asr-bias/paths"
	"github.com/maastricht-university/asr-bias/rates"
)

// SpeakerRates are the per-speaker values of one rate type in one style.
type SpeakerRates struct {
	SpeakingStyle string    `json:"SpeakingStyle" yaml:"SpeakingStyle"`
	RateType      string    `json:"RateType" yaml:"RateType"`
	Values        []float64 `json:"Values" yaml:"Values"`
}

// Statistic summarises the per-speaker values of one rate type in one style.
type Statistic struct {
	SpeakingStyle string                `json:"SpeakingStyle" yaml:"SpeakingStyle"`
	RateType      string                `json:"RateType" yaml:"RateType"`
	Values        *ordered.Map[float64] `json:"Values" yaml:"Values"`
}

// dataset is everything loaded from disk for one run.
type dataset struct {
	records    []rates.Record
	perSpeaker *ordered.Map[*ordered.Map[[]SpeakerRates]]
	perGroup   *ordered.Map[*ordered.Map[[]rates.Record]]
	statistics *ordered.Map[*ordered.Map[[]Statistic]]
	styles     []string
	skipped    []paths.Triple
}

// Manifest describes one run and the documents it wrote.
type Manifest struct {
	RunID       string         `json:"run_id" yaml:"run_id"`
	SessionID   string         `json:"session_id" yaml:"session_id"`
	Pipeline    string         `json:"pipeline" yaml:"pipeline"`
	Command     string         `json:"command" yaml:"command"`
	GeneratedAt time.Time      `json:"generated_at" yaml:"generated_at"`
	Mode        string         `json:"ingestion_mode" yaml:"ingestion_mode"`
	Weights     bias.Weights   `json:"weights" yaml:"weights"`
	Models      []string       `json:"asr_models" yaml:"asr_models"`
	Groups      []string       `json:"speaker_groups" yaml:"speaker_groups"`
	Styles      []string       `json:"speaking_styles" yaml:"speaking_styles"`
	RateTypes   []string       `json:"error_rates" yaml:"error_rates"`
	Documents   []string       `json:"documents" yaml:"documents"`
	Skipped     []paths.Triple `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Summary is returned to the caller of a pipeline command.
type Summary struct {
	RunID      string
	SessionDir string
	Documents  []string
	Skipped    []paths.Triple
}

type document struct {
	name string
	body any
}
