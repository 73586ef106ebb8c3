package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/maastricht-university/asr-bias/errs"
)

// Ingestion modes.
const (
	ModeCounts = "counts" // per-speaker Sub/Ins/Del/Corr/# Wrd tables
	ModeRates  = "rates"  // one precomputed rate per line, one file per rate type
)

type PathTemplates struct {
	OutputFile    string `yaml:"output_file" mapstructure:"output_file"`
	ErrorRateFile string `yaml:"error_rate_file" mapstructure:"error_rate_file"`
}

type Bias struct {
	W1         float64 `yaml:"w1" mapstructure:"w1"`
	W2         float64 `yaml:"w2" mapstructure:"w2"`
	SweepSteps int     `yaml:"sweep_steps" mapstructure:"sweep_steps"`
}

type Output struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Format string `yaml:"format" mapstructure:"format"`
	SQLite string `yaml:"sqlite" mapstructure:"sqlite"`
}

type Visualization struct {
	URL     string `yaml:"url" mapstructure:"url"`
	Timeout int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

type Root struct {
	Pipeline struct {
		Name      string `yaml:"name" mapstructure:"name"`
		LogLvl    string `yaml:"log_level" mapstructure:"log_level"`
		LogFormat string `yaml:"log_format" mapstructure:"log_format"`
	} `yaml:"pipeline" mapstructure:"pipeline"`
	BasePath             string        `yaml:"base_path" mapstructure:"base_path"`
	ErrorRates           []string      `yaml:"error_rates" mapstructure:"error_rates"`
	SpeakingStyleFolders []string      `yaml:"speaking_style_folders" mapstructure:"speaking_style_folders"`
	SpeakingStyleInfixes []string      `yaml:"speaking_style_infixes" mapstructure:"speaking_style_infixes"`
	SpeakerGroups        []string      `yaml:"speaker_groups" mapstructure:"speaker_groups"`
	ASRModels            []string      `yaml:"asr_models" mapstructure:"asr_models"`
	PathTemplates        PathTemplates `yaml:"path_templates" mapstructure:"path_templates"`
	Ingestion            struct {
		Mode string `yaml:"mode" mapstructure:"mode"`
	} `yaml:"ingestion" mapstructure:"ingestion"`
	Bias          Bias          `yaml:"bias" mapstructure:"bias"`
	Output        Output        `yaml:"output" mapstructure:"output"`
	Visualization Visualization `yaml:"visualization" mapstructure:"visualization"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.name", "asr-bias")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("pipeline.log_format", "text")
	v.SetDefault("ingestion.mode", ModeCounts)
	v.SetDefault("error_rates", []string{"WER"})
	v.SetDefault("bias.w1", 0.5)
	v.SetDefault("bias.w2", 0.5)
	v.SetDefault("bias.sweep_steps", 20)
	v.SetDefault("output.dir", "results")
	v.SetDefault("output.format", "json")
	v.SetDefault("visualization.timeout_seconds", 60)
}

// candidates lists the config files tried when no explicit path is given.
func candidates() []string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return []string{
		filepath.Join("config", env, "config.json"),
		filepath.Join("config", env, "config.yaml"),
		"config.json",
	}
}

// Load reads, defaults and validates the configuration. An empty path
// searches the candidate locations in order.
func Load(path string) (*Root, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("ASRBIAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		for _, p := range candidates() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path == "" {
		return nil, errs.Configf("config.load", "no config file found in %s", strings.Join(candidates(), ", "))
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var perr *os.PathError
		if errors.As(err, &perr) {
			return nil, &errs.Error{Kind: errs.Configuration, Op: "config.load", Msg: path, Err: err}
		}
		return nil, &errs.Error{Kind: errs.Configuration, Op: "config.load", Msg: "malformed " + path, Err: err}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &errs.Error{Kind: errs.Configuration, Op: "config.load", Msg: "decode " + path, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants every component relies on.
func (c *Root) Validate() error {
	const op = "config.validate"
	required := []struct {
		key  string
		vals []string
	}{
		{"error_rates", c.ErrorRates},
		{"speaking_style_folders", c.SpeakingStyleFolders},
		{"speaker_groups", c.SpeakerGroups},
		{"asr_models", c.ASRModels},
	}
	for _, r := range required {
		if len(r.vals) == 0 {
			return errs.Configf(op, "%s must not be empty", r.key)
		}
	}
	if len(c.SpeakingStyleInfixes) != len(c.SpeakingStyleFolders) {
		return errs.Configf(op, "speaking_style_infixes has %d entries, speaking_style_folders has %d",
			len(c.SpeakingStyleInfixes), len(c.SpeakingStyleFolders))
	}
	switch c.Ingestion.Mode {
	case ModeCounts:
		if c.PathTemplates.OutputFile == "" {
			return errs.Configf(op, "path_templates.output_file is required for ingestion mode %q", ModeCounts)
		}
	case ModeRates:
		if c.PathTemplates.ErrorRateFile == "" {
			return errs.Configf(op, "path_templates.error_rate_file is required for ingestion mode %q", ModeRates)
		}
	default:
		return errs.Configf(op, "unknown ingestion mode %q", c.Ingestion.Mode)
	}
	switch c.Output.Format {
	case "json", "yaml":
	default:
		return errs.Configf(op, "unknown output format %q", c.Output.Format)
	}
	if c.Bias.W1 < 0 || c.Bias.W1 > 1 || c.Bias.W2 < 0 || c.Bias.W2 > 1 {
		return errs.Configf(op, "bias weights must lie in [0,1], got w1=%g w2=%g", c.Bias.W1, c.Bias.W2)
	}
	if c.Bias.SweepSteps == 1 || c.Bias.SweepSteps < 0 {
		return errs.Configf(op, "bias.sweep_steps must be 0 (disabled) or at least 2, got %d", c.Bias.SweepSteps)
	}
	return nil
}

// StyleInfix returns the file infix configured for a speaking style folder.
func (c *Root) StyleInfix(style string) (string, bool) {
	for i, f := range c.SpeakingStyleFolders {
		if f == style {
			return c.SpeakingStyleInfixes[i], true
		}
	}
	return "", false
}

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }
