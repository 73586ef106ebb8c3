// Package paths resolves (model, group, style) triples to data files using
// the templates from the configuration.
package paths

import (
	"regexp"

	"github.com/maastricht-university/asr-bias/config"
	"github.com/maastricht-university/asr-bias/errs"
)

// Triple addresses one cell of the evaluation grid.
type Triple struct {
	Model string `json:"model" yaml:"model"`
	Group string `json:"group" yaml:"group"`
	Style string `json:"style" yaml:"style"`
}

var placeholder = regexp.MustCompile(`\{([A-Za-z_]+)\}`)

type Resolver struct {
	cfg *config.Root
}

func New(cfg *config.Root) *Resolver {
	return &Resolver{cfg: cfg}
}

// Counts returns the per-speaker error-count table for t.
func (r *Resolver) Counts(t Triple) (string, error) {
	return r.render("output_file", r.cfg.PathTemplates.OutputFile, t, nil)
}

// Rates returns the per-speaker rate file of the given rate type for t.
func (r *Resolver) Rates(rateType string, t Triple) (string, error) {
	return r.render("error_rate_file", r.cfg.PathTemplates.ErrorRateFile, t, map[string]string{"error_rate": rateType})
}

// Grid enumerates every triple in configuration order: style, then model, then group.
func (r *Resolver) Grid() []Triple {
	out := make([]Triple, 0, len(r.cfg.SpeakingStyleFolders)*len(r.cfg.ASRModels)*len(r.cfg.SpeakerGroups))
	for _, style := range r.cfg.SpeakingStyleFolders {
		for _, model := range r.cfg.ASRModels {
			for _, group := range r.cfg.SpeakerGroups {
				out = append(out, Triple{Model: model, Group: group, Style: style})
			}
		}
	}
	return out
}

// render fills tmpl from the configuration, t and extra. Placeholders
// without a value, such as {error_rate} in a count table path, are rejected.
func (r *Resolver) render(name, tmpl string, t Triple, extra map[string]string) (string, error) {
	const op = "paths.resolve"
	if tmpl == "" {
		return "", errs.Configf(op, "path template %q is not configured", name)
	}
	infix, ok := r.cfg.StyleInfix(t.Style)
	if !ok {
		return "", errs.Configf(op, "speaking style %q is not configured", t.Style)
	}
	vars := map[string]string{
		"base_path":             r.cfg.BasePath,
		"speaking_style_folder": t.Style,
		"speaking_style_infix":  infix,
		"speaker_group":         t.Group,
		"asr_model":             t.Model,
	}
	for k, v := range extra {
		vars[k] = v
	}

	var bad string
	out := placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := m[1 : len(m)-1]
		v, ok := vars[key]
		if !ok {
			if bad == "" {
				bad = key
			}
			return m
		}
		return v
	})
	if bad != "" {
		return "", errs.Configf(op, "template %q uses unknown placeholder {%s}", name, bad)
	}
	return out, nil
}
