// Package cli wires the bias pipeline to the command line.
package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/asr-bias/config"
	"github.com/maastricht-university/asr-bias/orchestrator"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "asr-bias",
	Short: "Speaker-group bias analysis for ASR error rates",
	Long: `asr-bias loads per-speaker ASR error data for every configured
(model, speaker group, speaking style) cell, derives error rates and reports
how unevenly each model performs across speaker groups.

Commands:
  run       - full pipeline: rates, differences, WPB, IWPB and sweep
  simulate  - IWPB totals over a sweep of weight pairs
  stats     - per-speaker rate statistics only`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: config/$CONFIG_ENV/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func newLogger(c *config.Root, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	lvl, err := logrus.ParseLevel(c.Pipeline.LogLvl)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	log.SetLevel(lvl)
	if c.Pipeline.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// setup loads the configuration and builds a pipeline logging to stderr.
// mutate, if set, adjusts a copy of the loaded configuration first.
func setup(cmd *cobra.Command, mutate func(*config.Root) error) (*orchestrator.Pipeline, error) {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	c := *loaded
	if mutate != nil {
		if err := mutate(&c); err != nil {
			return nil, err
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	return orchestrator.NewPipeline(&c, newLogger(&c, cmd.ErrOrStderr()))
}

func printSummary(w io.Writer, sum *orchestrator.Summary) {
	fmt.Fprintf(w, "run %s\n", sum.RunID)
	fmt.Fprintf(w, "  results:  %s\n", sum.SessionDir)
	fmt.Fprintf(w, "  written:  %d documents\n", len(sum.Documents))
	if len(sum.Skipped) > 0 {
		fmt.Fprintf(w, "  skipped:  %d cells without data\n", len(sum.Skipped))
		for _, t := range sum.Skipped {
			fmt.Fprintf(w, "    %s / %s / %s\n", t.Model, t.Group, t.Style)
		}
	}
}
