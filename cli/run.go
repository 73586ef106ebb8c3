package cli

import (
	"github.com/spf13/cobra"

	"github.com/maastricht-university/asr-bias/config"
)

var (
	runW1 float64
	runW2 float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full bias pipeline",
	Long: `Loads every configured cell, computes error rates, performance
differences against min and mean baselines, WPB, IWPB and the weight sweep,
and writes all result documents into a new session directory.

Examples:
  asr-bias run --config config/dev/config.json
  asr-bias run --w1 0.7 --w2 0.3 -v`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Float64Var(&runW1, "w1", 0, "weight of the relative difference term (overrides bias.w1)")
	runCmd.Flags().Float64Var(&runW2, "w2", 0, "weight of the base rate term (overrides bias.w2)")
}

func runRun(cmd *cobra.Command, args []string) error {
	p, err := setup(cmd, func(c *config.Root) error {
		if cmd.Flags().Changed("w1") {
			c.Bias.W1 = runW1
		}
		if cmd.Flags().Changed("w2") {
			c.Bias.W2 = runW2
		}
		return nil
	})
	if err != nil {
		return err
	}
	sum, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), sum)
	return nil
}
