package cli

import (
	"github.com/spf13/cobra"
)

var simulateSteps int

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Sweep the IWPB weights",
	Long: `Evaluates total IWPB per model for evenly spaced w1 in [0,1] with
w2 = 1-w1 and writes only the iwpb_simulation document.

Examples:
  asr-bias simulate
  asr-bias simulate --steps 50`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().IntVar(&simulateSteps, "steps", 20, "number of w1 values, at least 2")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	p, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	sum, err := p.Simulate(cmd.Context(), simulateSteps)
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), sum)
	return nil
}
