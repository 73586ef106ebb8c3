package cli

import (
	"github.com/spf13/cobra"

	"github.com/maastricht-university/asr-bias/rates"
)

var statsMetrics []string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise per-speaker error rates",
	Long: `Writes only the error_rate_statistics document.

Metrics:
  median, std, max, min, mean

Examples:
  asr-bias stats
  asr-bias stats --metrics median,mean`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringSliceVarP(&statsMetrics, "metrics", "m", []string{"median", "std", "max", "min"}, "statistics to compute")
}

func runStats(cmd *cobra.Command, args []string) error {
	metrics, err := rates.ParseMetrics(statsMetrics)
	if err != nil {
		return err
	}
	p, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	sum, err := p.Statistics(cmd.Context(), metrics)
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), sum)
	return nil
}
