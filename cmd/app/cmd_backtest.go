package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest both detectors over one pair",
	Long: `Replay the percentile (M1) and standard-error (M2) detectors over
Y regressed on X and write every closed trade to
backtest_result_<date><Y>_<X>.csv.

Examples:
  pairscope backtest --y TCS --x INFY
  pairscope backtest --y TCS --x INFY --policy scan
  pairscope backtest                             # prompts for both symbols`,
	RunE: runBacktest,
}

var backtestBatchCmd = &cobra.Command{
	Use:   "backtest-batch",
	Short: "Backtest the pair list and report efficiencies",
	Long: `Backtest every pair of backtest.pairs_file, capped at
backtest.max_pairs, and write both efficiencies to
backtest_result_<date>.csv. Pairs that fail are recorded as ERROR rows.`,
	RunE: runBacktestBatch,
}

var (
	backtestY      string
	backtestX      string
	backtestPolicy string
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	rootCmd.AddCommand(backtestBatchCmd)

	backtestCmd.Flags().StringVar(&backtestY, "y", "", "Dependent symbol")
	backtestCmd.Flags().StringVar(&backtestX, "x", "", "Independent symbol")
	backtestCmd.Flags().StringVar(&backtestPolicy, "policy", "", "M2 threshold policy: bounded or scan (default backtest.m2_policy)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	y, err := p.orAsk(backtestY, "Enter Symbol for 1st company (Y): ")
	if err != nil {
		return err
	}
	x, err := p.orAsk(backtestX, "Enter Symbol for 2nd company (X): ")
	if err != nil {
		return err
	}
	policy := backtestPolicy
	if policy == "" {
		policy = cfg.Backtest.M2Policy
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()
	report, path, err := app.BacktestPair(ctx, y, x, policy)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, s := range report.Summaries {
		fmt.Fprintf(out, "%s efficiency: %s (%d trades)\n", s.Detector, s.Efficiency, s.TradeCount)
	}
	fmt.Fprintln(out, path)
	return nil
}

func runBacktestBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	path, err := app.BacktestBatch(ctx)
	if err != nil {
		return fmt.Errorf("backtest batch: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
