package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan every pair of a symbol universe for signals",
	Long: `Regress every 2-combination of the symbol universe, capped at
batch.max_pairs, and write the latest M1/M2 signals to batch_result_<date>.csv.
Pairs that fail are recorded as ERROR rows.

Examples:
  pairscope scan                                 # symbols from batch.symbols_file
  pairscope scan --symbols TCS,INFY,WIPRO`,
	RunE: runScan,
}

var scanSymbols []string

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringSliceVar(&scanSymbols, "symbols", nil, "Symbols to scan instead of the universe file")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	path, err := app.Scan(ctx, scanSymbols)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
