package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"PairScope/internal/domain/models"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Regress one pair and report its spread",
	Long: `Fit both orientations of a pair, keep the one with the smaller
intercept error ratio and print the regression and ADF summary.

Examples:
  pairscope analyze --first TCS --second INFY
  pairscope analyze                              # prompts for both symbols`,
	RunE: runAnalyze,
}

var (
	analyzeFirst  string
	analyzeSecond string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeFirst, "first", "", "First symbol")
	analyzeCmd.Flags().StringVar(&analyzeSecond, "second", "", "Second symbol")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	first, err := p.orAsk(analyzeFirst, "Enter Symbol for 1st company: ")
	if err != nil {
		return err
	}
	second, err := p.orAsk(analyzeSecond, "Enter Symbol for 2nd company: ")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()
	a, err := app.Analyze(ctx, first, second)
	if err != nil {
		return err
	}
	return printAnalysis(cmd.OutOrStdout(), a)
}

func printAnalysis(out io.Writer, a *models.PairAnalysis) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Pair\t%s\n", a.Pair)
	fmt.Fprintf(w, "Y / X\t%s / %s\n", a.YSymbol, a.XSymbol)
	fmt.Fprintf(w, "Error ratios\t%.6f / %.6f\n", a.ErrRatios[0], a.ErrRatios[1])
	fmt.Fprintf(w, "Intercept\t%.6f\n", a.Intercept)
	fmt.Fprintf(w, "Slope\t%.6f\n", a.Slope)
	fmt.Fprintf(w, "Residual stdev\t%.6f\n", a.ResidualStdev)
	fmt.Fprintf(w, "Latest std_err\t%.6f\n", a.LatestStdErr)
	fmt.Fprintf(w, "ADF statistic\t%.6f\n", a.ADF.Statistic)
	fmt.Fprintf(w, "ADF p-value\t%.6f\n", a.ADF.PValue)
	fmt.Fprintf(w, "ADF used lag / nobs\t%d / %d\n", a.ADF.UsedLag, a.ADF.NObs)

	levels := make([]string, 0, len(a.ADF.CriticalValues))
	for k := range a.ADF.CriticalValues {
		levels = append(levels, k)
	}
	sort.Strings(levels)
	for _, k := range levels {
		fmt.Fprintf(w, "ADF critical %s\t%.6f\n", k, a.ADF.CriticalValues[k])
	}
	if !a.AsOf.IsZero() {
		fmt.Fprintf(w, "As of\t%s\n", a.AsOf.Format("2006-01-02"))
	}
	return w.Flush()
}
