package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/rggbconv/internal/bench"
	"github.com/cwbudde/rggbconv/internal/store"
)

var (
	compareDataDir string
	compareAlpha   float64
)

var compareCmd = &cobra.Command{
	Use:   "compare <old-run> <new-run>",
	Short: "Compare the raw samples of two saved runs",
	Long: `Compares every strategy and tier measured in both runs with a
Mann-Whitney U test and prints the change in median time.
The runs must have measured the same group, fill byte and tiers.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareDataDir, "data-dir", "./data", "Base directory for run storage")
	compareCmd.Flags().Float64Var(&compareAlpha, "alpha", 0, "Significance level (default: the old run's)")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	runStore, err := store.NewFSStore(compareDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	oldReport, err := runStore.LoadReport(args[0])
	if err != nil {
		return err
	}
	newReport, err := runStore.LoadReport(args[1])
	if err != nil {
		return err
	}
	if err := oldReport.IsComparable(newReport); err != nil {
		return fmt.Errorf("runs are not comparable: %w", err)
	}

	alpha := compareAlpha
	if alpha == 0 {
		alpha = oldReport.Config.Significance
	}
	if alpha <= 0 || alpha >= 1 {
		return fmt.Errorf("alpha must be in (0, 1), got %g", alpha)
	}

	oldSamples, err := store.LoadSamples(runStore.BaseDir(), oldReport.RunID)
	if err != nil {
		return fmt.Errorf("failed to load samples of %s: %w", oldReport.RunID, err)
	}
	newSamples, err := store.LoadSamples(runStore.BaseDir(), newReport.RunID)
	if err != nil {
		return fmt.Errorf("failed to load samples of %s: %w", newReport.RunID, err)
	}

	cmps, missing := bench.CompareSamples(oldSamples, newSamples, alpha)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "old: %s (%s)\nnew: %s (%s)\nalpha: %g\n\n",
		oldReport.RunID, oldReport.Env.CPU, newReport.RunID, newReport.Env.CPU, alpha)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tPIXELS\tOLD\tNEW\tDELTA\tP")
	fmt.Fprintln(w, "--------\t------\t---\t---\t-----\t-")
	for _, c := range cmps {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%.3f\n",
			c.Key.Strategy,
			c.Key.Pixels,
			formatNs(c.OldMedianNs),
			formatNs(c.NewMedianNs),
			c.Delta,
			c.P,
		)
	}
	w.Flush()

	for _, c := range cmps {
		for _, warning := range c.Warnings {
			fmt.Fprintf(out, "warning: %s/%d: %s\n", c.Key.Strategy, c.Key.Pixels, warning)
		}
	}
	for _, key := range missing {
		fmt.Fprintf(out, "only in one run: %s/%d\n", key.Strategy, key.Pixels)
	}
	return nil
}
