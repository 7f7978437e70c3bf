package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/rggbconv/internal/bench"
	"github.com/cwbudde/rggbconv/internal/convert"
	"github.com/cwbudde/rggbconv/internal/store"
)

var (
	configPath      string
	pixelTiers      []int
	sampleSize      int
	significance    float64
	warmUp          time.Duration
	measurementTime time.Duration
	fill            uint8
	strategyNames   []string
	baselineName    string
	benchDataDir    string
	saveRun         bool
	benchfmtPath    string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark the conversion strategies",
	Long: `Verifies every strategy against the reference conversion, then samples
each one on synthetic inputs and prints median time, confidence interval,
throughput and the comparison with the baseline strategy.`,
	RunE: runBench,
}

func init() {
	defaults := bench.DefaultConfig()

	benchCmd.Flags().StringVar(&configPath, "config", "", "JSON config file (flags override its values)")
	benchCmd.Flags().IntSliceVar(&pixelTiers, "pixels", defaults.PixelTiers, "Input sizes in pixels")
	benchCmd.Flags().IntVar(&sampleSize, "samples", defaults.SampleSize, "Samples per strategy and tier")
	benchCmd.Flags().Float64Var(&significance, "significance", defaults.Significance, "Significance level for comparisons")
	benchCmd.Flags().DurationVar(&warmUp, "warm-up", defaults.WarmUp, "Warm-up time per strategy and tier")
	benchCmd.Flags().DurationVar(&measurementTime, "measure", defaults.MeasurementTime, "Measurement time per strategy and tier")
	benchCmd.Flags().Uint8Var(&fill, "fill", defaults.Fill, "Byte value the inputs are filled with")
	benchCmd.Flags().StringSliceVar(&strategyNames, "strategy", nil, "Strategies to run (default all)")
	benchCmd.Flags().StringVar(&baselineName, "baseline", defaults.Baseline.String(), "Baseline strategy")
	benchCmd.Flags().StringVar(&benchDataDir, "data-dir", "./data", "Base directory for run storage")
	benchCmd.Flags().BoolVar(&saveRun, "save", false, "Persist the report and raw samples")
	benchCmd.Flags().StringVar(&benchfmtPath, "benchfmt", "", "Write samples in Go benchmark format to this file")

	rootCmd.AddCommand(benchCmd)
}

// benchConfig builds the run configuration: defaults, then the config
// file, then any flag the user set explicitly.
func benchConfig(cmd *cobra.Command) (bench.Config, error) {
	cfg := bench.DefaultConfig()
	if configPath != "" {
		loaded, err := bench.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("pixels") {
		cfg.PixelTiers = pixelTiers
	}
	if flags.Changed("samples") {
		cfg.SampleSize = sampleSize
	}
	if flags.Changed("significance") {
		cfg.Significance = significance
	}
	if flags.Changed("warm-up") {
		cfg.WarmUp = warmUp
	}
	if flags.Changed("measure") {
		cfg.MeasurementTime = measurementTime
	}
	if flags.Changed("fill") {
		cfg.Fill = fill
	}
	if flags.Changed("strategy") {
		strategies, err := parseStrategies(strategyNames)
		if err != nil {
			return cfg, err
		}
		cfg.Strategies = strategies
	}
	if flags.Changed("baseline") {
		s, err := convert.ParseStrategy(baselineName)
		if err != nil {
			return cfg, err
		}
		cfg.Baseline = s
	}

	return cfg, cfg.Validate()
}

func parseStrategies(names []string) ([]convert.Strategy, error) {
	out := make([]convert.Strategy, 0, len(names))
	for _, name := range names {
		s, err := convert.ParseStrategy(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := benchConfig(cmd)
	if err != nil {
		return err
	}

	opts := []bench.Option{bench.WithLogger(slog.Default())}

	var (
		fsStore *store.FSStore
		samples *store.SampleWriter
	)
	if saveRun {
		fsStore, err = store.NewFSStore(benchDataDir)
		if err != nil {
			return fmt.Errorf("failed to create run store: %w", err)
		}
		opts = append(opts, bench.WithSampleFunc(func(e store.SampleEntry) error {
			return samples.Write(e)
		}))
	}

	runner, err := bench.NewRunner(cfg, opts...)
	if err != nil {
		return err
	}
	if saveRun {
		samples, err = store.NewSampleWriter(fsStore.BaseDir(), runner.ID())
		if err != nil {
			return err
		}
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	run, err := runner.Run(ctx)
	if err != nil {
		if saveRun {
			discardRun(fsStore, samples, runner.ID())
		}
		return fmt.Errorf("benchmark failed: %w", err)
	}
	report := bench.Summarize(run)

	printReport(cmd.OutOrStdout(), report)

	if saveRun {
		if err := samples.Close(); err != nil {
			discardRun(fsStore, nil, report.RunID)
			return err
		}
		if err := fsStore.SaveReport(report.RunID, report); err != nil {
			discardRun(fsStore, nil, report.RunID)
			return fmt.Errorf("failed to save report: %w", err)
		}
		slog.Info("Run saved", "runID", report.RunID, "dir", fsStore.RunDir(report.RunID))
		fmt.Fprintf(cmd.OutOrStdout(), "\nSaved run %s\n", report.RunID)
	}

	if benchfmtPath != "" {
		if err := writeBenchfmt(run, benchfmtPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", benchfmtPath)
	}

	return nil
}

// discardRun closes the sample writer, if any, and removes the run
// directory of a run that will not get a report.
func discardRun(fsStore *store.FSStore, samples *store.SampleWriter, runID string) {
	if samples != nil {
		samples.Close()
	}
	if err := fsStore.DeleteReport(runID); err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Warn("Failed to remove partial run", "runID", runID, "error", err)
	}
}

func writeBenchfmt(run *bench.Run, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create benchmark file: %w", err)
	}
	if err := run.WriteBenchfmt(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
