package bench

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/rggbconv/internal/convert"
	"github.com/cwbudde/rggbconv/internal/store"
)

// quickConfig returns a configuration that runs in a few milliseconds.
func quickConfig() Config {
	cfg := DefaultConfig()
	cfg.PixelTiers = []int{64, 256}
	cfg.SampleSize = 5
	cfg.WarmUp = time.Millisecond
	cfg.MeasurementTime = 5 * time.Millisecond
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRunner_InvalidConfig(t *testing.T) {
	cfg := quickConfig()
	cfg.SampleSize = 0

	_, err := NewRunner(cfg)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
}

func TestRunner_Run(t *testing.T) {
	cfg := quickConfig()

	var entries []store.SampleEntry
	runner, err := NewRunner(cfg,
		WithLogger(discardLogger()),
		WithSampleFunc(func(e store.SampleEntry) error {
			entries = append(entries, e)
			return nil
		}),
	)
	require.NoError(t, err)

	run, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, runner.ID(), run.ID)
	_, err = uuid.Parse(run.ID)
	require.NoError(t, err)
	require.Len(t, run.Measurements, len(cfg.PixelTiers)*len(cfg.Strategies))
	require.Len(t, entries, len(run.Measurements)*cfg.SampleSize)
	require.False(t, run.Started.IsZero())
	require.NotEmpty(t, run.Env.GOOS)

	// Tiers outer, strategies inner, in configuration order.
	i := 0
	for _, pixels := range cfg.PixelTiers {
		for _, s := range cfg.Strategies {
			m := run.Measurements[i]
			require.Equal(t, s, m.Strategy)
			require.Equal(t, pixels, m.Pixels)
			require.Equal(t, int64(pixels*2), m.Bytes())
			require.Len(t, m.NsPerOp, cfg.SampleSize)
			i++
		}
	}

	require.Equal(t, "func_flt_safe", entries[0].Strategy)
	require.Equal(t, 64, entries[0].Pixels)
}

func TestRunner_SampleFuncError(t *testing.T) {
	boom := errors.New("disk full")
	runner, err := NewRunner(quickConfig(),
		WithLogger(discardLogger()),
		WithSampleFunc(func(store.SampleEntry) error { return boom }),
	)
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.True(t, errors.Is(err, boom))
}

func TestRunner_Cancelled(t *testing.T) {
	runner, err := NewRunner(quickConfig(), WithLogger(discardLogger()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = runner.Run(ctx)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestRunner_SummarizeValidates(t *testing.T) {
	cfg := quickConfig()
	cfg.Strategies = []convert.Strategy{convert.FuncIntSafe, convert.ProcIntUnsafe2}

	runner, err := NewRunner(cfg, WithLogger(discardLogger()))
	require.NoError(t, err)
	run, err := runner.Run(context.Background())
	require.NoError(t, err)

	report := Summarize(run)
	require.NoError(t, report.Validate())
	require.Len(t, report.Results, 4)
	require.Equal(t, run.Started, report.Timestamp)
}

func TestRunner_WithRunID(t *testing.T) {
	cfg := quickConfig()
	cfg.PixelTiers = []int{16}
	cfg.Strategies = []convert.Strategy{convert.FuncIntSafe}

	var entries []store.SampleEntry
	runner, err := NewRunner(cfg,
		WithRunID("fixed-id"),
		WithLogger(discardLogger()),
		WithSampleFunc(func(e store.SampleEntry) error {
			entries = append(entries, e)
			return nil
		}),
	)
	require.NoError(t, err)
	require.Equal(t, "fixed-id", runner.ID())

	run, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fixed-id", run.ID)
	require.Equal(t, "fixed-id", Summarize(run).RunID)
	require.Len(t, entries, cfg.SampleSize)
}
