package bench

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/rggbconv/internal/convert"
	"github.com/cwbudde/rggbconv/internal/store"
)

// Measurement is the raw outcome of sampling one strategy on one tier.
type Measurement struct {
	Strategy convert.Strategy
	Pixels   int
	Samples
}

// Bytes is the input size of the measurement's tier.
func (m Measurement) Bytes() int64 {
	return int64(m.Pixels) * 2
}

// Run is a completed benchmark run.
type Run struct {
	ID           string
	Config       Config
	Env          store.Environment
	Started      time.Time
	Measurements []Measurement
}

// SampleFunc receives every sample as it is taken.
type SampleFunc func(store.SampleEntry) error

// Runner executes a benchmark run.
type Runner struct {
	id       string
	cfg      Config
	sampler  *Sampler
	logger   *slog.Logger
	onSample SampleFunc
}

// Option configures a Runner.
type Option func(*Runner)

// ID returns the ID the run will be reported under.
func (r *Runner) ID() string {
	return r.id
}

// WithRunID overrides the generated run ID.
func WithRunID(id string) Option {
	return func(r *Runner) { r.id = id }
}

// WithLogger sets the logger used for progress messages.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithSampleFunc registers a callback for each sample, e.g. a
// store.SampleWriter.
func WithSampleFunc(fn SampleFunc) Option {
	return func(r *Runner) { r.onSample = fn }
}

// NewRunner validates cfg and returns a runner for it. The runner is
// assigned a fresh run ID.
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		id:      uuid.New().String(),
		cfg:     cfg,
		sampler: NewSampler(cfg),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run samples every configured strategy on every tier, one after another
// on the calling goroutine. Each tier is preflighted first: a strategy
// that disagrees with convert.Reference aborts the run.
func (r *Runner) Run(ctx context.Context) (*Run, error) {
	run := &Run{
		ID:      r.id,
		Config:  r.cfg,
		Env:     CaptureEnvironment(),
		Started: time.Now(),
	}

	r.logger.Info("Starting benchmark run",
		"runID", run.ID,
		"group", r.cfg.Group,
		"tiers", r.cfg.PixelTiers,
		"strategies", len(r.cfg.Strategies),
		"samples", r.cfg.SampleSize,
		"cpu", run.Env.CPU,
	)

	for _, pixels := range r.cfg.PixelTiers {
		input := Input(pixels, r.cfg.Fill)

		if err := Preflight(r.cfg.Strategies, input); err != nil {
			return nil, fmt.Errorf("preflight failed for %d pixels: %w", pixels, err)
		}
		if err := Preflight(r.cfg.Strategies, Pattern(pixels)); err != nil {
			return nil, fmt.Errorf("preflight failed for %d pixels: %w", pixels, err)
		}

		for _, s := range r.cfg.Strategies {
			samples, err := r.sampler.Measure(ctx, s.Func(), input)
			if err != nil {
				return nil, fmt.Errorf("sampling %s/%d: %w", s, pixels, err)
			}

			m := Measurement{Strategy: s, Pixels: pixels, Samples: samples}
			if err := r.emit(m); err != nil {
				return nil, err
			}
			run.Measurements = append(run.Measurements, m)

			r.logger.Debug("Strategy sampled",
				"strategy", s.String(),
				"pixels", pixels,
				"iters", samples.Iters,
			)
		}
	}

	r.logger.Info("Benchmark run complete", "elapsed", time.Since(run.Started))
	return run, nil
}

func (r *Runner) emit(m Measurement) error {
	if r.onSample == nil {
		return nil
	}
	now := time.Now()
	for _, ns := range m.NsPerOp {
		entry := store.SampleEntry{
			Strategy:  m.Strategy.String(),
			Pixels:    m.Pixels,
			Iters:     m.Iters,
			NsPerOp:   ns,
			Timestamp: now,
		}
		if err := r.onSample(entry); err != nil {
			return fmt.Errorf("failed to record sample: %w", err)
		}
	}
	return nil
}
