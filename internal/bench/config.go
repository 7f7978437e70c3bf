// Package bench drives the conversion strategies under repeatable
// benchmark conditions and summarizes their throughput.
//
// A run builds one synthetic input per pixel tier, checks every strategy
// against convert.Reference on it, then samples each strategy in turn:
// warm-up first, then SampleSize timed batches whose ns/op values are
// summarized and compared with golang.org/x/perf/benchmath.
package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cwbudde/rggbconv/internal/convert"
	"github.com/cwbudde/rggbconv/internal/store"
)

// DefaultGroup is the benchmark group name used when none is configured.
const DefaultGroup = "rggb10_to_rggb8"

// Config holds the parameters of a benchmark run.
type Config struct {
	Group string

	// PixelTiers lists the input sizes in pixels; each tier's input is
	// twice as many bytes.
	PixelTiers []int

	SampleSize int

	// Significance is the alpha used for baseline comparisons; summaries
	// use a 1-Significance confidence interval.
	Significance float64

	WarmUp time.Duration

	// MeasurementTime is the target total time spent sampling one
	// strategy on one tier.
	MeasurementTime time.Duration

	// Fill is the byte every input is filled with.
	Fill byte

	Strategies []convert.Strategy
	Baseline   convert.Strategy
}

// DefaultConfig returns the configuration of the reference comparison:
// 16 Ki pixels of zeros, 500 samples, significance 0.01.
func DefaultConfig() Config {
	return Config{
		Group:           DefaultGroup,
		PixelTiers:      []int{16 * 1024},
		SampleSize:      500,
		Significance:    0.01,
		WarmUp:          time.Second,
		MeasurementTime: 5 * time.Second,
		Fill:            0x00,
		Strategies:      convert.Strategies(),
		Baseline:        convert.FuncIntSafe,
	}
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid config: " + e.Field + " " + e.Reason
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Group == "" {
		return &ConfigError{Field: "Group", Reason: "cannot be empty"}
	}
	if len(c.PixelTiers) == 0 {
		return &ConfigError{Field: "PixelTiers", Reason: "cannot be empty"}
	}
	seen := make(map[int]bool, len(c.PixelTiers))
	for _, p := range c.PixelTiers {
		if p <= 0 {
			return &ConfigError{Field: "PixelTiers", Reason: fmt.Sprintf("tier %d must be positive", p)}
		}
		if seen[p] {
			return &ConfigError{Field: "PixelTiers", Reason: fmt.Sprintf("tier %d listed twice", p)}
		}
		seen[p] = true
	}
	if c.SampleSize < 2 {
		return &ConfigError{Field: "SampleSize", Reason: "must be at least 2"}
	}
	if c.Significance <= 0 || c.Significance >= 1 {
		return &ConfigError{Field: "Significance", Reason: "must be in (0, 1)"}
	}
	if c.WarmUp < 0 {
		return &ConfigError{Field: "WarmUp", Reason: "cannot be negative"}
	}
	if c.MeasurementTime <= 0 {
		return &ConfigError{Field: "MeasurementTime", Reason: "must be positive"}
	}
	if len(c.Strategies) == 0 {
		return &ConfigError{Field: "Strategies", Reason: "cannot be empty"}
	}
	hasBaseline := false
	listed := make(map[convert.Strategy]bool, len(c.Strategies))
	for _, s := range c.Strategies {
		if !s.Valid() {
			return &ConfigError{Field: "Strategies", Reason: fmt.Sprintf("unknown strategy %d", int(s))}
		}
		if listed[s] {
			return &ConfigError{Field: "Strategies", Reason: s.String() + " listed twice"}
		}
		listed[s] = true
		if s == c.Baseline {
			hasBaseline = true
		}
	}
	if !hasBaseline {
		return &ConfigError{Field: "Baseline", Reason: c.Baseline.String() + " is not among the strategies"}
	}
	return nil
}

// RunConfig converts the configuration to its persisted form.
func (c Config) RunConfig() store.RunConfig {
	names := make([]string, len(c.Strategies))
	for i, s := range c.Strategies {
		names[i] = s.String()
	}
	return store.RunConfig{
		Group:           c.Group,
		PixelTiers:      append([]int(nil), c.PixelTiers...),
		SampleSize:      c.SampleSize,
		Significance:    c.Significance,
		WarmUp:          c.WarmUp,
		MeasurementTime: c.MeasurementTime,
		Fill:            c.Fill,
		Strategies:      names,
		Baseline:        c.Baseline.String(),
	}
}

// fileConfig is the JSON layout of a config file. Durations are strings
// accepted by time.ParseDuration; omitted fields keep their defaults.
type fileConfig struct {
	Group           *string            `json:"group"`
	PixelTiers      []int              `json:"pixelTiers"`
	SampleSize      *int               `json:"sampleSize"`
	Significance    *float64           `json:"significance"`
	WarmUp          *string            `json:"warmUp"`
	MeasurementTime *string            `json:"measurementTime"`
	Fill            *byte              `json:"fill"`
	Strategies      []convert.Strategy `json:"strategies"`
	Baseline        *convert.Strategy  `json:"baseline"`
}

// LoadConfig reads a JSON config file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a JSON configuration on top of DefaultConfig and
// validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if fc.Group != nil {
		cfg.Group = *fc.Group
	}
	if fc.PixelTiers != nil {
		cfg.PixelTiers = fc.PixelTiers
	}
	if fc.SampleSize != nil {
		cfg.SampleSize = *fc.SampleSize
	}
	if fc.Significance != nil {
		cfg.Significance = *fc.Significance
	}
	if fc.WarmUp != nil {
		d, err := time.ParseDuration(*fc.WarmUp)
		if err != nil {
			return cfg, &ConfigError{Field: "WarmUp", Reason: err.Error()}
		}
		cfg.WarmUp = d
	}
	if fc.MeasurementTime != nil {
		d, err := time.ParseDuration(*fc.MeasurementTime)
		if err != nil {
			return cfg, &ConfigError{Field: "MeasurementTime", Reason: err.Error()}
		}
		cfg.MeasurementTime = d
	}
	if fc.Fill != nil {
		cfg.Fill = *fc.Fill
	}
	if fc.Strategies != nil {
		cfg.Strategies = fc.Strategies
	}
	if fc.Baseline != nil {
		cfg.Baseline = *fc.Baseline
	}

	return cfg, cfg.Validate()
}
