package store

import (
	"fmt"
	"slices"
	"time"
)

// RunConfig is the persisted copy of the benchmark configuration.
// It mirrors bench.Config so store does not import bench.
type RunConfig struct {
	Group           string        `json:"group"`
	PixelTiers      []int         `json:"pixelTiers"`
	SampleSize      int           `json:"sampleSize"`
	Significance    float64       `json:"significance"`
	WarmUp          time.Duration `json:"warmUp"`
	MeasurementTime time.Duration `json:"measurementTime"`
	Fill            uint8         `json:"fill"`
	Strategies      []string      `json:"strategies"`
	Baseline        string        `json:"baseline"`
}

// Environment describes the machine a run was taken on.
type Environment struct {
	GOOS          string `json:"goos"`
	GOARCH        string `json:"goarch"`
	GoVersion     string `json:"goVersion"`
	CPU           string `json:"cpu"`
	PhysicalCores int    `json:"physicalCores"`
	LogicalCores  int    `json:"logicalCores"`
	CacheL1D      int    `json:"cacheL1d"`
	CacheL2       int    `json:"cacheL2"`
	CacheL3       int    `json:"cacheL3"`
	Hz            int64  `json:"hz,omitempty"`
	HasAVX2       bool   `json:"hasAvx2"`
	HasASIMD      bool   `json:"hasAsimd"`
}

// Result is the summary of one strategy on one pixel tier.
type Result struct {
	Strategy string `json:"strategy"`
	Pixels   int    `json:"pixels"`
	Bytes    int64  `json:"bytes"`

	// Samples is the number of timing samples, each of Iters calls.
	Samples int `json:"samples"`
	Iters   int `json:"iters"`

	// MedianNs is the median time per call; LoNs and HiNs bound its
	// confidence interval. Confidence is the level that interval actually
	// achieves, which is at least 1-Significance given enough samples.
	MedianNs   float64 `json:"medianNs"`
	LoNs       float64 `json:"loNs"`
	HiNs       float64 `json:"hiNs"`
	Confidence float64 `json:"confidence"`

	// MBps is input throughput at the median, in 1e6 bytes per second.
	MBps float64 `json:"mbps"`

	// Comparison against the run's baseline strategy on the same tier.
	// Empty for the baseline itself.
	Delta       string  `json:"delta,omitempty"`
	P           float64 `json:"p,omitempty"`
	Significant bool    `json:"significant,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

// Report is a complete benchmark run as persisted in report.json.
type Report struct {
	RunID     string      `json:"runId"`
	Timestamp time.Time   `json:"timestamp"`
	Config    RunConfig   `json:"config"`
	Env       Environment `json:"env"`
	Results   []Result    `json:"results"`
}

// ReportInfo is the metadata shown when listing runs.
type ReportInfo struct {
	RunID      string    `json:"runId"`
	Group      string    `json:"group"`
	Timestamp  time.Time `json:"timestamp"`
	PixelTiers []int     `json:"pixelTiers"`
	SampleSize int       `json:"sampleSize"`
	Results    int       `json:"results"`
	CPU        string    `json:"cpu"`
}

// NewReport creates a report stamped with the current time.
func NewReport(runID string, config RunConfig, env Environment, results []Result) *Report {
	return &Report{
		RunID:     runID,
		Timestamp: time.Now(),
		Config:    config,
		Env:       env,
		Results:   results,
	}
}

// ToInfo converts a full Report to ReportInfo (metadata only).
func (r *Report) ToInfo() ReportInfo {
	return ReportInfo{
		RunID:      r.RunID,
		Group:      r.Config.Group,
		Timestamp:  r.Timestamp,
		PixelTiers: r.Config.PixelTiers,
		SampleSize: r.Config.SampleSize,
		Results:    len(r.Results),
		CPU:        r.Env.CPU,
	}
}

// Find returns the result for strategy on the given tier.
func (r *Report) Find(strategy string, pixels int) (Result, bool) {
	for _, res := range r.Results {
		if res.Strategy == strategy && res.Pixels == pixels {
			return res, true
		}
	}
	return Result{}, false
}

// Validate checks if the report has valid data.
func (r *Report) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if r.Config.Group == "" {
		return &ValidationError{Field: "Config.Group", Reason: "cannot be empty"}
	}
	if len(r.Config.PixelTiers) == 0 {
		return &ValidationError{Field: "Config.PixelTiers", Reason: "cannot be empty"}
	}
	for _, p := range r.Config.PixelTiers {
		if p <= 0 {
			return &ValidationError{Field: "Config.PixelTiers", Reason: "must be positive"}
		}
	}
	if r.Config.SampleSize <= 0 {
		return &ValidationError{Field: "Config.SampleSize", Reason: "must be positive"}
	}
	if r.Config.Significance <= 0 || r.Config.Significance >= 1 {
		return &ValidationError{Field: "Config.Significance", Reason: "must be in (0, 1)"}
	}
	if len(r.Results) == 0 {
		return &ValidationError{Field: "Results", Reason: "cannot be empty"}
	}
	for i, res := range r.Results {
		field := fmt.Sprintf("Results[%d]", i)
		if res.Strategy == "" {
			return &ValidationError{Field: field + ".Strategy", Reason: "cannot be empty"}
		}
		if !slices.Contains(r.Config.PixelTiers, res.Pixels) {
			return &ValidationError{
				Field:  field + ".Pixels",
				Reason: fmt.Sprintf("%d is not a configured tier", res.Pixels),
			}
		}
		if res.Bytes != int64(res.Pixels)*2 {
			return &ValidationError{Field: field + ".Bytes", Reason: "must be twice the pixel count"}
		}
		if res.Samples <= 0 {
			return &ValidationError{Field: field + ".Samples", Reason: "must be positive"}
		}
		if res.MedianNs < 0 {
			return &ValidationError{Field: field + ".MedianNs", Reason: "cannot be negative"}
		}
	}
	return nil
}

// ValidationError represents a report validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsComparable checks whether other measured the same workload, so that
// its samples can be compared with this report's.
func (r *Report) IsComparable(other *Report) error {
	if r.Config.Group != other.Config.Group {
		return &CompatibilityError{
			Field:    "Group",
			Expected: r.Config.Group,
			Actual:   other.Config.Group,
		}
	}
	if r.Config.Fill != other.Config.Fill {
		return &CompatibilityError{
			Field:    "Fill",
			Expected: fmt.Sprintf("0x%02x", r.Config.Fill),
			Actual:   fmt.Sprintf("0x%02x", other.Config.Fill),
		}
	}
	if !slices.Equal(r.Config.PixelTiers, other.Config.PixelTiers) {
		return &CompatibilityError{
			Field:    "PixelTiers",
			Expected: fmt.Sprint(r.Config.PixelTiers),
			Actual:   fmt.Sprint(other.Config.PixelTiers),
		}
	}
	return nil
}

// CompatibilityError represents a report compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
