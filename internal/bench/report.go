package bench

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"golang.org/x/perf/benchfmt"
	"golang.org/x/perf/benchmath"

	"github.com/cwbudde/rggbconv/internal/convert"
	"github.com/cwbudde/rggbconv/internal/store"
)

// BenchmarkName is the benchfmt name prefix of every measurement.
const BenchmarkName = "RGGB10ToRGGB8"

// Summarize turns a run into a report under the run's ID. Each
// measurement gets a median with a 1-Significance confidence interval,
// and every non-baseline strategy is compared with the baseline on the
// same tier.
func Summarize(run *Run) *store.Report {
	thresholds := &benchmath.Thresholds{CompareAlpha: run.Config.Significance}
	confidence := 1 - run.Config.Significance

	baselines := make(map[int]*benchmath.Sample)
	for _, m := range run.Measurements {
		if m.Strategy == run.Config.Baseline {
			baselines[m.Pixels] = newSample(m.NsPerOp, thresholds)
		}
	}

	results := make([]store.Result, 0, len(run.Measurements))
	for _, m := range run.Measurements {
		sample := newSample(m.NsPerOp, thresholds)
		sum := benchmath.AssumeNothing.Summary(sample, confidence)

		res := store.Result{
			Strategy:   m.Strategy.String(),
			Pixels:     m.Pixels,
			Bytes:      m.Bytes(),
			Samples:    len(m.NsPerOp),
			Iters:      m.Iters,
			MedianNs:   finite(sum.Center),
			LoNs:       finite(sum.Lo),
			HiNs:       finite(sum.Hi),
			Confidence: sum.Confidence,
			MBps:       throughput(m.Bytes(), sum.Center),
			Warnings:   warningStrings(sum.Warnings),
		}

		if base, ok := baselines[m.Pixels]; ok && m.Strategy != run.Config.Baseline {
			cmp := benchmath.AssumeNothing.Compare(base, sample)
			baseSum := benchmath.AssumeNothing.Summary(base, confidence)
			res.Delta = cmp.FormatDelta(baseSum.Center, sum.Center)
			res.P = cmp.P
			res.Significant = cmp.P < cmp.Alpha
			res.Warnings = append(res.Warnings, warningStrings(cmp.Warnings)...)
		}

		results = append(results, res)
	}

	report := store.NewReport(run.ID, run.Config.RunConfig(), run.Env, results)
	report.Timestamp = run.Started
	return report
}

// newSample builds a benchmath sample without disturbing the caller's
// slice; benchmath sorts the values it is given.
func newSample(values []float64, t *benchmath.Thresholds) *benchmath.Sample {
	return benchmath.NewSample(slices.Clone(values), t)
}

// throughput returns bytes per ns scaled to 1e6 bytes per second.
func throughput(bytes int64, nsPerOp float64) float64 {
	if nsPerOp <= 0 || math.IsInf(nsPerOp, 0) || math.IsNaN(nsPerOp) {
		return 0
	}
	return float64(bytes) / nsPerOp * 1e3
}

// finite maps the infinite interval bounds benchmath reports for tiny
// samples to 0, which encoding/json can represent.
func finite(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

func warningStrings(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

// ResultName is the benchfmt name of one measurement, without the
// "Benchmark" prefix.
func ResultName(s convert.Strategy, pixels int) string {
	return BenchmarkName + "/" + s.String() + "/" + strconv.Itoa(pixels)
}

// WriteBenchfmt writes every sample of the run in the Go benchmark
// format, one result line per sample, for use with benchstat.
func (run *Run) WriteBenchfmt(w io.Writer) error {
	bw := benchfmt.NewWriter(w)
	configs := []benchfmt.Config{
		{Key: "goos", Value: []byte(run.Env.GOOS), File: true},
		{Key: "goarch", Value: []byte(run.Env.GOARCH), File: true},
		{Key: "cpu", Value: []byte(run.Env.CPU), File: true},
		{Key: "pkg", Value: []byte("github.com/cwbudde/rggbconv/internal/convert"), File: true},
		{Key: "fill", Value: []byte(fmt.Sprintf("0x%02x", run.Config.Fill)), File: true},
	}

	for _, m := range run.Measurements {
		name := benchfmt.Name(ResultName(m.Strategy, m.Pixels))
		for _, ns := range m.NsPerOp {
			res := &benchfmt.Result{
				Config: configs,
				Name:   name,
				Iters:  m.Iters,
				Values: []benchfmt.Value{
					{Value: ns, Unit: "ns/op"},
					{Value: throughput(m.Bytes(), ns), Unit: "MB/s"},
				},
			}
			if err := bw.Write(res); err != nil {
				return fmt.Errorf("failed to write benchmark result: %w", err)
			}
		}
	}
	return nil
}
