package bench

import (
	"context"
	"time"

	"github.com/cwbudde/rggbconv/internal/convert"
)

// Input returns the synthetic input for a tier: pixels 16-bit words, every
// byte set to fill.
func Input(pixels int, fill byte) []byte {
	in := make([]byte, pixels*2)
	if fill != 0 {
		for i := range in {
			in[i] = fill
		}
	}
	return in
}

// Samples holds the timing samples of one strategy on one input.
type Samples struct {
	// Iters is the number of calls timed together in each sample.
	Iters int

	// NsPerOp has one entry per sample.
	NsPerOp []float64
}

// Sampler times a conversion function. A Sampler must not be shared
// between goroutines.
type Sampler struct {
	WarmUp          time.Duration
	MeasurementTime time.Duration
	SampleSize      int

	// sink keeps conversion results reachable so calls are not optimized
	// away.
	sink []byte
}

// NewSampler returns a sampler for the timing parameters of cfg.
func NewSampler(cfg Config) *Sampler {
	return &Sampler{
		WarmUp:          cfg.WarmUp,
		MeasurementTime: cfg.MeasurementTime,
		SampleSize:      cfg.SampleSize,
	}
}

func (s *Sampler) runBatch(fn convert.Func, input []byte, iters int) time.Duration {
	start := time.Now()
	for i := 0; i < iters; i++ {
		s.sink = fn(input)
	}
	return time.Since(start)
}

// Measure warms fn up, then takes SampleSize samples of fn(input).
//
// Warm-up runs batches of doubling size until WarmUp has elapsed (at least
// one call). The observed rate sets the per-sample iteration count so the
// samples together take about MeasurementTime. ctx is checked between
// samples.
func (s *Sampler) Measure(ctx context.Context, fn convert.Func, input []byte) (Samples, error) {
	var (
		warmIters   int
		warmElapsed time.Duration
	)
	for batch := 1; ; batch *= 2 {
		if err := ctx.Err(); err != nil {
			return Samples{}, err
		}
		warmElapsed += s.runBatch(fn, input, batch)
		warmIters += batch
		if warmElapsed >= s.WarmUp {
			break
		}
	}

	nsPerOp := float64(warmElapsed.Nanoseconds()) / float64(warmIters)
	if nsPerOp < 1 {
		nsPerOp = 1
	}
	perSample := float64(s.MeasurementTime.Nanoseconds()) / float64(s.SampleSize)
	iters := int(perSample / nsPerOp)
	if iters < 1 {
		iters = 1
	}

	out := Samples{
		Iters:   iters,
		NsPerOp: make([]float64, 0, s.SampleSize),
	}
	for i := 0; i < s.SampleSize; i++ {
		if err := ctx.Err(); err != nil {
			return Samples{}, err
		}
		elapsed := s.runBatch(fn, input, iters)
		out.NsPerOp = append(out.NsPerOp, float64(elapsed.Nanoseconds())/float64(iters))
	}
	return out, nil
}
