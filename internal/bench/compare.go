package bench

import (
	"cmp"
	"slices"

	"golang.org/x/perf/benchmath"

	"github.com/cwbudde/rggbconv/internal/store"
)

// SampleComparison is the comparison of one strategy on one tier across
// two runs.
type SampleComparison struct {
	Key store.SampleKey

	OldMedianNs float64
	NewMedianNs float64

	// Delta is the formatted median change, "~" when not significant.
	Delta       string
	P           float64
	Significant bool
	Warnings    []string
}

// CompareSamples compares every strategy/tier present in both runs with a
// Mann-Whitney U test at the given alpha. Keys found in only one run are
// returned in missing. Results are ordered by strategy, then tier.
func CompareSamples(before, after map[store.SampleKey][]float64, alpha float64) (cmps []SampleComparison, missing []store.SampleKey) {
	thresholds := &benchmath.Thresholds{CompareAlpha: alpha}

	for key, oldValues := range before {
		newValues, ok := after[key]
		if !ok {
			missing = append(missing, key)
			continue
		}
		a := newSample(oldValues, thresholds)
		b := newSample(newValues, thresholds)

		oldSum := benchmath.AssumeNothing.Summary(a, 1-alpha)
		newSum := benchmath.AssumeNothing.Summary(b, 1-alpha)
		c := benchmath.AssumeNothing.Compare(a, b)

		warnings := warningStrings(c.Warnings)
		cmps = append(cmps, SampleComparison{
			Key:         key,
			OldMedianNs: finite(oldSum.Center),
			NewMedianNs: finite(newSum.Center),
			Delta:       c.FormatDelta(oldSum.Center, newSum.Center),
			P:           c.P,
			Significant: c.P < c.Alpha,
			Warnings:    warnings,
		})
	}
	for key := range after {
		if _, ok := before[key]; !ok {
			missing = append(missing, key)
		}
	}

	slices.SortFunc(cmps, func(x, y SampleComparison) int {
		return compareKeys(x.Key, y.Key)
	})
	slices.SortFunc(missing, compareKeys)
	return cmps, missing
}

func compareKeys(x, y store.SampleKey) int {
	return cmp.Or(cmp.Compare(x.Strategy, y.Strategy), cmp.Compare(x.Pixels, y.Pixels))
}
