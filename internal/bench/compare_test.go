package bench

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/rggbconv/internal/store"
)

func TestCompareSamples(t *testing.T) {
	before := map[store.SampleKey][]float64{
		{Strategy: "func_int_safe", Pixels: 64}:   spread(100, 21),
		{Strategy: "proc_int_unsafe", Pixels: 64}: spread(100, 21),
		{Strategy: "proc_flt_safe", Pixels: 64}:   spread(100, 21),
	}
	after := map[store.SampleKey][]float64{
		{Strategy: "func_int_safe", Pixels: 64}:   spread(100, 21),
		{Strategy: "proc_int_unsafe", Pixels: 64}: spread(200, 21),
		{Strategy: "proc_int_safe", Pixels: 64}:   spread(100, 21),
	}

	cmps, missing := CompareSamples(before, after, 0.05)
	require.Len(t, cmps, 2)
	require.Equal(t, []store.SampleKey{
		{Strategy: "proc_flt_safe", Pixels: 64},
		{Strategy: "proc_int_safe", Pixels: 64},
	}, missing)

	require.Equal(t, "func_int_safe", cmps[0].Key.Strategy)
	require.False(t, cmps[0].Significant)
	require.Equal(t, "~", cmps[0].Delta)

	slower := cmps[1]
	require.Equal(t, "proc_int_unsafe", slower.Key.Strategy)
	require.Equal(t, 110.0, slower.OldMedianNs)
	require.Equal(t, 210.0, slower.NewMedianNs)
	require.True(t, slower.Significant)
	require.Less(t, slower.P, 0.05)
	require.Contains(t, slower.Delta, "+")

	// Inputs are left in their original order.
	require.Equal(t, spread(200, 21), after[store.SampleKey{Strategy: "proc_int_unsafe", Pixels: 64}])
}

func TestCompareSamples_OrderedByStrategyThenTier(t *testing.T) {
	runs := map[store.SampleKey][]float64{
		{Strategy: "b", Pixels: 256}: spread(1, 5),
		{Strategy: "a", Pixels: 256}: spread(1, 5),
		{Strategy: "b", Pixels: 64}:  spread(1, 5),
		{Strategy: "a", Pixels: 64}:  spread(1, 5),
	}

	cmps, missing := CompareSamples(runs, runs, 0.01)
	require.Empty(t, missing)

	var keys []store.SampleKey
	for _, c := range cmps {
		keys = append(keys, c.Key)
	}
	require.Equal(t, []store.SampleKey{
		{Strategy: "a", Pixels: 64},
		{Strategy: "a", Pixels: 256},
		{Strategy: "b", Pixels: 64},
		{Strategy: "b", Pixels: 256},
	}, keys)
}
