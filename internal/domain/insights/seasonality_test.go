package insights

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectSeasonalityInsufficientOrders(t *testing.T) {
	series := []MonthPoint{
		{Month: "2024-01", Value: 100, Count: 10},
		{Month: "2024-02", Value: 120, Count: 19},
	}

	_, ok := DetectSeasonality(series)
	require.False(t, ok)

	_, ok = DetectSeasonality(nil)
	require.False(t, ok)
}

func TestDetectSeasonalityIndicesAndExtremes(t *testing.T) {
	series := []MonthPoint{
		{Month: "2024-01", Value: 100, Count: 10},
		{Month: "2024-02", Value: 200, Count: 10},
		{Month: "2024-03", Value: 300, Count: 10},
	}

	summary, ok := DetectSeasonality(series)
	require.True(t, ok)
	// Overall mean is 200, so indices are value/200.
	require.InDelta(t, 0.5, summary.MonthlyIndex["2024-01"], 1e-9)
	require.InDelta(t, 1.0, summary.MonthlyIndex["2024-02"], 1e-9)
	require.InDelta(t, 1.5, summary.MonthlyIndex["2024-03"], 1e-9)
	require.Equal(t, "2024-03", summary.PeakMonth)
	require.Equal(t, "2024-01", summary.TroughMonth)
	require.Equal(t, TrendUp, summary.TrendDirection)
}

func TestDetectSeasonalityTrendDown(t *testing.T) {
	series := []MonthPoint{
		{Month: "2024-01", Value: 300, Count: 15},
		{Month: "2024-02", Value: 200, Count: 15},
		{Month: "2024-03", Value: 100, Count: 15},
	}

	summary, ok := DetectSeasonality(series)
	require.True(t, ok)
	require.Equal(t, TrendDown, summary.TrendDirection)
	require.Equal(t, "2024-01", summary.PeakMonth)
	require.Equal(t, "2024-03", summary.TroughMonth)
}

func TestDetectSeasonalityFlatTrend(t *testing.T) {
	series := []MonthPoint{
		{Month: "2024-01", Value: 100, Count: 15},
		{Month: "2024-02", Value: 100, Count: 15},
		{Month: "2024-03", Value: 100, Count: 15},
	}

	summary, ok := DetectSeasonality(series)
	require.True(t, ok)
	require.Equal(t, TrendFlat, summary.TrendDirection)
	for _, idx := range summary.MonthlyIndex {
		require.InDelta(t, 1.0, idx, 1e-9)
	}
}

func TestDetectSeasonalityZeroMean(t *testing.T) {
	series := []MonthPoint{
		{Month: "2024-01", Value: 0, Count: 20},
		{Month: "2024-02", Value: 0, Count: 20},
	}

	summary, ok := DetectSeasonality(series)
	require.True(t, ok)
	require.Equal(t, 0.0, summary.MonthlyIndex["2024-01"])
	require.Equal(t, 0.0, summary.MonthlyIndex["2024-02"])
}
