package insights

const (
	// MinSeasonalityOrders is the order count a monthly series must be
	// backed by before seasonal indices are considered meaningful.
	MinSeasonalityOrders = 30

	// TrendEpsilon is the slope magnitude below which the monthly trend
	// reads as flat.
	TrendEpsilon = 0.01
)

// DetectSeasonality computes per-month seasonal indices (month value
// over the overall mean), the peak and trough months, and the trend
// direction from the sign of the fitted monthly slope. Returns false
// when fewer than MinSeasonalityOrders orders back the series.
func DetectSeasonality(series []MonthPoint) (SeasonalitySummary, bool) {
	totalOrders := 0
	for _, pt := range series {
		totalOrders += pt.Count
	}
	if len(series) == 0 || totalOrders < MinSeasonalityOrders {
		return SeasonalitySummary{}, false
	}

	var sum float64
	values := make([]float64, len(series))
	for i, pt := range series {
		sum += pt.Value
		values[i] = pt.Value
	}
	mean := sum / float64(len(series))

	index := make(map[string]float64, len(series))
	peak, trough := series[0].Month, series[0].Month
	peakIdx, troughIdx := indexFor(series[0].Value, mean), indexFor(series[0].Value, mean)
	for _, pt := range series {
		ratio := indexFor(pt.Value, mean)
		index[pt.Month] = ratio
		if ratio > peakIdx {
			peakIdx, peak = ratio, pt.Month
		}
		if ratio < troughIdx {
			troughIdx, trough = ratio, pt.Month
		}
	}

	slope, _ := linearFit(values)
	direction := TrendFlat
	switch {
	case slope > TrendEpsilon:
		direction = TrendUp
	case slope < -TrendEpsilon:
		direction = TrendDown
	}

	return SeasonalitySummary{
		MonthlyIndex:   index,
		PeakMonth:      peak,
		TroughMonth:    trough,
		TrendDirection: direction,
	}, true
}

// indexFor short-circuits a zero mean to 0 instead of propagating Inf.
func indexFor(value, mean float64) float64 {
	if mean == 0 {
		return 0
	}
	return value / mean
}
