package insights

// MinForecastPoints is the smallest daily series the forecaster accepts.
const MinForecastPoints = 7

// ForecastDemand fits an ordinary-least-squares line over the series
// (sequence position as the independent variable) and extrapolates
// horizonDays contiguous calendar days past the last observed date.
// Negative projections clamp to zero since demand cannot be negative.
// Returns false when the series is too short to fit a trend.
func ForecastDemand(series []TimePoint, horizonDays int) (DemandForecast, bool) {
	if len(series) < MinForecastPoints {
		return DemandForecast{}, false
	}

	values := make([]float64, len(series))
	for i, pt := range series {
		values[i] = pt.Value
	}
	slope, intercept := linearFit(values)

	n := len(series)
	last := series[n-1].Date
	points := make([]ForecastPoint, 0, max(horizonDays, 0))
	for i := 1; i <= horizonDays; i++ {
		predicted := slope*float64(n-1+i) + intercept
		if predicted < 0 {
			predicted = 0
		}
		points = append(points, ForecastPoint{
			Date:           last.AddDate(0, 0, i),
			PredictedValue: predicted,
		})
	}
	return DemandForecast{Points: points, Slope: slope, Intercept: intercept}, true
}

// linearFit returns the OLS slope and intercept of values over their
// indices 0..n-1. Degenerate inputs yield a flat line.
func linearFit(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	if len(values) == 0 {
		return 0, 0
	}
	if len(values) == 1 {
		return 0, values[0]
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
