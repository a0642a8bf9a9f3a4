package insights

// Recommendation copy per matrix quadrant.
const (
	recommendStar         = "Invest: high growth and strong margin, prioritize stock and promotion."
	recommendCashCow      = "Maintain: steady earner, protect margin and keep availability high."
	recommendQuestionMark = "Evaluate: growing but thin margin, revisit pricing or sourcing cost."
	recommendDog          = "Discontinue: below-average growth and margin, consider phasing out."
)

// ClassifyPortfolio places each product in the growth/margin matrix
// relative to the averages of the full input set. Zero denominators
// short-circuit to zero growth or margin; empty input yields an empty
// result.
func ClassifyPortfolio(products []ProductPerformance) []ProductClassification {
	if len(products) == 0 {
		return []ProductClassification{}
	}

	growth := make([]float64, len(products))
	margin := make([]float64, len(products))
	var growthSum, marginSum float64
	for i, p := range products {
		growth[i] = growthRate(p.CurrentPeriodSales, p.PreviousPeriodSales)
		margin[i] = profitMargin(p.Revenue, p.Cost)
		growthSum += growth[i]
		marginSum += margin[i]
	}
	avgGrowth := growthSum / float64(len(products))
	avgMargin := marginSum / float64(len(products))

	out := make([]ProductClassification, len(products))
	for i, p := range products {
		category := categorize(growth[i], margin[i], avgGrowth, avgMargin)
		out[i] = ProductClassification{
			ProductID:      p.ProductID,
			Category:       category,
			GrowthRate:     growth[i],
			ProfitMargin:   margin[i],
			Recommendation: recommendationFor(category),
		}
	}
	return out
}

func growthRate(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

func profitMargin(revenue, cost float64) float64 {
	if revenue <= 0 {
		return 0
	}
	return (revenue - cost) / revenue * 100
}

func categorize(growth, margin, avgGrowth, avgMargin float64) PortfolioCategory {
	switch {
	case growth > avgGrowth && margin > avgMargin:
		return CategoryStar
	case growth <= avgGrowth && margin > avgMargin:
		return CategoryCashCow
	case growth <= avgGrowth && margin <= avgMargin:
		return CategoryDog
	default:
		return CategoryQuestionMark
	}
}

func recommendationFor(category PortfolioCategory) string {
	switch category {
	case CategoryStar:
		return recommendStar
	case CategoryCashCow:
		return recommendCashCow
	case CategoryDog:
		return recommendDog
	default:
		return recommendQuestionMark
	}
}
