package insights

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestClassifyPortfolioEmpty(t *testing.T) {
	out := ClassifyPortfolio(nil)
	require.NotNil(t, out)
	require.Empty(t, out)
}

func TestClassifyPortfolioQuadrants(t *testing.T) {
	star := uuid.New()
	cashCow := uuid.New()
	questionMark := uuid.New()
	dog := uuid.New()

	products := []ProductPerformance{
		// growth 100%, margin 50%
		{ProductID: star, CurrentPeriodSales: 200, PreviousPeriodSales: 100, Revenue: 1000, Cost: 500},
		// growth 0%, margin 60%
		{ProductID: cashCow, CurrentPeriodSales: 100, PreviousPeriodSales: 100, Revenue: 1000, Cost: 400},
		// growth 150%, margin 5%
		{ProductID: questionMark, CurrentPeriodSales: 250, PreviousPeriodSales: 100, Revenue: 1000, Cost: 950},
		// growth -50%, margin 10%
		{ProductID: dog, CurrentPeriodSales: 50, PreviousPeriodSales: 100, Revenue: 1000, Cost: 900},
	}

	out := ClassifyPortfolio(products)
	require.Len(t, out, 4)

	byID := map[uuid.UUID]ProductClassification{}
	for _, c := range out {
		byID[c.ProductID] = c
	}
	require.Equal(t, CategoryStar, byID[star].Category)
	require.Equal(t, CategoryCashCow, byID[cashCow].Category)
	require.Equal(t, CategoryQuestionMark, byID[questionMark].Category)
	require.Equal(t, CategoryDog, byID[dog].Category)

	require.Equal(t, recommendStar, byID[star].Recommendation)
	require.Equal(t, recommendDog, byID[dog].Recommendation)
}

func TestClassifyPortfolioZeroDenominators(t *testing.T) {
	products := []ProductPerformance{
		{ProductID: uuid.New(), CurrentPeriodSales: 500, PreviousPeriodSales: 0, Revenue: 0, Cost: 100},
	}

	out := ClassifyPortfolio(products)
	require.Len(t, out, 1)
	require.Equal(t, 0.0, out[0].GrowthRate)
	require.Equal(t, 0.0, out[0].ProfitMargin)
	// A single product can never beat its own average.
	require.Equal(t, CategoryDog, out[0].Category)
}

func TestClassifyPortfolioGrowthAndMarginValues(t *testing.T) {
	products := []ProductPerformance{
		{ProductID: uuid.New(), CurrentPeriodSales: 150, PreviousPeriodSales: 100, Revenue: 200, Cost: 150},
		{ProductID: uuid.New(), CurrentPeriodSales: 90, PreviousPeriodSales: 100, Revenue: 200, Cost: 40},
	}

	out := ClassifyPortfolio(products)
	require.InDelta(t, 50.0, out[0].GrowthRate, 1e-9)
	require.InDelta(t, 25.0, out[0].ProfitMargin, 1e-9)
	require.InDelta(t, -10.0, out[1].GrowthRate, 1e-9)
	require.InDelta(t, 80.0, out[1].ProfitMargin, 1e-9)

	// Clear winner on growth, clear loser on margin.
	require.Equal(t, CategoryQuestionMark, out[0].Category)
	require.Equal(t, CategoryCashCow, out[1].Category)
}
