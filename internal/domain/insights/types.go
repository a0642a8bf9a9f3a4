package insights

import (
	"time"

	"github.com/google/uuid"
)

// SalesRecord is one raw order row handed to the aggregator.
type SalesRecord struct {
	OccurredAt time.Time
	Amount     float64
	Status     string
}

// TimePoint is a single day of aggregated revenue. Days without
// any orders are absent from the series, never zero-filled.
type TimePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// MonthPoint aggregates a calendar month keyed as "2006-01".
type MonthPoint struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// ForecastPoint is one projected day following the last observed date.
type ForecastPoint struct {
	Date           time.Time `json:"date"`
	PredictedValue float64   `json:"predictedValue"`
}

// DemandForecast carries the extrapolated points and the fitted line.
type DemandForecast struct {
	Points    []ForecastPoint `json:"points"`
	Slope     float64         `json:"slope"`
	Intercept float64         `json:"intercept"`
}

// TrendDirection is the sign of the fitted monthly trend.
type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
	TrendFlat TrendDirection = "flat"
)

// SeasonalitySummary captures month-over-month demand strength.
type SeasonalitySummary struct {
	MonthlyIndex   map[string]float64 `json:"monthlyIndex"`
	PeakMonth      string             `json:"peakMonth"`
	TroughMonth    string             `json:"troughMonth"`
	TrendDirection TrendDirection     `json:"trendDirection"`
}

// CustomerProfile is the per-customer aggregate the segmenter scores.
type CustomerProfile struct {
	CustomerID  uuid.UUID `json:"customerId"`
	RecencyDays float64   `json:"recencyDays"`
	Frequency   int       `json:"frequency"`
	Monetary    float64   `json:"monetary"`
}

// Segment is the RFM segment label.
type Segment string

const (
	SegmentChampions Segment = "champions"
	SegmentLoyal     Segment = "loyal"
	SegmentPotential Segment = "potential"
	SegmentAtRisk    Segment = "at_risk"
	SegmentLost      Segment = "lost"
)

// RFMResult is the scored view of one customer. Scores are quantile
// positions within the population passed to the same call, not
// persisted truth.
type RFMResult struct {
	CustomerID     uuid.UUID `json:"customerId"`
	RecencyScore   int       `json:"recencyScore"`
	FrequencyScore int       `json:"frequencyScore"`
	MonetaryScore  int       `json:"monetaryScore"`
	Segment        Segment   `json:"segment"`
	ChurnRiskScore float64   `json:"churnRiskScore"`
}

// StockAction is the replenishment verdict for a product.
type StockAction string

const (
	ActionUrgentReorder StockAction = "urgent_reorder"
	ActionReorderSoon   StockAction = "reorder_soon"
	ActionOptimal       StockAction = "optimal"
	ActionOverstocked   StockAction = "overstocked"
)

// InventoryRecommendation is the optimizer output for one product.
type InventoryRecommendation struct {
	CurrentStock  int         `json:"currentStock"`
	OptimalStock  int         `json:"optimalStock"`
	ReorderPoint  int         `json:"reorderPoint"`
	SafetyStock   int         `json:"safetyStock"`
	AvgDailySales float64     `json:"avgDailySales"`
	Action        StockAction `json:"action"`
}

// PortfolioCategory is the growth/margin matrix quadrant.
type PortfolioCategory string

const (
	CategoryStar         PortfolioCategory = "star"
	CategoryCashCow      PortfolioCategory = "cash_cow"
	CategoryQuestionMark PortfolioCategory = "question_mark"
	CategoryDog          PortfolioCategory = "dog"
)

// ProductPerformance is the classifier input for one product.
type ProductPerformance struct {
	ProductID           uuid.UUID `json:"productId"`
	CurrentPeriodSales  float64   `json:"currentPeriodSales"`
	PreviousPeriodSales float64   `json:"previousPeriodSales"`
	Revenue             float64   `json:"revenue"`
	Cost                float64   `json:"cost"`
}

// ProductClassification places a product in the matrix with a
// fixed recommendation per quadrant.
type ProductClassification struct {
	ProductID      uuid.UUID         `json:"productId"`
	Category       PortfolioCategory `json:"category"`
	GrowthRate     float64           `json:"growthRate"`
	ProfitMargin   float64           `json:"profitMargin"`
	Recommendation string            `json:"recommendation"`
}
