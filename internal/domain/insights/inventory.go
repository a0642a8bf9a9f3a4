package insights

import "math"

const (
	// MinSalesSamples is the shortest daily sales window the optimizer
	// will draw conclusions from.
	MinSalesSamples = 7

	DefaultLeadTimeDays = 7
	DefaultServiceLevel = 0.95

	// Only two service levels are distinguished: 0.95 maps to 1.65,
	// everything else falls to the stricter 1.96.
	zScoreStandard = 1.65
	zScoreStrict   = 1.96

	reorderSoonRatio = 0.7
	overstockRatio   = 1.5
)

// InventoryOptions tunes the optimizer; zero values take the defaults.
type InventoryOptions struct {
	LeadTimeDays int
	ServiceLevel float64
}

// OptimizeInventory derives safety stock, reorder point, optimal stock,
// and a replenishment action from a per-product daily sales sample.
// Returns false when fewer than MinSalesSamples days are available.
func OptimizeInventory(dailySales []float64, currentStock int, opts InventoryOptions) (InventoryRecommendation, bool) {
	if len(dailySales) < MinSalesSamples {
		return InventoryRecommendation{}, false
	}
	leadTime := opts.LeadTimeDays
	if leadTime <= 0 {
		leadTime = DefaultLeadTimeDays
	}
	serviceLevel := opts.ServiceLevel
	if serviceLevel == 0 {
		serviceLevel = DefaultServiceLevel
	}

	avg := mean(dailySales)
	std := stdDev(dailySales, avg)

	z := zScoreStrict
	if serviceLevel == DefaultServiceLevel {
		z = zScoreStandard
	}

	safetyStock := int(math.Ceil(z * std * math.Sqrt(float64(leadTime))))
	reorderPoint := int(math.Ceil(avg*float64(leadTime) + float64(safetyStock)))
	optimalStock := int(math.Ceil(float64(reorderPoint) + avg*float64(leadTime)))

	action := ActionOptimal
	switch {
	case currentStock < reorderPoint:
		action = ActionUrgentReorder
	case float64(currentStock) < reorderSoonRatio*float64(optimalStock):
		action = ActionReorderSoon
	case float64(currentStock) > overstockRatio*float64(optimalStock):
		action = ActionOverstocked
	}

	return InventoryRecommendation{
		CurrentStock:  currentStock,
		OptimalStock:  optimalStock,
		ReorderPoint:  reorderPoint,
		SafetyStock:   safetyStock,
		AvgDailySales: math.Round(avg*100) / 100,
		Action:        action,
	}, true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation.
func stdDev(values []float64, avg float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var ss float64
	for _, v := range values {
		ss += (v - avg) * (v - avg)
	}
	return math.Sqrt(ss / float64(len(values)))
}
