package insights

import "sort"

const (
	quintileCount = 5

	// Churn risk weights recency over frequency; both terms are
	// normalized to [0,1] before mixing.
	churnRecencyWeight   = 0.6
	churnFrequencyWeight = 0.4
)

// SegmentCustomers scores every customer 1-5 per RFM dimension by
// quintile position within the supplied population, assigns a segment
// from the ordered rule table, and derives a churn risk score. An empty
// population yields an empty result.
func SegmentCustomers(profiles []CustomerProfile) []RFMResult {
	if len(profiles) == 0 {
		return []RFMResult{}
	}

	recency := make([]float64, len(profiles))
	frequency := make([]float64, len(profiles))
	monetary := make([]float64, len(profiles))
	for i, p := range profiles {
		recency[i] = clampNonNegative(p.RecencyDays)
		frequency[i] = clampNonNegative(float64(p.Frequency))
		monetary[i] = clampNonNegative(p.Monetary)
	}

	sortedRecency := sortedCopy(recency)
	sortedFrequency := sortedCopy(frequency)
	sortedMonetary := sortedCopy(monetary)

	out := make([]RFMResult, len(profiles))
	for i, p := range profiles {
		// Lower recency is better, so the ascending quintile inverts.
		r := quintileCount + 1 - quintileScore(sortedRecency, recency[i])
		f := quintileScore(sortedFrequency, frequency[i])
		m := quintileScore(sortedMonetary, monetary[i])

		out[i] = RFMResult{
			CustomerID:     p.CustomerID,
			RecencyScore:   r,
			FrequencyScore: f,
			MonetaryScore:  m,
			Segment:        assignSegment(r, f, m),
			ChurnRiskScore: churnRisk(r, f),
		}
	}
	return out
}

// quintileScore maps a value to 1..5 by the rank of its first
// occurrence in the ascending population; ties score equally.
func quintileScore(sorted []float64, v float64) int {
	rank := sort.SearchFloat64s(sorted, v)
	score := 1 + rank*quintileCount/len(sorted)
	if score > quintileCount {
		score = quintileCount
	}
	return score
}

// assignSegment evaluates the rule table in order; the first match wins.
func assignSegment(r, f, m int) Segment {
	switch {
	case r >= 4 && f >= 4:
		return SegmentChampions
	case f >= 4:
		return SegmentLoyal
	case r <= 2 && (f >= 3 || m >= 3):
		return SegmentAtRisk
	case r <= 2 && f <= 2 && m <= 2:
		return SegmentLost
	default:
		return SegmentPotential
	}
}

func churnRisk(recencyScore, frequencyScore int) float64 {
	risk := churnRecencyWeight*float64(quintileCount-recencyScore)/4 +
		churnFrequencyWeight*float64(quintileCount-frequencyScore)/4
	if risk < 0 {
		return 0
	}
	if risk > 1 {
		return 1
	}
	return risk
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
