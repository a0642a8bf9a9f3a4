package insights

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSegmentCustomersEmptyPopulation(t *testing.T) {
	results := SegmentCustomers(nil)
	require.NotNil(t, results)
	require.Empty(t, results)
}

func TestSegmentCustomersRecencyMonotonic(t *testing.T) {
	// Same frequency/monetary everywhere; only recency varies.
	profiles := make([]CustomerProfile, 10)
	for i := range profiles {
		profiles[i] = CustomerProfile{
			CustomerID:  uuid.New(),
			RecencyDays: float64(i * 10),
			Frequency:   5,
			Monetary:    100,
		}
	}

	results := SegmentCustomers(profiles)
	require.Len(t, results, 10)
	for i := 1; i < len(results); i++ {
		require.LessOrEqual(t, results[i].RecencyScore, results[i-1].RecencyScore,
			"recency score must not increase as recencyDays grows")
	}
	require.Equal(t, 5, results[0].RecencyScore)
	require.Equal(t, 1, results[len(results)-1].RecencyScore)
}

func TestSegmentCustomersRuleTable(t *testing.T) {
	// Five archetypes spread wide enough that quintiles separate them.
	champion := CustomerProfile{CustomerID: uuid.New(), RecencyDays: 1, Frequency: 50, Monetary: 5000}
	loyal := CustomerProfile{CustomerID: uuid.New(), RecencyDays: 200, Frequency: 40, Monetary: 4000}
	atRisk := CustomerProfile{CustomerID: uuid.New(), RecencyDays: 300, Frequency: 20, Monetary: 3000}
	lost := CustomerProfile{CustomerID: uuid.New(), RecencyDays: 400, Frequency: 1, Monetary: 10}
	potential := CustomerProfile{CustomerID: uuid.New(), RecencyDays: 30, Frequency: 10, Monetary: 500}

	results := SegmentCustomers([]CustomerProfile{champion, loyal, atRisk, lost, potential})
	byID := make(map[uuid.UUID]RFMResult, len(results))
	for _, r := range results {
		byID[r.CustomerID] = r
	}

	require.Equal(t, SegmentChampions, byID[champion.CustomerID].Segment)
	require.Equal(t, SegmentLoyal, byID[loyal.CustomerID].Segment)
	require.Equal(t, SegmentAtRisk, byID[atRisk.CustomerID].Segment)
	require.Equal(t, SegmentLost, byID[lost.CustomerID].Segment)
	require.Equal(t, SegmentPotential, byID[potential.CustomerID].Segment)
}

func TestSegmentCustomersChurnRisk(t *testing.T) {
	profiles := []CustomerProfile{
		{CustomerID: uuid.New(), RecencyDays: 1, Frequency: 50, Monetary: 1000},
		{CustomerID: uuid.New(), RecencyDays: 100, Frequency: 25, Monetary: 500},
		{CustomerID: uuid.New(), RecencyDays: 200, Frequency: 12, Monetary: 250},
		{CustomerID: uuid.New(), RecencyDays: 300, Frequency: 6, Monetary: 100},
		{CustomerID: uuid.New(), RecencyDays: 400, Frequency: 1, Monetary: 10},
	}

	results := SegmentCustomers(profiles)
	for _, r := range results {
		expected := 0.6*float64(5-r.RecencyScore)/4 + 0.4*float64(5-r.FrequencyScore)/4
		require.InDelta(t, expected, r.ChurnRiskScore, 1e-9)
		require.GreaterOrEqual(t, r.ChurnRiskScore, 0.0)
		require.LessOrEqual(t, r.ChurnRiskScore, 1.0)
	}
	// The freshest, most frequent customer carries no churn risk.
	require.Equal(t, 0.0, results[0].ChurnRiskScore)
	// The stalest, least frequent one carries the maximum.
	require.Equal(t, 1.0, results[len(results)-1].ChurnRiskScore)
}

func TestSegmentCustomersTiedValuesScoreEqually(t *testing.T) {
	a := CustomerProfile{CustomerID: uuid.New(), RecencyDays: 10, Frequency: 3, Monetary: 100}
	b := CustomerProfile{CustomerID: uuid.New(), RecencyDays: 10, Frequency: 3, Monetary: 100}

	results := SegmentCustomers([]CustomerProfile{a, b})
	require.Equal(t, results[0].RecencyScore, results[1].RecencyScore)
	require.Equal(t, results[0].FrequencyScore, results[1].FrequencyScore)
	require.Equal(t, results[0].MonetaryScore, results[1].MonetaryScore)
	require.Equal(t, results[0].Segment, results[1].Segment)
}

func TestSegmentCustomersCoercesNegativeInputs(t *testing.T) {
	results := SegmentCustomers([]CustomerProfile{
		{CustomerID: uuid.New(), RecencyDays: -5, Frequency: -2, Monetary: -10},
	})
	require.Len(t, results, 1)
	require.GreaterOrEqual(t, results[0].RecencyScore, 1)
	require.LessOrEqual(t, results[0].RecencyScore, 5)
}

func TestSegmentCustomersIdempotent(t *testing.T) {
	profiles := []CustomerProfile{
		{CustomerID: uuid.New(), RecencyDays: 3, Frequency: 8, Monetary: 420},
		{CustomerID: uuid.New(), RecencyDays: 90, Frequency: 2, Monetary: 55},
	}
	require.Equal(t, SegmentCustomers(profiles), SegmentCustomers(profiles))
}
