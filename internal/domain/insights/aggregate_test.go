package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(value string) time.Time {
	ts, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return ts
}

func TestAggregateDailyBucketsAndSorts(t *testing.T) {
	records := []SalesRecord{
		{OccurredAt: day("2024-03-02").Add(15 * time.Hour), Amount: 40, Status: "completed"},
		{OccurredAt: day("2024-03-01").Add(9 * time.Hour), Amount: 10, Status: "completed"},
		{OccurredAt: day("2024-03-02").Add(8 * time.Hour), Amount: 5, Status: "completed"},
		{OccurredAt: day("2024-03-05"), Amount: 7, Status: "completed"},
	}

	series := AggregateDaily(records, nil)
	require.Len(t, series, 3)
	require.Equal(t, day("2024-03-01"), series[0].Date)
	require.Equal(t, 10.0, series[0].Value)
	require.Equal(t, day("2024-03-02"), series[1].Date)
	require.Equal(t, 45.0, series[1].Value)
	// 2024-03-03 and -04 are absent, never zero-filled.
	require.Equal(t, day("2024-03-05"), series[2].Date)
}

func TestAggregateDailyExcludesStatuses(t *testing.T) {
	records := []SalesRecord{
		{OccurredAt: day("2024-03-01"), Amount: 10, Status: "completed"},
		{OccurredAt: day("2024-03-01"), Amount: 99, Status: "Cancelled"},
		{OccurredAt: day("2024-03-01"), Amount: 50, Status: "refunded"},
	}

	series := AggregateDaily(records, []string{"cancelled", "refunded"})
	require.Len(t, series, 1)
	require.Equal(t, 10.0, series[0].Value)
}

func TestAggregateMonthlyCountsRecords(t *testing.T) {
	records := []SalesRecord{
		{OccurredAt: day("2024-01-15"), Amount: 10, Status: "completed"},
		{OccurredAt: day("2024-01-20"), Amount: 20, Status: "completed"},
		{OccurredAt: day("2024-02-01"), Amount: 5, Status: "completed"},
	}

	series := AggregateMonthly(records, nil)
	require.Len(t, series, 2)
	require.Equal(t, MonthPoint{Month: "2024-01", Value: 30, Count: 2}, series[0])
	require.Equal(t, MonthPoint{Month: "2024-02", Value: 5, Count: 1}, series[1])
}

func TestAggregateDailyDeterministicForShuffledInput(t *testing.T) {
	ordered := []SalesRecord{
		{OccurredAt: day("2024-03-01").Add(1 * time.Hour), Amount: 0.1, Status: "completed"},
		{OccurredAt: day("2024-03-01").Add(2 * time.Hour), Amount: 0.2, Status: "completed"},
		{OccurredAt: day("2024-03-01").Add(3 * time.Hour), Amount: 0.3, Status: "completed"},
	}
	shuffled := []SalesRecord{ordered[2], ordered[0], ordered[1]}

	require.Equal(t, AggregateDaily(ordered, nil), AggregateDaily(shuffled, nil))
}

func TestAggregateDailyEmptyInput(t *testing.T) {
	require.Empty(t, AggregateDaily(nil, nil))
	require.Empty(t, AggregateMonthly(nil, nil))
}
