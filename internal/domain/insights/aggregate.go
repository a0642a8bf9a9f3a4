package insights

import (
	"sort"
	"strings"
	"time"

	"github.com/cartloop/insights/pkg/util"
)

// AggregateDaily buckets raw sales into one TimePoint per distinct UTC
// day present in the input, summing amounts in ascending occurredAt
// order so identical inputs always produce identical sums.
func AggregateDaily(records []SalesRecord, excludeStatuses []string) []TimePoint {
	excluded := statusSet(excludeStatuses)
	totals := make(map[time.Time]float64)

	for _, rec := range sortedByTime(records) {
		if _, skip := excluded[strings.ToLower(rec.Status)]; skip {
			continue
		}
		totals[util.DayOf(rec.OccurredAt)] += rec.Amount
	}

	out := make([]TimePoint, 0, len(totals))
	for day, value := range totals {
		out = append(out, TimePoint{Date: day, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// AggregateMonthly buckets raw sales into one MonthPoint per distinct
// year-month key, carrying the record count backing each bucket.
func AggregateMonthly(records []SalesRecord, excludeStatuses []string) []MonthPoint {
	excluded := statusSet(excludeStatuses)
	totals := make(map[string]float64)
	counts := make(map[string]int)

	for _, rec := range sortedByTime(records) {
		if _, skip := excluded[strings.ToLower(rec.Status)]; skip {
			continue
		}
		key := util.MonthKey(rec.OccurredAt)
		totals[key] += rec.Amount
		counts[key]++
	}

	out := make([]MonthPoint, 0, len(totals))
	for key, value := range totals {
		out = append(out, MonthPoint{Month: key, Value: value, Count: counts[key]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func sortedByTime(records []SalesRecord) []SalesRecord {
	ordered := make([]SalesRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OccurredAt.Before(ordered[j].OccurredAt)
	})
	return ordered
}

func statusSet(statuses []string) map[string]struct{} {
	set := make(map[string]struct{}, len(statuses))
	for _, status := range statuses {
		status = strings.ToLower(strings.TrimSpace(status))
		if status == "" {
			continue
		}
		set[status] = struct{}{}
	}
	return set
}
