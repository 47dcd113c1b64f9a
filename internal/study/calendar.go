package study

import (
	"sort"
	"time"

	"quantlab/internal/domain"
)

var weekdayLabels = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}

// dayOfWeek buckets daily returns by the weekday on which the return was
// realized.
func dayOfWeek(bars []domain.Bar) *domain.CalendarResult {
	perDay := make(map[time.Weekday][]float64)
	for i := 1; i < len(bars); i++ {
		if bars[i-1].Close == 0 {
			continue
		}
		ret := (bars[i].Close - bars[i-1].Close) / bars[i-1].Close * 100
		wd := bars[i].Timestamp.Weekday()
		perDay[wd] = append(perDay[wd], ret)
	}

	result := &domain.CalendarResult{}
	for _, wd := range weekdayLabels {
		result.Buckets = append(result.Buckets, bucketFromReturns(wd.String(), perDay[wd]))
	}
	return result
}

// monthOfYear buckets monthly returns by calendar month across years. A
// month's return is computed from its first open to its last close, not a
// sum of daily returns.
func monthOfYear(bars []domain.Bar) *domain.CalendarResult {
	type monthKey struct {
		year  int
		month time.Month
	}

	firstOpen := make(map[monthKey]float64)
	lastClose := make(map[monthKey]float64)
	var keys []monthKey
	for _, b := range bars {
		k := monthKey{b.Timestamp.Year(), b.Timestamp.Month()}
		if _, seen := firstOpen[k]; !seen {
			firstOpen[k] = b.Open
			keys = append(keys, k)
		}
		lastClose[k] = b.Close
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	perMonth := make(map[time.Month][]float64)
	for _, k := range keys {
		open := firstOpen[k]
		if open == 0 {
			continue
		}
		ret := (lastClose[k] - open) / open * 100
		perMonth[k.month] = append(perMonth[k.month], ret)
	}

	result := &domain.CalendarResult{}
	for m := time.January; m <= time.December; m++ {
		result.Buckets = append(result.Buckets, bucketFromReturns(m.String(), perMonth[m]))
	}
	return result
}

func bucketFromReturns(label string, returns []float64) domain.CalendarBucket {
	var sum float64
	var hits int
	for _, r := range returns {
		sum += r
		if r > 0 {
			hits++
		}
	}
	return domain.CalendarBucket{
		Label:        label,
		Periods:      len(returns),
		AvgReturnPct: safeDiv(sum, float64(len(returns))),
		HitRatePct:   ratio(hits, len(returns)),
	}
}
