package study

import "quantlab/internal/domain"

// closeAboveOpen counts days the close finished above the open. Exact ties
// are reported as unchanged, not folded into either bucket.
func closeAboveOpen(bars []domain.Bar) *domain.PercentageResult {
	var matched, unchanged int
	for _, b := range bars {
		switch {
		case b.Close > b.Open:
			matched++
		case b.Close == b.Open:
			unchanged++
		}
	}
	total := len(bars)
	return &domain.PercentageResult{
		TotalDays:     total,
		MatchedDays:   matched,
		UnchangedDays: unchanged,
		MatchedPct:    ratio(matched, total),
		UnchangedPct:  ratio(unchanged, total),
	}
}

// closeAbovePrior counts days the close finished above the prior close. The
// first bar has no prior and is excluded from the day count.
func closeAbovePrior(bars []domain.Bar) *domain.PercentageResult {
	var matched, unchanged int
	for i := 1; i < len(bars); i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			matched++
		case bars[i].Close == bars[i-1].Close:
			unchanged++
		}
	}
	total := len(bars) - 1
	return &domain.PercentageResult{
		TotalDays:     total,
		MatchedDays:   matched,
		UnchangedDays: unchanged,
		MatchedPct:    ratio(matched, total),
		UnchangedPct:  ratio(unchanged, total),
	}
}
