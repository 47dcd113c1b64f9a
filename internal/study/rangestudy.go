package study

import "quantlab/internal/domain"

// rangeAnalysis classifies each bar against the prior bar's high-low range:
// inside days sit entirely within it, outside days engulf it.
func rangeAnalysis(bars []domain.Bar) *domain.RangeResult {
	var rangeSum float64
	for _, b := range bars {
		if b.Close != 0 {
			rangeSum += (b.High - b.Low) / b.Close * 100
		}
	}

	var inside, outside int
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1]
		cur := bars[i]
		if cur.High <= prev.High && cur.Low >= prev.Low {
			inside++
		} else if cur.High > prev.High && cur.Low < prev.Low {
			outside++
		}
	}
	comparable := len(bars) - 1

	return &domain.RangeResult{
		AvgRangePct: safeDiv(rangeSum, float64(len(bars))),
		InsideDays:  inside,
		OutsideDays: outside,
		InsidePct:   ratio(inside, comparable),
		OutsidePct:  ratio(outside, comparable),
	}
}

// highLow detects rolling N-day new highs and lows on closes and reports the
// forward-return follow-through after each.
func highLow(bars []domain.Bar, params domain.StudyParams) *domain.HighLowResult {
	window := orDefault(params.RollingWindow, defaultWindow)
	forward := orDefault(params.ForwardDays, defaultForwardDays)

	closePrices := closes(bars)
	var newHighs, newLows []int
	for i := window; i < len(closePrices); i++ {
		maxPrev := closePrices[i-window]
		minPrev := closePrices[i-window]
		for j := i - window + 1; j < i; j++ {
			if closePrices[j] > maxPrev {
				maxPrev = closePrices[j]
			}
			if closePrices[j] < minPrev {
				minPrev = closePrices[j]
			}
		}
		if closePrices[i] > maxPrev {
			newHighs = append(newHighs, i)
		} else if closePrices[i] < minPrev {
			newLows = append(newLows, i)
		}
	}

	return &domain.HighLowResult{
		Window:       window,
		NewHighs:     len(newHighs),
		NewLows:      len(newLows),
		AfterNewHigh: forwardStats(closePrices, newHighs, forward),
		AfterNewLow:  forwardStats(closePrices, newLows, forward),
	}
}
