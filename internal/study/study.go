// Package study implements the statistical studies the engine can run over a
// single instrument's daily bar series. Each study type has one handler; the
// Run dispatcher selects it over the closed StudyType set. Shared numeric
// policy: undefined ratios (zero-length denominators) resolve to 0, never to
// an error, so callers can render "N/A" instead of crashing.
package study

import (
	"fmt"

	"quantlab/internal/domain"
)

// Default parameters applied when StudyParams leaves a knob at zero.
const (
	defaultShortPeriod  = 20
	defaultMediumPeriod = 50
	defaultLongPeriod   = 200
	defaultRSIPeriod    = 14
	defaultATRPeriod    = 14
	defaultForwardDays  = 5
	defaultVolThreshold = 1.5
	defaultWindow       = 20
	defaultTargetDays   = 21
)

// Run executes one study against the bar series. It rejects unsupported
// study types and series shorter than domain.MinStudyBars.
func Run(ticker string, typ domain.StudyType, bars []domain.Bar, params domain.StudyParams) (domain.StudyResult, error) {
	if !typ.Valid() {
		return domain.StudyResult{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedStudy, typ)
	}
	if len(bars) < domain.MinStudyBars {
		return domain.StudyResult{}, fmt.Errorf("%w: %d bars, need at least %d",
			domain.ErrInsufficientData, len(bars), domain.MinStudyBars)
	}

	result := domain.StudyResult{
		Ticker:       ticker,
		Type:         typ,
		BarsAnalyzed: len(bars),
		DataQuality:  domain.QualityHigh,
	}

	switch typ {
	case domain.StudyCloseAboveOpen:
		result.Percentage = closeAboveOpen(bars)
	case domain.StudyCloseAbovePrior:
		result.Percentage = closeAbovePrior(bars)
	case domain.StudyReturnDistribution:
		result.Distribution = returnDistribution(bars)
	case domain.StudyStreaks:
		result.Streaks = streaks(bars)
	case domain.StudyDayOfWeek:
		result.Calendar = dayOfWeek(bars)
	case domain.StudyMonthOfYear:
		result.Calendar = monthOfYear(bars)
	case domain.StudyGapAnalysis:
		result.Gaps = gapAnalysis(bars)
	case domain.StudyVolatilityRegime:
		result.Volatility = volatilityRegime(bars)
	case domain.StudyDrawdownAnalysis:
		result.Drawdowns = drawdownAnalysis(bars)
	case domain.StudyMovingAverage:
		result.MovingAverage = movingAverage(bars, params)
	case domain.StudyVolumeAnalysis:
		result.Volume = volumeAnalysis(bars, params)
	case domain.StudyRSIAnalysis:
		result.RSI = rsiAnalysis(bars, params)
	case domain.StudyMeanReversion:
		result.MeanReversion = meanReversion(bars, params)
	case domain.StudyRangeAnalysis:
		result.Range = rangeAnalysis(bars)
	case domain.StudyHighLow:
		result.HighLow = highLow(bars, params)
	case domain.StudyTrendStrength:
		result.TrendStrength = trendStrength(bars, params)
	case domain.StudyPriceTargets:
		result.PriceTargets = priceTargets(bars, params)
	}

	return result, nil
}

// closes extracts the close series from a bar slice.
func closes(bars []domain.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// ratio returns num/den*100, or 0 when den is zero.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}

// safeDiv returns num/den, or 0 when den is zero.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// forwardStats computes forward returns `days` bars after each trigger index.
// Triggers too close to the series end are dropped. HitRatePct is the share
// of positive forward returns.
func forwardStats(closePrices []float64, triggers []int, days int) domain.ForwardStats {
	var (
		events int
		sum    float64
		hits   int
	)
	for _, i := range triggers {
		j := i + days
		if j >= len(closePrices) || closePrices[i] == 0 {
			continue
		}
		ret := (closePrices[j] - closePrices[i]) / closePrices[i] * 100
		events++
		sum += ret
		if ret > 0 {
			hits++
		}
	}
	return domain.ForwardStats{
		Events:       events,
		AvgReturnPct: safeDiv(sum, float64(events)),
		HitRatePct:   ratio(hits, events),
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func orDefaultF(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
