package study

import (
	"math"

	"quantlab/internal/domain"
	"quantlab/internal/quant"
)

// highVolMultiple scales the mean absolute daily return into the
// high-volatility threshold.
const highVolMultiple = 1.5

// rollingVolWindow is the window, in trading days, for the rolling
// annualized-volatility series.
const rollingVolWindow = 20

// volatilityRegime reports ATR(14), rolling 20-day annualized volatility, and
// the volatility-clustering rate: the fraction of high-volatility days that
// immediately follow another high-volatility day.
func volatilityRegime(bars []domain.Bar) *domain.VolatilityResult {
	n := len(bars)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closePrices := make([]float64, n)
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
		closePrices[i] = b.Close
	}

	atr := quant.ATR(highs, lows, closePrices, defaultATRPeriod)
	atrPct := 0.0
	if last := closePrices[n-1]; last != 0 {
		atrPct = atr / last * 100
	}

	returns := quant.SimpleReturns(closePrices)

	// Rolling annualized volatility over 20-day return windows.
	var latestVol, sumVol float64
	windows := 0
	for i := rollingVolWindow; i <= len(returns); i++ {
		vol := quant.AnnualizedVolatility(returns[i-rollingVolWindow:i]) * 100
		latestVol = vol
		sumVol += vol
		windows++
	}

	// Clustering: threshold at 1.5x the mean absolute daily return.
	absReturns := make([]float64, len(returns))
	for i, r := range returns {
		absReturns[i] = math.Abs(r)
	}
	threshold := highVolMultiple * quant.Mean(absReturns)

	var highVolDays, followers, opportunities int
	prevHigh := false
	for _, a := range absReturns {
		high := threshold > 0 && a > threshold
		if high {
			highVolDays++
		}
		if prevHigh {
			opportunities++
			if high {
				followers++
			}
		}
		prevHigh = high
	}

	return &domain.VolatilityResult{
		ATR:                 atr,
		ATRPct:              atrPct,
		RollingVolPct:       latestVol,
		AvgRollingVolPct:    safeDiv(sumVol, float64(windows)),
		HighVolDays:         highVolDays,
		ClusteringRatePct:   ratio(followers, opportunities),
		HighVolThresholdPct: threshold * 100,
	}
}
