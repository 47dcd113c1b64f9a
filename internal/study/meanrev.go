package study

import (
	"math"

	"quantlab/internal/domain"
	"quantlab/internal/quant"
)

// Autocorrelation bounds for regime classification.
const (
	meanRevertingBelow = -0.1
	trendingAbove      = 0.1
)

// sigmaMoveMultiple defines a "large" one-day move as this many population
// standard deviations.
const sigmaMoveMultiple = 2.0

// meanReversion classifies the return process by lag-1 autocorrelation and
// reports forward behavior after moves of at least two standard deviations.
func meanReversion(bars []domain.Bar, params domain.StudyParams) *domain.MeanReversionResult {
	forward := orDefault(params.ForwardDays, defaultForwardDays)

	closePrices := closes(bars)
	returns := quant.SimpleReturns(closePrices)
	autocorr := quant.Autocorrelation(returns, 1)

	regime := "random"
	switch {
	case autocorr < meanRevertingBelow:
		regime = "mean_reverting"
	case autocorr > trendingAbove:
		regime = "trending"
	}

	sd := quant.StdDev(returns)
	var upMoves, downMoves []int
	if sd > 0 {
		for i, r := range returns {
			if math.Abs(r) < sigmaMoveMultiple*sd {
				continue
			}
			// returns[i] realizes at close index i+1.
			if r > 0 {
				upMoves = append(upMoves, i+1)
			} else {
				downMoves = append(downMoves, i+1)
			}
		}
	}

	return &domain.MeanReversionResult{
		Autocorrelation: autocorr,
		Regime:          regime,
		AfterUpMove:     forwardStats(closePrices, upMoves, forward),
		AfterDownMove:   forwardStats(closePrices, downMoves, forward),
	}
}
