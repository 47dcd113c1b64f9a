package study

import (
	"quantlab/internal/domain"
	"quantlab/internal/quant"
)

// RSI crossing levels.
const (
	rsiOverbought = 70.0
	rsiOversold   = 30.0
)

// rsiAnalysis computes the Wilder RSI and forward-return behavior after
// overbought and oversold crossings.
func rsiAnalysis(bars []domain.Bar, params domain.StudyParams) *domain.RSIResult {
	period := orDefault(params.RSIPeriod, defaultRSIPeriod)
	forward := orDefault(params.ForwardDays, defaultForwardDays)

	closePrices := closes(bars)
	series := quant.RSISeries(closePrices, period)

	result := &domain.RSIResult{
		Period:  period,
		Current: quant.RSI(closePrices, period),
	}

	// series[k] is the RSI at close index period+k.
	var overbought, oversold []int
	for k := 1; k < len(series); k++ {
		idx := period + k
		if series[k-1] < rsiOverbought && series[k] >= rsiOverbought {
			overbought = append(overbought, idx)
		}
		if series[k-1] > rsiOversold && series[k] <= rsiOversold {
			oversold = append(oversold, idx)
		}
	}

	result.AfterOverbought = forwardStats(closePrices, overbought, forward)
	result.AfterOversold = forwardStats(closePrices, oversold, forward)
	return result
}
