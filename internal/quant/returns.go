// Package quant is the returns and risk library: pure, stateless functions
// over numeric series. No I/O, no global state. Population formulas (divide
// by n) are used throughout so volatility scaling stays internally
// consistent. Every function tolerates short or empty input by returning a
// defined value; callers decide whether the sample is large enough to trust.
package quant

import "math"

// TradingDaysPerYear is the annualization factor for daily data.
const TradingDaysPerYear = 252

// DefaultRiskFreeRate is the canonical annual risk-free rate used by ratio
// functions when the caller does not override it.
const DefaultRiskFreeRate = 0.04

// SimpleReturns computes (p[i] - p[i-1]) / p[i-1] for i >= 1. The result has
// len(prices)-1 entries; a zero prior price contributes a 0 return.
func SimpleReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	return returns
}

// LogReturns computes ln(p[i] / p[i-1]) for i >= 1.
func LogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 || prices[i] <= 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, math.Log(prices[i]/prices[i-1]))
	}
	return returns
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation (divide by n).
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// AnnualizedVolatility scales the population standard deviation of daily
// returns by sqrt(252).
func AnnualizedVolatility(dailyReturns []float64) float64 {
	return StdDev(dailyReturns) * math.Sqrt(TradingDaysPerYear)
}

// SharpeRatio computes (annualized mean return - riskFreeRate) / annualized
// volatility. Returns 0 when volatility is zero.
func SharpeRatio(dailyReturns []float64, riskFreeRate float64) float64 {
	vol := AnnualizedVolatility(dailyReturns)
	if vol == 0 {
		return 0
	}
	annMean := Mean(dailyReturns) * TradingDaysPerYear
	return (annMean - riskFreeRate) / vol
}

// SortinoRatio is like SharpeRatio but its denominator is the annualized
// population standard deviation of negative returns only. Returns 0 when
// there is no downside deviation.
func SortinoRatio(dailyReturns []float64, riskFreeRate float64) float64 {
	var downside []float64
	for _, r := range dailyReturns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	dd := StdDev(downside) * math.Sqrt(TradingDaysPerYear)
	if dd == 0 {
		return 0
	}
	annMean := Mean(dailyReturns) * TradingDaysPerYear
	return (annMean - riskFreeRate) / dd
}

// Percentile returns the nearest-rank p-th percentile (0 < p <= 100) of a
// sorted-ascending slice. No interpolation.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}

// Skewness returns the population skewness (third standardized moment), or 0
// when the variance is zero.
func Skewness(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	mean := Mean(values)
	var m2, m3 float64
	for _, v := range values {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return 0
	}
	return m3 / math.Pow(m2, 1.5)
}

// ExcessKurtosis returns the population excess kurtosis (fourth standardized
// moment minus 3), or 0 when the variance is zero.
func ExcessKurtosis(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	mean := Mean(values)
	var m2, m4 float64
	for _, v := range values {
		d := v - mean
		m2 += d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m4 /= n
	if m2 == 0 {
		return 0
	}
	return m4/(m2*m2) - 3
}

// Autocorrelation returns the lag-k autocorrelation of the series, or 0 when
// the variance is zero or the series is shorter than k+2.
func Autocorrelation(values []float64, lag int) float64 {
	if lag <= 0 || len(values) < lag+2 {
		return 0
	}
	mean := Mean(values)
	var num, den float64
	for i := 0; i < len(values); i++ {
		d := values[i] - mean
		den += d * d
		if i >= lag {
			num += d * (values[i-lag] - mean)
		}
	}
	if den == 0 {
		return 0
	}
	return num / den
}
