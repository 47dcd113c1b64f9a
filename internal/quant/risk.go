package quant

import (
	"math"
	"sort"
)

// Drawdown locates the single worst peak-to-trough excursion of a value
// series. MaxDrawdownPct is in percent.
type Drawdown struct {
	MaxDrawdownPct float64
	PeakIndex      int
	TroughIndex    int
}

// MaxDrawdown scans the whole series for the global worst peak-to-trough
// decline, tracking the running peak.
func MaxDrawdown(values []float64) Drawdown {
	if len(values) == 0 {
		return Drawdown{}
	}
	peak := values[0]
	peakIdx := 0
	worst := Drawdown{}
	for i, v := range values {
		if v > peak {
			peak = v
			peakIdx = i
			continue
		}
		if peak == 0 {
			continue
		}
		dd := (peak - v) / peak * 100
		if dd > worst.MaxDrawdownPct {
			worst = Drawdown{MaxDrawdownPct: dd, PeakIndex: peakIdx, TroughIndex: i}
		}
	}
	return worst
}

// BetaAlpha runs a single-factor regression of asset returns against
// benchmark returns: beta = Cov(asset, benchmark) / Var(benchmark),
// alpha = mean(asset) - beta * mean(benchmark). Series are truncated to the
// shorter length; a zero-variance benchmark yields beta 0.
func BetaAlpha(assetReturns, benchmarkReturns []float64) (beta, alpha float64) {
	n := len(assetReturns)
	if len(benchmarkReturns) < n {
		n = len(benchmarkReturns)
	}
	if n == 0 {
		return 0, 0
	}
	asset := assetReturns[:n]
	bench := benchmarkReturns[:n]

	meanA := Mean(asset)
	meanB := Mean(bench)
	var cov, varB float64
	for i := 0; i < n; i++ {
		da := asset[i] - meanA
		db := bench[i] - meanB
		cov += da * db
		varB += db * db
	}
	if varB == 0 {
		return 0, meanA
	}
	beta = cov / varB
	alpha = meanA - beta*meanB
	return beta, alpha
}

// ValueAtRisk95 returns the absolute value of the return at the 5th
// percentile index (floor(n*0.05)) of the ascending-sorted returns.
func ValueAtRisk95(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := sortedCopy(returns)
	idx := int(math.Floor(float64(len(sorted)) * 0.05))
	return math.Abs(sorted[idx])
}

// ConditionalVaR95 returns the absolute value of the mean of all returns at
// or below the 5th percentile index: the tail average, not just the boundary
// value.
func ConditionalVaR95(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := sortedCopy(returns)
	idx := int(math.Floor(float64(len(sorted)) * 0.05))
	return math.Abs(Mean(sorted[:idx+1]))
}

// Correlation returns the Pearson correlation of two equal-length series, or
// 0 when either variance is zero. Series are truncated to the shorter length.
func Correlation(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	a = a[:n]
	b = b[:n]
	meanA := Mean(a)
	meanB := Mean(b)
	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

// CorrelationMatrix builds a square, symmetric correlation matrix from the
// given return series, one row/column per series, diagonal exactly 1.
func CorrelationMatrix(series [][]float64) [][]float64 {
	n := len(series)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1.0
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c := Correlation(series[i], series[j])
			matrix[i][j] = c
			matrix[j][i] = c
		}
	}
	return matrix
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}
