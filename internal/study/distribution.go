package study

import (
	"math"
	"sort"

	"quantlab/internal/domain"
	"quantlab/internal/quant"
)

// histogramBucketWidth is the fixed return-histogram bucket width in
// percentage points.
const histogramBucketWidth = 0.5

// returnDistribution describes the daily-return distribution: moments,
// nearest-rank percentiles, and a fixed-width histogram spanning floor(min)
// to ceil(max).
func returnDistribution(bars []domain.Bar) *domain.DistributionResult {
	returns := quant.SimpleReturns(closes(bars))
	pct := make([]float64, len(returns))
	for i, r := range returns {
		pct[i] = r * 100
	}

	if len(pct) == 0 {
		return &domain.DistributionResult{}
	}

	sorted := make([]float64, len(pct))
	copy(sorted, pct)
	sort.Float64s(sorted)

	minPct := sorted[0]
	maxPct := sorted[len(sorted)-1]

	return &domain.DistributionResult{
		MeanPct:   quant.Mean(pct),
		StdDevPct: quant.StdDev(pct),
		MinPct:    minPct,
		MaxPct:    maxPct,
		Percentiles: domain.DistributionPercentiles{
			P5:  quant.Percentile(sorted, 5),
			P25: quant.Percentile(sorted, 25),
			P50: quant.Percentile(sorted, 50),
			P75: quant.Percentile(sorted, 75),
			P95: quant.Percentile(sorted, 95),
		},
		Histogram:      histogram(pct, minPct, maxPct),
		Skewness:       quant.Skewness(pct),
		ExcessKurtosis: quant.ExcessKurtosis(pct),
	}
}

// histogram buckets percent returns into fixed 0.5pp-wide buckets from
// floor(min) to ceil(max).
func histogram(pct []float64, minPct, maxPct float64) []domain.HistogramBucket {
	lo := math.Floor(minPct)
	hi := math.Ceil(maxPct)
	if hi <= lo {
		hi = lo + histogramBucketWidth
	}

	n := int(math.Ceil((hi - lo) / histogramBucketWidth))
	buckets := make([]domain.HistogramBucket, n)
	for i := range buckets {
		buckets[i].FromPct = lo + float64(i)*histogramBucketWidth
		buckets[i].ToPct = lo + float64(i+1)*histogramBucketWidth
	}

	for _, r := range pct {
		idx := int((r - lo) / histogramBucketWidth)
		if idx < 0 {
			idx = 0
		}
		if idx >= n {
			idx = n - 1
		}
		buckets[idx].Count++
	}
	return buckets
}
