package study

import (
	"math"
	"sort"

	"quantlab/internal/domain"
	"quantlab/internal/quant"
)

// priceHistogramBuckets is the bucket count for the volume-at-price ladder.
const priceHistogramBuckets = 50

// supportResistanceLevels is how many levels to report per side.
const supportResistanceLevels = 3

// priceTargets projects forward price bands with the lognormal-drift
// identity price*(1 + mean ± k*stdDev)^days for k in {0, 1, 2}, and derives
// a volume-weighted support/resistance ladder from a 50-bucket price/volume
// histogram.
func priceTargets(bars []domain.Bar, params domain.StudyParams) *domain.PriceTargetsResult {
	days := orDefault(params.TargetDays, defaultTargetDays)

	closePrices := closes(bars)
	price := closePrices[len(closePrices)-1]
	returns := quant.SimpleReturns(closePrices)
	mean := quant.Mean(returns)
	sd := quant.StdDev(returns)

	targets := make([]domain.PriceTarget, 0, 3)
	for k := 0.0; k <= 2.0; k++ {
		targets = append(targets, domain.PriceTarget{
			Sigma: k,
			Upper: price * math.Pow(1+mean+k*sd, float64(days)),
			Lower: price * math.Pow(1+mean-k*sd, float64(days)),
		})
	}

	support, resistance := volumeLadder(bars, price)

	return &domain.PriceTargetsResult{
		CurrentPrice:    price,
		HorizonDays:     days,
		MeanDailyReturn: mean,
		DailyStdDev:     sd,
		Targets:         targets,
		Support:         support,
		Resistance:      resistance,
	}
}

// volumeLadder buckets traded volume by close price and returns the
// heaviest levels below and above the current price.
func volumeLadder(bars []domain.Bar, price float64) (support, resistance []domain.PriceLevel) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, b := range bars {
		if b.Low < lo {
			lo = b.Low
		}
		if b.High > hi {
			hi = b.High
		}
	}
	if hi <= lo {
		return nil, nil
	}

	width := (hi - lo) / priceHistogramBuckets
	volumes := make([]int64, priceHistogramBuckets)
	for _, b := range bars {
		idx := int((b.Close - lo) / width)
		if idx < 0 {
			idx = 0
		}
		if idx >= priceHistogramBuckets {
			idx = priceHistogramBuckets - 1
		}
		volumes[idx] += b.Volume
	}

	levels := make([]domain.PriceLevel, 0, priceHistogramBuckets)
	for i, v := range volumes {
		if v == 0 {
			continue
		}
		levels = append(levels, domain.PriceLevel{
			Price:  lo + (float64(i)+0.5)*width,
			Volume: v,
		})
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].Volume > levels[j].Volume })

	for _, lvl := range levels {
		if lvl.Price < price && len(support) < supportResistanceLevels {
			support = append(support, lvl)
		} else if lvl.Price > price && len(resistance) < supportResistanceLevels {
			resistance = append(resistance, lvl)
		}
	}
	return support, resistance
}
