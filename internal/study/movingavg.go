package study

import (
	"time"

	"quantlab/internal/domain"
	"quantlab/internal/quant"
)

// movingAverage reports SMA/EMA levels at short/medium/long periods and the
// most recent golden or death cross of the medium SMA over the long SMA.
func movingAverage(bars []domain.Bar, params domain.StudyParams) *domain.MovingAverageResult {
	short := orDefault(params.ShortPeriod, defaultShortPeriod)
	medium := orDefault(params.MediumPeriod, defaultMediumPeriod)
	long := orDefault(params.LongPeriod, defaultLongPeriod)

	closePrices := closes(bars)
	result := &domain.MovingAverageResult{
		ShortPeriod:  short,
		MediumPeriod: medium,
		LongPeriod:   long,
		SMAShort:     quant.SMA(closePrices, short),
		SMAMedium:    quant.SMA(closePrices, medium),
		SMALong:      quant.SMA(closePrices, long),
		EMAShort:     quant.EMA(closePrices, short),
		EMAMedium:    quant.EMA(closePrices, medium),
		EMALong:      quant.EMA(closePrices, long),
	}
	result.LastCross, result.LastCrossDate = lastSMACross(bars, closePrices, medium, long)
	return result
}

// lastSMACross scans for the latest sign change of (medium SMA - long SMA).
// Returns "none" when the series is too short or no cross occurred.
func lastSMACross(bars []domain.Bar, closePrices []float64, medium, long int) (string, time.Time) {
	if medium >= long {
		return "none", time.Time{}
	}
	smaM := quant.SMASeries(closePrices, medium)
	smaL := quant.SMASeries(closePrices, long)
	if len(smaL) < 2 {
		return "none", time.Time{}
	}

	cross := "none"
	var crossDate time.Time
	// Index i into the close series, starting where both SMAs exist.
	for i := long; i < len(closePrices); i++ {
		prevDiff := smaM[i-1-(medium-1)] - smaL[i-1-(long-1)]
		currDiff := smaM[i-(medium-1)] - smaL[i-(long-1)]
		if prevDiff <= 0 && currDiff > 0 {
			cross = "golden"
			crossDate = bars[i].Timestamp
		} else if prevDiff >= 0 && currDiff < 0 {
			cross = "death"
			crossDate = bars[i].Timestamp
		}
	}
	return cross, crossDate
}

// trendStrength scores the trend 0-5: one point each for price above the
// short, medium, and long SMA, the short SMA above the medium, and the
// medium above the long. MAs the series is too short for score nothing.
func trendStrength(bars []domain.Bar, params domain.StudyParams) *domain.TrendStrengthResult {
	short := orDefault(params.ShortPeriod, defaultShortPeriod)
	medium := orDefault(params.MediumPeriod, defaultMediumPeriod)
	long := orDefault(params.LongPeriod, defaultLongPeriod)

	closePrices := closes(bars)
	price := closePrices[len(closePrices)-1]
	smaS := quant.SMA(closePrices, short)
	smaM := quant.SMA(closePrices, medium)
	smaL := quant.SMA(closePrices, long)

	result := &domain.TrendStrengthResult{
		PriceAboveShort:  smaS > 0 && price > smaS,
		PriceAboveMedium: smaM > 0 && price > smaM,
		PriceAboveLong:   smaL > 0 && price > smaL,
		ShortAboveMedium: smaS > 0 && smaM > 0 && smaS > smaM,
		MediumAboveLong:  smaM > 0 && smaL > 0 && smaM > smaL,
	}
	for _, ok := range []bool{
		result.PriceAboveShort, result.PriceAboveMedium, result.PriceAboveLong,
		result.ShortAboveMedium, result.MediumAboveLong,
	} {
		if ok {
			result.Score++
		}
	}
	switch {
	case result.Score >= 4:
		result.Direction = "bullish"
	case result.Score <= 1:
		result.Direction = "bearish"
	default:
		result.Direction = "mixed"
	}
	return result
}
