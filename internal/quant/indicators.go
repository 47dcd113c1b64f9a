package quant

// SMA returns the simple moving average of the last period values, or 0 when
// there is not enough data.
func SMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period)
}

// SMASeries returns the rolling period-SMA. Entry k of the result corresponds
// to input index period-1+k; the result has len(values)-period+1 entries.
func SMASeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	out := make([]float64, 0, len(values)-period+1)
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// EMASeries returns the exponential moving average seeded with the SMA of the
// first period values, multiplier 2/(period+1). Alignment matches SMASeries.
func EMASeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	out := make([]float64, 0, len(values)-period+1)
	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	ema := seed / float64(period)
	out = append(out, ema)

	k := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*k + ema
		out = append(out, ema)
	}
	return out
}

// EMA returns the latest exponential moving average, or 0 when there is not
// enough data.
func EMA(values []float64, period int) float64 {
	series := EMASeries(values, period)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

// RSISeries computes the Wilder-smoothed RSI. Entry k corresponds to close
// index period+k; the result has len(closes)-period entries. Requires at
// least period+1 closes.
func RSISeries(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) < period+1 {
		return nil
	}

	// Average gain/loss over the first period changes.
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	out := make([]float64, 0, len(closes)-period)
	out = append(out, rsiFromAverages(avgGain, avgLoss))

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out = append(out, rsiFromAverages(avgGain, avgLoss))
	}
	return out
}

// RSI returns the latest Wilder RSI, or 50 when there is not enough data.
func RSI(closes []float64, period int) float64 {
	series := RSISeries(closes, period)
	if len(series) == 0 {
		return 50.0
	}
	return series[len(series)-1]
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// TrueRanges computes the true range for each bar after the first:
// max(high-low, |high-prevClose|, |low-prevClose|). The result has n-1
// entries.
func TrueRanges(highs, lows, closes []float64) []float64 {
	n := len(closes)
	if n < 2 || len(highs) != n || len(lows) != n {
		return nil
	}
	out := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		tr := highs[i] - lows[i]
		if hc := abs(highs[i] - closes[i-1]); hc > tr {
			tr = hc
		}
		if lc := abs(lows[i] - closes[i-1]); lc > tr {
			tr = lc
		}
		out = append(out, tr)
	}
	return out
}

// ATR computes the Average True Range with Wilder smoothing: a simple-average
// seed over the first period true ranges, then
// ATR_t = (ATR_{t-1}*(period-1) + TR_t) / period. Returns 0 when there is not
// enough data.
func ATR(highs, lows, closes []float64, period int) float64 {
	trs := TrueRanges(highs, lows, closes)
	if period <= 0 || len(trs) < period {
		return 0
	}
	atr := 0.0
	for i := 0; i < period; i++ {
		atr += trs[i]
	}
	atr /= float64(period)
	for i := period; i < len(trs); i++ {
		atr = (atr*float64(period-1) + trs[i]) / float64(period)
	}
	return atr
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
