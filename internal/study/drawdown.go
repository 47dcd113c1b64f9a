package study

import "quantlab/internal/domain"

// drawdownAnalysis enumerates every peak-to-trough-to-recovery episode in the
// close series, not just the global worst. An episode still under water at
// the series end is included with Recovered false.
func drawdownAnalysis(bars []domain.Bar) *domain.DrawdownResult {
	result := &domain.DrawdownResult{}
	if len(bars) == 0 {
		return result
	}

	peakIdx := 0
	troughIdx := 0
	inDrawdown := false

	flush := func(recoveryIdx int, recovered bool) {
		peak := bars[peakIdx].Close
		trough := bars[troughIdx].Close
		if peak == 0 || trough >= peak {
			return
		}
		ep := domain.DrawdownEpisode{
			PeakDate:   bars[peakIdx].Timestamp,
			TroughDate: bars[troughIdx].Timestamp,
			DepthPct:   (peak - trough) / peak * 100,
			LengthDays: recoveryIdx - peakIdx,
			Recovered:  recovered,
		}
		if recovered {
			ep.RecoveryDate = bars[recoveryIdx].Timestamp
		}
		result.Episodes = append(result.Episodes, ep)
	}

	for i := 1; i < len(bars); i++ {
		c := bars[i].Close
		if c >= bars[peakIdx].Close {
			if inDrawdown {
				flush(i, true)
				inDrawdown = false
			}
			peakIdx = i
			troughIdx = i
			continue
		}
		if !inDrawdown {
			inDrawdown = true
			troughIdx = i
			continue
		}
		if c < bars[troughIdx].Close {
			troughIdx = i
		}
	}
	if inDrawdown {
		flush(len(bars)-1, false)
	}

	result.Count = len(result.Episodes)
	var sum float64
	for _, ep := range result.Episodes {
		sum += ep.DepthPct
		if ep.DepthPct > result.MaxDepthPct {
			result.MaxDepthPct = ep.DepthPct
		}
	}
	result.AvgDepthPct = safeDiv(sum, float64(result.Count))
	return result
}
