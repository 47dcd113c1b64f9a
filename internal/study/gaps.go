package study

import (
	"math"

	"quantlab/internal/domain"
)

// gapThresholdPct is the minimum open-vs-prior-close move, in percent, that
// counts as a gap.
const gapThresholdPct = 0.5

// gapAnalysis classifies opening gaps. A gap is filled when the day's range
// touches the prior close; a continuation closes in the gap's direction.
func gapAnalysis(bars []domain.Bar) *domain.GapAnalysisResult {
	var up, down gapAccum
	for i := 1; i < len(bars); i++ {
		prior := bars[i-1].Close
		if prior == 0 {
			continue
		}
		gapPct := (bars[i].Open - prior) / prior * 100
		if math.Abs(gapPct) < gapThresholdPct {
			continue
		}
		if gapPct > 0 {
			up.add(gapPct,
				bars[i].Low <= prior,          // filled
				bars[i].Close > bars[i].Open) // continuation
		} else {
			down.add(gapPct,
				bars[i].High >= prior,
				bars[i].Close < bars[i].Open)
		}
	}
	return &domain.GapAnalysisResult{
		UpGaps:   up.stats(),
		DownGaps: down.stats(),
	}
}

type gapAccum struct {
	count        int
	filled       int
	continuation int
	sumPct       float64
}

func (g *gapAccum) add(gapPct float64, filled, continuation bool) {
	g.count++
	g.sumPct += gapPct
	if filled {
		g.filled++
	}
	if continuation {
		g.continuation++
	}
}

func (g *gapAccum) stats() domain.GapStats {
	return domain.GapStats{
		Count:           g.count,
		Filled:          g.filled,
		Continuation:    g.continuation,
		FilledPct:       ratio(g.filled, g.count),
		ContinuationPct: ratio(g.continuation, g.count),
		AvgGapPct:       safeDiv(g.sumPct, float64(g.count)),
	}
}
