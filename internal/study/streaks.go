package study

import "quantlab/internal/domain"

// streaks finds consecutive same-direction close runs. A streak breaks only
// on a direction change; flat closes are excluded from the classification and
// terminate nothing. The still-open streak at the series end is counted and
// also reported signed in Current.
func streaks(bars []domain.Bar) *domain.StreaksResult {
	var (
		ups, downs []int
		dir        int // +1 up, -1 down, 0 none yet
		length     int
	)

	record := func() {
		if length == 0 {
			return
		}
		if dir > 0 {
			ups = append(ups, length)
		} else {
			downs = append(downs, length)
		}
	}

	for i := 1; i < len(bars); i++ {
		var d int
		switch {
		case bars[i].Close > bars[i-1].Close:
			d = 1
		case bars[i].Close < bars[i-1].Close:
			d = -1
		default:
			continue // flat day, not classified
		}
		if d == dir {
			length++
			continue
		}
		record()
		dir = d
		length = 1
	}
	record() // still-open streak

	result := &domain.StreaksResult{
		UpStreaks:   len(ups),
		DownStreaks: len(downs),
		Current:     dir * length,
	}
	result.MaxUpStreak, result.AvgUpStreak = streakStats(ups)
	result.MaxDownStreak, result.AvgDownStreak = streakStats(downs)
	return result
}

func streakStats(lengths []int) (maxLen int, avg float64) {
	if len(lengths) == 0 {
		return 0, 0
	}
	sum := 0
	for _, l := range lengths {
		sum += l
		if l > maxLen {
			maxLen = l
		}
	}
	return maxLen, float64(sum) / float64(len(lengths))
}
