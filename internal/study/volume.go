package study

import "quantlab/internal/domain"

// volumeAnalysis reports average volume split by day direction and next-day
// behavior after unusually high-volume days.
func volumeAnalysis(bars []domain.Bar, params domain.StudyParams) *domain.VolumeResult {
	threshold := orDefaultF(params.HighVolumeThreshold, defaultVolThreshold)

	var totalVol float64
	for _, b := range bars {
		totalVol += float64(b.Volume)
	}
	avgVol := safeDiv(totalVol, float64(len(bars)))

	var upVol, downVol float64
	var upDays, downDays int
	for i := 1; i < len(bars); i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			upVol += float64(bars[i].Volume)
			upDays++
		case bars[i].Close < bars[i-1].Close:
			downVol += float64(bars[i].Volume)
			downDays++
		}
	}
	upAvg := safeDiv(upVol, float64(upDays))
	downAvg := safeDiv(downVol, float64(downDays))

	bias := "neutral"
	if downAvg > 0 {
		switch r := upAvg / downAvg; {
		case r > 1.1:
			bias = "accumulation"
		case r < 0.9:
			bias = "distribution"
		}
	}

	var triggers []int
	for i, b := range bars {
		if avgVol > 0 && float64(b.Volume) > threshold*avgVol {
			triggers = append(triggers, i)
		}
	}

	return &domain.VolumeResult{
		AvgVolume:        avgVol,
		UpDayAvgVolume:   upAvg,
		DownDayAvgVolume: downAvg,
		HighVolumeDays:   len(triggers),
		AfterHighVolume:  forwardStats(closes(bars), triggers, 1),
		VolumeBias:       bias,
	}
}
