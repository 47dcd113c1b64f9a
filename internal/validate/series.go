// Package validate sanity-checks inputs before the engine trusts them: raw
// bar series, correlation matrices, and computed portfolio metrics. A report
// is invalid only for structural violations; sparse-but-clean data stays
// valid with a downgraded quality grade.
package validate

import (
	"fmt"
	"time"

	"quantlab/internal/domain"
	"quantlab/internal/util"
)

// Coverage thresholds for grading a series against its expected range.
const (
	highCoverage   = 0.90
	mediumCoverage = 0.60
)

// DateRange is an optional expected calendar window for coverage checks.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Series checks a raw bar series for structural problems and, when an
// expected range is given, grades its coverage. Zero-volume bars and sparse
// coverage are flagged but never invalidate the series.
func Series(ticker string, bars []domain.Bar, expected *DateRange) domain.ValidationReport {
	report := domain.ValidationReport{IsValid: true, DataQuality: domain.QualityHigh}

	if len(bars) == 0 {
		report.IsValid = false
		report.DataQuality = domain.QualityLow
		report.Issues = append(report.Issues, "No data provided")
		return report
	}

	for i, b := range bars {
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			report.IsValid = false
			report.Issues = append(report.Issues,
				fmt.Sprintf("%s bar %d (%s): non-positive price", ticker, i, b.Timestamp.Format("2006-01-02")))
		}
		if b.High < b.Low {
			report.IsValid = false
			report.Issues = append(report.Issues,
				fmt.Sprintf("%s bar %d (%s): high below low", ticker, i, b.Timestamp.Format("2006-01-02")))
		}
		if b.Volume == 0 {
			report.Issues = append(report.Issues,
				fmt.Sprintf("%s bar %d (%s): zero volume", ticker, i, b.Timestamp.Format("2006-01-02")))
		}
		if i > 0 && !bars[i].Timestamp.After(bars[i-1].Timestamp) {
			report.IsValid = false
			report.Issues = append(report.Issues,
				fmt.Sprintf("%s bar %d (%s): timestamp out of order", ticker, i, b.Timestamp.Format("2006-01-02")))
		}
	}

	if expected != nil {
		cal := util.NewTradingCalendar()
		want := cal.CountTradingDays(expected.Start, expected.End)
		if want > 0 {
			coverage := float64(len(bars)) / float64(want)
			switch {
			case coverage >= highCoverage:
				// full coverage, nothing to note
			case coverage >= mediumCoverage:
				report.DataQuality = domain.QualityMedium
				report.Issues = append(report.Issues,
					fmt.Sprintf("%s: sparse coverage %.0f%% of expected trading days", ticker, coverage*100))
			default:
				report.DataQuality = domain.QualityLow
				report.Issues = append(report.Issues,
					fmt.Sprintf("%s: low coverage %.0f%% of expected trading days", ticker, coverage*100))
			}
		}
	}

	return report
}
