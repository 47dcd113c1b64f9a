package study

import (
	"errors"
	"math"
	"testing"
	"time"

	"quantlab/internal/domain"
)

// barsFromCloses builds a weekday bar series where each bar opens at the
// prior close.
func barsFromCloses(closes ...float64) []domain.Bar {
	bars := make([]domain.Bar, 0, len(closes))
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		bars = append(bars, domain.Bar{
			Symbol:    "TEST",
			Timestamp: date,
			Open:      open,
			High:      math.Max(open, c) + 0.5,
			Low:       math.Min(open, c) - 0.5,
			Close:     c,
			Volume:    1_000_000,
		})
		date = nextWeekday(date)
	}
	return bars
}

// syntheticBars builds n weekday bars with a deterministic oscillating price
// path and varying volume.
func syntheticBars(n int) []domain.Bar {
	bars := make([]domain.Bar, 0, n)
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	price := 100.0
	for i := 0; i < n; i++ {
		open := price
		price = price * (1 + 0.01*math.Sin(float64(i)) + 0.0002)
		high := math.Max(open, price) * 1.005
		low := math.Min(open, price) * 0.995
		bars = append(bars, domain.Bar{
			Symbol:    "TEST",
			Timestamp: date,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     price,
			Volume:    int64(1_000_000 + 100_000*(i%7)),
		})
		date = nextWeekday(date)
	}
	return bars
}

func nextWeekday(d time.Time) time.Time {
	d = d.AddDate(0, 0, 1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func TestRunRejectsUnknownType(t *testing.T) {
	_, err := Run("TEST", "astrology", syntheticBars(30), domain.StudyParams{})
	if !errors.Is(err, domain.ErrUnsupportedStudy) {
		t.Fatalf("Run with unknown type returned %v, want ErrUnsupportedStudy", err)
	}
}

func TestRunRejectsShortSeries(t *testing.T) {
	_, err := Run("TEST", domain.StudyCloseAboveOpen, syntheticBars(domain.MinStudyBars-1), domain.StudyParams{})
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("Run with short series returned %v, want ErrInsufficientData", err)
	}
}

func TestRunAllTypes(t *testing.T) {
	bars := syntheticBars(260)
	for _, typ := range domain.AllStudyTypes {
		result, err := Run("TEST", typ, bars, domain.StudyParams{})
		if err != nil {
			t.Errorf("Run(%s) returned error: %v", typ, err)
			continue
		}
		if result.Type != typ {
			t.Errorf("Run(%s) result type = %s", typ, result.Type)
		}
		if result.BarsAnalyzed != len(bars) {
			t.Errorf("Run(%s) BarsAnalyzed = %d, want %d", typ, result.BarsAnalyzed, len(bars))
		}
	}
}

func TestCloseAboveOpen(t *testing.T) {
	bars := []domain.Bar{
		{Open: 10, Close: 11},
		{Open: 10, Close: 12},
		{Open: 10, Close: 10.5},
		{Open: 10, Close: 10}, // tie
		{Open: 10, Close: 9},
	}

	r := closeAboveOpen(bars)
	if r.TotalDays != 5 || r.MatchedDays != 3 || r.UnchangedDays != 1 {
		t.Errorf("closeAboveOpen = %+v, want 3/5 matched, 1 unchanged", r)
	}
	if r.MatchedPct != 60 {
		t.Errorf("MatchedPct = %v, want 60", r.MatchedPct)
	}
	if r.UnchangedPct != 20 {
		t.Errorf("UnchangedPct = %v, want 20", r.UnchangedPct)
	}
}

func TestCloseAbovePrior(t *testing.T) {
	bars := barsFromCloses(10, 11, 11, 10, 12)

	// Four prior-close comparisons: up, tie, down, up.
	r := closeAbovePrior(bars)
	if r.TotalDays != 4 {
		t.Fatalf("TotalDays = %d, want 4", r.TotalDays)
	}
	if r.MatchedDays != 2 || r.MatchedPct != 50 {
		t.Errorf("matched = %d (%v%%), want 2 (50%%)", r.MatchedDays, r.MatchedPct)
	}
	if r.UnchangedDays != 1 || r.UnchangedPct != 25 {
		t.Errorf("unchanged = %d (%v%%), want 1 (25%%)", r.UnchangedDays, r.UnchangedPct)
	}
}

func TestStreaks(t *testing.T) {
	r := streaks(barsFromCloses(10, 11, 12, 11, 10, 9, 10))

	if r.UpStreaks != 2 {
		t.Errorf("UpStreaks = %d, want 2", r.UpStreaks)
	}
	if r.DownStreaks != 1 {
		t.Errorf("DownStreaks = %d, want 1", r.DownStreaks)
	}
	if r.MaxUpStreak != 2 {
		t.Errorf("MaxUpStreak = %d, want 2", r.MaxUpStreak)
	}
	if r.MaxDownStreak != 3 {
		t.Errorf("MaxDownStreak = %d, want 3", r.MaxDownStreak)
	}
	if r.AvgUpStreak != 1.5 {
		t.Errorf("AvgUpStreak = %v, want 1.5", r.AvgUpStreak)
	}
	if r.Current != 1 {
		t.Errorf("Current = %d, want +1 (open up streak)", r.Current)
	}
}

func TestStreaksSkipFlatDays(t *testing.T) {
	// Flat closes neither extend nor break the streak.
	r := streaks(barsFromCloses(10, 10, 11, 11, 12))

	if r.UpStreaks != 1 {
		t.Errorf("UpStreaks = %d, want 1", r.UpStreaks)
	}
	if r.MaxUpStreak != 2 {
		t.Errorf("MaxUpStreak = %d, want 2", r.MaxUpStreak)
	}
	if r.Current != 2 {
		t.Errorf("Current = %d, want +2", r.Current)
	}
}

func TestReturnDistribution(t *testing.T) {
	r := returnDistribution(barsFromCloses(100, 101, 100, 102, 99))

	if !(r.MinPct < r.MaxPct) {
		t.Errorf("MinPct %v should be below MaxPct %v", r.MinPct, r.MaxPct)
	}
	p := r.Percentiles
	if p.P5 > p.P25 || p.P25 > p.P50 || p.P50 > p.P75 || p.P75 > p.P95 {
		t.Errorf("percentiles not monotonic: %+v", p)
	}

	total := 0
	for _, b := range r.Histogram {
		total += b.Count
		if b.ToPct-b.FromPct != 0.5 {
			t.Errorf("bucket [%v, %v) is not 0.5pp wide", b.FromPct, b.ToPct)
		}
	}
	if total != 4 {
		t.Errorf("histogram counts sum to %d, want 4 returns", total)
	}
}

func TestForwardStats(t *testing.T) {
	closePrices := []float64{100, 102, 104, 106, 108, 110}

	// Trigger at index 0, horizon 2: return (104-100)/100.
	fs := forwardStats(closePrices, []int{0, 2}, 2)
	if fs.Events != 2 {
		t.Fatalf("Events = %d, want 2", fs.Events)
	}
	if fs.HitRatePct != 100 {
		t.Errorf("HitRatePct = %v, want 100 for rising closes", fs.HitRatePct)
	}
	wantAvg := ((104.0-100)/100 + (108.0-104)/104) / 2 * 100
	if math.Abs(fs.AvgReturnPct-wantAvg) > 1e-9 {
		t.Errorf("AvgReturnPct = %v, want %v", fs.AvgReturnPct, wantAvg)
	}
}

func TestForwardStatsDropsTruncatedEvents(t *testing.T) {
	closePrices := []float64{100, 101, 102}

	// A trigger too close to the series end has no forward close.
	fs := forwardStats(closePrices, []int{2}, 5)
	if fs.Events != 0 {
		t.Errorf("Events = %d, want 0 when the horizon runs off the series", fs.Events)
	}
}
