package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	attempts := 0
	targetAttempts := 3

	err := Retry(context.Background(), 5, 0, func() error {
		attempts++
		if attempts < targetAttempts {
			return errors.New("transient error")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Retry returned unexpected error: %v", err)
	}
	if attempts != targetAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, targetAttempts)
	}
}

func TestRetryAllFail(t *testing.T) {
	attempts := 0
	maxAttempts := 3

	err := Retry(context.Background(), maxAttempts, 0, func() error {
		attempts++
		return errors.New("persistent error")
	})

	if err == nil {
		t.Fatal("Retry should return error when all attempts fail")
	}
	if attempts != maxAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, maxAttempts)
	}
}

func TestRateLimiterNew(t *testing.T) {
	rl := NewRateLimiter(60)
	if rl == nil {
		t.Fatal("NewRateLimiter returned nil")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		if logger := NewLogger(level, "json"); logger == nil {
			t.Errorf("NewLogger(%q) returned nil", level)
		}
	}
	if logger := NewLogger("info", "text"); logger == nil {
		t.Error("NewLogger with text format returned nil")
	}
}

func TestTradingCalendarIsTradingDay(t *testing.T) {
	cal := NewTradingCalendar()

	monday := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)

	if !cal.IsTradingDay(monday) {
		t.Error("Monday should be a trading day")
	}
	if cal.IsTradingDay(saturday) || cal.IsTradingDay(sunday) {
		t.Error("weekend days should not be trading days")
	}
}

func TestTradingCalendarTradingDays(t *testing.T) {
	cal := NewTradingCalendar()

	// Mon 2024-01-08 through Sun 2024-01-14: five weekdays.
	start := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)

	days := cal.TradingDays(start, end)
	if len(days) != 5 {
		t.Fatalf("TradingDays returned %d days, want 5", len(days))
	}
	for i := 1; i < len(days); i++ {
		if !days[i].After(days[i-1]) {
			t.Errorf("trading days out of order at index %d", i)
		}
	}
	if got := cal.CountTradingDays(start, end); got != 5 {
		t.Errorf("CountTradingDays = %d, want 5", got)
	}
}

func TestCountTradingDaysSingleDay(t *testing.T) {
	cal := NewTradingCalendar()
	wednesday := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	if got := cal.CountTradingDays(wednesday, wednesday); got != 1 {
		t.Errorf("CountTradingDays over one weekday = %d, want 1", got)
	}
}
