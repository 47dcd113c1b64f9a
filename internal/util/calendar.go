package util

import "time"

// TradingCalendar answers trading-day questions for US equities. It treats
// every weekday as a trading day; exchange holidays are not modeled, so
// expected-day counts are a slight overestimate. Consumers use it for
// coverage estimation, not execution timing.
type TradingCalendar struct{}

// NewTradingCalendar creates a TradingCalendar.
func NewTradingCalendar() *TradingCalendar {
	return &TradingCalendar{}
}

// IsTradingDay reports whether t falls on a weekday.
func (tc *TradingCalendar) IsTradingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// TradingDays returns every weekday in [start, end], at midnight UTC, in
// ascending order.
func (tc *TradingCalendar) TradingDays(start, end time.Time) []time.Time {
	var days []time.Time
	d := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	for !d.After(last) {
		if tc.IsTradingDay(d) {
			days = append(days, d)
		}
		d = d.AddDate(0, 0, 1)
	}
	return days
}

// CountTradingDays returns the number of weekdays in [start, end].
func (tc *TradingCalendar) CountTradingDays(start, end time.Time) int {
	count := 0
	d := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	for !d.After(last) {
		if tc.IsTradingDay(d) {
			count++
		}
		d = d.AddDate(0, 0, 1)
	}
	return count
}
