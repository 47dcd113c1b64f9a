// Package store defines storage interfaces for cached bar data and persisted
// backtest runs, with Parquet and SQLite implementations.
package store

import (
	"context"
	"time"

	"quantlab/internal/domain"
)

// BarStore persists and retrieves daily OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars.
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns bars for the given symbol within [start, end], in
	// ascending date order.
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols with cached bars.
	ListSymbols(ctx context.Context) ([]string, error)
}

// BacktestRun is one persisted simulation: configuration, headline metrics,
// and the trade log.
type BacktestRun struct {
	ID             int64                  `json:"id"`
	CreatedAt      time.Time              `json:"createdAt"`
	Strategy       domain.StrategyKind    `json:"strategy"`
	StartDate      time.Time              `json:"startDate"`
	EndDate        time.Time              `json:"endDate"`
	InitialCapital float64                `json:"initialCapital"`
	Tickers        []string               `json:"tickers"`
	Metrics        domain.SummaryMetrics  `json:"metrics"`
	Trades         []domain.ExecutedTrade `json:"trades,omitempty"`
}

// RunStore persists completed backtest runs.
type RunStore interface {
	// SaveRun inserts a run and its trades, returning the assigned ID.
	SaveRun(ctx context.Context, run *BacktestRun) (int64, error)

	// GetRun retrieves one run with its trade log.
	GetRun(ctx context.Context, id int64) (*BacktestRun, error)

	// ListRuns returns the most recent runs, newest first, without trades.
	ListRuns(ctx context.Context, limit int) ([]BacktestRun, error)
}
