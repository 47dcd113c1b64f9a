// Package httpapi exposes the backtest and study engines over a JSON REST
// API, plus access to persisted backtest runs.
package httpapi

import (
	"quantlab/internal/domain"
	"quantlab/internal/store"
)

// AllocationJSON is one ticker's weight in a backtest request.
type AllocationJSON struct {
	Ticker        string  `json:"ticker"`
	WeightPercent float64 `json:"weightPercent"`
}

// BacktestRequest is the JSON body of POST /api/backtest. When
// PriceSeriesByTicker is supplied the server computes over it directly;
// otherwise bars are resolved through the configured provider chain.
type BacktestRequest struct {
	Allocations         []AllocationJSON        `json:"allocations"`
	StartDate           string                  `json:"startDate"` // YYYY-MM-DD
	EndDate             string                  `json:"endDate"`   // YYYY-MM-DD
	InitialCapital      float64                 `json:"initialCapital"`
	Strategy            string                  `json:"strategy"`
	RebalanceFrequency  string                  `json:"rebalanceFrequency,omitempty"`
	PriceSeriesByTicker map[string][]domain.Bar `json:"priceSeriesByTicker,omitempty"`
}

// BacktestResponse wraps a completed simulation.
type BacktestResponse struct {
	RunID       int64                  `json:"runId,omitempty"`
	DataQuality domain.DataQuality     `json:"dataQuality"`
	Result      *domain.BacktestResult `json:"result"`
}

// StudyRequest is the JSON body of POST /api/study.
type StudyRequest struct {
	Ticker      string             `json:"ticker"`
	StudyType   string             `json:"studyType"`
	StartDate   string             `json:"startDate"`
	EndDate     string             `json:"endDate"`
	Params      domain.StudyParams `json:"params,omitempty"`
	PriceSeries []domain.Bar       `json:"priceSeries,omitempty"`
}

// RunsResponse lists persisted backtest runs.
type RunsResponse struct {
	Runs []store.BacktestRun `json:"runs"`
}

// StudyTypesResponse lists the supported study types.
type StudyTypesResponse struct {
	StudyTypes []domain.StudyType `json:"studyTypes"`
}

// HealthResponse reports server status plus the advisory recalculation
// policy for UI clients.
type HealthResponse struct {
	Status       string `json:"status"`
	Provider     string `json:"provider"`
	DebounceMs   int    `json:"debounceMs"`
	StaleAfterMs int    `json:"staleAfterMs"`
}
