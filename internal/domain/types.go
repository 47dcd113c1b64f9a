// Package domain defines the core value types shared across the quantlab
// engine: OHLCV bars, allocations, executed trades, portfolio snapshots, and
// the result shapes produced by backtests and studies. All types are plain
// immutable values; nothing in this package performs I/O.
package domain

import "time"

// Market identifies the market a symbol trades in.
type Market string

// Market constants.
const (
	MarketUS Market = "us"
)

// Bar is one trading day's OHLCV data for a single instrument.
type Bar struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// TradeSide is the direction of an executed trade.
type TradeSide string

// Trade side constants.
const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// StrategyKind selects the trading rule a backtest simulates.
type StrategyKind string

// Strategy kinds.
const (
	StrategyBuyAndHold        StrategyKind = "buy_and_hold"
	StrategyPeriodicRebalance StrategyKind = "periodic_rebalance"
	StrategyMomentum          StrategyKind = "momentum"
	StrategyMeanReversion     StrategyKind = "mean_reversion"
	StrategyRSIThreshold      StrategyKind = "rsi_threshold"
)

// RebalanceFrequency is the calendar period for periodic rebalancing.
type RebalanceFrequency string

// Rebalance frequencies.
const (
	RebalanceMonthly   RebalanceFrequency = "monthly"
	RebalanceQuarterly RebalanceFrequency = "quarterly"
)

// DataQuality grades how complete a validated bar series is.
type DataQuality string

// Data quality grades.
const (
	QualityHigh   DataQuality = "high"
	QualityMedium DataQuality = "medium"
	QualityLow    DataQuality = "low"
)

// Allocation assigns a percentage weight to a ticker. A portfolio
// configuration is a list of allocations whose weights sum to 100.
type Allocation struct {
	Ticker        string  `json:"ticker"`
	WeightPercent float64 `json:"weightPercent"`
}

// ExecutedTrade is an append-only record of a simulated fill.
type ExecutedTrade struct {
	Date   time.Time `json:"date"`
	Ticker string    `json:"ticker"`
	Side   TradeSide `json:"side"`
	Shares int64     `json:"shares"`
	Price  float64   `json:"price"`
}

// PortfolioSnapshot is the portfolio's marked-to-market state at the close of
// one trading day.
type PortfolioSnapshot struct {
	Date          time.Time `json:"date"`
	TotalValue    float64   `json:"totalValue"`
	Cash          float64   `json:"cash"`
	HoldingsValue float64   `json:"holdingsValue"`
}

// SummaryMetrics are the headline performance numbers for a simulated
// portfolio-value series.
type SummaryMetrics struct {
	TotalReturnPct       float64 `json:"totalReturnPct"`
	AnnualizedReturnPct  float64 `json:"annualizedReturnPct"`
	AnnualizedVolatility float64 `json:"annualizedVolatilityPct"`
	SharpeRatio          float64 `json:"sharpeRatio"`
	MaxDrawdownPct       float64 `json:"maxDrawdownPct"`
}

// BacktestResult aggregates everything a completed simulation produced.
type BacktestResult struct {
	Metrics          SummaryMetrics      `json:"metrics"`
	Trades           []ExecutedTrade     `json:"trades"`
	PortfolioHistory []PortfolioSnapshot `json:"portfolioHistory"`
	FinalHoldings    map[string]int64    `json:"finalHoldings"`
	BarsAnalyzed     int                 `json:"barsAnalyzed"`
	Warnings         []string            `json:"warnings,omitempty"`
	UsedFallbackData bool                `json:"usedFallbackData"`
}

// ValidationReport is the outcome of sanity-checking a bar series. IsValid is
// false only for structural violations; sparse-but-clean data stays valid
// with a reduced DataQuality.
type ValidationReport struct {
	IsValid     bool        `json:"isValid"`
	DataQuality DataQuality `json:"dataQuality"`
	Issues      []string    `json:"issues,omitempty"`
}
