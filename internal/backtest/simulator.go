package backtest

import (
	"fmt"
	"math"
	"sort"
	"time"

	"quantlab/internal/domain"
	"quantlab/internal/quant"
)

// weightTolerance absorbs float representation noise in the sum-to-100
// check. Any real deviation is rejected.
const weightTolerance = 1e-9

// Config parameterizes one simulation run.
type Config struct {
	Allocations        []domain.Allocation
	InitialCapital     float64
	Strategy           domain.StrategyKind
	RebalanceFrequency domain.RebalanceFrequency
	RiskFreeRate       float64 // annual; 0 means quant.DefaultRiskFreeRate
}

// Run executes the simulation over the supplied bar series and returns the
// trade log, daily portfolio history, and summary metrics. Input errors and
// the no-data-at-all case are terminal; a single ticker without bars is
// excluded with a warning.
func Run(cfg Config, barsByTicker map[string][]domain.Bar) (*domain.BacktestResult, error) {
	if len(cfg.Allocations) == 0 {
		return nil, domain.ErrNoTickers
	}
	var weightSum float64
	for _, a := range cfg.Allocations {
		weightSum += a.WeightPercent
	}
	if math.Abs(weightSum-100) > weightTolerance {
		return nil, fmt.Errorf("%w: got %v", domain.ErrInvalidAllocation, weightSum)
	}
	if cfg.InitialCapital <= 0 {
		return nil, fmt.Errorf("initial capital must be positive, got %v", cfg.InitialCapital)
	}
	if cfg.RebalanceFrequency == "" {
		cfg.RebalanceFrequency = domain.RebalanceMonthly
	}
	if cfg.RiskFreeRate == 0 {
		cfg.RiskFreeRate = quant.DefaultRiskFreeRate
	}

	registry := NewRegistry(cfg.RebalanceFrequency)
	strat, ok := registry.Get(string(cfg.Strategy))
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}

	sim := newSimulation(cfg, barsByTicker)
	if len(sim.tickers) == 0 {
		return nil, fmt.Errorf("%w: no ticker has price data in the requested range", domain.ErrInsufficientData)
	}

	sim.walk(strat)
	return sim.result(cfg), nil
}

// simulation is the per-run state machine. Nothing here outlives one Run
// call, so concurrent simulations cannot interfere.
type simulation struct {
	tickers      []string
	priceByDate  map[string]map[string]float64 // date key -> ticker -> close
	dates        []time.Time
	barsAnalyzed int
	warnings     []string

	cash          float64
	shares        map[string]int64
	lastPrice     map[string]float64
	history       map[string][]float64
	pendingAlloc  map[string]float64 // reserved cash for unplaced initial buys
	lastWeights   map[string]float64
	lastRebalance time.Time

	trades    []domain.ExecutedTrade
	snapshots []domain.PortfolioSnapshot
}

const dateKeyLayout = "2006-01-02"

func newSimulation(cfg Config, barsByTicker map[string][]domain.Bar) *simulation {
	sim := &simulation{
		priceByDate:  make(map[string]map[string]float64),
		cash:         cfg.InitialCapital,
		shares:       make(map[string]int64),
		lastPrice:    make(map[string]float64),
		history:      make(map[string][]float64),
		pendingAlloc: make(map[string]float64),
		lastWeights:  make(map[string]float64),
	}

	dateSet := make(map[string]time.Time)
	for _, a := range cfg.Allocations {
		bars := barsByTicker[a.Ticker]
		if len(bars) == 0 {
			sim.warnings = append(sim.warnings,
				fmt.Sprintf("%s: no price data in the requested range, excluded from simulation", a.Ticker))
			continue
		}
		sim.tickers = append(sim.tickers, a.Ticker)
		sim.barsAnalyzed += len(bars)
		sim.pendingAlloc[a.Ticker] = cfg.InitialCapital * a.WeightPercent / 100
		sim.lastWeights[a.Ticker] = a.WeightPercent
		for _, b := range bars {
			key := b.Timestamp.Format(dateKeyLayout)
			if _, ok := sim.priceByDate[key]; !ok {
				sim.priceByDate[key] = make(map[string]float64)
				dateSet[key] = time.Date(b.Timestamp.Year(), b.Timestamp.Month(), b.Timestamp.Day(), 0, 0, 0, 0, time.UTC)
			}
			sim.priceByDate[key][a.Ticker] = b.Close
		}
	}
	sort.Strings(sim.tickers)

	sim.dates = make([]time.Time, 0, len(dateSet))
	for _, d := range dateSet {
		sim.dates = append(sim.dates, d)
	}
	sort.Slice(sim.dates, func(i, j int) bool { return sim.dates[i].Before(sim.dates[j]) })

	return sim
}

// walk advances the state machine one trading day at a time: record prices,
// place any pending initial buys, mark to market, then let the strategy
// decide whether to rebalance at the close.
func (sim *simulation) walk(strat Strategy) {
	for _, date := range sim.dates {
		prices := sim.priceByDate[date.Format(dateKeyLayout)]
		for _, t := range sim.tickers {
			if p, ok := prices[t]; ok {
				sim.lastPrice[t] = p
				sim.history[t] = append(sim.history[t], p)
			}
		}

		sim.placeInitialBuys(date, prices)
		sim.snapshot(date)

		if sim.lastRebalance.IsZero() {
			continue
		}
		ctx := DayContext{
			Date:          date,
			Tickers:       sim.tickers,
			History:       sim.history,
			LastWeights:   sim.lastWeights,
			LastRebalance: sim.lastRebalance,
		}
		if target, trade := strat.Decide(ctx); trade {
			sim.rebalance(date, target)
		}
	}
}

// placeInitialBuys buys whole shares for each allocation the first day that
// ticker has a price. Residual cash from flooring stays in cash.
func (sim *simulation) placeInitialBuys(date time.Time, prices map[string]float64) {
	for _, t := range sim.tickers {
		reserved, pending := sim.pendingAlloc[t]
		if !pending {
			continue
		}
		price, ok := prices[t]
		if !ok || price <= 0 {
			continue
		}
		shares := int64(math.Floor(reserved / price))
		delete(sim.pendingAlloc, t)
		if shares <= 0 {
			continue
		}
		sim.shares[t] += shares
		sim.cash -= float64(shares) * price
		sim.trades = append(sim.trades, domain.ExecutedTrade{
			Date: date, Ticker: t, Side: domain.TradeSideBuy, Shares: shares, Price: price,
		})
		if sim.lastRebalance.IsZero() {
			sim.lastRebalance = date
		}
	}
}

// snapshot marks the portfolio to market at the day's close, carrying the
// last known price for tickers without a bar today.
func (sim *simulation) snapshot(date time.Time) {
	var holdings float64
	for _, t := range sim.tickers {
		holdings += float64(sim.shares[t]) * sim.lastPrice[t]
	}
	sim.snapshots = append(sim.snapshots, domain.PortfolioSnapshot{
		Date:          date,
		TotalValue:    sim.cash + holdings,
		Cash:          sim.cash,
		HoldingsValue: holdings,
	})
}

// rebalance liquidates every position at the day's close and re-buys the
// target weights with the resulting cash, using the same floor-share rule as
// the initial allocation.
func (sim *simulation) rebalance(date time.Time, target map[string]float64) {
	for _, t := range sim.tickers {
		held := sim.shares[t]
		if held == 0 {
			continue
		}
		price := sim.lastPrice[t]
		sim.cash += float64(held) * price
		sim.shares[t] = 0
		sim.trades = append(sim.trades, domain.ExecutedTrade{
			Date: date, Ticker: t, Side: domain.TradeSideSell, Shares: held, Price: price,
		})
	}

	investable := sim.cash
	for _, t := range sim.tickers {
		weight := target[t]
		price := sim.lastPrice[t]
		if weight <= 0 || price <= 0 {
			continue
		}
		alloc := investable * weight / 100
		shares := int64(math.Floor(alloc / price))
		if shares <= 0 {
			continue
		}
		sim.shares[t] = shares
		sim.cash -= float64(shares) * price
		sim.trades = append(sim.trades, domain.ExecutedTrade{
			Date: date, Ticker: t, Side: domain.TradeSideBuy, Shares: shares, Price: price,
		})
	}

	sim.lastWeights = target
	sim.lastRebalance = date
}

// result summarizes the completed walk through the quant library.
func (sim *simulation) result(cfg Config) *domain.BacktestResult {
	values := make([]float64, len(sim.snapshots))
	for i, s := range sim.snapshots {
		values[i] = s.TotalValue
	}

	metrics := domain.SummaryMetrics{}
	if len(values) > 0 && cfg.InitialCapital > 0 {
		final := values[len(values)-1]
		metrics.TotalReturnPct = (final - cfg.InitialCapital) / cfg.InitialCapital * 100
		if days := float64(len(values)); days > 0 && final > 0 {
			metrics.AnnualizedReturnPct = (math.Pow(final/cfg.InitialCapital, quant.TradingDaysPerYear/days) - 1) * 100
		}
		returns := quant.SimpleReturns(values)
		metrics.AnnualizedVolatility = quant.AnnualizedVolatility(returns) * 100
		metrics.SharpeRatio = quant.SharpeRatio(returns, cfg.RiskFreeRate)
		metrics.MaxDrawdownPct = quant.MaxDrawdown(values).MaxDrawdownPct
	}

	holdings := make(map[string]int64)
	for t, s := range sim.shares {
		if s != 0 {
			holdings[t] = s
		}
	}

	return &domain.BacktestResult{
		Metrics:          metrics,
		Trades:           sim.trades,
		PortfolioHistory: sim.snapshots,
		FinalHoldings:    holdings,
		BarsAnalyzed:     sim.barsAnalyzed,
		Warnings:         sim.warnings,
	}
}
