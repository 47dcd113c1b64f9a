// Package backtest simulates a multi-asset strategy over historical daily
// bars: a state machine over the unified trading-date set that books whole
// share lots, marks to market daily, and summarizes the resulting portfolio
// series through the quant library.
package backtest

import (
	"sort"
	"time"

	"quantlab/internal/domain"
	"quantlab/internal/quant"
)

// DayContext is everything a strategy may consult when deciding whether to
// trade at a day's close. History holds each ticker's closes up to and
// including the current date; LastWeights are the target weights currently
// held.
type DayContext struct {
	Date          time.Time
	Tickers       []string
	History       map[string][]float64
	LastWeights   map[string]float64
	LastRebalance time.Time
}

// Strategy decides per day whether to shift the portfolio and to what target
// weights. The simulator's day-loop is identical for every strategy; only
// this decision differs. Implementations are stateless; all calendar state
// is threaded through the DayContext by the simulator.
type Strategy interface {
	// Name returns the strategy identifier.
	Name() string

	// Decide returns the target weights (percent per ticker) and whether to
	// rebalance at this day's close.
	Decide(ctx DayContext) (map[string]float64, bool)
}

// Registry holds a named collection of strategies for lookup.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry creates a Registry pre-populated with the built-in strategies
// for the given rebalance frequency.
func NewRegistry(freq domain.RebalanceFrequency) *Registry {
	r := &Registry{strategies: make(map[string]Strategy)}
	r.Register(buyAndHold{})
	r.Register(periodicRebalance{freq: freq})
	r.Register(momentum{lookback: 20})
	r.Register(meanReversion{lookback: 20})
	r.Register(rsiThreshold{period: 14, overbought: 70, oversold: 30})
	return r
}

// Register adds a strategy keyed by its Name().
func (r *Registry) Register(s Strategy) {
	r.strategies[s.Name()] = s
}

// Get retrieves a strategy by name.
func (r *Registry) Get(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

// List returns a sorted slice of registered strategy names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ---------------------------------------------------------------------------
// Built-in strategies
// ---------------------------------------------------------------------------

// buyAndHold never trades after the initial allocation.
type buyAndHold struct{}

func (buyAndHold) Name() string { return string(domain.StrategyBuyAndHold) }

func (buyAndHold) Decide(DayContext) (map[string]float64, bool) {
	return nil, false
}

// periodicRebalance liquidates and re-buys equal weights whenever the
// calendar period has rolled over since the last rebalance.
type periodicRebalance struct {
	freq domain.RebalanceFrequency
}

func (periodicRebalance) Name() string { return string(domain.StrategyPeriodicRebalance) }

func (s periodicRebalance) Decide(ctx DayContext) (map[string]float64, bool) {
	if ctx.LastRebalance.IsZero() {
		return nil, false
	}
	if periodKey(ctx.Date, s.freq) == periodKey(ctx.LastRebalance, s.freq) {
		return nil, false
	}
	return equalWeights(ctx.Tickers), true
}

func periodKey(t time.Time, freq domain.RebalanceFrequency) int {
	if freq == domain.RebalanceQuarterly {
		return t.Year()*4 + (int(t.Month())-1)/3
	}
	return t.Year()*12 + int(t.Month()) - 1
}

// momentum holds equal weights in the tickers with a positive trailing
// return and trades only when that set changes.
type momentum struct {
	lookback int
}

func (momentum) Name() string { return string(domain.StrategyMomentum) }

func (s momentum) Decide(ctx DayContext) (map[string]float64, bool) {
	var winners []string
	for _, t := range ctx.Tickers {
		h := ctx.History[t]
		if len(h) <= s.lookback {
			continue
		}
		past := h[len(h)-1-s.lookback]
		if past > 0 && h[len(h)-1] > past {
			winners = append(winners, t)
		}
	}
	return shiftIfChanged(ctx, winners)
}

// meanReversion holds equal weights in the tickers trading below their
// trailing SMA and trades only when that set changes.
type meanReversion struct {
	lookback int
}

func (meanReversion) Name() string { return string(domain.StrategyMeanReversion) }

func (s meanReversion) Decide(ctx DayContext) (map[string]float64, bool) {
	var laggards []string
	for _, t := range ctx.Tickers {
		h := ctx.History[t]
		sma := quant.SMA(h, s.lookback)
		if sma > 0 && h[len(h)-1] < sma {
			laggards = append(laggards, t)
		}
	}
	return shiftIfChanged(ctx, laggards)
}

// rsiThreshold exits a ticker when its RSI crosses overbought and re-enters
// once it is no longer overbought; tickers without enough history stay held.
type rsiThreshold struct {
	period     int
	overbought float64
	oversold   float64
}

func (rsiThreshold) Name() string { return string(domain.StrategyRSIThreshold) }

func (s rsiThreshold) Decide(ctx DayContext) (map[string]float64, bool) {
	var held []string
	for _, t := range ctx.Tickers {
		if quant.RSI(ctx.History[t], s.period) < s.overbought {
			held = append(held, t)
		}
	}
	return shiftIfChanged(ctx, held)
}

// shiftIfChanged returns equal weights over the qualifying set when it
// differs from the currently held set. An empty qualifying set moves the
// portfolio to cash.
func shiftIfChanged(ctx DayContext, qualifying []string) (map[string]float64, bool) {
	if ctx.LastRebalance.IsZero() {
		// Initial allocation not placed yet.
		return nil, false
	}
	target := equalWeights(qualifying)
	if weightsEqual(target, ctx.LastWeights) {
		return nil, false
	}
	return target, true
}

func equalWeights(tickers []string) map[string]float64 {
	weights := make(map[string]float64, len(tickers))
	if len(tickers) == 0 {
		return weights
	}
	w := 100.0 / float64(len(tickers))
	for _, t := range tickers {
		weights[t] = w
	}
	return weights
}

func weightsEqual(a, b map[string]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}
