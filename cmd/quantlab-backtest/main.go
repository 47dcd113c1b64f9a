// One-shot tool: run a backtest from the command line and print the result
// as JSON.
//
// Usage:
//
//	quantlab-backtest -allocations AAPL:60,MSFT:40 -start 2020-01-02 -end 2023-12-29
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"quantlab/internal/backtest"
	"quantlab/internal/config"
	"quantlab/internal/domain"
	"quantlab/internal/provider"
	"quantlab/internal/store"
	"quantlab/internal/util"
)

func main() {
	allocSpec := flag.String("allocations", "", "TICKER:WEIGHT pairs, comma separated, weights summing to 100")
	startDate := flag.String("start", "", "start date (YYYY-MM-DD)")
	endDate := flag.String("end", "", "end date (YYYY-MM-DD)")
	capital := flag.Float64("capital", 10000, "initial capital")
	strategy := flag.String("strategy", string(domain.StrategyBuyAndHold), "strategy kind")
	rebalance := flag.String("rebalance", "", "rebalance frequency (monthly or quarterly)")
	flag.Parse()

	cfgPath := "config/quantlab.yaml"
	if p := os.Getenv("QUANTLAB_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger := util.NewLogger(cfg.Logging.Level, "text")
	util.SetDefault(logger)

	allocations, err := parseAllocations(*allocSpec)
	if err != nil {
		log.Fatalf("parsing allocations: %v", err)
	}
	start, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		log.Fatalf("parsing start date: %v", err)
	}
	end, err := time.Parse("2006-01-02", *endDate)
	if err != nil {
		log.Fatalf("parsing end date: %v", err)
	}

	chain := buildChain(cfg, logger)

	ctx := context.Background()
	barsByTicker := make(map[string][]domain.Bar, len(allocations))
	for _, a := range allocations {
		bars, usedFallback, err := chain.Fetch(ctx, a.Ticker, start, end)
		if err != nil {
			logger.Warn("no bars for ticker", "ticker", a.Ticker, "error", err)
			continue
		}
		if usedFallback {
			logger.Warn("using fallback data", "ticker", a.Ticker)
		}
		barsByTicker[a.Ticker] = bars
	}

	freq := domain.RebalanceFrequency(*rebalance)
	if freq == "" {
		freq = domain.RebalanceFrequency(cfg.Backtest.RebalanceFrequency)
	}

	result, err := backtest.Run(backtest.Config{
		Allocations:        allocations,
		InitialCapital:     *capital,
		Strategy:           domain.StrategyKind(*strategy),
		RebalanceFrequency: freq,
		RiskFreeRate:       cfg.Backtest.RiskFreeRate,
	}, barsByTicker)
	if err != nil {
		log.Fatalf("running backtest: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("encoding result: %v", err)
	}
	fmt.Println(string(out))
}

// parseAllocations parses "AAPL:60,MSFT:40" into allocations.
func parseAllocations(spec string) ([]domain.Allocation, error) {
	if spec == "" {
		return nil, domain.ErrNoTickers
	}
	parts := strings.Split(spec, ",")
	allocations := make([]domain.Allocation, 0, len(parts))
	for _, part := range parts {
		ticker, weightStr, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("bad allocation %q, want TICKER:WEIGHT", part)
		}
		weight, err := strconv.ParseFloat(weightStr, 64)
		if err != nil {
			return nil, fmt.Errorf("bad weight in %q: %w", part, err)
		}
		allocations = append(allocations, domain.Allocation{
			Ticker:        strings.ToUpper(ticker),
			WeightPercent: weight,
		})
	}
	return allocations, nil
}

// buildChain assembles the same provider chain the server uses.
func buildChain(cfg *config.Config, logger *slog.Logger) *provider.Chain {
	synthetic := provider.NewSyntheticProvider()
	chain := &provider.Chain{Primary: synthetic, Log: logger}
	if cfg.Alpaca.APIKey != "" {
		alpaca := provider.NewAlpacaProvider(
			cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL,
			cfg.Alpaca.RateLimitPerMin)
		chain.Primary = provider.NewCachingProvider(alpaca, store.NewParquetStore(cfg.Storage.DataDir))
		chain.Fallback = synthetic
	}
	return chain
}
