// One-shot tool: run a statistical study over one ticker's daily bars and
// print the result as JSON.
//
// Usage:
//
//	quantlab-study -ticker SPY -study return_distribution -start 2020-01-02 -end 2023-12-29
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"quantlab/internal/config"
	"quantlab/internal/domain"
	"quantlab/internal/provider"
	"quantlab/internal/store"
	"quantlab/internal/study"
	"quantlab/internal/util"
)

func main() {
	ticker := flag.String("ticker", "", "ticker symbol")
	studyType := flag.String("study", "", "study type (see -list)")
	startDate := flag.String("start", "", "start date (YYYY-MM-DD)")
	endDate := flag.String("end", "", "end date (YYYY-MM-DD)")
	forwardDays := flag.Int("forward-days", 0, "forward-return horizon override")
	rsiPeriod := flag.Int("rsi-period", 0, "RSI period override")
	list := flag.Bool("list", false, "list supported study types and exit")
	flag.Parse()

	if *list {
		for _, t := range domain.AllStudyTypes {
			fmt.Println(t)
		}
		return
	}

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

	if *ticker == "" || *studyType == "" {
		log.Fatal("-ticker and -study are required")
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
	sym := strings.ToUpper(*ticker)

	bars, usedFallback, err := chain.Fetch(context.Background(), sym, start, end)
	if err != nil {
		log.Fatalf("fetching bars for %s: %v", sym, err)
	}
	if usedFallback {
		logger.Warn("using fallback data", "ticker", sym)
	}

	result, err := study.Run(sym, domain.StudyType(*studyType), bars, domain.StudyParams{
		ForwardDays: *forwardDays,
		RSIPeriod:   *rsiPeriod,
	})
	if err != nil {
		log.Fatalf("running study: %v", err)
	}
	result.UsedFallbackData = usedFallback

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("encoding result: %v", err)
	}
	fmt.Println(string(out))
}

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
