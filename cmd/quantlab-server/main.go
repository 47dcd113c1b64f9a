package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"quantlab/internal/config"
	"quantlab/internal/httpapi"
	"quantlab/internal/provider"
	"quantlab/internal/store"
	"quantlab/internal/util"
)

func main() {
	cfgPath := "config/quantlab.yaml"
	if p := os.Getenv("QUANTLAB_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	// Run persistence.
	runs, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening run store: %v", err)
	}
	defer runs.Close()

	// Provider chain: cached Alpaca data when credentials exist, synthetic
	// bars otherwise, and synthetic as the explicit fallback either way.
	synthetic := provider.NewSyntheticProvider()
	chain := &provider.Chain{Primary: synthetic, Log: logger}

	var cache *provider.CachingProvider
	if cfg.Alpaca.APIKey != "" {
		alpaca := provider.NewAlpacaProvider(
			cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL,
			cfg.Alpaca.RateLimitPerMin)
		cache = provider.NewCachingProvider(alpaca, store.NewParquetStore(cfg.Storage.DataDir))
		chain.Primary = cache
		chain.Fallback = synthetic
	} else {
		logger.Warn("no Alpaca credentials, serving synthetic data only")
	}

	srv := httpapi.NewServer(chain, runs, cfg.Backtest, cfg.Recalculation, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Nightly cache refresh.
	var sched *cron.Cron
	if cache != nil && cfg.Refresh.CronSpec != "" {
		sched = cron.New()
		_, err := sched.AddFunc(cfg.Refresh.CronSpec, func() {
			if err := cache.Refresh(ctx); err != nil {
				logger.Error("bar cache refresh failed", "error", err)
			}
		})
		if err != nil {
			log.Fatalf("registering refresh job: %v", err)
		}
		sched.Start()
		defer sched.Stop()
		logger.Info("bar cache refresh scheduled", "spec", cfg.Refresh.CronSpec)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("quantlab server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down quantlab server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
