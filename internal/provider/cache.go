package provider

import (
	"context"
	"log/slog"
	"time"

	"quantlab/internal/domain"
	"quantlab/internal/store"
)

// Compile-time interface check.
var _ BarProvider = (*CachingProvider)(nil)

// CachingProvider is a read-through cache in front of another provider:
// bars already on disk are served locally, misses are fetched upstream and
// written back.
type CachingProvider struct {
	inner BarProvider
	bars  store.BarStore
	log   *slog.Logger
}

// NewCachingProvider wraps inner with the given bar store.
func NewCachingProvider(inner BarProvider, bars store.BarStore) *CachingProvider {
	return &CachingProvider{
		inner: inner,
		bars:  bars,
		log:   slog.Default().With("provider", "cache"),
	}
}

// Name returns the inner provider's name with a cache marker.
func (p *CachingProvider) Name() string { return p.inner.Name() + "+cache" }

// Fetch serves from the store when it has any bars for the range, otherwise
// fetches upstream and writes the result back. A write-back failure is
// logged, not fatal, and the fetched bars are still returned.
func (p *CachingProvider) Fetch(ctx context.Context, ticker string, start, end time.Time) ([]domain.Bar, error) {
	cached, err := p.bars.ReadBars(ctx, ticker, start, end)
	if err == nil && len(cached) > 0 {
		return cached, nil
	}

	bars, err := p.inner.Fetch(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}
	if len(bars) > 0 {
		if werr := p.bars.WriteBars(ctx, bars); werr != nil {
			p.log.Warn("cache write failed", "ticker", ticker, "error", werr)
		}
	}
	return bars, nil
}

// Refresh re-fetches every cached symbol for the trailing year and writes
// the results back. The server runs this nightly after market close.
func (p *CachingProvider) Refresh(ctx context.Context) error {
	symbols, err := p.bars.ListSymbols(ctx)
	if err != nil {
		return err
	}
	end := time.Now().UTC()
	start := end.AddDate(-1, 0, 0)
	for _, sym := range symbols {
		bars, err := p.inner.Fetch(ctx, sym, start, end)
		if err != nil {
			p.log.Warn("refresh fetch failed", "ticker", sym, "error", err)
			continue
		}
		if len(bars) == 0 {
			continue
		}
		if err := p.bars.WriteBars(ctx, bars); err != nil {
			p.log.Warn("refresh write failed", "ticker", sym, "error", err)
		}
	}
	return nil
}
