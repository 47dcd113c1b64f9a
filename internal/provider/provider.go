// Package provider supplies daily bar series to the engine: a real provider
// backed by the Alpaca market-data API, a deterministic synthetic provider
// seeded from the ticker string, and a read-through Parquet cache. The
// engine itself never performs network I/O; everything asynchronous lives
// behind the BarProvider boundary.
package provider

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"quantlab/internal/domain"
)

// ErrUnavailable means the provider could not supply bars for the request.
var ErrUnavailable = errors.New("price data unavailable")

// BarProvider fetches daily bars for one ticker in [start, end], ascending
// by date.
type BarProvider interface {
	// Name returns the provider identifier.
	Name() string

	// Fetch returns the ticker's daily bars within the range. An empty
	// result without error means the ticker simply has no data there.
	Fetch(ctx context.Context, ticker string, start, end time.Time) ([]domain.Bar, error)
}

// Chain resolves bars through a primary provider and falls back to a
// secondary one when the primary fails or returns nothing. The fallback is
// explicit: callers always learn whether substituted data was used.
type Chain struct {
	Primary  BarProvider
	Fallback BarProvider
	Log      *slog.Logger
}

// Fetch tries the primary provider first. It reports usedFallback true
// whenever the returned bars came from the fallback provider.
func (c *Chain) Fetch(ctx context.Context, ticker string, start, end time.Time) (bars []domain.Bar, usedFallback bool, err error) {
	if c.Primary != nil {
		bars, err = c.Primary.Fetch(ctx, ticker, start, end)
		if err == nil && len(bars) > 0 {
			return bars, false, nil
		}
		if err != nil && c.Log != nil {
			c.Log.Warn("primary provider failed",
				"provider", c.Primary.Name(), "ticker", ticker, "error", err)
		}
	}

	if c.Fallback == nil {
		if err == nil {
			err = ErrUnavailable
		}
		return nil, false, err
	}

	bars, ferr := c.Fallback.Fetch(ctx, ticker, start, end)
	if ferr != nil {
		return nil, false, ferr
	}
	return bars, true, nil
}
