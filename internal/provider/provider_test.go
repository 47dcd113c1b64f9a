package provider

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"quantlab/internal/domain"
)

// stubProvider returns canned bars or a canned error.
type stubProvider struct {
	name  string
	bars  []domain.Bar
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Fetch(context.Context, string, time.Time, time.Time) ([]domain.Bar, error) {
	s.calls++
	return s.bars, s.err
}

// memBarStore is an in-memory BarStore for cache tests.
type memBarStore struct {
	bars   map[string][]domain.Bar
	writes int
}

func newMemBarStore() *memBarStore {
	return &memBarStore{bars: make(map[string][]domain.Bar)}
}

func (m *memBarStore) WriteBars(_ context.Context, bars []domain.Bar) error {
	m.writes++
	for _, b := range bars {
		m.bars[b.Symbol] = append(m.bars[b.Symbol], b)
	}
	return nil
}

func (m *memBarStore) ReadBars(_ context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	var out []domain.Bar
	for _, b := range m.bars[symbol] {
		if !b.Timestamp.Before(start) && !b.Timestamp.After(end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBarStore) ListSymbols(context.Context) ([]string, error) {
	var symbols []string
	for s := range m.bars {
		symbols = append(symbols, s)
	}
	return symbols, nil
}

var (
	testStart = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC)
)

func TestSyntheticDeterministic(t *testing.T) {
	p := NewSyntheticProvider()

	first, err := p.Fetch(context.Background(), "AAPL", testStart, testEnd)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	second, err := p.Fetch(context.Background(), "AAPL", testStart, testEnd)
	if err != nil {
		t.Fatalf("second Fetch returned error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("identical requests produced different bars")
	}
	if len(first) == 0 {
		t.Fatal("synthetic provider produced no bars")
	}
}

func TestSyntheticCaseInsensitiveTicker(t *testing.T) {
	p := NewSyntheticProvider()

	upper, _ := p.Fetch(context.Background(), "MSFT", testStart, testEnd)
	lower, _ := p.Fetch(context.Background(), "msft", testStart, testEnd)
	if !reflect.DeepEqual(upper, lower) {
		t.Error("ticker case changed the generated series")
	}
}

func TestSyntheticDifferentTickersDiffer(t *testing.T) {
	p := NewSyntheticProvider()

	a, _ := p.Fetch(context.Background(), "AAA", testStart, testEnd)
	b, _ := p.Fetch(context.Background(), "BBB", testStart, testEnd)
	if reflect.DeepEqual(a, b) {
		t.Error("different tickers produced identical series")
	}
}

func TestSyntheticBarsCoherent(t *testing.T) {
	p := NewSyntheticProvider()

	bars, _ := p.Fetch(context.Background(), "SPY", testStart, testEnd)
	for i, b := range bars {
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			t.Errorf("bar %d has a non-positive price: %+v", i, b)
		}
		if b.High < b.Open || b.High < b.Close {
			t.Errorf("bar %d high below open or close: %+v", i, b)
		}
		if b.Low > b.Open || b.Low > b.Close {
			t.Errorf("bar %d low above open or close: %+v", i, b)
		}
		if wd := b.Timestamp.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Errorf("bar %d falls on a weekend: %s", i, b.Timestamp)
		}
	}
}

func TestChainPrimarySucceeds(t *testing.T) {
	primary := &stubProvider{name: "primary", bars: []domain.Bar{{Symbol: "AAA", Close: 100}}}
	fallback := &stubProvider{name: "fallback"}
	chain := &Chain{Primary: primary, Fallback: fallback}

	bars, usedFallback, err := chain.Fetch(context.Background(), "AAA", testStart, testEnd)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if usedFallback {
		t.Error("usedFallback = true, primary had data")
	}
	if len(bars) != 1 || fallback.calls != 0 {
		t.Errorf("bars = %d, fallback calls = %d; want 1 and 0", len(bars), fallback.calls)
	}
}

func TestChainFallsBackOnError(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("boom")}
	fallback := &stubProvider{name: "fallback", bars: []domain.Bar{{Symbol: "AAA", Close: 50}}}
	chain := &Chain{Primary: primary, Fallback: fallback}

	bars, usedFallback, err := chain.Fetch(context.Background(), "AAA", testStart, testEnd)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if !usedFallback {
		t.Error("usedFallback = false after falling back")
	}
	if len(bars) != 1 {
		t.Errorf("bars = %d, want 1 from fallback", len(bars))
	}
}

func TestChainFallsBackOnEmptyResult(t *testing.T) {
	primary := &stubProvider{name: "primary"}
	fallback := &stubProvider{name: "fallback", bars: []domain.Bar{{Symbol: "AAA", Close: 50}}}
	chain := &Chain{Primary: primary, Fallback: fallback}

	_, usedFallback, err := chain.Fetch(context.Background(), "AAA", testStart, testEnd)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if !usedFallback {
		t.Error("an empty primary result should trigger the fallback")
	}
}

func TestChainNoFallbackPropagatesError(t *testing.T) {
	primary := &stubProvider{name: "primary"}
	chain := &Chain{Primary: primary}

	_, _, err := chain.Fetch(context.Background(), "AAA", testStart, testEnd)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Fetch returned %v, want ErrUnavailable", err)
	}
}

func TestCachingProviderReadThrough(t *testing.T) {
	inner := &stubProvider{name: "upstream", bars: []domain.Bar{
		{Symbol: "AAA", Timestamp: testStart, Open: 99, High: 101, Low: 98, Close: 100, Volume: 1000},
	}}
	cache := NewCachingProvider(inner, newMemBarStore())

	first, err := cache.Fetch(context.Background(), "AAA", testStart, testEnd)
	if err != nil {
		t.Fatalf("first Fetch returned error: %v", err)
	}
	if len(first) != 1 || inner.calls != 1 {
		t.Fatalf("first fetch: bars = %d, upstream calls = %d; want 1 and 1", len(first), inner.calls)
	}

	// Second request is served from the store.
	second, err := cache.Fetch(context.Background(), "AAA", testStart, testEnd)
	if err != nil {
		t.Fatalf("second Fetch returned error: %v", err)
	}
	if len(second) != 1 {
		t.Errorf("second fetch returned %d bars, want 1", len(second))
	}
	if inner.calls != 1 {
		t.Errorf("upstream called %d times, want 1 (cache hit)", inner.calls)
	}
}

func TestCachingProviderName(t *testing.T) {
	cache := NewCachingProvider(&stubProvider{name: "alpaca"}, newMemBarStore())
	if got := cache.Name(); got != "alpaca+cache" {
		t.Errorf("Name = %q, want alpaca+cache", got)
	}
}

func TestCachingProviderRefresh(t *testing.T) {
	storeWithSymbol := newMemBarStore()
	storeWithSymbol.bars["AAA"] = []domain.Bar{
		{Symbol: "AAA", Timestamp: testStart, Close: 100},
	}
	inner := &stubProvider{name: "upstream", bars: []domain.Bar{
		{Symbol: "AAA", Timestamp: testEnd, Close: 110},
	}}
	cache := NewCachingProvider(inner, storeWithSymbol)

	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("Refresh fetched upstream %d times, want 1 per cached symbol", inner.calls)
	}
	if storeWithSymbol.writes != 1 {
		t.Errorf("Refresh wrote back %d times, want 1", storeWithSymbol.writes)
	}
}
