package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quantlab/internal/config"
	"quantlab/internal/domain"
	"quantlab/internal/provider"
	"quantlab/internal/store"
)

// memRunStore is an in-memory RunStore for handler tests.
type memRunStore struct {
	runs   []store.BacktestRun
	nextID int64
}

func (m *memRunStore) SaveRun(_ context.Context, run *store.BacktestRun) (int64, error) {
	m.nextID++
	saved := *run
	saved.ID = m.nextID
	m.runs = append(m.runs, saved)
	return saved.ID, nil
}

func (m *memRunStore) GetRun(_ context.Context, id int64) (*store.BacktestRun, error) {
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], nil
		}
	}
	return nil, context.DeadlineExceeded // any non-nil error; handler maps it to 500
}

func (m *memRunStore) ListRuns(_ context.Context, limit int) ([]store.BacktestRun, error) {
	if limit <= 0 || limit > len(m.runs) {
		limit = len(m.runs)
	}
	out := make([]store.BacktestRun, 0, limit)
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

func newTestServer(runs store.RunStore) *Server {
	chain := &provider.Chain{Primary: provider.NewSyntheticProvider()}
	defaults := config.BacktestConfig{RiskFreeRate: 0.04, RebalanceFrequency: "monthly"}
	recalc := config.RecalculationPolicy{DebounceMs: 300, StaleAfterMs: 60_000}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(chain, runs, defaults, recalc, log)
}

// testBars builds weekday bars opening at the prior close.
func testBars(symbol string, closes ...float64) []domain.Bar {
	bars := make([]domain.Bar, 0, len(closes))
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		bars = append(bars, domain.Bar{
			Symbol:    symbol,
			Timestamp: date,
			Open:      open,
			High:      math.Max(open, c) + 0.5,
			Low:       math.Min(open, c) - 0.5,
			Close:     c,
			Volume:    1_000_000,
		})
		date = date.AddDate(0, 0, 1)
		for date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			date = date.AddDate(0, 0, 1)
		}
	}
	return bars
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func getPath(handler http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	return w
}

func TestHandleBacktestInline(t *testing.T) {
	runs := &memRunStore{}
	handler := newTestServer(runs).Handler()

	bars := testBars("AAA", 100, 110, 121)
	req := BacktestRequest{
		Allocations:    []AllocationJSON{{Ticker: "aaa", WeightPercent: 100}},
		StartDate:      "2024-01-02",
		EndDate:        "2024-01-04",
		InitialCapital: 10000,
		Strategy:       "buy_and_hold",
		PriceSeriesByTicker: map[string][]domain.Bar{
			"AAA": bars,
		},
	}

	w := postJSON(t, handler, "/api/backtest", req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp BacktestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Result == nil {
		t.Fatal("response has no result")
	}
	if math.Abs(resp.Result.Metrics.TotalReturnPct-21) > 1e-9 {
		t.Errorf("TotalReturnPct = %v, want 21", resp.Result.Metrics.TotalReturnPct)
	}
	if resp.Result.UsedFallbackData {
		t.Error("inline series should not be marked as fallback data")
	}
	if resp.DataQuality != domain.QualityHigh {
		t.Errorf("DataQuality = %s, want high", resp.DataQuality)
	}
	if resp.RunID == 0 {
		t.Error("RunID not assigned; run was not persisted")
	}
	if len(runs.runs) != 1 {
		t.Fatalf("run store has %d runs, want 1", len(runs.runs))
	}
}

func TestHandleBacktestMissingDates(t *testing.T) {
	handler := newTestServer(nil).Handler()

	req := BacktestRequest{
		Allocations:    []AllocationJSON{{Ticker: "AAA", WeightPercent: 100}},
		InitialCapital: 10000,
		Strategy:       "buy_and_hold",
	}
	if w := postJSON(t, handler, "/api/backtest", req); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing dates", w.Code)
	}
}

func TestHandleBacktestBadWeights(t *testing.T) {
	handler := newTestServer(nil).Handler()

	req := BacktestRequest{
		Allocations: []AllocationJSON{
			{Ticker: "AAA", WeightPercent: 60},
			{Ticker: "BBB", WeightPercent: 30},
		},
		StartDate:      "2024-01-02",
		EndDate:        "2024-01-04",
		InitialCapital: 10000,
		Strategy:       "buy_and_hold",
		PriceSeriesByTicker: map[string][]domain.Bar{
			"AAA": testBars("AAA", 100, 101, 102),
			"BBB": testBars("BBB", 50, 51, 52),
		},
	}
	if w := postJSON(t, handler, "/api/backtest", req); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for weights summing to 90", w.Code)
	}
}

func TestHandleBacktestInvalidInlineData(t *testing.T) {
	handler := newTestServer(nil).Handler()

	bad := testBars("AAA", 100, 101, 102)
	bad[1].Close = -5

	req := BacktestRequest{
		Allocations:    []AllocationJSON{{Ticker: "AAA", WeightPercent: 100}},
		StartDate:      "2024-01-02",
		EndDate:        "2024-01-04",
		InitialCapital: 10000,
		Strategy:       "buy_and_hold",
		PriceSeriesByTicker: map[string][]domain.Bar{
			"AAA": bad,
		},
	}
	if w := postJSON(t, handler, "/api/backtest", req); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 for structurally invalid bars", w.Code)
	}
}

func TestHandleBacktestMalformedJSON(t *testing.T) {
	handler := newTestServer(nil).Handler()

	req := httptest.NewRequest("POST", "/api/backtest", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for malformed JSON", w.Code)
	}
}

func TestHandleStudyInline(t *testing.T) {
	handler := newTestServer(nil).Handler()

	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i%5)
	}
	series := testBars("AAA", closes...)

	req := StudyRequest{
		Ticker:      "aaa",
		StudyType:   "close_above_open",
		StartDate:   series[0].Timestamp.Format("2006-01-02"),
		EndDate:     series[len(series)-1].Timestamp.Format("2006-01-02"),
		PriceSeries: series,
	}

	w := postJSON(t, handler, "/api/study", req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var result domain.StudyResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.Ticker != "AAA" {
		t.Errorf("Ticker = %q, want uppercased AAA", result.Ticker)
	}
	if result.Type != domain.StudyCloseAboveOpen {
		t.Errorf("Type = %s, want close_above_open", result.Type)
	}
	if result.Percentage == nil {
		t.Error("percentage variant not populated")
	}
	if result.BarsAnalyzed != 30 {
		t.Errorf("BarsAnalyzed = %d, want 30", result.BarsAnalyzed)
	}
}

func TestHandleStudyUnknownType(t *testing.T) {
	handler := newTestServer(nil).Handler()

	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100
	}
	series := testBars("AAA", closes...)

	req := StudyRequest{
		Ticker:      "AAA",
		StudyType:   "astrology",
		StartDate:   series[0].Timestamp.Format("2006-01-02"),
		EndDate:     series[len(series)-1].Timestamp.Format("2006-01-02"),
		PriceSeries: series,
	}
	if w := postJSON(t, handler, "/api/study", req); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown study type", w.Code)
	}
}

func TestHandleStudyShortSeries(t *testing.T) {
	handler := newTestServer(nil).Handler()

	series := testBars("AAA", 100, 101, 102, 103, 104)
	req := StudyRequest{
		Ticker:      "AAA",
		StudyType:   "close_above_open",
		StartDate:   series[0].Timestamp.Format("2006-01-02"),
		EndDate:     series[len(series)-1].Timestamp.Format("2006-01-02"),
		PriceSeries: series,
	}
	if w := postJSON(t, handler, "/api/study", req); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 for fewer than %d bars", w.Code, domain.MinStudyBars)
	}
}

func TestHandleStudyMissingTicker(t *testing.T) {
	handler := newTestServer(nil).Handler()

	req := StudyRequest{StudyType: "close_above_open", StartDate: "2024-01-02", EndDate: "2024-02-29"}
	if w := postJSON(t, handler, "/api/study", req); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing ticker", w.Code)
	}
}

func TestHandleStudyTypes(t *testing.T) {
	handler := newTestServer(nil).Handler()

	w := getPath(handler, "/api/studies")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp StudyTypesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.StudyTypes) != len(domain.AllStudyTypes) {
		t.Errorf("listed %d study types, want %d", len(resp.StudyTypes), len(domain.AllStudyTypes))
	}
}

func TestHandleRunsAndGetRun(t *testing.T) {
	runs := &memRunStore{}
	handler := newTestServer(runs).Handler()

	req := BacktestRequest{
		Allocations:    []AllocationJSON{{Ticker: "AAA", WeightPercent: 100}},
		StartDate:      "2024-01-02",
		EndDate:        "2024-01-04",
		InitialCapital: 10000,
		Strategy:       "buy_and_hold",
		PriceSeriesByTicker: map[string][]domain.Bar{
			"AAA": testBars("AAA", 100, 110, 121),
		},
	}
	if w := postJSON(t, handler, "/api/backtest", req); w.Code != http.StatusOK {
		t.Fatalf("backtest status = %d", w.Code)
	}

	w := getPath(handler, "/api/backtests")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list RunsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(list.Runs) != 1 {
		t.Fatalf("listed %d runs, want 1", len(list.Runs))
	}

	w = getPath(handler, "/api/backtests/1")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var run store.BacktestRun
	if err := json.Unmarshal(w.Body.Bytes(), &run); err != nil {
		t.Fatalf("decoding run: %v", err)
	}
	if run.Strategy != domain.StrategyBuyAndHold {
		t.Errorf("Strategy = %s, want buy_and_hold", run.Strategy)
	}
}

func TestHandleRunBadID(t *testing.T) {
	handler := newTestServer(&memRunStore{}).Handler()
	if w := getPath(handler, "/api/backtests/abc"); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for non-numeric id", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	handler := newTestServer(nil).Handler()

	w := getPath(handler, "/api/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Status = %q, want ok", resp.Status)
	}
	if resp.Provider != "synthetic" {
		t.Errorf("Provider = %q, want synthetic", resp.Provider)
	}
	if resp.DebounceMs != 300 || resp.StaleAfterMs != 60_000 {
		t.Errorf("recalculation policy = %+v", resp)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestServer(nil).Handler()

	req := httptest.NewRequest("OPTIONS", "/api/backtest", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}
