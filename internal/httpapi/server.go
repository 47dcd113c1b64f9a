package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"quantlab/internal/backtest"
	"quantlab/internal/config"
	"quantlab/internal/domain"
	"quantlab/internal/provider"
	"quantlab/internal/store"
	"quantlab/internal/study"
	"quantlab/internal/validate"
)

// Server serves the backtest and study HTTP API.
type Server struct {
	chain    *provider.Chain
	runs     store.RunStore
	defaults config.BacktestConfig
	recalc   config.RecalculationPolicy
	log      *slog.Logger
}

// NewServer creates an API server. runs may be nil, in which case backtest
// results are returned but not persisted.
func NewServer(
	chain *provider.Chain,
	runs store.RunStore,
	defaults config.BacktestConfig,
	recalc config.RecalculationPolicy,
	log *slog.Logger,
) *Server {
	return &Server{
		chain:    chain,
		runs:     runs,
		defaults: defaults,
		recalc:   recalc,
		log:      log,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/backtest", s.handleBacktest)
	mux.HandleFunc("POST /api/study", s.handleStudy)
	mux.HandleFunc("GET /api/backtests", s.handleRuns)
	mux.HandleFunc("GET /api/backtests/{id}", s.handleRun)
	mux.HandleFunc("GET /api/studies", s.handleStudyTypes)
	mux.HandleFunc("GET /api/health", s.handleHealth)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// errorStatus maps engine errors to HTTP status codes. Malformed requests
// are 400; well-formed requests the data cannot satisfy are 422.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoTickers),
		errors.Is(err, domain.ErrInvalidAllocation),
		errors.Is(err, domain.ErrMissingDateRange),
		errors.Is(err, domain.ErrUnsupportedStudy):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientData),
		errors.Is(err, provider.ErrUnavailable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// parseDateRange parses the request's YYYY-MM-DD bounds. Both are required
// and end must not precede start.
func parseDateRange(startDate, endDate string) (start, end time.Time, err error) {
	if startDate == "" || endDate == "" {
		return start, end, domain.ErrMissingDateRange
	}
	start, err = time.Parse("2006-01-02", startDate)
	if err != nil {
		return start, end, fmt.Errorf("%w: bad start date %q", domain.ErrMissingDateRange, startDate)
	}
	end, err = time.Parse("2006-01-02", endDate)
	if err != nil {
		return start, end, fmt.Errorf("%w: bad end date %q", domain.ErrMissingDateRange, endDate)
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("%w: end date before start date", domain.ErrMissingDateRange)
	}
	return start, end, nil
}

// worseQuality returns the lower of two data-quality grades.
func worseQuality(a, b domain.DataQuality) domain.DataQuality {
	rank := map[domain.DataQuality]int{
		domain.QualityHigh:   0,
		domain.QualityMedium: 1,
		domain.QualityLow:    2,
	}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// resolveBars returns the bar series for one ticker, preferring an inline
// series from the request over the provider chain.
func (s *Server) resolveBars(
	ctx context.Context,
	ticker string,
	inline []domain.Bar,
	start, end time.Time,
) (bars []domain.Bar, usedFallback bool, err error) {
	if len(inline) > 0 {
		return inline, false, nil
	}
	if s.chain == nil {
		return nil, false, provider.ErrUnavailable
	}
	return s.chain.Fetch(ctx, ticker, start, end)
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}

	allocations := make([]domain.Allocation, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		allocations = append(allocations, domain.Allocation{
			Ticker:        strings.ToUpper(strings.TrimSpace(a.Ticker)),
			WeightPercent: a.WeightPercent,
		})
	}

	expected := &validate.DateRange{Start: start, End: end}
	quality := domain.QualityHigh
	usedFallback := false

	barsByTicker := make(map[string][]domain.Bar, len(allocations))
	for _, a := range allocations {
		bars, fb, err := s.resolveBars(r.Context(), a.Ticker, req.PriceSeriesByTicker[a.Ticker], start, end)
		if err != nil {
			// A single unavailable ticker is excluded downstream with a
			// warning; total unavailability fails the whole run there.
			s.log.Warn("no bars for ticker", "ticker", a.Ticker, "error", err)
			barsByTicker[a.Ticker] = nil
			quality = worseQuality(quality, domain.QualityLow)
			continue
		}
		if fb {
			usedFallback = true
			quality = worseQuality(quality, domain.QualityMedium)
		}

		report := validate.Series(a.Ticker, bars, expected)
		if !report.IsValid {
			writeError(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("invalid price data for %s: %s", a.Ticker, strings.Join(report.Issues, "; ")))
			return
		}
		quality = worseQuality(quality, report.DataQuality)
		barsByTicker[a.Ticker] = bars
	}

	cfg := backtest.Config{
		Allocations:        allocations,
		InitialCapital:     req.InitialCapital,
		Strategy:           domain.StrategyKind(req.Strategy),
		RebalanceFrequency: domain.RebalanceFrequency(req.RebalanceFrequency),
		RiskFreeRate:       s.defaults.RiskFreeRate,
	}
	if cfg.RebalanceFrequency == "" {
		cfg.RebalanceFrequency = domain.RebalanceFrequency(s.defaults.RebalanceFrequency)
	}

	result, err := backtest.Run(cfg, barsByTicker)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	result.UsedFallbackData = usedFallback

	resp := BacktestResponse{DataQuality: quality, Result: result}
	if s.runs != nil {
		resp.RunID = s.persistRun(r.Context(), cfg, start, end, result)
	}

	writeJSON(w, resp)
}

// persistRun saves a completed run to the run store. Persistence failures
// are logged but never fail the request.
func (s *Server) persistRun(
	ctx context.Context,
	cfg backtest.Config,
	start, end time.Time,
	result *domain.BacktestResult,
) int64 {
	tickers := make([]string, 0, len(cfg.Allocations))
	for _, a := range cfg.Allocations {
		tickers = append(tickers, a.Ticker)
	}
	sort.Strings(tickers)

	id, err := s.runs.SaveRun(ctx, &store.BacktestRun{
		CreatedAt:      time.Now().UTC(),
		Strategy:       cfg.Strategy,
		StartDate:      start,
		EndDate:        end,
		InitialCapital: cfg.InitialCapital,
		Tickers:        tickers,
		Metrics:        result.Metrics,
		Trades:         result.Trades,
	})
	if err != nil {
		s.log.Warn("saving backtest run", "error", err)
		return 0
	}
	return id
}

func (s *Server) handleStudy(w http.ResponseWriter, r *http.Request) {
	var req StudyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker required")
		return
	}

	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}

	bars, usedFallback, err := s.resolveBars(r.Context(), ticker, req.PriceSeries, start, end)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}

	report := validate.Series(ticker, bars, &validate.DateRange{Start: start, End: end})
	if !report.IsValid {
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("invalid price data for %s: %s", ticker, strings.Join(report.Issues, "; ")))
		return
	}

	result, err := study.Run(ticker, domain.StudyType(req.StudyType), bars, req.Params)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	result.DataQuality = report.DataQuality
	result.UsedFallbackData = usedFallback
	if usedFallback {
		result.DataQuality = worseQuality(result.DataQuality, domain.QualityMedium)
	}

	writeJSON(w, result)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeJSON(w, RunsResponse{Runs: []store.BacktestRun{}})
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []store.BacktestRun{}
	}
	writeJSON(w, RunsResponse{Runs: runs})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotFound, "run persistence disabled")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := s.runs.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("run %d not found", id))
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	writeJSON(w, run)
}

func (s *Server) handleStudyTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, StudyTypesResponse{StudyTypes: domain.AllStudyTypes})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	providerName := "none"
	if s.chain != nil && s.chain.Primary != nil {
		providerName = s.chain.Primary.Name()
	}
	writeJSON(w, HealthResponse{
		Status:       "ok",
		Provider:     providerName,
		DebounceMs:   s.recalc.DebounceMs,
		StaleAfterMs: s.recalc.StaleAfterMs,
	})
}
