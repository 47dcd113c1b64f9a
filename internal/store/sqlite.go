package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"quantlab/internal/domain"
)

// Compile-time interface check.
var _ RunStore = (*SQLiteStore)(nil)

// SQLiteStore implements RunStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS backtest_runs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at      TEXT NOT NULL,
	strategy        TEXT NOT NULL,
	start_date      TEXT NOT NULL,
	end_date        TEXT NOT NULL,
	initial_capital REAL NOT NULL,
	tickers         TEXT NOT NULL,
	total_return    REAL NOT NULL,
	annual_return   REAL NOT NULL,
	annual_vol      REAL NOT NULL,
	sharpe          REAL NOT NULL,
	max_drawdown    REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS backtest_trades (
	run_id INTEGER NOT NULL REFERENCES backtest_runs(id),
	date   TEXT NOT NULL,
	ticker TEXT NOT NULL,
	side   TEXT NOT NULL,
	shares INTEGER NOT NULL,
	price  REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trades_run ON backtest_trades(run_id);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, creates the
// schema if needed, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts a run and its trades in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *BacktestRun) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO backtest_runs
			(created_at, strategy, start_date, end_date, initial_capital, tickers,
			 total_return, annual_return, annual_vol, sharpe, max_drawdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.CreatedAt.UTC().Format(time.RFC3339),
		string(run.Strategy),
		run.StartDate.Format("2006-01-02"),
		run.EndDate.Format("2006-01-02"),
		run.InitialCapital,
		strings.Join(run.Tickers, ","),
		run.Metrics.TotalReturnPct,
		run.Metrics.AnnualizedReturnPct,
		run.Metrics.AnnualizedVolatility,
		run.Metrics.SharpeRatio,
		run.Metrics.MaxDrawdownPct,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, t := range run.Trades {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO backtest_trades (run_id, date, ticker, side, shares, price)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, t.Date.Format("2006-01-02"), t.Ticker, string(t.Side), t.Shares, t.Price,
		); err != nil {
			return 0, fmt.Errorf("inserting trade: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetRun retrieves one run and its trade log.
func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*BacktestRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, strategy, start_date, end_date, initial_capital, tickers,
		       total_return, annual_return, annual_vol, sharpe, max_drawdown
		FROM backtest_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, ticker, side, shares, price
		FROM backtest_trades WHERE run_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			dateStr string
			t       domain.ExecutedTrade
			side    string
		)
		if err := rows.Scan(&dateStr, &t.Ticker, &side, &t.Shares, &t.Price); err != nil {
			return nil, err
		}
		t.Date, _ = time.Parse("2006-01-02", dateStr)
		t.Side = domain.TradeSide(side)
		run.Trades = append(run.Trades, t)
	}
	return run, rows.Err()
}

// ListRuns returns the most recent runs, newest first, without trade logs.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]BacktestRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, strategy, start_date, end_date, initial_capital, tickers,
		       total_return, annual_return, annual_vol, sharpe, max_drawdown
		FROM backtest_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []BacktestRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*BacktestRun, error) {
	var (
		run        BacktestRun
		createdAt  string
		startDate  string
		endDate    string
		strategy   string
		tickersCSV string
	)
	if err := sc.Scan(
		&run.ID, &createdAt, &strategy, &startDate, &endDate,
		&run.InitialCapital, &tickersCSV,
		&run.Metrics.TotalReturnPct, &run.Metrics.AnnualizedReturnPct,
		&run.Metrics.AnnualizedVolatility, &run.Metrics.SharpeRatio,
		&run.Metrics.MaxDrawdownPct,
	); err != nil {
		return nil, err
	}
	run.Strategy = domain.StrategyKind(strategy)
	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	run.StartDate, _ = time.Parse("2006-01-02", startDate)
	run.EndDate, _ = time.Parse("2006-01-02", endDate)
	if tickersCSV != "" {
		run.Tickers = strings.Split(tickersCSV, ",")
	}
	return &run, nil
}
