// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"candlerank/internal/errors"
	"candlerank/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Candles table for cached OHLCV data
	CREATE TABLE IF NOT EXISTS candles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, timeframe, timestamp)
	);

	-- Fetch log records when each series was last pulled
	CREATE TABLE IF NOT EXISTS fetch_log (
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		fetched_at DATETIME NOT NULL,
		UNIQUE(symbol, timeframe)
	);

	-- Completed ranking runs
	CREATE TABLE IF NOT EXISTS rank_runs (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		lookback TEXT NOT NULL,
		horizon INTEGER NOT NULL,
		bars INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);

	-- Per-pattern rows of a run, in ranked order
	CREATE TABLE IF NOT EXISTS rank_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		pattern TEXT NOT NULL,
		direction TEXT NOT NULL,
		hits INTEGER NOT NULL,
		successes INTEGER NOT NULL,
		success_rate REAL NOT NULL,
		avg_return REAL NOT NULL,
		err TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (run_id) REFERENCES rank_runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_candles_lookup ON candles(symbol, timeframe, timestamp);
	CREATE INDEX IF NOT EXISTS idx_rank_runs_symbol ON rank_runs(symbol, created_at);
	CREATE INDEX IF NOT EXISTS idx_rank_results_run ON rank_results(run_id, position);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Candle Cache Methods
// ============================================================================

// SaveCandles upserts candles and records the fetch moment. Timestamps
// are stored in UTC.
func (s *SQLiteStore) SaveCandles(ctx context.Context, symbol, timeframe string, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (symbol, timeframe, timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		_, err := stmt.ExecContext(ctx, symbol, timeframe, c.Timestamp.UTC(), c.Open, c.High, c.Low, c.Close, c.Volume)
		if err != nil {
			return fmt.Errorf("failed to insert candle: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO fetch_log (symbol, timeframe, fetched_at)
		VALUES (?, ?, ?)
	`, symbol, timeframe, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Candles returns cached bars at or after from, chronologically. A zero
// from returns the whole series.
func (s *SQLiteStore) Candles(ctx context.Context, symbol, timeframe string, from time.Time) ([]models.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND timeframe = ? AND timestamp >= ?
		ORDER BY timestamp ASC
	`, symbol, timeframe, from.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		candles = append(candles, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candles: %w", err)
	}

	return candles, nil
}

// Fresh reports whether the cached series was fetched within ttl.
func (s *SQLiteStore) Fresh(ctx context.Context, symbol, timeframe string, ttl time.Duration) (bool, error) {
	var fetchedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT fetched_at FROM fetch_log WHERE symbol = ? AND timeframe = ?
	`, symbol, timeframe).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query fetch log: %w", err)
	}
	if !fetchedAt.Valid {
		return false, nil
	}
	return time.Since(fetchedAt.Time) <= ttl, nil
}

// LastTimestamp returns the timestamp of the most recent cached candle.
func (s *SQLiteStore) LastTimestamp(ctx context.Context, symbol, timeframe string) (time.Time, error) {
	var timestamp sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(timestamp) FROM candles WHERE symbol = ? AND timeframe = ?
	`, symbol, timeframe).Scan(&timestamp)
	if err != nil && err != sql.ErrNoRows {
		return time.Time{}, fmt.Errorf("failed to get last timestamp: %w", err)
	}
	if !timestamp.Valid {
		return time.Time{}, nil
	}
	return timestamp.Time, nil
}

// ============================================================================
// Ranking History Methods
// ============================================================================

// SaveRankRun persists a run with its ranked results in one
// transaction. A missing run id is assigned a fresh UUID.
func (s *SQLiteStore) SaveRankRun(ctx context.Context, run *models.RankRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rank_runs (id, symbol, timeframe, lookback, horizon, bars, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Symbol, run.Timeframe, run.Range, run.Horizon, run.Bars, run.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert rank run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rank_results (run_id, position, pattern, direction, hits, successes, success_rate, avg_return, err)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, r := range run.Results {
		_, err := stmt.ExecContext(ctx, run.ID, i, r.Pattern, r.Direction, r.Hits, r.Successes, r.SuccessRate, r.AvgReturn, r.Err)
		if err != nil {
			return fmt.Errorf("failed to insert rank result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// RankRuns lists saved runs newest first, without their results.
func (s *SQLiteStore) RankRuns(ctx context.Context, filter RankRunFilter) ([]models.RankRun, error) {
	query := `
		SELECT id, symbol, timeframe, lookback, horizon, bars, created_at
		FROM rank_runs
		WHERE 1=1
	`
	var args []interface{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Timeframe != "" {
		query += " AND timeframe = ?"
		args = append(args, filter.Timeframe)
	}
	if !filter.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rank runs: %w", err)
	}
	defer rows.Close()

	var runs []models.RankRun
	for rows.Next() {
		var run models.RankRun
		if err := rows.Scan(&run.ID, &run.Symbol, &run.Timeframe, &run.Range, &run.Horizon, &run.Bars, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rank run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rank runs: %w", err)
	}

	return runs, nil
}

// RankRun loads one run with its results. id may be a unique prefix of
// the full run id.
func (s *SQLiteStore) RankRun(ctx context.Context, id string) (*models.RankRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, symbol, timeframe, lookback, horizon, bars, created_at
		FROM rank_runs
		WHERE id LIKE ? ESCAPE '\'
		LIMIT 2
	`, escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query rank run: %w", err)
	}
	defer rows.Close()

	var matches []models.RankRun
	for rows.Next() {
		var run models.RankRun
		if err := rows.Scan(&run.ID, &run.Symbol, &run.Timeframe, &run.Range, &run.Horizon, &run.Bars, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rank run: %w", err)
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rank runs: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, errors.NewDataError("store", id, "run not found", errors.ErrDataNotFound)
	case 1:
	default:
		return nil, errors.NewDataError("store", id, "run id prefix is ambiguous", nil)
	}

	run := matches[0]
	results, err := s.rankResults(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Results = results
	return &run, nil
}

func (s *SQLiteStore) rankResults(ctx context.Context, runID string) ([]models.RankResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pattern, direction, hits, successes, success_rate, avg_return, err
		FROM rank_results
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rank results: %w", err)
	}
	defer rows.Close()

	var results []models.RankResult
	for rows.Next() {
		var r models.RankResult
		if err := rows.Scan(&r.Pattern, &r.Direction, &r.Hits, &r.Successes, &r.SuccessRate, &r.AvgReturn, &r.Err); err != nil {
			return nil, fmt.Errorf("failed to scan rank result: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rank results: %w", err)
	}

	return results, nil
}

// escapeLike escapes LIKE wildcards in a literal prefix.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}
