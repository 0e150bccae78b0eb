package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"trend-systemv1/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// Reader provides read-only access to SQLite. It implements the BarSource
// port for batch evaluation and serves stored reports for the API layer.
type Reader struct {
	db *sql.DB
}

// NewReader opens a SQLite connection for reading.
func NewReader(dbPath string) (*Reader, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open reader: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)

	log.Printf("[sqlite-reader] opened %s", dbPath)
	return &Reader{db: db}, nil
}

// Symbols lists the registered universe, ordered for deterministic scans.
func (r *Reader) Symbols(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT symbol FROM symbols ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("sqlite scan symbols: %w", err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// Bars reads a symbol's full daily history ordered by timestamp ascending,
// plus its industry tag.
func (r *Reader) Bars(ctx context.Context, symbol string) ([]model.Bar, string, error) {
	var industry string
	err := r.db.QueryRowContext(ctx, `SELECT industry FROM symbols WHERE symbol = ?`, symbol).Scan(&industry)
	if err != nil && err != sql.ErrNoRows {
		return nil, "", fmt.Errorf("sqlite query industry: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT ts, open, high, low, close, volume
		FROM bars
		WHERE symbol = ?
		ORDER BY ts ASC
	`, symbol)
	if err != nil {
		return nil, "", fmt.Errorf("sqlite query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var b model.Bar
		var tsUnix int64
		if err := rows.Scan(&tsUnix, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, "", fmt.Errorf("sqlite scan bars: %w", err)
		}
		b.Symbol = symbol
		b.Date = time.Unix(tsUnix, 0).UTC()
		bars = append(bars, b)
	}
	return bars, industry, rows.Err()
}

// ReadReports loads a symbol's stored reports after a given timestamp,
// ordered by timestamp ascending.
func (r *Reader) ReadReports(symbol string, afterTS int64) ([]model.Report, error) {
	rows, err := r.db.Query(`
		SELECT data FROM reports
		WHERE symbol = ? AND ts > ?
		ORDER BY ts ASC
	`, symbol, afterTS)
	if err != nil {
		return nil, fmt.Errorf("sqlite query reports: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("sqlite scan reports: %w", err)
		}
		var rep model.Report
		if err := json.Unmarshal([]byte(data), &rep); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// ReadLatestReport loads the most recent stored report for a symbol.
// Returns nil when none exists.
func (r *Reader) ReadLatestReport(symbol string) (*model.Report, error) {
	var data string
	err := r.db.QueryRow(`
		SELECT data FROM reports
		WHERE symbol = ?
		ORDER BY ts DESC
		LIMIT 1
	`, symbol).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite read latest report: %w", err)
	}

	var rep model.Report
	if err := json.Unmarshal([]byte(data), &rep); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &rep, nil
}

// Close closes the reader.
func (r *Reader) Close() error {
	return r.db.Close()
}
