package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"trend-systemv1/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

const (
	defaultBatchSize  = 100
	defaultFlushDelay = 200 * time.Millisecond
)

// WriterConfig configures the SQLite writer.
type WriterConfig struct {
	DBPath string // path to SQLite database file, e.g. "data/screener.db"
}

// Writer is a single-goroutine SQLite writer with transaction batching.
// It persists daily bars and evaluation reports.
type Writer struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (w *Writer) DB() *sql.DB { return w.db }

// New creates a new SQLite Writer, initializes the database with WAL mode and schema.
func New(cfg WriterConfig) (*Writer, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Set connection pool for single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened database at %s", cfg.DBPath)
	return &Writer{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS symbols (
			symbol   TEXT PRIMARY KEY,
			industry TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS bars (
			symbol TEXT    NOT NULL,
			ts     INTEGER NOT NULL,
			open   REAL    NOT NULL,
			high   REAL    NOT NULL,
			low    REAL    NOT NULL,
			close  REAL    NOT NULL,
			volume REAL    NOT NULL,
			PRIMARY KEY (symbol, ts)
		);

		CREATE TABLE IF NOT EXISTS reports (
			symbol     TEXT    NOT NULL,
			ts         INTEGER NOT NULL,
			trend      TEXT    NOT NULL,
			score      INTEGER,
			signal     TEXT    NOT NULL,
			conflict   INTEGER NOT NULL,
			data       TEXT    NOT NULL,
			created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
			PRIMARY KEY (symbol, ts)
		);
	`)
	return err
}

// UpsertSymbol registers a symbol and its industry tag.
func (w *Writer) UpsertSymbol(symbol, industry string) error {
	_, err := w.db.Exec(`INSERT OR REPLACE INTO symbols (symbol, industry) VALUES (?, ?)`, symbol, industry)
	return err
}

// InsertBars stores a symbol's daily bars in one transaction. Existing rows
// for the same day are replaced, so re-imports are idempotent.
func (w *Writer) InsertBars(symbol string, bars []model.Bar) error {
	tx, err := w.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO bars (symbol, ts, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, b := range bars {
		_, err := stmt.Exec(symbol, model.Day(b.Date).Unix(), b.Open, b.High, b.Low, b.Close, b.Volume)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// WriteReports inserts a report batch in a single transaction. It satisfies
// the ReportWriter port for one-shot batch runs.
func (w *Writer) WriteReports(ctx context.Context, reports []model.Report) error {
	if len(reports) == 0 {
		return nil
	}
	return w.insertBatch(reports)
}

// Run reads reports from reportCh and inserts them in batched transactions.
// Flushes every batchSize reports OR every flushDelay, whichever first.
// Blocks until ctx is cancelled or reportCh is closed.
func (w *Writer) Run(ctx context.Context, reportCh <-chan model.Report) {
	batch := make([]model.Report, 0, defaultBatchSize)
	timer := time.NewTimer(defaultFlushDelay)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		start := time.Now()
		if err := w.insertBatch(batch); err != nil {
			log.Printf("[sqlite] batch insert error: %v", err)
		} else {
			log.Printf("[sqlite] committed %d reports in %v", len(batch), time.Since(start))
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case rep, ok := <-reportCh:
			if !ok {
				flush()
				return
			}
			batch = append(batch, rep)
			if len(batch) >= defaultBatchSize {
				flush()
				timer.Reset(defaultFlushDelay)
			}

		case <-timer.C:
			flush()
			timer.Reset(defaultFlushDelay)
		}
	}
}

// insertBatch inserts a batch of reports in a single transaction.
func (w *Writer) insertBatch(reports []model.Report) error {
	tx, err := w.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO reports (symbol, ts, trend, score, signal, conflict, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range reports {
		r := &reports[i]
		score := sql.NullInt64{Int64: int64(r.Score.Value), Valid: r.Score.Valid}
		conflict := 0
		if r.Conflict {
			conflict = 1
		}
		_, err := stmt.Exec(r.Symbol, r.AsOf.Unix(), string(r.Trend), score, string(r.Signal), conflict, string(r.JSON()))
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// LastReportTimestamp returns the newest stored report timestamp for a
// symbol. Returns 0 if no reports exist.
func (w *Writer) LastReportTimestamp(symbol string) (int64, error) {
	var ts sql.NullInt64
	err := w.db.QueryRow(
		`SELECT MAX(ts) FROM reports WHERE symbol = ?`,
		symbol,
	).Scan(&ts)
	if err != nil {
		return 0, err
	}
	if !ts.Valid {
		return 0, nil
	}
	return ts.Int64, nil
}

// Close closes the database.
func (w *Writer) Close() error {
	return w.db.Close()
}
