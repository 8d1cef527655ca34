package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"StockFetcher/internal/model"
)

// SQLiteRecorder persists batch outcomes to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external readers do not block batch writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS batch_runs (
			run_id        TEXT PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			lookback_days INTEGER NOT NULL,
			tickers       INTEGER NOT NULL,
			failures      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_batch_ts ON batch_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS ticker_runs (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL REFERENCES batch_runs(run_id),
			position      INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			status        TEXT NOT NULL,
			error_kind    TEXT,
			message       TEXT,
			first_date    TEXT,
			last_date     TEXT,
			highest_close TEXT,
			lowest_close  TEXT,
			average_close TEXT,
			trading_days  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ticker_symbol ON ticker_runs(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordBatch writes one batch_runs row and one ticker_runs row per report
// in a single transaction. Prices are stored as exact decimal text.
func (r *SQLiteRecorder) RecordBatch(res *model.BatchResult) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := uuid.NewString()
	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO batch_runs
		(run_id, timestamp, lookback_days, tickers, failures)
		VALUES (?,?,?,?,?)`,
		runID, r.now().Unix(), res.LookbackDays, len(res.Reports), res.Failures(),
	); err != nil {
		return "", fmt.Errorf("insert batch run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO ticker_runs
		(run_id, position, symbol, status, error_kind, message,
		 first_date, last_date, highest_close, lowest_close, average_close, trading_days)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return "", fmt.Errorf("prepare ticker insert: %w", err)
	}
	defer stmt.Close()

	for i, rep := range res.Reports {
		var (
			kind, msg, first, last, high, low, avg sql.NullString
			days                                   sql.NullInt64
		)
		if rep.OK() {
			if bars := rep.Series.Bars; len(bars) > 0 {
				first = nullString(bars[0].DateKey())
				last = nullString(bars[len(bars)-1].DateKey())
			}
			high = nullString(rep.Stats.HighestClose.String())
			low = nullString(rep.Stats.LowestClose.String())
			avg = nullString(rep.Stats.AverageClose.String())
			days = sql.NullInt64{Int64: int64(rep.Stats.TradingDays), Valid: true}
		} else {
			kind = nullString(string(rep.Kind))
			msg = nullString(rep.Message)
		}
		if _, err := stmt.Exec(runID, i, string(rep.Symbol), string(rep.Status), kind, msg,
			first, last, high, low, avg, days); err != nil {
			return "", fmt.Errorf("insert ticker run %s: %w", rep.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
