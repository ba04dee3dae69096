package store

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"psxscan/internal/model"
)

const dateLayout = "2006-01-02"

// SQLiteStore persists per-date quote snapshots to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so a scan can read cached windows while a fetch writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite snapshot store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS quotes (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			date    TEXT NOT NULL,
			symbol  TEXT NOT NULL,
			ldcp    TEXT,
			open    TEXT,
			high    TEXT,
			low     TEXT,
			close   TEXT,
			volume  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quotes_date ON quotes(date)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_quotes_date_symbol ON quotes(date, symbol)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// SaveDay replaces the cached rows for a date.
func (s *SQLiteStore) SaveDay(date time.Time, rows []model.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := date.Format(dateLayout)
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM quotes WHERE date = ?`, day); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear day %s: %w", day, err)
	}
	stmt, err := tx.Prepare(`INSERT INTO quotes
		(date, symbol, ldcp, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, q := range rows {
		if _, err := stmt.Exec(day, model.CanonicalSymbol(q.Symbol),
			q.LDCP, q.Open, q.High, q.Low, q.Close, q.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s/%s: %w", day, q.Symbol, err)
		}
	}
	return tx.Commit()
}

// LoadDay returns the cached rows for a date; nil when the date is uncached.
func (s *SQLiteStore) LoadDay(date time.Time) ([]model.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := date.Format(dateLayout)
	rows, err := s.db.Query(`SELECT symbol, ldcp, open, high, low, close, volume
		FROM quotes WHERE date = ? ORDER BY symbol`, day)
	if err != nil {
		return nil, fmt.Errorf("query day %s: %w", day, err)
	}
	defer rows.Close()

	parsed, err := time.Parse(dateLayout, day)
	if err != nil {
		return nil, fmt.Errorf("parse day %s: %w", day, err)
	}

	var quotes []model.Quote
	for rows.Next() {
		q := model.Quote{Date: parsed}
		if err := rows.Scan(&q.Symbol, &q.LDCP, &q.Open, &q.High, &q.Low, &q.Close, &q.Volume); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite snapshot store")
	return s.db.Close()
}
