// Package sqlite is the embedded record store. Calendar dates are kept as
// YYYY-MM-DD text and parsed strictly on the way out.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mamadbah2/herdcare/internal/repository"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

const schema = `
CREATE TABLE IF NOT EXISTS goat_types (
  id   INTEGER PRIMARY KEY,
  name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS goats (
  id                  INTEGER PRIMARY KEY,
  tag                 TEXT NOT NULL UNIQUE,
  goat_type_id        INTEGER NOT NULL DEFAULT 0,
  sex                 TEXT NOT NULL,
  dob                 TEXT,
  age_estimate_months INTEGER NOT NULL DEFAULT 0,
  date_acquired       TEXT,
  acquisition_method  TEXT NOT NULL DEFAULT '',
  is_pregnant         INTEGER NOT NULL DEFAULT 0 CHECK (is_pregnant IN (0,1)),
  weight              REAL NOT NULL DEFAULT 0,
  status              TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active','removed')),
  location            TEXT NOT NULL DEFAULT '',
  notes               TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS vaccine_types (
  id                     INTEGER PRIMARY KEY,
  name                   TEXT NOT NULL UNIQUE,
  description            TEXT NOT NULL DEFAULT '',
  min_age_days           INTEGER NOT NULL DEFAULT 0,
  booster_schedule_days  TEXT NOT NULL DEFAULT '',
  default_frequency_days INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS target_weights (
  id           INTEGER PRIMARY KEY,
  goat_type_id INTEGER NOT NULL,
  sex          TEXT NOT NULL DEFAULT '',
  age_months   INTEGER NOT NULL,
  min_weight   REAL NOT NULL,
  UNIQUE(goat_type_id, sex, age_months)
);
CREATE TABLE IF NOT EXISTS vaccination_events (
  id                INTEGER PRIMARY KEY,
  goat_id           INTEGER NOT NULL,
  vaccine_type_id   INTEGER NOT NULL,
  scheduled_date    TEXT NOT NULL,
  actual_date_given TEXT,
  status            TEXT NOT NULL CHECK (status IN ('scheduled','done')),
  notes             TEXT NOT NULL DEFAULT '',
  batch_number      TEXT NOT NULL DEFAULT '',
  given_by          TEXT NOT NULL DEFAULT '',
  created_by        TEXT NOT NULL DEFAULT '',
  created_at        TEXT NOT NULL,
  UNIQUE(goat_id, vaccine_type_id, scheduled_date)
);
CREATE INDEX IF NOT EXISTS idx_vaccinations_goat ON vaccination_events(goat_id, vaccine_type_id);
CREATE TABLE IF NOT EXISTS breeding_events (
  id                INTEGER PRIMARY KEY,
  buck_id           INTEGER NOT NULL,
  doe_id            INTEGER NOT NULL,
  mating_start_date TEXT NOT NULL,
  mating_end_date   TEXT,
  status            TEXT NOT NULL DEFAULT '',
  notes             TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_breeding_doe ON breeding_events(doe_id);
CREATE TABLE IF NOT EXISTS sicknesses (
  id         INTEGER PRIMARY KEY,
  goat_id    INTEGER NOT NULL,
  sickness   TEXT NOT NULL,
  medicine   TEXT NOT NULL DEFAULT '',
  status     TEXT NOT NULL CHECK (status IN ('active','recovered')),
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sicknesses_goat ON sicknesses(goat_id, status);
CREATE TABLE IF NOT EXISTS farm_events (
  id         INTEGER PRIMARY KEY,
  title      TEXT NOT NULL,
  event_date TEXT NOT NULL,
  category   TEXT NOT NULL DEFAULT '',
  recurrence TEXT NOT NULL DEFAULT '',
  notes      TEXT NOT NULL DEFAULT '',
  created_by TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS herd_reports (
  date                  TEXT PRIMARY KEY,
  active_goats          INTEGER NOT NULL,
  sick                  INTEGER NOT NULL,
  underweight           INTEGER NOT NULL,
  pregnant              INTEGER NOT NULL,
  ready_to_mate         INTEGER NOT NULL,
  overdue_vaccinations  INTEGER NOT NULL,
  due_soon_vaccinations INTEGER NOT NULL,
  created_at            TEXT NOT NULL
);
`

// Store implements repository.Store on top of modernc.org/sqlite.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

var _ repository.Store = (*Store)(nil)

// Open opens (creating when needed) the database file and ensures the schema exists.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// a single writer keeps SQLITE_BUSY out of concurrent requests
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}

	logger.Info("sqlite store ready", zap.String("path", path))
	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Close releases the database handle.
func (s *Store) Close(context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// withTx runs fn inside a transaction, rolling back when fn fails.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: dates.Format(*t), Valid: true}
}

func nullDateValue(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: dates.Format(t), Valid: true}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(field string, id int64, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, &dates.ParseError{Field: field, RecordID: id, Value: value, Err: err}
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
