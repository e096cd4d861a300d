// Package database implements sqlite-backed storage for the scheduling engine.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DB wraps the sqlite connection pool.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

// DateFormat is how calendar dates are stored and exchanged.
const DateFormat = "2006-01-02"

// NewDB opens the database at path and runs migrations.
//
// The DSN forces immediate transactions: every write transaction takes the
// database write lock at BEGIN, which serializes the conflict-check-then-insert
// sequence in CreateBooking and keeps two overlapping bookings from both
// committing.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_txlock=immediate"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	instance := &DB{DB: db, logger: logger}
	if err := instance.createTables(); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return instance, nil
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS businesses (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'ACTIVE',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS services (
			id TEXT PRIMARY KEY,
			business_id TEXT NOT NULL,
			name TEXT NOT NULL,
			duration_mins INTEGER NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (business_id) REFERENCES businesses(id)
		)`,

		`CREATE TABLE IF NOT EXISTS working_hours (
			id TEXT PRIMARY KEY,
			business_id TEXT NOT NULL,
			day_of_week INTEGER NOT NULL,
			open_time TEXT,
			close_time TEXT,
			is_closed BOOLEAN NOT NULL DEFAULT 0,
			break_start TEXT,
			break_end TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (business_id, day_of_week),
			FOREIGN KEY (business_id) REFERENCES businesses(id)
		)`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			business_id TEXT NOT NULL,
			service_id TEXT NOT NULL,
			customer_id TEXT,
			guest_name TEXT NOT NULL DEFAULT '',
			guest_phone TEXT NOT NULL DEFAULT '',
			guest_email TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'PENDING',
			notes TEXT NOT NULL DEFAULT '',
			rejection_reason TEXT NOT NULL DEFAULT '',
			booked_at DATETIME NOT NULL,
			confirmed_at DATETIME,
			cancelled_at DATETIME,
			completed_at DATETIME,
			FOREIGN KEY (business_id) REFERENCES businesses(id),
			FOREIGN KEY (service_id) REFERENCES services(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_business_date ON bookings(business_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_customer ON bookings(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_services_business ON services(business_id)`,
		`CREATE INDEX IF NOT EXISTS idx_working_hours_business ON working_hours(business_id, day_of_week)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
