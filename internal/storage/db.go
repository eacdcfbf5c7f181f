package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// ErrDuplicate is returned when an insert hits a unique key that already exists.
var ErrDuplicate = errors.New("duplicate key")

// DB wraps a pooled sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection pool and runs migrations.
//
// File databases get WAL journaling, a busy timeout and foreign keys on every
// pooled connection. An in-memory database is private to one connection, so
// the pool is pinned to a single connection to keep every caller on the same
// data.
func NewDB(path string) (*DB, error) {
	memory := isMemory(path)

	conn, err := sql.Open("sqlite", dsn(path, memory))
	if err != nil {
		return nil, err
	}
	if memory {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

func dsn(path string, memory bool) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	if memory {
		return path + sep + "_pragma=foreign_keys(1)"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			salt TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			description TEXT NOT NULL,
			amount REAL NOT NULL,
			date TEXT NOT NULL,
			category TEXT NOT NULL,
			payer TEXT NOT NULL,
			month_key TEXT NOT NULL,
			receipt_path TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_month_key ON expenses(month_key)`,
		`CREATE TABLE IF NOT EXISTS expense_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			expense_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			amount REAL NOT NULL,
			FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expense_items_expense_id ON expense_items(expense_id)`,
		`CREATE TABLE IF NOT EXISTS balances (
			month_key TEXT PRIMARY KEY,
			starting_balance REAL NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS savings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			target REAL NOT NULL,
			current REAL NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}

	// Columns added after the first release. The error is ignored because the
	// column already exists on fresh databases.
	_, _ = db.conn.Exec(`ALTER TABLE expenses ADD COLUMN receipt_path TEXT`)
	_, _ = db.conn.Exec(`ALTER TABLE users ADD COLUMN role TEXT NOT NULL DEFAULT 'user'`)

	return nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// withTx runs fn inside a transaction. The transaction is rolled back when fn
// returns an error or panics, and committed otherwise.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
