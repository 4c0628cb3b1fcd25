// Package sqlite is the durable store adapter (spec.md component F): an
// embedded modernc.org/sqlite database holding the events and settings
// tables, migrated with pressly/goose/v3 embedded SQL files — the same
// connection/migration shape as the teacher's internal/storage/sql
// package, trimmed to the single sqlite driver this single-process
// service needs.
package sqlite

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // sqlite driver, registered under "sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Config configures the embedded database connection.
type Config struct {
	// Path is the sqlite file path, or ":memory:" for an in-memory
	// database (tests only: an in-memory db does not survive restarts,
	// defeating the durability this store exists to provide).
	Path            string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DB wraps the underlying *sql.DB plus the event and settings repositories
// built on top of it.
type DB struct {
	conn     *sql.DB
	Events   *EventRepo
	Settings *SettingsRepo
}

// Open connects to the database at cfg.Path, applying defaults and running
// migrations, and returns a DB ready to back internal/model and
// internal/settings.
func Open(cfg Config) (*DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)", cfg.Path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1 // modernc.org/sqlite serializes writers; one conn avoids SQLITE_BUSY churn
	}
	conn.SetMaxOpenConns(maxOpen)
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = 5 * time.Minute
	}
	conn.SetConnMaxLifetime(lifetime)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	if err := runMigrations(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}

	return &DB{
		conn:     conn,
		Events:   &EventRepo{db: conn},
		Settings: &SettingsRepo{db: conn},
	}, nil
}

func runMigrations(conn *sql.DB) error {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	goose.SetBaseFS(embedMigrations)
	if err := goose.Up(conn, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	return d.conn.Close()
}
