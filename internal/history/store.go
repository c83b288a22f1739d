package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Arkpointt/gangware-sub001/internal/logging"
)

// Store wraps the SQLite database holding detection history.
type Store struct {
	conn *sql.DB
	path string
	log  *logging.Logger
}

// Open opens or creates the history database at the specified path.
func Open(dbPath string, log *logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.NewLogger("history")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite works best with a single connection
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	store := &Store{conn: conn, path: dbPath, log: log}
	if err := store.runMigrations(); err != nil {
		conn.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// execTx executes a function within a transaction.
func (s *Store) execTx(fn func(*sql.Tx) error) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// migration is one schema step, applied in version order.
type migration struct {
	version     int
	description string
	up          func(*sql.Tx) error
}

var migrations = []migration{
	{1, "Create schema_version table", migration001Up},
	{2, "Create detections table", migration002Up},
	{3, "Create sessions table", migration003Up},
}

func (s *Store) runMigrations() error {
	current, err := s.currentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		s.log.DebugWithContext("applying migration", map[string]interface{}{
			"version": m.version, "description": m.description,
		})

		err := s.execTx(func(tx *sql.Tx) error {
			if err := m.up(tx); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
			_, err := tx.Exec(`
				INSERT INTO schema_version (version, description, applied_at)
				VALUES (?, ?, ?)
			`, m.version, m.description, time.Now())
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// currentVersion returns the latest applied schema version.
func (s *Store) currentVersion() (int, error) {
	var tableExists bool
	err := s.conn.QueryRow(`
		SELECT COUNT(*) > 0
		FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableExists)
	if err != nil {
		return 0, err
	}
	if !tableExists {
		return 0, nil
	}

	var version int
	err = s.conn.QueryRow(`
		SELECT COALESCE(MAX(version), 0)
		FROM schema_version
	`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// Version returns the current schema version.
func (s *Store) Version() (int, error) {
	return s.currentVersion()
}

func migration001Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			version INTEGER NOT NULL UNIQUE,
			description TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)
	`)
	return err
}

func migration002Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE detections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			observed_at DATETIME NOT NULL,
			menu TEXT NOT NULL,
			anchor TEXT NOT NULL,
			score REAL NOT NULL,
			matched INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`CREATE INDEX idx_detections_observed_at ON detections(observed_at)`)
	return err
}

func migration003Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			process_name TEXT NOT NULL,
			samples_emitted INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}
