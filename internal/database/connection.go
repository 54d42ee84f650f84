package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported driver names
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// NormalizeDriver maps config spellings onto registered driver names
func NormalizeDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pq":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Connect opens the database and creates the schema
func Connect(driver, dsn string) (*sqlx.DB, error) {
	driver, err := NormalizeDriver(driver)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite && isFilePath(dsn) {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func isFilePath(dsn string) bool {
	return dsn != "" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:")
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == DriverPostgres {
		id = "BIGSERIAL PRIMARY KEY"
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS quiz_results (
			id ` + id + `,
			user_id BIGINT NOT NULL,
			test_slug TEXT NOT NULL,
			test_title TEXT NOT NULL,
			outcome TEXT NOT NULL,
			answered INTEGER NOT NULL DEFAULT 0,
			completed_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create quiz_results table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_quiz_results_user ON quiz_results (user_id, completed_at)`)
	if err != nil {
		return fmt.Errorf("failed to create quiz_results index: %w", err)
	}
	return nil
}
