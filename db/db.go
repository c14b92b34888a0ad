// ABOUTME: SQLite connection setup for the records table
// ABOUTME: Opens the file in WAL mode with a busy timeout and ensures the schema exists
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// busyTimeoutMS bounds how long a full-state write waits on a locked file.
const busyTimeoutMS = 5000

func sqliteDSN(path string) string {
	return fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_txlock=immediate", path, busyTimeoutMS)
}

// OpenDatabase opens the SQLite file at path, creating parent directories and
// the records table as needed.
func OpenDatabase(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	database, err := sql.Open("sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	// One writer at a time; PutAll runs its three upserts in one transaction.
	database.SetMaxOpenConns(1)

	if err := InitSchema(database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}
