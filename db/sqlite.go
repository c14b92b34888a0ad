// ABOUTME: SQLite-backed repository storing each record as one row
// ABOUTME: PutAll upserts every record inside a single transaction
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(database *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: database}
}

func (r *SQLiteRepository) Name() string {
	return BackendSQLite
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (r *SQLiteRepository) PutAll(ctx context.Context, records map[string][]byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	now := time.Now().UTC()
	for key, value := range records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				updated_at = excluded.updated_at
		`, key, value, now)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
