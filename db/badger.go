// ABOUTME: BadgerDB-backed repository for the embedded ordered key-value backend
// ABOUTME: All records are written in one badger transaction
package db

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
)

type BadgerRepository struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a badger directory at dir.
func OpenBadger(dir string) (*BadgerRepository, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dir).
		WithLogger(nil) // badger is chatty; the store logs what matters

	database, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerRepository{db: database}, nil
}

func (r *BadgerRepository) Name() string {
	return BackendBadger
}

func (r *BadgerRepository) Get(_ context.Context, key string) ([]byte, error) {
	var result []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrRecordNotFound
	}
	return result, err
}

func (r *BadgerRepository) PutAll(_ context.Context, records map[string][]byte) error {
	return r.db.Update(func(txn *badger.Txn) error {
		for key, value := range records {
			if err := txn.Set([]byte(key), value); err != nil {
				return fmt.Errorf("failed to write %s: %w", key, err)
			}
		}
		return nil
	})
}

func (r *BadgerRepository) Close() error {
	return r.db.Close()
}
