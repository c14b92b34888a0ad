// ABOUTME: Repository interface for the three persisted CRM records
// ABOUTME: Backends store opaque JSON blobs keyed by record name and write them atomically
package db

import (
	"context"
	"errors"
	"fmt"
)

// Record keys in the backing store.
const (
	KeyContacts  = "crm_contacts"
	KeyFollowUps = "crm_followups"
	KeySettings  = "crm_settings"
)

// AllKeys lists every record key in load order.
var AllKeys = []string{KeySettings, KeyContacts, KeyFollowUps}

var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Repository persists whole records. PutAll must write every record or none.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	PutAll(ctx context.Context, records map[string][]byte) error
	Name() string
	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Open creates a repository for the named backend at path.
func Open(backend, path string) (Repository, error) {
	switch backend {
	case "", BackendSQLite:
		database, err := OpenDatabase(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return NewSQLiteRepository(database), nil
	case BackendBadger:
		repo, err := OpenBadger(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return repo, nil
	case BackendMemory:
		return NewMemoryRepository(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", backend)
}
