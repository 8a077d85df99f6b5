// Package badger provides an embedded, durable context store backed by
// BadgerDB. It suits single-binary deployments that need conversation
// state to survive restarts without an external Redis.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/arbor-flow/arbor/pkg/domain"
)

const keyPrefix = "arbor/context/"

// Store implements ports.ContextStore on BadgerDB.
type Store struct {
	db *badger.DB
}

// Open creates a store at the given directory path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory creates a non-persistent store, useful for tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func storeKey(key string) []byte {
	return []byte(keyPrefix + key)
}

// Save persists the context as a JSON blob.
func (s *Store) Save(ctx context.Context, key string, ec *domain.ExecutionContext) error {
	data, err := json.Marshal(ec)
	if err != nil {
		return fmt.Errorf("failed to marshal execution context: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(storeKey(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save to badger: %w", err)
	}
	return nil
}

// Load retrieves the context for a key.
func (s *Store) Load(ctx context.Context, key string) (*domain.ExecutionContext, error) {
	var ec domain.ExecutionContext
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storeKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &ec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrContextNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load from badger: %w", err)
	}
	return &ec, nil
}

// Delete removes the context for a key.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(storeKey(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete from badger: %w", err)
	}
	return nil
}

// List returns all stored keys in deterministic order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list from badger: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}
