package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore stores values in an embedded BadgerDB under "namespace:key" keys
type BadgerStore struct {
	db *badger.DB
}

var _ Store = (*BadgerStore)(nil)

// NewBadgerStore opens (or creates) a BadgerDB at path
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStoreFromDB wraps an already opened database. Close closes db.
func NewBadgerStoreFromDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func badgerKey(namespace, key string) []byte {
	return []byte(namespace + ":" + key)
}

// Get returns the value for key
func (b *BadgerStore) Get(_ context.Context, namespace, key string) (string, bool, error) {
	if err := validateNamespace(namespace); err != nil {
		return "", false, err
	}

	var value string
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(namespace, key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s/%s: %w", namespace, key, err)
	}
	return value, true, nil
}

// Set stores value under key
func (b *BadgerStore) Set(_ context.Context, namespace, key, value string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(namespace, key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete removes key
func (b *BadgerStore) Delete(_ context.Context, namespace, key string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(namespace, key))
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Keys returns the keys in namespace. Badger iterates in byte order, so the result is sorted.
func (b *BadgerStore) Keys(_ context.Context, namespace string) ([]string, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}

	keys := []string{}
	prefix := []byte(namespace + ":")
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, strings.TrimPrefix(string(it.Item().Key()), string(prefix)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list keys in %s: %w", namespace, err)
	}
	return keys, nil
}

// Close closes the underlying database
func (b *BadgerStore) Close() error {
	return b.db.Close()
}
