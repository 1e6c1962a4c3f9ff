// Package boltdb keeps the remembered session in a single bbolt file so
// it survives client restarts.
package boltdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/fantasy11/internal/client/storage"
)

var sessionBucket = []byte("session")

// Второй процесс клиента ждёт file lock не дольше секунды
const lockTimeout = time.Second

var errNoBucket = errors.New("session bucket is missing")

var _ storage.KV = (*Storage)(nil)

// Storage is the durable storage.KV.
type Storage struct {
	db *bbolt.DB
}

// New opens or creates the database at path.
func New(_ context.Context, path string) (*Storage, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: lockTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create session bucket: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close releases the file lock.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) view(fn func(b *bbolt.Bucket) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if b == nil {
			return errNoBucket
		}
		return fn(b)
	})
}

func (s *Storage) update(fn func(b *bbolt.Bucket) error) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if b == nil {
			return errNoBucket
		}
		return fn(b)
	})
}

// Get returns storage.ErrNotFound for a key that was never set.
func (s *Storage) Get(_ context.Context, key string) (string, error) {
	var value string
	err := s.view(func(b *bbolt.Bucket) error {
		raw := b.Get([]byte(key))
		if raw == nil {
			return storage.ErrNotFound
		}
		// срез живёт только до конца транзакции
		value = string(raw)
		return nil
	})
	return value, err
}

func (s *Storage) Set(_ context.Context, key, value string) error {
	return s.update(func(b *bbolt.Bucket) error {
		if err := b.Put([]byte(key), []byte(value)); err != nil {
			return fmt.Errorf("failed to store %s: %w", key, err)
		}
		return nil
	})
}

// Delete ignores missing keys.
func (s *Storage) Delete(_ context.Context, key string) error {
	return s.update(func(b *bbolt.Bucket) error {
		if err := b.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
		return nil
	})
}
