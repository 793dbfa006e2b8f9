package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	"github.com/heysubinoy/pyazkv/pkg/kv"
)

const defaultBucket = "kv"

// BoltStore persists JSON-encoded values in a single bolt bucket.
// Values survive restarts; every write is its own bolt transaction.
type BoltStore[V any] struct {
	db     *bolt.DB
	bucket []byte
}

var _ kv.Store[string] = (*BoltStore[string])(nil)

// NewBoltStore opens (or creates) the bolt file at path, creating missing
// parent directories. timeout bounds how long Open waits for the file lock
// held by another process.
func NewBoltStore[V any](path string, mode os.FileMode, timeout time.Duration) (*BoltStore[V], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create directory for %v: %w", path, err)
	}

	db, err := bolt.Open(path, mode, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("unable to open %v: %w", path, err)
	}

	s := &BoltStore[V]{db: db, bucket: []byte(defaultBucket)}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating bucket %s: %w", s.bucket, err)
	}
	return s, nil
}

func (s *BoltStore[V]) Close() error {
	return s.db.Close()
}

func (s *BoltStore[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var (
		value V
		found bool
	)
	if err := ctx.Err(); err != nil {
		return value, false, kv.NewStoreError(kv.OpGet, key, err)
	}

	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &value)
	})
	if err != nil {
		var zero V
		return zero, false, kv.NewStoreError(kv.OpGet, key, err)
	}
	return value, found, nil
}

func (s *BoltStore[V]) Put(ctx context.Context, key string, value V) error {
	if err := ctx.Err(); err != nil {
		return kv.NewStoreError(kv.OpPut, key, err)
	}

	buf, err := json.Marshal(value)
	if err != nil {
		return kv.NewStoreError(kv.OpPut, key, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), buf)
	})
	return kv.NewStoreError(kv.OpPut, key, err)
}

// Delete is a no-op for missing keys, as bolt's Bucket.Delete is.
func (s *BoltStore[V]) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return kv.NewStoreError(kv.OpDelete, key, err)
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
	return kv.NewStoreError(kv.OpDelete, key, err)
}

// Count returns the number of keys in the bucket.
func (s *BoltStore[V]) Count() (int, error) {
	n := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(k, v []byte) error {
			n++
			return nil
		})
	})
	return n, err
}
