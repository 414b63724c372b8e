/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: cache.go
Description: Persistent result cache backed by bbolt. Stores analysis results keyed by
the binary's content digest and the analyzer's configuration fingerprint, so unchanged
binaries are not re-analyzed across runs.
*/

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kleascm/cyskel/pkg/core"
	"github.com/kleascm/cyskel/pkg/inference"
	bolt "go.etcd.io/bbolt"
)

const bucketName = "results"

// ErrClosed is returned when the cache is used after Close
var ErrClosed = errors.New("result cache is closed")

// Store is a bbolt-backed core.ResultCache
type Store struct {
	db   *bolt.DB
	path string
}

// Open opens or creates the cache database at path
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, core.ErrEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file location
func (s *Store) Path() string {
	return s.path
}

// Get returns the cached result for digest under fingerprint
func (s *Store) Get(ctx context.Context, digest, fingerprint string) (*core.Result, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return bolt.ErrBucketNotFound
		}
		if v := bucket.Get(key(digest, fingerprint)); v != nil {
			// values are only valid inside the transaction
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, s.wrap(err)
	}
	if data == nil {
		return nil, false, nil
	}

	var result core.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached result: %w", err)
	}
	inference.Relink(result.Root)
	return &result, true, nil
}

// Put stores result under digest and fingerprint
func (s *Store) Put(ctx context.Context, digest, fingerprint string, result *core.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		return bucket.Put(key(digest, fingerprint), data)
	})
	return s.wrap(err)
}

// Len returns the number of cached results
func (s *Store) Len() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		if bucket := tx.Bucket([]byte(bucketName)); bucket != nil {
			n = bucket.Stats().KeyN
		}
		return nil
	})
	return n, s.wrap(err)
}

// Purge removes every cached result
func (s *Store) Purge() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
	return s.wrap(err)
}

// Close releases the database file
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) wrap(err error) error {
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	return err
}

func key(digest, fingerprint string) []byte {
	return []byte(digest + "/" + fingerprint)
}
