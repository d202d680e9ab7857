// Package boltdb implements the local file record backend on an embedded
// bbolt database.
package boltdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketPatients = []byte("patients")
	bucketMeta     = []byte("meta")
	keyVersion     = []byte("schema_version")
)

var errNotOpen = errors.New("bolt database is not open")

// DefaultLockTimeout bounds the wait for the file lock held by another
// fieldcare process.
const DefaultLockTimeout = 2 * time.Second

// KV stores opaque payloads in the "patients" bucket of a single file.
type KV struct {
	path    string
	timeout time.Duration

	mu sync.RWMutex
	db *bolt.DB
}

func New(path string, lockTimeout time.Duration) *KV {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &KV{path: path, timeout: lockTimeout}
}

// Open opens the file, creating it and its directory when missing, and
// records the schema version. A newer stored version is refused.
func (kv *KV) Open(ctx context.Context, version int) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	if kv.db == nil {
		if dir := filepath.Dir(kv.path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return fmt.Errorf("create data directory: %w", err)
			}
		}
		db, err := bolt.Open(kv.path, 0o600, &bolt.Options{Timeout: kv.timeout})
		if err != nil {
			return fmt.Errorf("open %s: %w", kv.path, err)
		}
		kv.db = db
	}

	return kv.db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketPatients); err != nil {
			return err
		}

		if raw := meta.Get(keyVersion); raw != nil {
			current, err := strconv.Atoi(string(raw))
			if err != nil {
				return fmt.Errorf("corrupt schema version %q", raw)
			}
			if current > version {
				return fmt.Errorf("stored schema version %d is newer than supported %d", current, version)
			}
			if current == version {
				return nil
			}
		}
		return meta.Put(keyVersion, []byte(strconv.Itoa(version)))
	})
}

// Get returns the payload stored under id, or nil when there is none.
func (kv *KV) Get(ctx context.Context, id string) ([]byte, error) {
	var out []byte
	err := kv.view(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketPatients).Get([]byte(id)); v != nil {
			// v is only valid inside the transaction
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, err
}

func (kv *KV) Put(ctx context.Context, id string, payload []byte) error {
	return kv.update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPatients).Put([]byte(id), payload)
	})
}

func (kv *KV) Delete(ctx context.Context, id string) error {
	return kv.update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPatients).Delete([]byte(id))
	})
}

// Close releases the file lock. The KV can be opened again afterwards.
func (kv *KV) Close() error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	if kv.db == nil {
		return nil
	}
	err := kv.db.Close()
	kv.db = nil
	return err
}

func (kv *KV) view(fn func(*bolt.Tx) error) error {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	if kv.db == nil {
		return errNotOpen
	}
	return kv.db.View(fn)
}

func (kv *KV) update(fn func(*bolt.Tx) error) error {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	if kv.db == nil {
		return errNotOpen
	}
	return kv.db.Update(fn)
}
