package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const boltBucket = "taskflow"

// Bolt stores every key in a single bucket of a bbolt file.
type Bolt struct {
	db     *bolt.DB
	bucket []byte
}

func OpenBolt(path string) (*Bolt, error) {
	if path == "" {
		return nil, errors.New("bolt path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Bolt{db: db, bucket: []byte(boltBucket)}, nil
}

func (b *Bolt) Get(_ context.Context, key string) (string, bool, error) {
	if b == nil || b.db == nil {
		return "", false, bolt.ErrDatabaseNotOpen
	}
	var (
		value string
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(b.bucket).Get([]byte(key))
		if v != nil {
			value = string(v)
			found = true
		}
		return nil
	})
	return value, found, err
}

func (b *Bolt) Set(_ context.Context, key, value string) error {
	if b == nil || b.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(key), []byte(value))
	})
}

func (b *Bolt) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}
