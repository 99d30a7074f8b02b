package storage

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/couchcryptid/storm-alert-service/internal/domain"
)

var stateBucket = []byte("state")

// Bolt is a Store backed by a single-file bbolt database.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (creating if necessary) the database at path and ensures
// the state bucket exists.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open state database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(stateBucket)
		return err
	})
	if err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("create state bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}

func (b *Bolt) Get(key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(stateBucket).Get([]byte(key)); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, &domain.StorageError{Key: key, Err: err}
	}
	return value, nil
}

func (b *Bolt) Set(key string, value []byte) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).Put([]byte(key), value)
	})
	if err != nil {
		return &domain.StorageError{Key: key, Err: err}
	}
	return nil
}

func (b *Bolt) Delete(key string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).Delete([]byte(key))
	})
	if err != nil {
		return &domain.StorageError{Key: key, Err: err}
	}
	return nil
}

func (b *Bolt) Close() error {
	return b.db.Close()
}
