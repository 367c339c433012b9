package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// BoltStore is a Store backed by a bbolt database file. Each Update is one
// bbolt read-write transaction, so a failed unit of work is rolled back by bbolt.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("state: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("state: open bolt db: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *BoltStore) Path() string { return s.db.Path() }

// Update runs fn inside a bbolt read-write transaction.
func (s *BoltStore) Update(fn func(Tx) error) error {
	if fn == nil {
		return ErrNilParam
	}
	err := s.db.Update(func(btx *bbolt.Tx) error {
		return fn(&boltTx{tx: btx})
	})
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	return err
}

// View runs fn inside a bbolt read-only transaction.
func (s *BoltStore) View(fn func(Tx) error) error {
	if fn == nil {
		return ErrNilParam
	}
	err := s.db.View(func(btx *bbolt.Tx) error {
		return fn(&boltTx{tx: btx})
	})
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	return err
}

// boltTx adapts *bbolt.Tx to Tx. Values returned by bbolt are only valid
// for the life of the transaction, so Get copies them out.
type boltTx struct {
	tx *bbolt.Tx
}

func (t *boltTx) Writable() bool { return t.tx.Writable() }

func (t *boltTx) Get(bucket, key []byte) []byte {
	b := t.tx.Bucket(bucket)
	if b == nil {
		return nil
	}
	return cloneBytes(b.Get(key))
}

func (t *boltTx) Put(bucket, key, value []byte) error {
	if err := checkKey(bucket, key); err != nil {
		return err
	}
	if !t.tx.Writable() {
		return ErrReadOnly
	}
	b, err := t.tx.CreateBucketIfNotExists(bucket)
	if err != nil {
		return fmt.Errorf("boltstore: create bucket %q: %w", bucket, err)
	}
	if value == nil {
		value = []byte{}
	}
	if err := b.Put(key, value); err != nil {
		return fmt.Errorf("boltstore: put %q: %w", bucket, err)
	}
	return nil
}

func (t *boltTx) Delete(bucket, key []byte) error {
	if err := checkKey(bucket, key); err != nil {
		return err
	}
	if !t.tx.Writable() {
		return ErrReadOnly
	}
	b := t.tx.Bucket(bucket)
	if b == nil {
		return nil
	}
	if err := b.Delete(key); err != nil {
		return fmt.Errorf("boltstore: delete %q: %w", bucket, err)
	}
	return nil
}

func (t *boltTx) NextSequence(bucket []byte) (uint64, error) {
	if len(bucket) == 0 {
		return 0, ErrEmptyKey
	}
	if !t.tx.Writable() {
		return 0, ErrReadOnly
	}
	b, err := t.tx.CreateBucketIfNotExists(bucket)
	if err != nil {
		return 0, fmt.Errorf("boltstore: create bucket %q: %w", bucket, err)
	}
	seq, err := b.NextSequence()
	if err != nil {
		return 0, fmt.Errorf("boltstore: next sequence %q: %w", bucket, err)
	}
	return seq, nil
}

func (t *boltTx) ForEach(bucket []byte, fn func(k, v []byte) error) error {
	b := t.tx.Bucket(bucket)
	if b == nil {
		return nil
	}
	return b.ForEach(func(k, v []byte) error {
		return fn(cloneBytes(k), cloneBytes(v))
	})
}
