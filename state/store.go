package state

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Store is a keyed store whose writes happen in atomic units of work.
type Store interface {
	// Update runs fn in a read-write transaction. All writes made by fn are
	// committed if fn returns nil and discarded otherwise. Writers are serialized.
	Update(fn func(Tx) error) error

	// View runs fn in a read-only transaction.
	View(fn func(Tx) error) error

	// Close releases the store.
	Close() error
}

// Tx is the view of the store inside one unit of work.
type Tx interface {
	// Get returns a copy of the value under key, or nil if absent.
	Get(bucket, key []byte) []byte

	// Put stores value under key, creating the bucket on first use.
	Put(bucket, key, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(bucket, key []byte) error

	// NextSequence returns the next value of the bucket's monotonic counter, starting at 1.
	NextSequence(bucket []byte) (uint64, error)

	// ForEach calls fn for every key in bucket in ascending byte order.
	ForEach(bucket []byte, fn func(k, v []byte) error) error

	// Writable reports whether Put/Delete are permitted.
	Writable() bool
}

// GetGob decodes the gob value under key into v. Returns ErrNotFound if absent.
func GetGob(tx Tx, bucket, key []byte, v interface{}) error {
	data := tx.Get(bucket, key)
	if data == nil {
		return ErrNotFound
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("state: decode %s/%x: %w", bucket, key, err)
	}
	return nil
}

// PutGob gob-encodes v and stores it under key.
func PutGob(tx Tx, bucket, key []byte, v interface{}) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("state: encode %s/%x: %w", bucket, key, err)
	}
	return tx.Put(bucket, key, buf.Bytes())
}

func checkKey(bucket, key []byte) error {
	if len(bucket) == 0 || len(key) == 0 {
		return ErrEmptyKey
	}
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
