package state

import (
	"sort"
	"sync"
)

// MemStore is an in-memory Store. Writes are staged per transaction and
// applied only when the transaction function succeeds.
type MemStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
	seqs    map[string]uint64
	closed  bool
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		buckets: make(map[string]map[string][]byte),
		seqs:    make(map[string]uint64),
	}
}

// Update runs fn with exclusive access and commits its staged writes on success.
func (s *MemStore) Update(fn func(Tx) error) error {
	if fn == nil {
		return ErrNilParam
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	tx := &memTx{
		store:    s,
		writable: true,
		writes:   make(map[string]map[string]*[]byte),
		seqs:     make(map[string]uint64),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// View runs fn with shared access.
func (s *MemStore) View(fn func(Tx) error) error {
	if fn == nil {
		return ErrNilParam
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return fn(&memTx{store: s})
}

// Close marks the store closed. Further calls fail with ErrClosed.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// memTx reads through its staged writes to the committed maps.
// A nil *[]byte in writes marks a staged delete.
type memTx struct {
	store    *MemStore
	writable bool
	writes   map[string]map[string]*[]byte
	seqs     map[string]uint64
}

func (tx *memTx) Writable() bool { return tx.writable }

func (tx *memTx) Get(bucket, key []byte) []byte {
	if staged, ok := tx.writes[string(bucket)]; ok {
		if v, ok := staged[string(key)]; ok {
			if v == nil {
				return nil
			}
			return cloneBytes(*v)
		}
	}
	return cloneBytes(tx.store.buckets[string(bucket)][string(key)])
}

func (tx *memTx) Put(bucket, key, value []byte) error {
	if err := checkKey(bucket, key); err != nil {
		return err
	}
	if !tx.writable {
		return ErrReadOnly
	}
	v := cloneBytes(value)
	if v == nil {
		v = []byte{}
	}
	tx.stage(bucket)[string(key)] = &v
	return nil
}

func (tx *memTx) Delete(bucket, key []byte) error {
	if err := checkKey(bucket, key); err != nil {
		return err
	}
	if !tx.writable {
		return ErrReadOnly
	}
	tx.stage(bucket)[string(key)] = nil
	return nil
}

func (tx *memTx) NextSequence(bucket []byte) (uint64, error) {
	if len(bucket) == 0 {
		return 0, ErrEmptyKey
	}
	if !tx.writable {
		return 0, ErrReadOnly
	}
	name := string(bucket)
	seq, ok := tx.seqs[name]
	if !ok {
		seq = tx.store.seqs[name]
	}
	seq++
	tx.seqs[name] = seq
	return seq, nil
}

func (tx *memTx) ForEach(bucket []byte, fn func(k, v []byte) error) error {
	name := string(bucket)
	merged := make(map[string][]byte, len(tx.store.buckets[name]))
	for k, v := range tx.store.buckets[name] {
		merged[k] = v
	}
	for k, v := range tx.writes[name] {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = *v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := fn([]byte(k), cloneBytes(merged[k])); err != nil {
			return err
		}
	}
	return nil
}

func (tx *memTx) stage(bucket []byte) map[string]*[]byte {
	m, ok := tx.writes[string(bucket)]
	if !ok {
		m = make(map[string]*[]byte)
		tx.writes[string(bucket)] = m
	}
	return m
}

func (tx *memTx) commit() {
	s := tx.store
	for name, staged := range tx.writes {
		b, ok := s.buckets[name]
		if !ok {
			b = make(map[string][]byte)
			s.buckets[name] = b
		}
		for k, v := range staged {
			if v == nil {
				delete(b, k)
				continue
			}
			b[k] = *v
		}
	}
	for name, seq := range tx.seqs {
		s.seqs[name] = seq
	}
}
