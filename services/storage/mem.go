package storage

import (
	"fmt"
	"sync"
)

// MemStore is an in memory only implementation of Interface, intended for tests.
// Write transactions are serialized and operate on a copy that replaces the
// store contents on commit. Read transactions see a snapshot.
type MemStore struct {
	mu    sync.Mutex
	Name  string
	store map[string][]byte
}

func NewMemStore(name string) *MemStore {
	return &MemStore{
		Name:  name,
		store: make(map[string][]byte),
	}
}

func (s *MemStore) View(f func(tx ReadOnlyTx) error) error {
	return DoView(s, f)
}

func (s *MemStore) Update(f func(tx Tx) error) error {
	return DoUpdate(s, f)
}

func (s *MemStore) BeginReadOnlyTx() (ReadOnlyTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &memTx{store: s.copy(), state: committed}, nil
}

func (s *MemStore) BeginTx() (Tx, error) {
	// The lock is held until the transaction is committed or rolled back.
	s.mu.Lock()
	return &memTx{m: s, store: s.copy()}, nil
}

func (s *MemStore) copy() map[string][]byte {
	store := make(map[string][]byte, len(s.store))
	for k, v := range s.store {
		store[k] = v
	}
	return store
}

type memTxState int

const (
	unCommitted memTxState = iota
	committed
	rolledback
)

func (s memTxState) String() string {
	switch s {
	case unCommitted:
		return "uncommitted"
	case committed:
		return "committed"
	default:
		return "rolledback"
	}
}

type memTx struct {
	state memTxState
	m     *MemStore
	store map[string][]byte
}

func (t *memTx) Get(key string) (*KeyValue, error) {
	value, ok := t.store[key]
	if !ok {
		return nil, ErrNoKeyExists
	}
	return &KeyValue{Key: key, Value: append([]byte(nil), value...)}, nil
}

func (t *memTx) Put(key string, value []byte) error {
	t.store[key] = append([]byte(nil), value...)
	return nil
}

func (t *memTx) Delete(key string) error {
	delete(t.store, key)
	return nil
}

func (t *memTx) Commit() error {
	if t.m == nil || t.state != unCommitted {
		return fmt.Errorf("cannot commit transaction, transaction in state %v", t.state)
	}
	t.m.store = t.store
	t.state = committed
	t.m.mu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.m != nil && t.state == unCommitted {
		t.state = rolledback
		t.m.mu.Unlock()
	}
	return nil
}
