package storage

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

type Diagnostic interface {
	Opened(path string)
	Error(msg string, err error)
}

// Service owns the bolt database and hands out namespaced stores.
type Service struct {
	mu     sync.Mutex
	c      Config
	boltdb *bolt.DB
	stores map[string]Interface

	diag Diagnostic
}

func NewService(c Config, d Diagnostic) *Service {
	return &Service{
		c:      c,
		stores: make(map[string]Interface),
		diag:   d,
	}
}

func (s *Service) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boltdb != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.c.BoltDBPath), 0755); err != nil {
		return errors.Wrapf(err, "mkdir dirs %q", s.c.BoltDBPath)
	}
	db, err := bolt.Open(s.c.BoltDBPath, 0600, &bolt.Options{Timeout: time.Duration(s.c.OpenTimeout)})
	if err != nil {
		return errors.Wrapf(err, "open boltdb @ %q", s.c.BoltDBPath)
	}
	s.boltdb = db
	s.diag.Opened(s.c.BoltDBPath)
	return nil
}

func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boltdb == nil {
		return nil
	}
	err := s.boltdb.Close()
	s.boltdb = nil
	s.stores = make(map[string]Interface)
	if err != nil {
		s.diag.Error("failed to close boltdb", err)
	}
	return err
}

// Store returns a namespaced store.
// Calling Store with the same namespace returns the same store.
// Open must have been called.
func (s *Service) Store(namespace string) Interface {
	s.mu.Lock()
	defer s.mu.Unlock()
	if store, ok := s.stores[namespace]; ok {
		return store
	}
	store := NewBolt(s.boltdb, namespace)
	s.stores[namespace] = store
	return store
}
