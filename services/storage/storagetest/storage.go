// Package storagetest provides temporary bolt databases for tests.
package storagetest

import (
	"path/filepath"

	"github.com/heraldhq/herald/services/storage"
	bolt "go.etcd.io/bbolt"
)

type CleanedTest interface {
	TempDir() string
	Cleanup(func())
}

// BoltDB is a database in a temporary directory that is closed when the test completes.
type BoltDB struct {
	*bolt.DB
}

// NewBolt opens a bolt database in t.TempDir(), do not use except for testing.
func NewBolt(t CleanedTest) (*BoltDB, error) {
	db, err := bolt.Open(filepath.Join(t.TempDir(), "bolt.db"), 0600, nil)
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() { db.Close() })
	return &BoltDB{db}, nil
}

func (b BoltDB) Store(bucket string) storage.Interface {
	return storage.NewBolt(b.DB, bucket)
}

// NopDiagnostic discards storage service diagnostics.
type NopDiagnostic struct{}

func (NopDiagnostic) Opened(string)        {}
func (NopDiagnostic) Error(string, error) {}
