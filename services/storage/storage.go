package storage

import "errors"

// ErrNoKeyExists is returned by Get when the key is absent.
var ErrNoKeyExists = errors.New("no key exists")

type KeyValue struct {
	Key   string
	Value []byte
}

// ReadOnlyTx provides read operations inside a single transaction.
type ReadOnlyTx interface {
	// Get retrieves a value, ErrNoKeyExists is returned if the key is absent.
	Get(key string) (*KeyValue, error)

	// Rollback signals that the transaction is complete.
	// If the transaction was not committed, then all changes are reverted.
	// Rollback must always be called for every transaction.
	Rollback() error
}

// Tx provides read and write operations inside a single transaction.
type Tx interface {
	ReadOnlyTx

	Put(key string, value []byte) error
	// Delete removes a key, deleting a non-existent key is not an error.
	Delete(key string) error

	// Commit finalizes the transaction.
	// Once a transaction is committed, rolling back the transaction has no effect.
	Commit() error
}

type TxOperator interface {
	// BeginReadOnlyTx starts a new read only transaction. The transaction must be rolledback.
	BeginReadOnlyTx() (ReadOnlyTx, error)
	// BeginTx starts a new read-write transaction. The transaction must be committed or rolledback.
	// A single go routine should only have one transaction open at a time.
	BeginTx() (Tx, error)
}

// Interface is a namespaced key/value store.
type Interface interface {
	// View runs f in a read only transaction that is always rolled back.
	View(f func(ReadOnlyTx) error) error
	// Update runs f in a read-write transaction.
	// If f returns nil the transaction is committed, otherwise it is rolled back and the error returned.
	Update(f func(Tx) error) error
}

// DoView implements Interface.View for a TxOperator.
func DoView(o TxOperator, f func(ReadOnlyTx) error) error {
	tx, err := o.BeginReadOnlyTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	return f(tx)
}

// DoUpdate implements Interface.Update for a TxOperator.
func DoUpdate(o TxOperator, f func(Tx) error) error {
	tx, err := o.BeginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := f(tx); err != nil {
		return err
	}
	return tx.Commit()
}
