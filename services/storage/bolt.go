package storage

import (
	bolt "go.etcd.io/bbolt"
)

// Bolt implements Interface on a single bucket of a bolt database.
type Bolt struct {
	db     *bolt.DB
	bucket []byte
}

func NewBolt(db *bolt.DB, bucket string) *Bolt {
	return &Bolt{
		db:     db,
		bucket: []byte(bucket),
	}
}

func (b *Bolt) View(f func(tx ReadOnlyTx) error) error {
	return DoView(b, f)
}

func (b *Bolt) Update(f func(tx Tx) error) error {
	return DoUpdate(b, f)
}

func (b *Bolt) BeginTx() (Tx, error) {
	return b.begin(true)
}

func (b *Bolt) BeginReadOnlyTx() (ReadOnlyTx, error) {
	return b.begin(false)
}

func (b *Bolt) begin(writable bool) (*boltTx, error) {
	tx, err := b.db.Begin(writable)
	if err != nil {
		return nil, err
	}
	return &boltTx{bucket: b.bucket, tx: tx}, nil
}

// boltTx wraps a bolt.Tx scoped to a bucket.
// Read only transactions never create the bucket.
type boltTx struct {
	bucket []byte
	tx     *bolt.Tx
}

func (t *boltTx) Get(key string) (*KeyValue, error) {
	bucket := t.tx.Bucket(t.bucket)
	if bucket == nil {
		return nil, ErrNoKeyExists
	}
	val := bucket.Get([]byte(key))
	if val == nil {
		return nil, ErrNoKeyExists
	}
	// Values are only valid for the life of the transaction.
	value := make([]byte, len(val))
	copy(value, val)
	return &KeyValue{Key: key, Value: value}, nil
}

func (t *boltTx) Put(key string, value []byte) error {
	bucket, err := t.tx.CreateBucketIfNotExists(t.bucket)
	if err != nil {
		return err
	}
	return bucket.Put([]byte(key), value)
}

func (t *boltTx) Delete(key string) error {
	bucket := t.tx.Bucket(t.bucket)
	if bucket == nil {
		return nil
	}
	return bucket.Delete([]byte(key))
}

func (t *boltTx) Commit() error {
	return t.tx.Commit()
}

func (t *boltTx) Rollback() error {
	err := t.tx.Rollback()
	if err == bolt.ErrTxClosed {
		return nil
	}
	return err
}
