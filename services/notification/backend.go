package notification

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/heraldhq/herald/services/storage"
	"github.com/pkg/errors"
)

// ErrNoDocument is returned by a Backend when nothing was saved yet.
var ErrNoDocument = errors.New("configuration document does not exist")

// Backend persists the configuration document.
// Save must replace the document atomically.
type Backend interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// FileBackend keeps the document in a text file.
type FileBackend struct {
	Path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{Path: path}
}

func (b *FileBackend) Load(ctx context.Context) ([]byte, error) {
	data, err := ioutil.ReadFile(b.Path)
	if os.IsNotExist(err) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %q", b.Path)
	}
	return data, nil
}

// Save writes a temporary file next to the document and renames it into place.
func (b *FileBackend) Save(ctx context.Context, data []byte) error {
	dir := filepath.Dir(b.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "mkdir dirs %q", dir)
	}
	f, err := ioutil.TempFile(dir, "."+filepath.Base(b.Path)+".tmp-")
	if err != nil {
		return errors.Wrap(err, "create temporary file")
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %q", tmp)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return errors.Wrapf(err, "sync %q", tmp)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %q", tmp)
	}
	if err := os.Chmod(tmp, 0640); err != nil {
		return errors.Wrapf(err, "chmod %q", tmp)
	}
	if err := os.Rename(tmp, b.Path); err != nil {
		return errors.Wrapf(err, "rename %q", tmp)
	}
	return nil
}

const (
	documentKey     = "notifications.cfg"
	documentVersion = 1
)

// KVBackend keeps the document under a single key of a key/value store.
type KVBackend struct {
	store storage.Interface
	key   string
}

func NewKVBackend(store storage.Interface) *KVBackend {
	return &KVBackend{
		store: store,
		key:   documentKey,
	}
}

func (b *KVBackend) Load(ctx context.Context) ([]byte, error) {
	var text string
	err := b.store.View(func(tx storage.ReadOnlyTx) error {
		kv, err := tx.Get(b.key)
		if err != nil {
			return err
		}
		return storage.VersionJSONDecode(kv.Value, func(version int, dec *json.Decoder) error {
			if version != documentVersion {
				return errors.Errorf("unsupported document version %d", version)
			}
			return dec.Decode(&text)
		})
	})
	if err == storage.ErrNoKeyExists {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load %q", b.key)
	}
	return []byte(text), nil
}

func (b *KVBackend) Save(ctx context.Context, data []byte) error {
	value, err := storage.VersionJSONEncode(documentVersion, string(data))
	if err != nil {
		return err
	}
	return b.store.Update(func(tx storage.Tx) error {
		return tx.Put(b.key, value)
	})
}
