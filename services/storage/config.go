package storage

import (
	"time"

	"github.com/influxdata/influxdb/toml"
	"github.com/pkg/errors"
)

const (
	// FileBackend keeps the notification configuration in a plain text file.
	FileBackend = "file"
	// BoltBackend keeps it in a bolt database.
	BoltBackend = "bolt"
)

type Config struct {
	// Backend holding the notification configuration, file or bolt.
	Backend string `toml:"backend"`
	// Path of the configuration file for the file backend.
	Path string `toml:"path"`
	// Path to a boltdb database file.
	BoltDBPath string `toml:"boltdb"`
	// How long to wait for the exclusive file lock bolt takes on open.
	OpenTimeout toml.Duration `toml:"open-timeout"`
}

func NewConfig() Config {
	return Config{
		Backend:     FileBackend,
		Path:        "./notifications.cfg",
		BoltDBPath:  "./herald.db",
		OpenTimeout: toml.Duration(5 * time.Second),
	}
}

func (c Config) Validate() error {
	switch c.Backend {
	case FileBackend:
		if c.Path == "" {
			return errors.New("must specify storage 'path' for the file backend")
		}
	case BoltBackend:
		if c.BoltDBPath == "" {
			return errors.New("must specify storage 'boltdb' path")
		}
	default:
		return errors.Errorf("unknown storage backend %q", c.Backend)
	}
	if c.OpenTimeout < 0 {
		return errors.New("storage 'open-timeout' must not be negative")
	}
	return nil
}
