package lock

import (
	"time"

	"github.com/influxdata/influxdb/toml"
	"github.com/pkg/errors"
)

const (
	LocalBackend = "local"
	FileBackend  = "file"
	RedisBackend = "redis"
)

type Config struct {
	// Backend is one of local, file or redis. The local backend only serializes
	// writers within a single process.
	Backend string `toml:"backend"`
	// Path of the lock file for the file backend. The server derives it from the
	// storage path when empty.
	Path string `toml:"path"`
	// Maximum time to wait for the lock.
	Timeout toml.Duration `toml:"timeout"`

	RedisAddr     string `toml:"redis-addr"`
	RedisPassword string `toml:"redis-password"`
	RedisDB       int    `toml:"redis-db"`
	RedisKey      string `toml:"redis-key"`
	// Expiry of a redis lock, bounds how long a crashed holder blocks others.
	TTL toml.Duration `toml:"ttl"`
}

func NewConfig() Config {
	return Config{
		Backend:   FileBackend,
		Timeout:   toml.Duration(10 * time.Second),
		RedisAddr: "localhost:6379",
		RedisKey:  "herald:notification:lock",
		TTL:       toml.Duration(30 * time.Second),
	}
}

func (c Config) Validate() error {
	if c.Timeout < 0 {
		return errors.New("lock 'timeout' must not be negative")
	}
	switch c.Backend {
	case LocalBackend:
	case FileBackend:
		if c.Path == "" {
			return errors.New("must specify lock 'path' for the file backend")
		}
	case RedisBackend:
		if c.RedisAddr == "" {
			return errors.New("must specify 'redis-addr' for the redis backend")
		}
		if c.RedisKey == "" {
			return errors.New("must specify 'redis-key' for the redis backend")
		}
		if c.TTL <= 0 {
			return errors.New("lock 'ttl' must be positive for the redis backend")
		}
	default:
		return errors.Errorf("unknown lock backend %q", c.Backend)
	}
	return nil
}
