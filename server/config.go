package server

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/heraldhq/herald/services/diagnostic"
	"github.com/heraldhq/herald/services/lock"
	"github.com/heraldhq/herald/services/notification"
	"github.com/heraldhq/herald/services/storage"
	"github.com/pkg/errors"
)

// EnvPrefix prefixes the environment variables overriding configuration values.
const EnvPrefix = "HERALD"

// Config represents the configuration of the herald services.
type Config struct {
	Storage      storage.Config      `toml:"storage"`
	Lock         lock.Config         `toml:"lock"`
	Logging      diagnostic.Config   `toml:"logging"`
	Notification notification.Config `toml:"notification"`
}

// NewConfig returns an instance of Config with reasonable defaults.
func NewConfig() *Config {
	return &Config{
		Storage:      storage.NewConfig(),
		Lock:         lock.NewConfig(),
		Logging:      diagnostic.NewConfig(),
		Notification: notification.NewConfig(),
	}
}

// ParseConfig reads the configuration file at path on top of the defaults.
// An empty path returns the defaults.
func ParseConfig(path string) (*Config, error) {
	c := NewConfig()
	if path == "" {
		return c, nil
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %q", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown config keys in %q: %v", path, undecoded)
	}
	return c, nil
}

// Validate returns an error if the config is invalid.
func (c *Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return errors.Wrap(err, "storage")
	}
	if err := c.LockConfig().Validate(); err != nil {
		return errors.Wrap(err, "lock")
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.Wrap(err, "logging")
	}
	if err := c.Notification.Validate(); err != nil {
		return errors.Wrap(err, "notification")
	}
	return nil
}

// LockConfig returns the lock configuration. An empty file lock path is placed
// next to the configuration document so every process sharing it contends.
func (c *Config) LockConfig() lock.Config {
	lc := c.Lock
	if lc.Backend == lock.FileBackend && lc.Path == "" {
		if c.Storage.Backend == storage.BoltBackend {
			lc.Path = c.Storage.BoltDBPath + ".lock"
		} else {
			lc.Path = c.Storage.Path + ".lock"
		}
	}
	return lc
}

// ApplyEnvOverrides sets values from HERALD_<SECTION>_<KEY> environment variables.
func (c *Config) ApplyEnvOverrides() error {
	return c.applyEnvOverrides(EnvPrefix, "", reflect.ValueOf(c))
}

func (c *Config) applyEnvOverrides(prefix string, fieldDesc string, spec reflect.Value) error {
	// If we have a pointer, dereference it
	s := spec
	if spec.Kind() == reflect.Ptr {
		s = spec.Elem()
	}

	var value string

	if s.Kind() != reflect.Struct {
		value = os.Getenv(prefix)
		// Skip any fields we don't have a value to set
		if value == "" {
			return nil
		}

		if fieldDesc != "" {
			fieldDesc = " to " + fieldDesc
		}
	}

	switch s.Kind() {
	case reflect.String:
		s.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var intValue int64

		// Handle toml.Duration
		if s.Type().Name() == "Duration" {
			dur, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("failed to apply %v%v using type %v and value '%v'", prefix, fieldDesc, s.Type().String(), value)
			}
			intValue = dur.Nanoseconds()
		} else {
			var err error
			intValue, err = strconv.ParseInt(value, 0, s.Type().Bits())
			if err != nil {
				return fmt.Errorf("failed to apply %v%v using type %v and value '%v'", prefix, fieldDesc, s.Type().String(), value)
			}
		}
		s.SetInt(intValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("failed to apply %v%v using type %v and value '%v'", prefix, fieldDesc, s.Type().String(), value)
		}
		s.SetBool(boolValue)
	case reflect.Struct:
		return c.applyEnvOverridesToStruct(prefix, s)
	}
	return nil
}

func (c *Config) applyEnvOverridesToStruct(prefix string, s reflect.Value) error {
	typeOfSpec := s.Type()
	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		if !f.CanSet() {
			continue
		}
		// The toml tag determines the env var name, hyphens become underscores for shells.
		configName := strings.Split(typeOfSpec.Field(i).Tag.Get("toml"), ",")[0]
		if configName == "" || configName == "-" {
			continue
		}
		configName = strings.Replace(configName, "-", "_", -1)
		key := strings.ToUpper(prefix + "_" + configName)

		// Slices are addressed by index, e.g. HERALD_SECTION_KEY_0.
		if f.Kind() == reflect.Slice {
			for j := 0; j < f.Len(); j++ {
				if err := c.applyEnvOverrides(fmt.Sprintf("%s_%d", key, j), typeOfSpec.Field(i).Name, f.Index(j)); err != nil {
					return err
				}
			}
			continue
		}
		if err := c.applyEnvOverrides(key, typeOfSpec.Field(i).Name, f); err != nil {
			return err
		}
	}
	return nil
}
