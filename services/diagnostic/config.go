package diagnostic

import (
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	// File is STDERR, STDOUT or a path.
	File  string `toml:"file"`
	Level string `toml:"level"`
	// Encoding is json or console.
	Encoding string `toml:"encoding"`
}

func NewConfig() Config {
	return Config{
		File:     "STDERR",
		Level:    "INFO",
		Encoding: "console",
	}
}

func (c Config) Validate() error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return errors.Errorf("unknown logging level %q", c.Level)
	}
	switch c.Encoding {
	case "json", "console":
	default:
		return errors.Errorf("unknown log encoding %q", c.Encoding)
	}
	if c.File == "" {
		return errors.New("must specify logging 'file'")
	}
	return nil
}
