package notification

import (
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	// Location is the time zone in which calendar windows are evaluated.
	Location string `toml:"location"`
}

func NewConfig() Config {
	return Config{
		Location: "Local",
	}
}

func (c Config) Validate() error {
	if _, err := c.location(); err != nil {
		return err
	}
	return nil
}

func (c Config) location() (*time.Location, error) {
	if c.Location == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid notification location %q", c.Location)
	}
	return loc, nil
}
