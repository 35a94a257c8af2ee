package config

import (
	"errors"
	"fmt"

	"github.com/menta2k/pairgen/pkg/degrade"
	"github.com/menta2k/pairgen/pkg/tiler"
)

// ErrInvalid marks configuration errors so callers can map them to a
// dedicated exit code. Configuration is validated eagerly, before any
// image is touched.
var ErrInvalid = errors.New("invalid configuration")

// Config aggregates the settings of the pairgen tools
type Config struct {
	// Seed for the random source; zero means time-seeded.
	Seed    int64          `json:"seed" mapstructure:"seed"`
	Degrade degrade.Config `json:"degrade" mapstructure:"degrade"`
	Tiles   tiler.Config   `json:"tiles" mapstructure:"tiles"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Degrade: degrade.DefaultConfig(),
		Tiles:   tiler.DefaultConfig(),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Degrade.Validate(); err != nil {
		return fmt.Errorf("%w: degrade: %v", ErrInvalid, err)
	}
	if err := c.Tiles.Validate(); err != nil {
		return fmt.Errorf("%w: tiles: %v", ErrInvalid, err)
	}
	return nil
}
