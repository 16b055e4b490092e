// Package config handles venice.toml runtime configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/venice-lang/venice"
)

// Config represents a venice.toml runtime configuration.
type Config struct {
	Memory Memory `toml:"memory"`
	IO     IO     `toml:"io"`
	Log    Log    `toml:"log"`

	// Dir is the directory containing the venice.toml file (set at load time).
	Dir string `toml:"-"`
}

// Memory configures the allocation guard.
type Memory struct {
	// Limit caps live runtime-owned bytes. 0 means unlimited.
	Limit uint64 `toml:"limit"`
	// Trace enables debug logging of allocation accounting.
	Trace bool `toml:"trace"`
}

// IO configures the I/O primitives.
type IO struct {
	ReadChunkSize int `toml:"read-chunk-size"`
}

// Log configures diagnostic logging.
type Log struct {
	Verbosity int `toml:"verbosity"`
}

// Default returns the configuration a runtime starts with.
func Default() *Config {
	return &Config{
		IO: IO{ReadChunkSize: venice.DefaultReadChunkSize},
	}
}

// Load parses a venice.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "venice.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if c.IO.ReadChunkSize <= 0 {
		c.IO.ReadChunkSize = venice.DefaultReadChunkSize
	}

	return &c, nil
}

// FindAndLoad walks up from startDir to find a venice.toml file, then loads
// and returns the configuration. Returns nil if none is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "venice.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Apply configures a runtime from the loaded settings.
func (c *Config) Apply(rt *venice.Runtime) {
	rt.SetMemoryLimit(c.Memory.Limit)
	rt.SetAllocTrace(c.Memory.Trace)
	rt.SetReadChunkSize(c.IO.ReadChunkSize)
}
