package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	DefaultVersion = 1

	// FileName is the project config file looked up in the working directory.
	FileName = ".ffimath.json"

	// EnvLibrary overrides the library path from the config file.
	EnvLibrary = "FFIMATH_LIB"

	// Default values for verify configuration.
	DefaultVerifyConcurrency = 4
	DefaultVerifyRepeat      = 3
	DefaultVerifyTolerance   = 1e-6
	DefaultWatchDebounce     = 100 * time.Millisecond

	// DefaultServeAddr is the listen address for the WebSocket server.
	DefaultServeAddr = "127.0.0.1:7341"
)

// Config defines project configuration stored in .ffimath.json.
type Config struct {
	Version int `json:"version"`

	// Library is the path of a built shared library to load instead of the
	// in-process implementation. Empty means in-process.
	Library string `json:"library,omitempty"`

	// SymbolPrefix is prepended to every export name when resolving symbols,
	// e.g. "rust_" for libraries that namespace their exports.
	SymbolPrefix string `json:"symbol_prefix,omitempty"`

	Verify *VerifyConfig `json:"verify,omitempty"`
	Serve  *ServeConfig  `json:"serve,omitempty"`
}

// VerifyConfig holds conformance run settings.
type VerifyConfig struct {
	// Concurrency is the number of goroutines calling into the backend (default 4).
	Concurrency *int `json:"concurrency,omitempty"`

	// Repeat is how many times each case is evaluated for the purity check (default 3).
	Repeat *int `json:"repeat,omitempty"`

	// Tolerance is the absolute error allowed for float cases without their own (default 1e-6).
	Tolerance *float64 `json:"tolerance,omitempty"`

	// Cases is an optional JSON file of extra cases.
	Cases *string `json:"cases,omitempty"`

	// WatchDebounce is the debounce delay for --watch as a duration string (default "100ms").
	WatchDebounce *string `json:"watch_debounce,omitempty"`
}

// GetConcurrency returns the concurrency setting (default 4).
func (c *VerifyConfig) GetConcurrency() int {
	if c == nil || c.Concurrency == nil {
		return DefaultVerifyConcurrency
	}
	return *c.Concurrency
}

// GetRepeat returns the repeat setting (default 3).
func (c *VerifyConfig) GetRepeat() int {
	if c == nil || c.Repeat == nil {
		return DefaultVerifyRepeat
	}
	return *c.Repeat
}

// GetTolerance returns the float tolerance (default 1e-6).
func (c *VerifyConfig) GetTolerance() float64 {
	if c == nil || c.Tolerance == nil {
		return DefaultVerifyTolerance
	}
	return *c.Tolerance
}

// GetCases returns the extra cases file (default "").
func (c *VerifyConfig) GetCases() string {
	if c == nil || c.Cases == nil {
		return ""
	}
	return *c.Cases
}

// GetWatchDebounce returns the watch debounce delay (default 100ms).
func (c *VerifyConfig) GetWatchDebounce() time.Duration {
	if c == nil || c.WatchDebounce == nil {
		return DefaultWatchDebounce
	}
	d, err := time.ParseDuration(*c.WatchDebounce)
	if err != nil {
		return DefaultWatchDebounce
	}
	return d
}

// Validate checks that verify config values are within sensible ranges.
func (c *VerifyConfig) Validate() error {
	if c == nil {
		return nil
	}

	if c.Concurrency != nil {
		if *c.Concurrency < 1 {
			return fmt.Errorf("concurrency must be at least 1, got %d", *c.Concurrency)
		}
		if *c.Concurrency > 256 {
			return fmt.Errorf("concurrency must be at most 256, got %d", *c.Concurrency)
		}
	}

	if c.Repeat != nil {
		if *c.Repeat < 1 {
			return fmt.Errorf("repeat must be at least 1, got %d", *c.Repeat)
		}
		if *c.Repeat > 10000 {
			return fmt.Errorf("repeat must be at most 10000, got %d", *c.Repeat)
		}
	}

	if c.Tolerance != nil && *c.Tolerance < 0 {
		return fmt.Errorf("tolerance must be non-negative, got %g", *c.Tolerance)
	}

	if c.WatchDebounce != nil {
		d, err := time.ParseDuration(*c.WatchDebounce)
		if err != nil {
			return fmt.Errorf("invalid watch_debounce: %w", err)
		}
		if d < 0 || d > 10*time.Second {
			return fmt.Errorf("watch_debounce must be between 0 and 10s, got %v", d)
		}
	}

	return nil
}

// ServeConfig holds WebSocket server settings.
type ServeConfig struct {
	// Addr is the listen address (default 127.0.0.1:7341).
	Addr *string `json:"addr,omitempty"`
}

// GetAddr returns the listen address (default 127.0.0.1:7341).
func (c *ServeConfig) GetAddr() string {
	if c == nil || c.Addr == nil || *c.Addr == "" {
		return DefaultServeAddr
	}
	return *c.Addr
}

// Default returns the default config.
func Default() Config {
	return Config{
		Version: DefaultVersion,
	}
}

// LibraryPath returns the library to load, preferring FFIMATH_LIB over the file.
func (c Config) LibraryPath() string {
	if env := os.Getenv(EnvLibrary); env != "" {
		return env
	}
	return c.Library
}

// Load reads config from disk and applies defaults for zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config not found: %w", err)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return parse(data)
}

// LoadOrDefault reads config from disk, returning defaults if the file doesn't exist.
func LoadOrDefault(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Version == 0 {
		cfg.Version = DefaultVersion
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Save writes a config to disk.
func Save(path string, cfg Config) error {
	if cfg.Version == 0 {
		cfg.Version = DefaultVersion
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Validate ensures config values are within supported ranges.
func (c Config) Validate() error {
	if c.Version != DefaultVersion {
		return fmt.Errorf("unsupported config version: %d", c.Version)
	}
	if c.Verify != nil {
		if err := c.Verify.Validate(); err != nil {
			return fmt.Errorf("invalid verify config: %w", err)
		}
	}
	return nil
}
