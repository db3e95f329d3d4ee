package cache

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned when a configuration update is rejected.
var ErrInvalidConfig = errors.New("invalid cache configuration")

// Config holds the runtime-mutable settings of a Cache.
// MaxBytes and MaxEntries apply to each namespace separately.
type Config struct {
	MaxBytes           int64
	MaxEntries         int
	DefaultTTL         time.Duration
	PersistenceEnabled bool
}

// DefaultConfig returns the configuration used when nothing else is provided.
func DefaultConfig() Config {
	return Config{
		MaxBytes:           DefaultMaxBytes,
		MaxEntries:         DefaultMaxEntries,
		DefaultTTL:         DefaultTTL,
		PersistenceEnabled: true,
	}
}

// Validate checks that every ceiling and the default TTL are positive.
func (c Config) Validate() error {
	if c.MaxBytes <= 0 {
		return fmt.Errorf("%w: max bytes must be positive, got %d", ErrInvalidConfig, c.MaxBytes)
	}
	if c.MaxEntries <= 0 {
		return fmt.Errorf("%w: max entries must be positive, got %d", ErrInvalidConfig, c.MaxEntries)
	}
	if c.DefaultTTL <= 0 {
		return fmt.Errorf("%w: default TTL must be positive, got %s", ErrInvalidConfig, c.DefaultTTL)
	}
	return nil
}

func (c Config) limits() limits {
	return limits{maxBytes: c.MaxBytes, maxEntries: c.MaxEntries}
}

// ConfigUpdate is a partial configuration. Nil fields are left unchanged.
type ConfigUpdate struct {
	MaxBytes           *int64
	MaxEntries         *int
	DefaultTTL         *time.Duration
	PersistenceEnabled *bool
}

// Apply returns c with every non-nil field of u applied.
func (u ConfigUpdate) Apply(c Config) Config {
	if u.MaxBytes != nil {
		c.MaxBytes = *u.MaxBytes
	}
	if u.MaxEntries != nil {
		c.MaxEntries = *u.MaxEntries
	}
	if u.DefaultTTL != nil {
		c.DefaultTTL = *u.DefaultTTL
	}
	if u.PersistenceEnabled != nil {
		c.PersistenceEnabled = *u.PersistenceEnabled
	}
	return c
}

// persistedConfig is the durable encoding of Config.
type persistedConfig struct {
	MaxBytes           int64 `json:"maxBytes"`
	MaxEntries         int   `json:"maxEntries"`
	DefaultTTLMs       int64 `json:"defaultTtlMs"`
	PersistenceEnabled bool  `json:"persistenceEnabled"`
}

func toPersistedConfig(c Config) persistedConfig {
	return persistedConfig{
		MaxBytes:           c.MaxBytes,
		MaxEntries:         c.MaxEntries,
		DefaultTTLMs:       c.DefaultTTL.Milliseconds(),
		PersistenceEnabled: c.PersistenceEnabled,
	}
}

func (p persistedConfig) config() Config {
	return Config{
		MaxBytes:           p.MaxBytes,
		MaxEntries:         p.MaxEntries,
		DefaultTTL:         time.Duration(p.DefaultTTLMs) * time.Millisecond,
		PersistenceEnabled: p.PersistenceEnabled,
	}
}
