package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rshade/dircache/internal/cache"
)

// Environment variables recognised by ApplyEnv and DefaultDir.
const (
	EnvCacheTTL        = "DIRCACHE_CACHE_TTL"
	EnvCacheMaxBytes   = "DIRCACHE_CACHE_MAX_BYTES"
	EnvCacheMaxEntries = "DIRCACHE_CACHE_MAX_ENTRIES"
	EnvCachePersist    = "DIRCACHE_CACHE_PERSIST"
	EnvConfigDir       = "DIRCACHE_CONFIG_DIR"
	EnvLogLevel        = "DIRCACHE_LOG_LEVEL"
	EnvSnapshotBackend = "DIRCACHE_SNAPSHOT_BACKEND"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides configuration values from the environment.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if v, ok := lookup(EnvCacheTTL); ok && v != "" {
		if _, err := cache.ParseTTL(v); err != nil {
			return fmt.Errorf("%s: %w", EnvCacheTTL, err)
		}
		c.Cache.DefaultTTL = v
		c.markCacheKey(cacheKeyDefaultTTL)
	}

	if v, ok := lookup(EnvCacheMaxBytes); ok && v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCacheMaxBytes, err)
		}
		c.Cache.MaxBytes = n
		c.markCacheKey(cacheKeyMaxBytes)
	}

	if v, ok := lookup(EnvCacheMaxEntries); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCacheMaxEntries, err)
		}
		c.Cache.MaxEntries = n
		c.markCacheKey(cacheKeyMaxEntries)
	}

	if v, ok := lookup(EnvCachePersist); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCachePersist, err)
		}
		c.Cache.PersistenceEnabled = b
		c.markCacheKey(cacheKeyPersistence)
	}

	if v, ok := lookup(EnvSnapshotBackend); ok && v != "" {
		c.Snapshot.Backend = v
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}

	return nil
}
