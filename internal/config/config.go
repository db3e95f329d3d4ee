package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rshade/dircache/internal/cache"
	"github.com/rshade/dircache/internal/snapshot"
)

// File and directory names.
const (
	// DirName is the name of the per-user configuration directory.
	DirName = ".dircache"

	// FileName is the name of the configuration file inside DirName.
	FileName = "config.yaml"
)

// ErrUnknownKey is returned by Get and Set for an unsupported key.
var ErrUnknownKey = errors.New("unknown configuration key")

// Config is the dircache configuration file.
type Config struct {
	Cache    CacheConfig    `yaml:"cache"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging"`

	// dir is the directory the config was loaded from.
	dir string

	// explicit holds the cache keys set by a file, the environment or Set.
	explicit map[string]bool
}

// CacheConfig seeds the cache configuration of a fresh state. Once a state
// record has been persisted, the record takes precedence.
type CacheConfig struct {
	MaxBytes           int64  `yaml:"max_bytes"`
	MaxEntries         int    `yaml:"max_entries"`
	DefaultTTL         string `yaml:"default_ttl"`
	PersistenceEnabled bool   `yaml:"persistence_enabled"`
}

// SnapshotConfig selects the durable store for the cache state record.
type SnapshotConfig struct {
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	Secure    bool   `yaml:"secure,omitempty"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// New returns the default configuration rooted at the default directory.
func New() *Config {
	defaults := cache.DefaultConfig()
	return &Config{
		Cache: CacheConfig{
			MaxBytes:           defaults.MaxBytes,
			MaxEntries:         defaults.MaxEntries,
			DefaultTTL:         defaults.DefaultTTL.String(),
			PersistenceEnabled: defaults.PersistenceEnabled,
		},
		Snapshot: SnapshotConfig{
			Backend: snapshot.BackendFile,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		dir: DefaultDir(),
	}
}

// DefaultDir returns $DIRCACHE_CONFIG_DIR, or ~/.dircache.
func DefaultDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return DirName
	}
	return filepath.Join(homeDir, DirName)
}

// Load reads dir/config.yaml on top of the defaults and applies environment
// overrides. A missing file is not an error. An empty dir means DefaultDir.
func Load(dir string) (*Config, error) {
	return LoadWithProject(dir, "", zerolog.Nop())
}

// LoadWithProject is Load with a project-local overlay: sections present in
// projectDir/config.yaml replace the matching global sections. A missing or
// unreadable overlay is logged and ignored.
func LoadWithProject(dir, projectDir string, logger zerolog.Logger) (*Config, error) {
	cfg := New()
	if dir != "" {
		cfg.dir = dir
	}

	data, err := os.ReadFile(cfg.Path())
	switch {
	case err == nil:
		if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", cfg.Path(), unmarshalErr)
		}
		cfg.markCacheKeys(data)
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config file %s: %w", cfg.Path(), err)
	}

	if projectDir != "" && filepath.Clean(projectDir) != filepath.Clean(cfg.dir) {
		cfg.mergeProject(projectDir, logger)
	}

	if envErr := cfg.ApplyEnv(os.LookupEnv); envErr != nil {
		return nil, envErr
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, validateErr
	}
	return cfg, nil
}

// Dir returns the configuration directory.
func (c *Config) Dir() string {
	return c.dir
}

// Path returns the configuration file path.
func (c *Config) Path() string {
	return filepath.Join(c.dir, FileName)
}

// Save writes the configuration file, creating the directory if needed.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if mkdirErr := os.MkdirAll(c.dir, 0o750); mkdirErr != nil {
		return fmt.Errorf("creating config directory: %w", mkdirErr)
	}
	if writeErr := os.WriteFile(c.Path(), data, 0o600); writeErr != nil {
		return fmt.Errorf("writing config file: %w", writeErr)
	}
	return nil
}

// Validate checks the cache and snapshot sections.
func (c *Config) Validate() error {
	if _, err := c.CacheSettings(); err != nil {
		return err
	}
	switch strings.ToLower(c.Snapshot.Backend) {
	case "", snapshot.BackendFile, snapshot.BackendMemory:
	case snapshot.BackendMinio:
		if c.Snapshot.Endpoint == "" || c.Snapshot.Bucket == "" {
			return errors.New("snapshot: minio backend requires endpoint and bucket")
		}
	default:
		return fmt.Errorf("snapshot: %w: %q", snapshot.ErrUnknownBackend, c.Snapshot.Backend)
	}
	return nil
}

// CacheSettings converts the cache section into a cache.Config.
func (c *Config) CacheSettings() (cache.Config, error) {
	ttl, err := cache.ParseTTL(c.Cache.DefaultTTL)
	if err != nil {
		return cache.Config{}, fmt.Errorf("cache.default_ttl: %w", err)
	}
	cfg := cache.Config{
		MaxBytes:           c.Cache.MaxBytes,
		MaxEntries:         c.Cache.MaxEntries,
		DefaultTTL:         ttl,
		PersistenceEnabled: c.Cache.PersistenceEnabled,
	}
	if validateErr := cfg.Validate(); validateErr != nil {
		return cache.Config{}, validateErr
	}
	return cfg, nil
}

// SnapshotOptions converts the snapshot section into store options.
// A file backend without a path stores its records under Dir()/state.
func (c *Config) SnapshotOptions() snapshot.Options {
	dir := c.Snapshot.Path
	if dir == "" {
		dir = filepath.Join(c.dir, "state")
	}
	return snapshot.Options{
		Backend:   c.Snapshot.Backend,
		Directory: dir,
		Minio: snapshot.MinioOptions{
			Endpoint:     c.Snapshot.Endpoint,
			AccessKey:    c.Snapshot.AccessKey,
			SecretKey:    c.Snapshot.SecretKey,
			Bucket:       c.Snapshot.Bucket,
			Prefix:       c.Snapshot.Prefix,
			Secure:       c.Snapshot.Secure,
			CreateBucket: true,
		},
	}
}

// Get returns the value of a dotted key such as "cache.max_bytes".
func (c *Config) Get(key string) (string, error) {
	switch strings.ToLower(key) {
	case "cache.max_bytes":
		return strconv.FormatInt(c.Cache.MaxBytes, 10), nil
	case "cache.max_entries":
		return strconv.Itoa(c.Cache.MaxEntries), nil
	case "cache.default_ttl":
		return c.Cache.DefaultTTL, nil
	case "cache.persistence_enabled":
		return strconv.FormatBool(c.Cache.PersistenceEnabled), nil
	case "snapshot.backend":
		return c.Snapshot.Backend, nil
	case "snapshot.path":
		return c.Snapshot.Path, nil
	case "logging.level":
		return c.Logging.Level, nil
	case "logging.format":
		return c.Logging.Format, nil
	case "logging.file":
		return c.Logging.File, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set assigns a dotted key from its textual value.
func (c *Config) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "cache.max_bytes":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.Cache.MaxBytes = n
	case "cache.max_entries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.Cache.MaxEntries = n
	case "cache.default_ttl":
		if _, err := cache.ParseTTL(value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.Cache.DefaultTTL = value
	case "cache.persistence_enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.Cache.PersistenceEnabled = b
	case "snapshot.backend":
		c.Snapshot.Backend = value
	case "snapshot.path":
		c.Snapshot.Path = value
	case "logging.level":
		c.Logging.Level = value
	case "logging.format":
		c.Logging.Format = value
	case "logging.file":
		c.Logging.File = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if name, ok := strings.CutPrefix(strings.ToLower(key), keyCache+"."); ok {
		c.markCacheKey(name)
	}
	return c.Validate()
}

// Cache keys as they appear in the cache section.
const (
	cacheKeyMaxBytes    = "max_bytes"
	cacheKeyMaxEntries  = "max_entries"
	cacheKeyDefaultTTL  = "default_ttl"
	cacheKeyPersistence = "persistence_enabled"
)

func (c *Config) markCacheKey(name string) {
	if c.explicit == nil {
		c.explicit = make(map[string]bool)
	}
	c.explicit[name] = true
}

// markCacheKeys records the cache keys present in a YAML document.
func (c *Config) markCacheKeys(data []byte) {
	var doc struct {
		Cache map[string]yaml.Node `yaml:"cache"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return
	}
	for name := range doc.Cache {
		c.markCacheKey(name)
	}
}

// CacheOverrides returns the cache settings that were set explicitly, as an
// update to apply over a restored cache state. Settings left at their
// defaults are nil so the persisted values win for them.
func (c *Config) CacheOverrides() (cache.ConfigUpdate, error) {
	settings, err := c.CacheSettings()
	if err != nil {
		return cache.ConfigUpdate{}, err
	}

	var update cache.ConfigUpdate
	if c.explicit[cacheKeyMaxBytes] {
		update.MaxBytes = &settings.MaxBytes
	}
	if c.explicit[cacheKeyMaxEntries] {
		update.MaxEntries = &settings.MaxEntries
	}
	if c.explicit[cacheKeyDefaultTTL] {
		update.DefaultTTL = &settings.DefaultTTL
	}
	if c.explicit[cacheKeyPersistence] {
		update.PersistenceEnabled = &settings.PersistenceEnabled
	}
	return update, nil
}
