package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendMinio  = "minio"
)

// ErrInvalidKey is returned for an empty record key.
var ErrInvalidKey = errors.New("snapshot key cannot be empty")

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown snapshot backend")

// Store is a durable store of small records.
type Store interface {
	// Load returns the record under key, or nil data and nil error if absent.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the record under key.
	Save(ctx context.Context, key string, data []byte) error
}

// Options selects and configures a backend.
type Options struct {
	// Backend is one of BackendFile, BackendMemory or BackendMinio.
	Backend string

	// Directory is the FileStore directory.
	Directory string

	// Minio configures MinioStore.
	Minio MinioOptions
}

// Open creates the store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		store, err := NewFileStore(opts.Directory)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendMinio:
		store, err := NewMinioStoreFromOptions(ctx, opts.Minio)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}
