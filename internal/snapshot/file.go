package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// recordFileExtension is the file extension used for stored records.
const recordFileExtension = ".json"

// Lockfile tuning for cross-process coordination.
const (
	lockMaxRetries   = 10
	lockRetryDelay   = 100 * time.Millisecond
	lockStaleAfter   = 30 * time.Second
	defaultDirectory = ".dircache"
)

// FileStore stores each record as a JSON file in a directory.
// Writes go through a temporary file and a rename so readers never observe a
// partial record, and a lockfile serializes writers across processes.
type FileStore struct {
	directory string
}

// NewFileStore creates a FileStore rooted at directory, creating it if needed.
// An empty directory defaults to ~/.dircache/state.
func NewFileStore(directory string) (*FileStore, error) {
	if directory == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("determining home directory: %w", err)
		}
		directory = filepath.Join(homeDir, defaultDirectory, "state")
	}

	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	return &FileStore{directory: directory}, nil
}

// Directory returns the directory records are stored in.
func (s *FileStore) Directory() string {
	return s.directory
}

// Load reads the record under key. A missing file is not an error.
func (s *FileStore) Load(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.keyToFilePath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}
	return data, nil
}

// Save writes the record under key atomically.
func (s *FileStore) Save(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	filePath := s.keyToFilePath(key)
	unlock, err := acquireFileLock(ctx, filePath+".lock")
	if err != nil {
		return fmt.Errorf("acquiring file lock: %w", err)
	}
	defer unlock()

	// Write to temporary file first, then rename for atomicity
	tmpPath := filePath + ".tmp"
	if writeErr := os.WriteFile(tmpPath, data, 0o600); writeErr != nil {
		return fmt.Errorf("writing snapshot temp file: %w", writeErr)
	}

	if renameErr := os.Rename(tmpPath, filePath); renameErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming snapshot temp file: %w", renameErr)
	}

	return nil
}

// keyToFilePath converts a key to a file path.
// The key is sanitized to ensure filesystem safety.
func (s *FileStore) keyToFilePath(key string) string {
	safeKey := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(key)
	return filepath.Join(s.directory, safeKey+recordFileExtension)
}

// acquireFileLock acquires a cross-process advisory lockfile.
// Returns a cleanup function that releases the lock.
func acquireFileLock(ctx context.Context, lockPath string) (func(), error) {
	for range lockMaxRetries {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			// Write PID for stale lock detection
			_, _ = fmt.Fprintf(f, "%d", os.Getpid())
			_ = f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}

		if removeStaleLock(lockPath) {
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}

	return nil, fmt.Errorf("could not acquire lock on %s after retries", lockPath)
}

// removeStaleLock removes a lock file that is old and whose owner is gone.
// Returns true if the lock was removed (caller should retry).
func removeStaleLock(lockPath string) bool {
	info, statErr := os.Stat(lockPath)
	if statErr != nil || time.Since(info.ModTime()) <= lockStaleAfter {
		return false
	}

	if isLockHeldByLiveProcess(lockPath) {
		return false
	}

	_ = os.Remove(lockPath)
	return true
}

// isLockHeldByLiveProcess reads the PID from a lock file and checks if that
// process is still alive.
func isLockHeldByLiveProcess(lockPath string) bool {
	pidData, readErr := os.ReadFile(lockPath)
	if readErr != nil || len(pidData) == 0 {
		return false
	}
	var pid int
	if _, scanErr := fmt.Sscanf(string(pidData), "%d", &pid); scanErr != nil || pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 tests process existence without actually sending a signal
	return proc.Signal(syscall.Signal(0)) == nil
}
