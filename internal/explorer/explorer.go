package explorer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"

	"github.com/rshade/dircache/internal/cache"
)

var (
	// ErrNotExist is returned for a path that does not exist.
	ErrNotExist = errors.New("path does not exist")

	// ErrNotDirectory is returned by ListDir for a path that is not a directory.
	ErrNotDirectory = errors.New("path is not a directory")
)

const drivesKey = "drives"

// Explorer serves file system queries through a Cache.
//
// Ownership model:
// Explorer does not own the Cache; the caller closes it.
type Explorer struct {
	cache *cache.Cache
	fs    billy.Filesystem
	log   zerolog.Logger

	ttl     time.Duration
	goos    string
	probe   func(root string) bool
	homeDir func() (string, error)

	group  singleflight.Group
	recent recentList
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithFilesystem replaces the host filesystem, mainly for tests.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(e *Explorer) {
		e.fs = fs
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Explorer) {
		e.log = logger
	}
}

// WithTTL sets the TTL of every entry the Explorer stores. Zero means the
// cache default.
func WithTTL(ttl time.Duration) Option {
	return func(e *Explorer) {
		e.ttl = ttl
	}
}

// WithGOOS overrides the operating system used to enumerate drives.
func WithGOOS(goos string) Option {
	return func(e *Explorer) {
		e.goos = goos
	}
}

// WithDriveProbe replaces the check that a drive root such as "C:/" is mounted.
func WithDriveProbe(probe func(root string) bool) Option {
	return func(e *Explorer) {
		e.probe = probe
	}
}

// WithHomeDir replaces os.UserHomeDir.
func WithHomeDir(fn func() (string, error)) Option {
	return func(e *Explorer) {
		e.homeDir = fn
	}
}

// New returns an Explorer over c. Without WithFilesystem it reads the host
// filesystem.
func New(c *cache.Cache, opts ...Option) *Explorer {
	e := &Explorer{
		cache:   c,
		fs:      osfs.New("/"),
		log:     zerolog.Nop(),
		goos:    runtime.GOOS,
		probe:   driveMounted,
		homeDir: os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.recent = recentList{cache: c}
	return e
}

// ListDir returns the entries of dir, directories first and then by
// case-insensitive name. Listings are served from the cache while fresh.
func (e *Explorer) ListDir(ctx context.Context, dir string) ([]FileEntry, error) {
	dir = cleanPath(dir)
	if entries, ok := cache.GetAs[[]FileEntry](e.cache, cache.Folders, dir); ok {
		return slices.Clone(entries), nil
	}

	v, err := e.do(ctx, "list:"+dir, func() (any, error) {
		return e.loadDir(dir)
	})
	if err != nil {
		return nil, err
	}
	entries, _ := v.([]FileEntry)
	return slices.Clone(entries), nil
}

// Stat returns the entry describing path.
func (e *Explorer) Stat(ctx context.Context, path string) (FileEntry, error) {
	path = cleanPath(path)
	if entry, ok := cache.GetAs[FileEntry](e.cache, cache.Files, path); ok {
		return entry, nil
	}

	v, err := e.do(ctx, "stat:"+path, func() (any, error) {
		return e.loadStat(path)
	})
	if err != nil {
		return FileEntry{}, err
	}
	entry, _ := v.(FileEntry)
	return entry, nil
}

// Drives returns the mounted roots: "/" on Unix-like systems and every
// mounted letter drive ("C:/") on Windows.
func (e *Explorer) Drives(ctx context.Context) ([]string, error) {
	if drives, ok := cache.GetAs[[]string](e.cache, cache.Drives, drivesKey); ok {
		return slices.Clone(drives), nil
	}

	v, err := e.do(ctx, drivesKey, func() (any, error) {
		drives := e.enumerateDrives()
		e.store(cache.Drives, drivesKey, drives)
		return drives, nil
	})
	if err != nil {
		return nil, err
	}
	drives, _ := v.([]string)
	return slices.Clone(drives), nil
}

// HomeDir returns the current user's home directory.
func (e *Explorer) HomeDir() (string, error) {
	dir, err := e.homeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return dir, nil
}

// Refresh drops the cached state of path and its parent listing, then reloads
// path. Directories are listed again; files are stat'ed again.
func (e *Explorer) Refresh(ctx context.Context, path string) (FileEntry, error) {
	path = cleanPath(path)
	e.Invalidate(path)

	entry, err := e.Stat(ctx, path)
	if err != nil {
		return FileEntry{}, err
	}
	if entry.IsDir {
		if _, listErr := e.ListDir(ctx, path); listErr != nil {
			return FileEntry{}, listErr
		}
	}
	return entry, nil
}

// Invalidate drops the cached state of path and its parent listing without
// reloading anything. The next read of path goes to the filesystem.
func (e *Explorer) Invalidate(path string) {
	path = cleanPath(path)
	e.cache.InvalidatePath(path)
	e.group.Forget("stat:" + path)
	e.group.Forget("list:" + path)
}

// SetMetadata stores arbitrary caller data under key.
func (e *Explorer) SetMetadata(key string, value any) {
	e.cache.Set(cache.Metadata, key, value)
}

// Metadata returns the data stored under key.
func (e *Explorer) Metadata(key string) (any, bool) {
	return e.cache.Get(cache.Metadata, key)
}

// Touch records path as the most recently used path.
func (e *Explorer) Touch(path string) {
	e.recent.touch(cleanPath(path))
}

// Recent returns the recently used paths, most recent first.
func (e *Explorer) Recent() []string {
	return e.recent.list()
}

// do coalesces concurrent loads under key and honours ctx while waiting.
func (e *Explorer) do(ctx context.Context, key string, fn func() (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := e.group.DoChan(key, fn)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			e.log.Debug().Str("key", key).Msg("shared in-flight load")
		}
		return res.Val, res.Err
	}
}

func (e *Explorer) loadStat(path string) (FileEntry, error) {
	info, err := e.fs.Stat(path)
	if err != nil {
		return FileEntry{}, statError(path, err)
	}
	entry := newFileEntry(path, info)
	e.store(cache.Files, path, entry)
	return entry, nil
}

func (e *Explorer) loadDir(dir string) ([]FileEntry, error) {
	info, err := e.fs.Stat(dir)
	if err != nil {
		return nil, statError(dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	infos, err := e.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	entries := make([]FileEntry, 0, len(infos))
	for _, fi := range infos {
		child := newFileEntry(e.fs.Join(dir, fi.Name()), fi)
		entries = append(entries, child)
		e.store(cache.Files, child.Path, child)
	}
	sortEntries(entries)

	e.store(cache.Folders, dir, entries)
	e.log.Debug().Str("path", dir).Int("entries", len(entries)).Msg("loaded directory")
	return entries, nil
}

func (e *Explorer) store(ns cache.Namespace, key string, value any) {
	if e.ttl > 0 {
		e.cache.SetWithTTL(ns, key, value, e.ttl)
		return
	}
	e.cache.Set(ns, key, value)
}

func (e *Explorer) enumerateDrives() []string {
	if e.goos != "windows" {
		return []string{"/"}
	}
	var drives []string
	for letter := 'A'; letter <= 'Z'; letter++ {
		root := string(letter) + ":/"
		if e.probe(root) {
			drives = append(drives, root)
		}
	}
	return drives
}

// sortEntries orders directories before files and then by case-folded name.
func sortEntries(entries []FileEntry) {
	folder := cases.Fold()
	slices.SortStableFunc(entries, func(a, b FileEntry) int {
		if a.IsDir != b.IsDir {
			if a.IsDir {
				return -1
			}
			return 1
		}
		return strings.Compare(folder.String(a.Name), folder.String(b.Name))
	})
}

func statError(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotExist, path)
	}
	return fmt.Errorf("stat %s: %w", path, err)
}

func cleanPath(p string) string {
	if p == "" {
		return p
	}
	return filepath.Clean(p)
}

func driveMounted(root string) bool {
	_, err := os.Stat(root)
	return err == nil
}
