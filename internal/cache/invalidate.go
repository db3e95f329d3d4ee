package cache

import (
	"strings"
	"time"
)

// pathSeparators are the separators recognized in cache keys. Keys may come
// from either Windows or POSIX hosts.
const pathSeparators = `/\`

// InvalidatePath removes the cached metadata and listing of path together with
// the cached listing of its immediate parent directory. Further ancestors are
// left alone.
func (c *Cache) InvalidatePath(path string) {
	removed := 0
	if c.store(Files).remove(path) {
		removed++
	}
	if c.store(Folders).remove(path) {
		removed++
	}
	if parent, ok := ParentPath(path); ok && c.store(Folders).remove(parent) {
		removed++
	}

	c.log.Debug().Str("path", path).Int("removed", removed).Msg("invalidated path")
	if removed > 0 {
		c.schedulePersist()
	}
}

// InvalidateOld removes, in every namespace, the entries created more than
// maxAge ago regardless of their TTL. Hit and miss counters are not touched.
// It returns the number of entries removed.
func (c *Cache) InvalidateOld(maxAge time.Duration) int {
	now := c.now()
	removed := 0
	for _, s := range c.stores {
		removed += s.removeIf(func(e *Entry[any]) bool {
			return e.Age(now) > maxAge
		})
	}

	c.log.Debug().Dur("max_age", maxAge).Int("removed", removed).Msg("invalidated old entries")
	if removed > 0 {
		c.schedulePersist()
	}
	return removed
}

// Sweep removes every entry that is already past its own TTL and returns the
// number removed. Like InvalidateOld it leaves the counters alone. There is no
// internal timer; callers decide when to sweep.
func (c *Cache) Sweep() int {
	now := c.now()
	defaultTTL := c.Config().DefaultTTL
	removed := 0
	for _, s := range c.stores {
		removed += s.removeIf(func(e *Entry[any]) bool {
			return e.IsExpired(now, defaultTTL)
		})
	}

	c.log.Debug().Int("removed", removed).Msg("swept expired entries")
	if removed > 0 {
		c.schedulePersist()
	}
	return removed
}

// ParentPath returns the directory containing path, found by truncating at the
// last path separator. Trailing separators are ignored. The parent of a
// top-level entry is the root itself ("/" or "C:\"). The second result is
// false when path has no parent.
func ParentPath(path string) (string, bool) {
	p := trimTrailingSeparators(path)
	i := strings.LastIndexAny(p, pathSeparators)
	if i < 0 {
		return "", false
	}

	parent := p[:i]
	if parent == "" || isDriveName(parent) {
		parent = p[:i+1]
	}
	if parent == p {
		return "", false
	}
	return parent, true
}

func trimTrailingSeparators(p string) string {
	for len(p) > 1 && strings.ContainsRune(pathSeparators, rune(p[len(p)-1])) && !isDriveRoot(p) {
		p = p[:len(p)-1]
	}
	return p
}

// isDriveName reports whether s is a bare drive such as "C:".
func isDriveName(s string) bool {
	return len(s) == 2 && s[1] == ':' && isASCIILetter(s[0])
}

// isDriveRoot reports whether s is a drive root such as `C:\` or "C:/".
func isDriveRoot(s string) bool {
	return len(s) == 3 && isDriveName(s[:2]) && (s[2] == '\\' || s[2] == '/')
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
