package explorer

import (
	"slices"
	"sync"
	"time"

	"github.com/rshade/dircache/internal/cache"
)

const (
	// MaxRecent is the length of the recently used path list.
	MaxRecent = 20

	recentKey = "paths"
	recentTTL = 24 * time.Hour
)

// recentList is a most-recent-first path list stored in the recent namespace.
type recentList struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func (r *recentList) touch(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, _ := cache.GetAs[[]string](r.cache, cache.Recent, recentKey)
	next := make([]string, 0, MaxRecent)
	next = append(next, path)
	for _, p := range current {
		if p != path && len(next) < MaxRecent {
			next = append(next, p)
		}
	}
	r.cache.SetWithTTL(cache.Recent, recentKey, next, recentTTL)
}

func (r *recentList) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, _ := cache.GetAs[[]string](r.cache, cache.Recent, recentKey)
	return slices.Clone(current)
}
