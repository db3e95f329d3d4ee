package cache

import (
	"container/list"
	"sync"
	"time"
)

// lookup is the outcome of a namespace read.
type lookup int

const (
	lookupMiss lookup = iota
	lookupExpired
	lookupHit
)

// namespaceStore is the key space of a single namespace.
//
// A map gives O(1) key lookup and a doubly-linked list keeps recency order:
// the front is the most recently used entry, the back the least recently used.
// Because every hit moves its element to the front, the back element always
// carries the smallest LastAccessAt, with ties resolved by position.
type namespaceStore[V any] struct {
	mu sync.Mutex

	ns    Namespace
	items map[string]*list.Element
	lru   *list.List

	// bytes is the sum of SizeBytes over all entries.
	bytes int64
}

func newNamespaceStore[V any](ns Namespace) *namespaceStore[V] {
	return &namespaceStore[V]{
		ns:    ns,
		items: make(map[string]*list.Element),
		lru:   list.New(),
	}
}

// get returns the value under key. An expired entry is removed and reported
// as lookupExpired; a hit bumps the access bookkeeping and recency.
func (s *namespaceStore[V]) get(key string, now time.Time, defaultTTL time.Duration) (V, lookup) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	el, ok := s.items[key]
	if !ok {
		return zero, lookupMiss
	}

	e := el.Value.(*Entry[V])
	if e.IsExpired(now, defaultTTL) {
		s.removeElementLocked(el)
		return zero, lookupExpired
	}

	e.touch(now)
	s.lru.MoveToFront(el)
	return e.Value, lookupHit
}

// peek returns a copy of the entry under key without touching it.
func (s *namespaceStore[V]) peek(key string) (Entry[V], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[key]
	if !ok {
		return Entry[V]{}, false
	}
	return *el.Value.(*Entry[V]), true
}

// set inserts or overwrites key, making room first. The ceilings are read
// through current while the namespace lock is held, so a concurrent config
// change either applies to this write or trims after it. It returns the
// number of entries evicted and the ceilings applied.
func (s *namespaceStore[V]) set(
	key string, value V, size int64, ttl time.Duration, now time.Time, current func() limits,
) (int, limits) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := current()

	// An overwrite replaces the entry, so its old bytes must not count
	// against the incoming write.
	if el, ok := s.items[key]; ok {
		s.removeElementLocked(el)
	}

	evicted := s.evictLocked(size, 1, l)

	e := newEntry(key, value, size, ttl, now)
	s.items[key] = s.lru.PushFront(e)
	s.bytes += size
	return evicted, l
}

// remove deletes key and reports whether it was present.
func (s *namespaceStore[V]) remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[key]
	if !ok {
		return false
	}
	s.removeElementLocked(el)
	return true
}

// clear drops every entry and returns how many were removed.
func (s *namespaceStore[V]) clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.lru.Len()
	s.items = make(map[string]*list.Element)
	s.lru.Init()
	s.bytes = 0
	return n
}

// removeIf deletes every entry matching pred and returns the count.
func (s *namespaceStore[V]) removeIf(pred func(e *Entry[V]) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for el := s.lru.Front(); el != nil; {
		next := el.Next()
		if pred(el.Value.(*Entry[V])) {
			s.removeElementLocked(el)
			removed++
		}
		el = next
	}
	return removed
}

// usage is a point-in-time summary of a namespace.
type usage struct {
	count  int
	bytes  int64
	oldest time.Time
	newest time.Time
}

func (s *namespaceStore[V]) usage() usage {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := usage{count: s.lru.Len(), bytes: s.bytes}
	for el := s.lru.Front(); el != nil; el = el.Next() {
		created := el.Value.(*Entry[V]).CreatedAt
		if u.oldest.IsZero() || created.Before(u.oldest) {
			u.oldest = created
		}
		if created.After(u.newest) {
			u.newest = created
		}
	}
	return u
}

func (s *namespaceStore[V]) removeElementLocked(el *list.Element) {
	e := el.Value.(*Entry[V])
	delete(s.items, e.Key)
	s.lru.Remove(el)
	s.bytes -= e.SizeBytes
}
