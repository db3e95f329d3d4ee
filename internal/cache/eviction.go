package cache

// limits are the per-namespace ceilings in force for one write.
type limits struct {
	maxBytes   int64
	maxEntries int
}

// over reports whether adding incoming bytes and reserve entries to a
// namespace holding count entries and bytes would break the ceilings.
func (l limits) over(count int, bytes, incoming int64, reserve int) bool {
	return bytes+incoming > l.maxBytes || count+reserve > l.maxEntries
}

// evictLocked removes least recently used entries until incoming bytes and
// reserve new entries fit under l. It stops once the namespace is empty even
// if the ceilings are still broken, so a single entry larger than maxBytes is
// accepted rather than rejected. Returns the number of entries removed.
func (s *namespaceStore[V]) evictLocked(incoming int64, reserve int, l limits) int {
	evicted := 0
	for s.lru.Len() > 0 && l.over(s.lru.Len(), s.bytes, incoming, reserve) {
		s.removeElementLocked(s.lru.Back())
		evicted++
	}
	return evicted
}

// trim brings the namespace back under l after the ceilings were lowered.
func (s *namespaceStore[V]) trim(l limits) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked(0, 0, l)
}
