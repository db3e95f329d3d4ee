package cache

import "time"

// Entry wraps a cached value with its access bookkeeping.
// Entries are owned by exactly one namespace and are never shared.
type Entry[V any] struct {
	// Key is the key the entry is stored under.
	Key string `json:"key"`

	// Value is the cached value.
	Value V `json:"value"`

	// CreatedAt is when the entry was written. TTL is measured from here.
	CreatedAt time.Time `json:"created_at"`

	// SizeBytes is the estimated size of Value (see EstimateSize).
	SizeBytes int64 `json:"size_bytes"`

	// AccessCount starts at 1 on write and is bumped on every hit.
	AccessCount int64 `json:"access_count"`

	// LastAccessAt is the time of the last write or hit. Eviction order follows it.
	LastAccessAt time.Time `json:"last_access_at"`

	// TTL overrides the configured default TTL when positive.
	TTL time.Duration `json:"ttl,omitempty"`
}

// newEntry creates an entry stamped with now.
func newEntry[V any](key string, value V, size int64, ttl time.Duration, now time.Time) *Entry[V] {
	return &Entry[V]{
		Key:          key,
		Value:        value,
		CreatedAt:    now,
		SizeBytes:    size,
		AccessCount:  1,
		LastAccessAt: now,
		TTL:          ttl,
	}
}

// Age returns how long ago the entry was created.
func (e *Entry[V]) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// EffectiveTTL returns the entry's own TTL, or fallback when it has none.
func (e *Entry[V]) EffectiveTTL(fallback time.Duration) time.Duration {
	if e.TTL > 0 {
		return e.TTL
	}
	return fallback
}

// IsExpired reports whether the entry is older than its effective TTL.
// An entry is only logically expired; it stays in its namespace until a read,
// a sweep, or an eviction removes it.
func (e *Entry[V]) IsExpired(now time.Time, fallback time.Duration) bool {
	return e.Age(now) > e.EffectiveTTL(fallback)
}

// touch records a hit.
func (e *Entry[V]) touch(now time.Time) {
	e.AccessCount++
	e.LastAccessAt = now
}
