// Package cache provides an in-memory, size- and TTL-bounded LRU cache for
// file-explorer metadata.
//
// The cache is split into a fixed set of namespaces (file metadata, directory
// listings, drives, the recently-used list, and generic keyed metadata). Each
// namespace owns an isolated key space and is bounded independently:
//   - Byte and entry ceilings enforced synchronously on every write (LRU eviction)
//   - Lazy TTL expiry on read, plus explicit bulk sweeps for callers
//   - Path-aware invalidation of a file and its parent directory listing
//   - Global hit/miss counters and config persisted to a caller-provided store
//
// Entry sizes are estimated from the JSON encoding of the value. This is a
// heuristic for bounding memory, not exact accounting.
//
// Cached values are never written to durable storage. Only the configuration
// and the hit/miss counters survive a restart.
package cache
