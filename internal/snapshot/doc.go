// Package snapshot provides durable key-value stores for the cache state record.
//
// The cache persists only its configuration and hit/miss counters, a few
// hundred bytes under a single key. Every backend therefore stores whole
// records and offers last-writer-wins semantics:
//   - FileStore writes one JSON file per key with a lockfile and atomic rename
//   - MinioStore writes one object per key to an S3-compatible bucket
//   - MemoryStore keeps records in process memory (tests, ephemeral runs)
//
// Load returns nil data and a nil error when no record exists.
package snapshot
