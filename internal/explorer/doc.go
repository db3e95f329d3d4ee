// Package explorer lists directories and stats files through a go-billy
// filesystem, keeping results in a dircache Cache.
//
// Directory listings live in the folder namespace keyed by directory path,
// per-path metadata in the file namespace, the mounted roots in the drive
// namespace, the recently used paths in the recent namespace and arbitrary
// caller data in the metadata namespace. Concurrent loads of the same path
// share one filesystem read.
package explorer
