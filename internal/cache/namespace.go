package cache

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidNamespace is returned when a namespace name cannot be parsed.
var ErrInvalidNamespace = errors.New("invalid cache namespace")

// Namespace identifies one isolated key space within the cache.
type Namespace uint8

// The closed set of cache namespaces.
const (
	// Files holds per-path file metadata.
	Files Namespace = iota
	// Folders holds directory listings keyed by directory path.
	Folders
	// Drives holds device and volume information.
	Drives
	// Recent holds the recently-used path list.
	Recent
	// Metadata holds generic keyed metadata.
	Metadata

	namespaceCount
)

//nolint:gochecknoglobals // Compile-time constant lookup table.
var namespaceNames = [namespaceCount]string{
	Files:    "file",
	Folders:  "folder",
	Drives:   "drive",
	Recent:   "recent",
	Metadata: "metadata",
}

// Namespaces returns every namespace in declaration order.
func Namespaces() []Namespace {
	out := make([]Namespace, 0, namespaceCount)
	for ns := Namespace(0); ns < namespaceCount; ns++ {
		out = append(out, ns)
	}
	return out
}

// Valid reports whether ns is one of the declared namespaces.
func (ns Namespace) Valid() bool {
	return ns < namespaceCount
}

// String returns the lower-case name of the namespace.
func (ns Namespace) String() string {
	if !ns.Valid() {
		return fmt.Sprintf("namespace(%d)", uint8(ns))
	}
	return namespaceNames[ns]
}

// ParseNamespace converts a namespace name (case-insensitive) into a Namespace.
// Plural forms such as "files" and "folders" are accepted as well.
func ParseNamespace(s string) (Namespace, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for ns, n := range namespaceNames {
		if name == n || name == n+"s" {
			return Namespace(ns), nil
		}
	}
	if name == "dir" || name == "directory" {
		return Folders, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidNamespace, s)
}
