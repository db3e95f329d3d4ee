package explorer

import (
	"os"
	"time"
)

// ModifiedLayout is the layout of FileEntry.Modified.
const ModifiedLayout = "2006-01-02 15:04:05"

// FileEntry describes one file or directory.
type FileEntry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
	// Modified is the UTC modification time in ModifiedLayout, empty when unknown.
	Modified string `json:"modified,omitempty"`
}

func newFileEntry(path string, info os.FileInfo) FileEntry {
	e := FileEntry{
		Name:  info.Name(),
		Path:  path,
		IsDir: info.IsDir(),
		Size:  info.Size(),
	}
	if mt := info.ModTime(); !mt.IsZero() {
		e.Modified = mt.UTC().Format(ModifiedLayout)
	}
	return e
}

// ModTime parses Modified. The second result is false when it is empty or
// malformed.
func (e FileEntry) ModTime() (time.Time, bool) {
	if e.Modified == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(ModifiedLayout, e.Modified)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
