// Package fs provides read-only metadata access to directory hierarchies: browser drop
// listings, local disk and git refs.
package fs

import "time"

// FileInfo holds file metadata.
type FileInfo struct {
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// DirEntry represents a single directory entry.
type DirEntry struct {
	Name  string
	IsDir bool
}

// FileSystem abstracts a hierarchy of directories so the walker can list either a
// browser drop, the local filesystem or a git object database. Paths are slash-separated
// and relative to the root; "" names the root itself.
type FileSystem interface {
	Stat(path string) (FileInfo, error)
	ReadDir(path string) ([]DirEntry, error)
}
