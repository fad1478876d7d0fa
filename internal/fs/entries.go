package fs

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Entry is one item of a browser drop listing: a file, or a directory with its children.
// LastModified is in epoch milliseconds, as browsers report it.
type Entry struct {
	Name         string  `json:"name"`
	IsDir        bool    `json:"isDir"`
	Size         int64   `json:"size,omitempty"`
	LastModified int64   `json:"lastModified,omitempty"`
	Children     []Entry `json:"children,omitempty"`
}

// EntryFS implements FileSystem over an in-memory drop listing. The root ("") is a virtual
// directory holding the dropped items; ReadDir keeps the order the browser reported.
type EntryFS struct {
	root Entry
}

// NewEntryFS creates an EntryFS whose root lists the given top-level entries.
func NewEntryFS(entries []Entry) *EntryFS {
	return &EntryFS{root: Entry{IsDir: true, Children: entries}}
}

// validName rejects names that would not address exactly one child, such as "." which
// would resolve back to its own parent.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.Contains(name, "/")
}

func (e *EntryFS) lookup(path string) (*Entry, error) {
	cur := &e.root
	if path == "" {
		return cur, nil
	}
	for _, part := range strings.Split(path, "/") {
		if !validName(part) {
			return nil, &os.PathError{Op: "lookup", Path: path, Err: os.ErrInvalid}
		}
		if !cur.IsDir {
			return nil, os.ErrNotExist
		}
		var next *Entry
		for i := range cur.Children {
			if cur.Children[i].Name == part {
				next = &cur.Children[i]
				break
			}
		}
		if next == nil {
			return nil, os.ErrNotExist
		}
		cur = next
	}
	return cur, nil
}

// Stat returns metadata for the entry at the given path.
func (e *EntryFS) Stat(path string) (FileInfo, error) {
	entry, err := e.lookup(path)
	if err != nil {
		return FileInfo{}, err
	}
	info := FileInfo{
		Name:  entry.Name,
		IsDir: entry.IsDir,
		Size:  entry.Size,
	}
	if entry.LastModified != 0 {
		info.ModTime = time.UnixMilli(entry.LastModified)
	}
	return info, nil
}

// ReadDir lists the children of the directory entry at the given path.
func (e *EntryFS) ReadDir(path string) ([]DirEntry, error) {
	entry, err := e.lookup(path)
	if err != nil {
		return nil, err
	}
	if !entry.IsDir {
		return nil, &os.PathError{Op: "readdir", Path: path, Err: os.ErrInvalid}
	}
	result := make([]DirEntry, len(entry.Children))
	for i, c := range entry.Children {
		if !validName(c.Name) {
			return nil, &os.PathError{Op: "readdir", Path: path, Err: fmt.Errorf("entry name %q: %w", c.Name, os.ErrInvalid)}
		}
		result[i] = DirEntry{Name: c.Name, IsDir: c.IsDir}
	}
	return result, nil
}
