// Package walker flattens a directory hierarchy into the path records the tree builder
// consumes.
package walker

import (
	"fmt"

	mfs "github.com/ALiangTech/treeify/internal/fs"
	"github.com/ALiangTech/treeify/internal/tree"
)

// DefaultSkip lists directories that are never descended into.
var DefaultSkip = []string{"node_modules"}

// Options controls a walk.
type Options struct {
	// Skip names directories whose contents are not listed at all.
	Skip []string
}

// DefaultOptions returns the options used by the drop and folder readers.
func DefaultOptions() Options {
	return Options{Skip: append([]string(nil), DefaultSkip...)}
}

func (o Options) skipped(name string) bool {
	for _, s := range o.Skip {
		if s == name {
			return true
		}
	}
	return false
}

// Walk lists the hierarchy below root depth-first. Each subdirectory is read completely
// before its next sibling, so records come out in a stable order for a stable file system.
//
// A root directory becomes the first segment of every record's relative path. A root that
// is a single file yields one record without a relative path. Any error aborts the walk.
func Walk(fsys mfs.FileSystem, root string, opts Options) ([]tree.Record, error) {
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", root, err)
	}

	var records []tree.Record
	if !info.IsDir {
		return append(records, record(info, "")), nil
	}
	if opts.skipped(info.Name) {
		return records, nil
	}
	if err := walkDir(fsys, root, info.Name+"/", opts, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// WalkAll walks every top-level entry of fsys in the order ReadDir returns them, as a
// browser drop of several items is read.
func WalkAll(fsys mfs.FileSystem, opts Options) ([]tree.Record, error) {
	entries, err := fsys.ReadDir("")
	if err != nil {
		return nil, fmt.Errorf("read drop root: %w", err)
	}

	var records []tree.Record
	for _, e := range entries {
		found, err := Walk(fsys, e.Name, opts)
		if err != nil {
			return nil, err
		}
		records = append(records, found...)
	}
	return records, nil
}

func walkDir(fsys mfs.FileSystem, dir, prefix string, opts Options, records *[]tree.Record) error {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory %q: %w", dir, err)
	}

	for _, e := range entries {
		child := joinPath(dir, e.Name)
		if e.IsDir {
			if opts.skipped(e.Name) {
				continue
			}
			if err := walkDir(fsys, child, prefix+e.Name+"/", opts, records); err != nil {
				return err
			}
			continue
		}

		info, err := fsys.Stat(child)
		if err != nil {
			return fmt.Errorf("stat %q: %w", child, err)
		}
		*records = append(*records, record(info, prefix))
	}
	return nil
}

func record(info mfs.FileInfo, prefix string) tree.Record {
	r := tree.Record{
		Name: info.Name,
		Size: info.Size,
	}
	if prefix != "" {
		r.RelativePath = prefix + info.Name
	}
	if !info.ModTime.IsZero() {
		r.LastModified = info.ModTime.UnixMilli()
	}
	return r
}

func joinPath(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	return dir + "/" + name
}
