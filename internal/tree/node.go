// Package tree turns flat path records into a file tree and renders it as a text diagram.
package tree

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind distinguishes files from directories
type Kind int

// Node kinds.
const (
	File Kind = iota
	Directory
)

func (k Kind) String() string {
	if k == Directory {
		return "directory"
	}
	return "file"
}

// MarshalJSON encodes the kind as "file" or "directory".
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON accepts "file" or "directory".
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "file":
		*k = File
	case "directory":
		*k = Directory
	default:
		return fmt.Errorf("unknown node kind %q", s)
	}
	return nil
}

// Node represents a file or directory in the tree
type Node struct {
	Name         string  `json:"name"`
	Kind         Kind    `json:"type"`
	Path         string  `json:"path"`
	Children     []*Node `json:"children,omitempty"`
	Size         *int64  `json:"size,omitempty"`
	LastModified *int64  `json:"lastModified,omitempty"`
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	return n.Kind == Directory
}

// child returns the direct child with the given name, if any.
func (n *Node) child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Record is one flat input item: a single file plus its slash-delimited relative path.
type Record struct {
	Name         string `json:"name"`
	RelativePath string `json:"relativePath"`
	Size         int64  `json:"size"`
	LastModified int64  `json:"lastModified"`
}

// segments splits the relative path and drops empty segments.
func (r Record) segments() []string {
	if r.RelativePath == "" {
		return nil
	}
	parts := strings.Split(r.RelativePath, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func newDir(name, parentPath string) *Node {
	return &Node{
		Name: name,
		Kind: Directory,
		Path: joinPath(parentPath, name),
	}
}

func newFile(r Record, name, parentPath string) *Node {
	size := r.Size
	modified := r.LastModified
	return &Node{
		Name:         name,
		Kind:         File,
		Path:         joinPath(parentPath, name),
		Size:         &size,
		LastModified: &modified,
	}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// Find resolves a node by its path in the forest.
func Find(forest []*Node, path string) *Node {
	for _, root := range forest {
		if found := findByPath(root, path); found != nil {
			return found
		}
	}
	return nil
}

func findByPath(node *Node, path string) *Node {
	if node.Path == path {
		return node
	}
	if !strings.HasPrefix(path, node.Path+"/") {
		return nil
	}
	for _, c := range node.Children {
		if found := findByPath(c, path); found != nil {
			return found
		}
	}
	return nil
}

// isRoot reports whether path names a root-level element of the forest.
func isRoot(forest []*Node, path string) bool {
	for _, root := range forest {
		if root.Path == path {
			return true
		}
	}
	return false
}

// CountNodes counts all nodes in the forest.
func CountNodes(forest []*Node) int {
	count := 0
	for _, n := range forest {
		count += 1 + CountNodes(n.Children)
	}
	return count
}

// MaxDepth returns the deepest directory level in the forest, counting roots as 1.
func MaxDepth(forest []*Node) int {
	deepest := 0
	for _, n := range forest {
		if !n.IsDir() {
			continue
		}
		if d := 1 + MaxDepth(n.Children); d > deepest {
			deepest = d
		}
	}
	return deepest
}
