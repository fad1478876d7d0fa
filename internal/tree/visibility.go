package tree

import (
	"errors"
	"sort"
)

var (
	// ErrRootLocked is returned when a caller tries to hide a root element of the forest.
	ErrRootLocked = errors.New("root node cannot be hidden")
	// ErrNodeNotFound is returned for a path that names no node in the forest.
	ErrNodeNotFound = errors.New("node not found")
	// ErrNilVisibility is returned when changing a nil overlay.
	ErrNilVisibility = errors.New("nil visibility overlay")
)

// Visibility holds the set of node paths hidden from text rendering. It never changes the
// tree itself, and hiding a directory leaves its children's own entries untouched.
// The zero value is ready to use. A nil *Visibility treats every node as visible and
// cannot be changed.
type Visibility struct {
	hidden map[string]struct{}
}

// NewVisibility returns an overlay with every node visible.
func NewVisibility() *Visibility {
	return &Visibility{hidden: make(map[string]struct{})}
}

// IsVisible reports whether the node at path is rendered.
func (v *Visibility) IsVisible(path string) bool {
	if v == nil {
		return true
	}
	_, hidden := v.hidden[path]
	return !hidden
}

// Toggle flips the visibility of the node at path and returns the new state.
func (v *Visibility) Toggle(forest []*Node, path string) (bool, error) {
	visible := !v.IsVisible(path)
	if err := v.SetVisible(forest, path, visible); err != nil {
		return v.IsVisible(path), err
	}
	return visible, nil
}

// SetVisible shows or hides the node at path.
func (v *Visibility) SetVisible(forest []*Node, path string, visible bool) error {
	if v == nil {
		return ErrNilVisibility
	}
	if Find(forest, path) == nil {
		return ErrNodeNotFound
	}
	if isRoot(forest, path) {
		return ErrRootLocked
	}
	if visible {
		delete(v.hidden, path)
		return nil
	}
	if v.hidden == nil {
		v.hidden = make(map[string]struct{})
	}
	v.hidden[path] = struct{}{}
	return nil
}

// Hidden returns the hidden paths in lexical order.
func (v *Visibility) Hidden() []string {
	if v == nil {
		return nil
	}
	paths := make([]string, 0, len(v.hidden))
	for p := range v.hidden {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Reset makes every node visible again.
func (v *Visibility) Reset() {
	if v == nil {
		return
	}
	v.hidden = nil
}
