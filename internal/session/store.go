// Package session keeps the per-browser view state: the latest forest and its
// visibility overlay.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/ALiangTech/treeify/internal/tree"
	"github.com/google/uuid"
)

// ErrNotFound is returned for an unknown session ID.
var ErrNotFound = errors.New("session not found")

// DefaultMaxSessions bounds the number of sessions kept in memory.
const DefaultMaxSessions = 256

// Session is one user's current tree.
type Session struct {
	ID        string
	Source    string
	Forest    []*tree.Node
	Pinned    bool
	CreatedAt time.Time
	UpdatedAt time.Time

	vis *tree.Visibility
}

// Snapshot is a read-only copy of a session's state taken under the store lock.
type Snapshot struct {
	ID     string
	Source string
	Forest []*tree.Node
	Hidden []string
	Text   string

	hidden map[string]struct{}
}

// IsVisible reports whether the node at path was visible when the snapshot was taken.
func (s Snapshot) IsVisible(path string) bool {
	_, hidden := s.hidden[path]
	return !hidden
}

// Store holds sessions keyed by ID. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
	now      func() time.Time
}

// NewStore creates a store that keeps at most max sessions; the least recently updated
// unpinned session is evicted first.
func NewStore(max int) *Store {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &Store{
		sessions: make(map[string]*Session),
		max:      max,
		now:      time.Now,
	}
}

// Create stores a new session for forest.
func (s *Store) Create(forest []*tree.Node, source string) Snapshot {
	return s.create(uuid.NewString(), forest, source, false)
}

// CreatePinned stores a session under a fixed ID that is never evicted.
func (s *Store) CreatePinned(id string, forest []*tree.Node, source string) Snapshot {
	return s.create(id, forest, source, true)
}

func (s *Store) create(id string, forest []*tree.Node, source string, pinned bool) Snapshot {
	now := s.now()
	sess := &Session{
		ID:        id,
		Source:    source,
		Forest:    forest,
		Pinned:    pinned,
		CreatedAt: now,
		UpdatedAt: now,
		vis:       tree.NewVisibility(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
	s.evict()
	return snapshot(sess)
}

// evict drops the oldest unpinned sessions until the store fits. Callers hold s.mu.
func (s *Store) evict() {
	for len(s.sessions) > s.max {
		var oldest *Session
		for _, sess := range s.sessions {
			if sess.Pinned {
				continue
			}
			if oldest == nil || sess.UpdatedAt.Before(oldest.UpdatedAt) {
				oldest = sess
			}
		}
		if oldest == nil {
			return
		}
		delete(s.sessions, oldest.ID)
	}
}

// Get returns a snapshot of the session.
func (s *Store) Get(id string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return snapshot(sess), nil
}

// Rebuild replaces the session's forest. Visibility choices made on the old forest are
// discarded.
func (s *Store) Rebuild(id string, forest []*tree.Node) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	sess.Forest = forest
	sess.vis = tree.NewVisibility()
	sess.UpdatedAt = s.now()
	return snapshot(sess), nil
}

// Toggle flips the visibility of one node and returns the new state with the session.
func (s *Store) Toggle(id, path string) (bool, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false, Snapshot{}, ErrNotFound
	}
	visible, err := sess.vis.Toggle(sess.Forest, path)
	if err != nil {
		return visible, Snapshot{}, err
	}
	sess.UpdatedAt = s.now()
	return visible, snapshot(sess), nil
}

// SetVisible shows or hides one node.
func (s *Store) SetVisible(id, path string, visible bool) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	if err := sess.vis.SetVisible(sess.Forest, path, visible); err != nil {
		return Snapshot{}, err
	}
	sess.UpdatedAt = s.now()
	return snapshot(sess), nil
}

// Text renders the session's current diagram.
func (s *Store) Text(id string) (string, error) {
	snap, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return snap.Text, nil
}

// Delete removes a session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func snapshot(sess *Session) Snapshot {
	hidden := sess.vis.Hidden()
	set := make(map[string]struct{}, len(hidden))
	for _, p := range hidden {
		set[p] = struct{}{}
	}
	return Snapshot{
		ID:     sess.ID,
		Source: sess.Source,
		Forest: sess.Forest,
		Hidden: hidden,
		Text:   tree.Format(sess.Forest, sess.vis),
		hidden: set,
	}
}
