// Package watcher monitors file system changes and broadcasts events via callbacks.
package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ALiangTech/treeify/internal/config"
	"github.com/ALiangTech/treeify/internal/logging"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// EventType represents the type of file system event
type EventType int

// File system event types.
const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
	EventRename
)

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "create"
	case EventWrite:
		return "write"
	case EventRemove:
		return "remove"
	case EventRename:
		return "rename"
	}
	return "unknown"
}

// Event represents a file system change event
type Event struct {
	Type EventType
	Path string
}

// Callback is a function called when file changes occur
type Callback func(Event)

// ErrNoFolder is returned by Start when there is no local folder to watch.
var ErrNoFolder = errors.New("no local folder to watch")

// Watcher monitors the folder loaded with --path
type Watcher struct {
	watcher   *fsnotify.Watcher
	cfg       *config.Config
	callbacks []Callback
	mu        sync.RWMutex
	done      chan struct{}
	logger    *zap.Logger
}

// New creates a new file system watcher
func New(cfg *config.Config) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher: w,
		cfg:     cfg,
		done:    make(chan struct{}),
		logger:  logging.L().Named("watcher"),
	}, nil
}

// OnChange registers a callback for file change events
func (w *Watcher) OnChange(cb Callback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Start watches every directory below the configured path except excluded and skipped
// ones. A folder read from a git ref never changes, so it is not watched.
func (w *Watcher) Start() error {
	if w.cfg.Path == "" || w.cfg.GitRef != "" {
		return ErrNoFolder
	}

	err := filepath.Walk(w.cfg.Path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		// Only watch directories
		if !info.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("cannot watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		return err
	}

	go w.eventLoop()
	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}

// ignored reports whether a path lies in a folder left out of the tree
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.cfg.Path, path)
	if err != nil || rel == "." {
		return false
	}
	if w.cfg.IsExcluded(rel) {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		for _, s := range w.cfg.Skip {
			if s == part {
				return true
			}
		}
	}
	return false
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Skip excluded paths
	if w.ignored(event.Name) {
		return
	}

	var eventType EventType
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = EventCreate
		// If a new directory is created, watch it
		if isDir(event.Name) {
			_ = w.watcher.Add(event.Name)
		}
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventWrite
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		eventType = EventRemove
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = EventRename
	default:
		return
	}

	e := Event{
		Type: eventType,
		Path: event.Name,
	}
	w.logger.Debug("file changed", zap.Stringer("type", e.Type), zap.String("path", e.Path))

	w.mu.RLock()
	callbacks := make([]Callback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()

	for _, cb := range callbacks {
		cb(e)
	}
}

// Debouncer runs a function once events have stopped arriving for a fixed delay.
type Debouncer struct {
	d       time.Duration
	fn      func()
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	running sync.Mutex
}

// Debounce returns a Debouncer that runs fn once events have stopped arriving for d.
// Register its Trigger method with OnChange.
func Debounce(d time.Duration, fn func()) *Debouncer {
	return &Debouncer{d: d, fn: fn}
}

// Trigger restarts the delay. It does nothing once the debouncer is stopped.
func (b *Debouncer) Trigger(Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.d, b.fire)
}

func (b *Debouncer) fire() {
	b.running.Lock()
	defer b.running.Unlock()
	b.mu.Lock()
	stopped := b.stopped
	b.mu.Unlock()
	if !stopped {
		b.fn()
	}
}

// Stop cancels a pending run and waits for one already in progress. fn is never
// called after Stop returns.
func (b *Debouncer) Stop() {
	b.mu.Lock()
	b.stopped = true
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()
	// wait out a run that was already past the stopped check
	b.running.Lock()
	b.running.Unlock()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
