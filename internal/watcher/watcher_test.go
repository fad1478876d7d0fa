package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ALiangTech/treeify/internal/config"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsNewFiles(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	r.NoError(os.MkdirAll(filepath.Join(dir, "sub"), 0o755))

	cfg := config.DefaultConfig()
	cfg.Path = dir
	w, err := New(cfg)
	r.NoError(err)

	events := make(chan Event, 16)
	w.OnChange(func(e Event) { events <- e })
	r.NoError(w.Start())
	defer func() { _ = w.Stop() }()

	target := filepath.Join(dir, "sub", "new.txt")
	r.NoError(os.WriteFile(target, []byte("x"), 0o644))

	deadline := time.After(3 * time.Second)
	for {
		select {
		case e := <-events:
			if e.Path == target {
				return
			}
		case <-deadline:
			t.Fatal("no event for the new file")
		}
	}
}

func TestWatcher_IgnoresExcludedFolders(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	r.NoError(os.MkdirAll(filepath.Join(dir, "dist"), 0o755))

	cfg := config.DefaultConfig()
	cfg.Path = dir
	w, err := New(cfg)
	r.NoError(err)
	r.True(w.ignored(filepath.Join(dir, "dist", "bundle.js")))
	r.True(w.ignored(filepath.Join(dir, "node_modules")))
	r.False(w.ignored(filepath.Join(dir, "src", "main.go")))
	r.NoError(w.watcher.Close())
}

func TestWatcher_NoFolder(t *testing.T) {
	cfg := config.DefaultConfig()
	w, err := New(cfg)
	require.NoError(t, err)
	require.ErrorIs(t, w.Start(), ErrNoFolder)
	require.NoError(t, w.watcher.Close())

	cfg.Path = t.TempDir()
	cfg.GitRef = "main"
	w, err = New(cfg)
	require.NoError(t, err)
	require.ErrorIs(t, w.Start(), ErrNoFolder)
	require.NoError(t, w.watcher.Close())
}

func TestDebounce(t *testing.T) {
	var calls int32
	b := Debounce(50*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })
	defer b.Stop()

	for i := 0; i < 5; i++ {
		b.Trigger(Event{Type: EventWrite, Path: "a.txt"})
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDebounce_NoRunAfterStop(t *testing.T) {
	var calls int32
	b := Debounce(30*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	b.Trigger(Event{Type: EventWrite, Path: "a.txt"})
	b.Stop()
	b.Trigger(Event{Type: EventWrite, Path: "b.txt"})

	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestDebounce_StopWaitsForRun(t *testing.T) {
	started := make(chan struct{})
	var finished int32
	b := Debounce(time.Millisecond, func() {
		close(started)
		time.Sleep(50 * time.Millisecond)
		atomic.StoreInt32(&finished, 1)
	})

	b.Trigger(Event{Type: EventCreate, Path: "a.txt"})
	<-started
	b.Stop()
	require.Equal(t, int32(1), atomic.LoadInt32(&finished))
}

func TestEventType_String(t *testing.T) {
	require.Equal(t, "create", EventCreate.String())
	require.Equal(t, "rename", EventRename.String())
	require.Equal(t, "unknown", EventType(42).String())
}
