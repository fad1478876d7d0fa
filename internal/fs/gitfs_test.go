package fs

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// setupTestRepo creates a temporary git repository with sample files for testing.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	git := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}

	git("init")
	git("config", "user.email", "test@test.com")
	git("config", "user.name", "Test")

	// Create files and directories
	docsDir := filepath.Join(dir, "docs")
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# README\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(docsDir, "guide.md"), []byte("# Guide\n\nHello world.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	git("add", "-A")
	git("commit", "-m", "initial commit")

	return dir
}

func TestGitFS_Stat_Root(t *testing.T) {
	dir := setupTestRepo(t)
	g := NewGitFS(dir, "HEAD")

	info, err := g.Stat("")
	if err != nil {
		t.Fatalf("Stat('') failed: %v", err)
	}
	if !info.IsDir {
		t.Error("expected root to be a directory")
	}
}

func TestGitFS_ReadDir_Root(t *testing.T) {
	dir := setupTestRepo(t)
	g := NewGitFS(dir, "HEAD")

	entries, err := g.ReadDir("")
	if err != nil {
		t.Fatalf("ReadDir('') failed: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected non-empty root directory")
	}

	names := make(map[string]bool)
	for _, e := range entries {
		names[e.Name] = true
		t.Logf("  entry: %s (dir=%v)", e.Name, e.IsDir)
	}

	if !names["README.md"] {
		t.Error("expected README.md in root entries")
	}
	if !names["docs"] {
		t.Error("expected docs directory in root entries")
	}
}

func TestGitFS_Stat_Dir(t *testing.T) {
	dir := setupTestRepo(t)
	g := NewGitFS(dir, "HEAD")

	info, err := g.Stat("docs")
	if err != nil {
		t.Fatalf("Stat('docs') failed: %v", err)
	}
	if !info.IsDir {
		t.Error("expected docs to be a directory")
	}
	if info.Name != "docs" {
		t.Errorf("expected name 'docs', got %q", info.Name)
	}
}

func TestGitFS_ReadDir_SubDir(t *testing.T) {
	dir := setupTestRepo(t)
	g := NewGitFS(dir, "HEAD")

	entries, err := g.ReadDir("docs")
	if err != nil {
		t.Fatalf("ReadDir('docs') failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry in docs, got %d", len(entries))
	}
	if entries[0].Name != "guide.md" {
		t.Errorf("expected guide.md, got %s", entries[0].Name)
	}
}

func TestGitFS_Stat_File(t *testing.T) {
	dir := setupTestRepo(t)
	g := NewGitFS(dir, "HEAD")

	info, err := g.Stat("docs/guide.md")
	if err != nil {
		t.Fatalf("Stat('docs/guide.md') failed: %v", err)
	}
	if info.IsDir {
		t.Error("expected guide.md to be a file")
	}
	if info.Size != int64(len("# Guide\n\nHello world.\n")) {
		t.Errorf("unexpected size %d", info.Size)
	}
	if info.ModTime.IsZero() {
		t.Error("expected commit time as modification time")
	}
}

func TestGitFS_Stat_NotExist(t *testing.T) {
	dir := setupTestRepo(t)
	g := NewGitFS(dir, "HEAD")

	if _, err := g.Stat("nonexistent.md"); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestGitFS_Stat_RootName(t *testing.T) {
	dir := setupTestRepo(t)
	g := NewGitFS(dir, "HEAD")

	info, err := g.Stat("")
	if err != nil {
		t.Fatal(err)
	}
	if info.Name != filepath.Base(dir) {
		t.Errorf("expected root name %q, got %q", filepath.Base(dir), info.Name)
	}
}

func TestGitFS_BadRef(t *testing.T) {
	dir := setupTestRepo(t)
	g := NewGitFS(dir, "no-such-branch")

	if _, err := g.Stat(""); err == nil {
		t.Error("expected error for unknown ref")
	}
}

func TestGitFS_NonASCIINames(t *testing.T) {
	dir := setupTestRepo(t)
	name := "café notes.md"
	if err := os.WriteFile(filepath.Join(dir, "docs", name), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, args := range [][]string{{"add", "-A"}, {"commit", "-m", "utf-8 name"}} {
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}

	g := NewGitFS(dir, "HEAD")
	entries, err := g.ReadDir("docs")
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, e := range entries {
		if e.Name == name {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %q in %+v", name, entries)
	}

	info, err := g.Stat("docs/" + name)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Name != name || info.Size != 1 {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestParseTreeLine(t *testing.T) {
	tests := []struct {
		line  string
		name  string
		isDir bool
		size  int64
		ok    bool
	}{
		{"100644 blob 3b18e512dba79e4c8300dd08aeb37f8e728b8dad      12\tdocs/guide.md", "guide.md", false, 12, true},
		{"040000 tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904       -\tdocs", "docs", true, 0, true},
		{"garbage", "", false, 0, false},
	}

	for _, tt := range tests {
		e, ok := parseTreeLine(tt.line)
		if ok != tt.ok {
			t.Errorf("parseTreeLine(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			continue
		}
		if e.name != tt.name || e.isDir != tt.isDir || e.size != tt.size {
			t.Errorf("parseTreeLine(%q) = %+v", tt.line, e)
		}
	}
}
