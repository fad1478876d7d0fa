package fs

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// GitFS implements FileSystem by listing the tree of a git ref (branch, tag, or commit).
// Every entry reports the commit time of the ref as its modification time.
type GitFS struct {
	repoPath string
	ref      string

	refTime *time.Time
}

// NewGitFS creates a GitFS that lists the given ref of the repository at repoPath.
func NewGitFS(repoPath, ref string) *GitFS {
	return &GitFS{repoPath: repoPath, ref: ref}
}

func (g *GitFS) git(args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", g.repoPath}, args...)...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}

// treeEntry is one record of `git ls-tree -l -z`.
type treeEntry struct {
	name  string
	isDir bool
	size  int64
}

// parseTreeLine parses "<mode> <type> <hash> <size>\t<path>".
func parseTreeLine(line string) (treeEntry, bool) {
	tab := strings.IndexByte(line, '\t')
	if tab < 0 {
		return treeEntry{}, false
	}
	fields := strings.Fields(line[:tab])
	if len(fields) < 4 {
		return treeEntry{}, false
	}
	e := treeEntry{
		name:  baseName(line[tab+1:]),
		isDir: fields[1] == "tree",
	}
	if !e.isDir {
		e.size, _ = strconv.ParseInt(fields[3], 10, 64)
	}
	return e, true
}

func (g *GitFS) lsTree(args ...string) ([]treeEntry, error) {
	// -z keeps paths verbatim; without it git quotes non-ASCII names.
	out, err := g.git(append([]string{"ls-tree", "-l", "-z", g.ref}, args...)...)
	if err != nil {
		return nil, os.ErrNotExist
	}
	var entries []treeEntry
	for _, record := range strings.Split(out, "\x00") {
		if e, ok := parseTreeLine(record); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// Stat returns metadata for the file or directory at the given path in the git ref.
// The root reports the repository directory name.
func (g *GitFS) Stat(path string) (FileInfo, error) {
	modTime, err := g.commitTime()
	if err != nil {
		return FileInfo{}, err
	}

	if path == "" || path == "." {
		return FileInfo{
			Name:    baseName(strings.TrimRight(g.repoPath, "/")),
			IsDir:   true,
			ModTime: modTime,
		}, nil
	}

	entries, err := g.lsTree("--", path)
	if err != nil {
		return FileInfo{}, err
	}
	if len(entries) != 1 {
		return FileInfo{}, os.ErrNotExist
	}
	return FileInfo{
		Name:    entries[0].name,
		IsDir:   entries[0].isDir,
		Size:    entries[0].size,
		ModTime: modTime,
	}, nil
}

// ReadDir lists the immediate children of the directory at the given path in the git ref.
func (g *GitFS) ReadDir(path string) ([]DirEntry, error) {
	var entries []treeEntry
	var err error
	if path == "" || path == "." {
		entries, err = g.lsTree()
	} else {
		entries, err = g.lsTree("--", path+"/")
	}
	if err != nil {
		return nil, err
	}

	result := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, DirEntry{Name: e.name, IsDir: e.isDir})
	}
	return result, nil
}

func (g *GitFS) commitTime() (time.Time, error) {
	if g.refTime != nil {
		return *g.refTime, nil
	}
	out, err := g.git("log", "-1", "--format=%ct", g.ref)
	if err != nil {
		return time.Time{}, os.ErrNotExist
	}
	sec, err := strconv.ParseInt(strings.TrimSpace(out), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse commit time of %s: %w", g.ref, err)
	}
	t := time.Unix(sec, 0)
	g.refTime = &t
	return t, nil
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
