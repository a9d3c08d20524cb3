package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local reads a project from a directory on disk.
type Local struct {
	Root string // Absolute path of the project directory.
}

// NewLocal resolves dir to an absolute path and checks that it is a directory.
func NewLocal(dir string) (*Local, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	return &Local{Root: root}, nil
}

// ListChildren implements Source.
func (l *Local) ListChildren(_ context.Context, dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(l.LocalPath(dir))
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, d := range dirEntries {
		entries = append(entries, Entry{
			Name:  d.Name(),
			Path:  childPath(dir, d.Name()),
			IsDir: d.IsDir(),
		})
	}
	sortEntries(entries)
	return entries, nil
}

// ReadFile implements Source.
func (l *Local) ReadFile(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(l.LocalPath(path))
}

// Label implements Source. Local files are labelled with their full path.
func (l *Local) Label(path string) string {
	return l.LocalPath(path)
}

// LocalPath implements LocalPather.
func (l *Local) LocalPath(path string) string {
	if path == "" {
		return l.Root
	}
	return filepath.Join(l.Root, filepath.FromSlash(path))
}

// Rel returns the slash-separated path of abs relative to the root, and false
// when abs lies outside the root.
func (l *Local) Rel(abs string) (string, bool) {
	abs, err := filepath.Abs(abs)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(l.Root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
