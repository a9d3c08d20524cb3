// Package source abstracts where a project tree is read from.
package source

import (
	"context"
	"fmt"
	"path"
	"sort"
)

// Entry is one child of a directory.
type Entry struct {
	Name  string // Base name.
	Path  string // Slash-separated path relative to the source root.
	IsDir bool
}

// Source lists directories and reads files of a project tree.
// Paths are slash-separated and relative to the root; "" is the root itself.
type Source interface {
	// ListChildren returns the entries of dir sorted by name.
	ListChildren(ctx context.Context, dir string) ([]Entry, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
	// Label is the name a path is shown under in the output document.
	Label(path string) string
}

// LocalPather is implemented by sources whose files exist on the local disk.
type LocalPather interface {
	LocalPath(path string) string
}

// AccessError marks a failure to reach the backing store itself (network,
// authentication, rate limiting). Unlike a per-file read error it ends the run.
type AccessError struct {
	Op   string
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
}

func childPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return path.Join(dir, name)
}
