package combine

import (
	"context"
	"database/sql"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"textify/pkg/source"

	"github.com/stretchr/testify/require"
)

// memSource is an in-memory source without a local path, standing in for a
// remote repository.
type memSource struct {
	files    map[string][]byte
	readErrs map[string]error
}

func (m *memSource) ListChildren(_ context.Context, dir string) ([]source.Entry, error) {
	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}
	seen := map[string]bool{}
	var entries []source.Entry
	for p := range m.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		name, _, isDir := strings.Cut(strings.TrimPrefix(p, prefix), "/")
		if seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, source.Entry{Name: name, Path: path.Join(dir, name), IsDir: isDir})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *memSource) ReadFile(_ context.Context, p string) ([]byte, error) {
	if err, ok := m.readErrs[p]; ok {
		return nil, err
	}
	return m.files[p], nil
}

func (m *memSource) Label(p string) string { return p }

// writeTree creates files (and their parent directories) under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

// createUsersDB writes a SQLite database with a users table holding Alice and Bob.
func createUsersDB(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range []string{
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)",
		"INSERT INTO users (name) VALUES ('Alice')",
		"INSERT INTO users (name) VALUES ('Bob')",
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
