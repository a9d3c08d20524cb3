package source

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalListChildrenSorted(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "b", "inner"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "c.txt"), []byte("c"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b", "x.md"), []byte("x"), 0o644))

	src, err := NewLocal(root)
	require.NoError(t, err)
	ctx := context.Background()

	entries, err := src.ListChildren(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Name: "a.txt", Path: "a.txt"},
		{Name: "b", Path: "b", IsDir: true},
		{Name: "c.txt", Path: "c.txt"},
	}, entries)

	entries, err = src.ListChildren(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Name: "inner", Path: "b/inner", IsDir: true},
		{Name: "x.md", Path: "b/x.md"},
	}, entries)

	data, err := src.ReadFile(ctx, "b/x.md")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
	assert.Equal(t, filepath.Join(root, "b", "x.md"), src.Label("b/x.md"))
}

func TestNewLocalRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := NewLocal(path)
	assert.Error(t, err)

	_, err = NewLocal(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLocalRel(t *testing.T) {
	root := t.TempDir()
	src, err := NewLocal(root)
	require.NoError(t, err)

	rel, ok := src.Rel(filepath.Join(root, "out", "dump.txt"))
	assert.True(t, ok)
	assert.Equal(t, "out/dump.txt", rel)

	_, ok = src.Rel(filepath.Join(filepath.Dir(root), "elsewhere.txt"))
	assert.False(t, ok)

	_, ok = src.Rel(root)
	assert.False(t, ok)
}

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		in          string
		owner, repo string
		wantErr     bool
	}{
		{in: "https://github.com/octo/hello", owner: "octo", repo: "hello"},
		{in: "https://github.com/octo/hello.git", owner: "octo", repo: "hello"},
		{in: "github.com/octo/hello/", owner: "octo", repo: "hello"},
		{in: "octo/hello", owner: "octo", repo: "hello"},
		{in: "hello", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			owner, repo, err := ParseRepoURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
		})
	}
}

type content struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Encoding string `json:"encoding,omitempty"`
	Content  string `json:"content,omitempty"`
	Download string `json:"download_url,omitempty"`
}

// newFakeGitHub serves a two-page root listing and one subdirectory holding a
// small file and a file too large for inline content.
func newFakeGitHub(t *testing.T, listCalls *int32) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/repos/octo/hello/contents/":
			atomic.AddInt32(listCalls, 1)
			assert.Equal(t, "100", r.URL.Query().Get("per_page"))
			if r.URL.Query().Get("page") == "2" {
				_ = json.NewEncoder(w).Encode([]content{{Type: "file", Name: "a.txt", Path: "a.txt"}})
				return
			}
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/hello/contents/?per_page=100&page=2>; rel="next"`, srv.URL))
			_ = json.NewEncoder(w).Encode([]content{{Type: "dir", Name: "src", Path: "src"}})
		case "/repos/octo/hello/contents/src":
			atomic.AddInt32(listCalls, 1)
			_ = json.NewEncoder(w).Encode([]content{
				{Type: "file", Name: "main.go", Path: "src/main.go"},
				{Type: "file", Name: "big.bin", Path: "src/big.bin", Download: srv.URL + "/raw/src/big.bin"},
			})
		case "/repos/octo/hello/contents/src/main.go":
			_ = json.NewEncoder(w).Encode(content{
				Type:     "file",
				Name:     "main.go",
				Path:     "src/main.go",
				Encoding: "base64",
				Content:  base64.StdEncoding.EncodeToString([]byte("package main\n")),
			})
		case "/repos/octo/hello/contents/src/big.bin":
			_ = json.NewEncoder(w).Encode(content{Type: "file", Name: "big.bin", Path: "src/big.bin", Encoding: "none"})
		case "/raw/src/big.bin":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte("raw bytes\x00\xff"))
		default:
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGitHubListChildrenPaginatesAndCaches(t *testing.T) {
	var calls int32
	srv := newFakeGitHub(t, &calls)

	src, err := NewGitHub("https://github.com/octo/hello", GitHubOptions{BaseURL: srv.URL})
	require.NoError(t, err)
	ctx := context.Background()

	entries, err := src.ListChildren(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Name: "a.txt", Path: "a.txt"},
		{Name: "src", Path: "src", IsDir: true},
	}, entries)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	_, err = src.ListChildren(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "second listing must come from the cache")

	entries, err = src.ListChildren(ctx, "src")
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Name: "big.bin", Path: "src/big.bin"},
		{Name: "main.go", Path: "src/main.go"},
	}, entries)
}

func TestGitHubReadFileDecodesBase64(t *testing.T) {
	var calls int32
	srv := newFakeGitHub(t, &calls)

	src, err := NewGitHub("octo/hello", GitHubOptions{BaseURL: srv.URL, Token: "secret"})
	require.NoError(t, err)

	data, err := src.ReadFile(context.Background(), "src/main.go")
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(data))
	assert.Equal(t, "src/main.go", src.Label("src/main.go"))
}

func TestGitHubReadFileDownloadsLargeFiles(t *testing.T) {
	var calls int32
	srv := newFakeGitHub(t, &calls)

	src, err := NewGitHub("octo/hello", GitHubOptions{BaseURL: srv.URL})
	require.NoError(t, err)

	data, err := src.ReadFile(context.Background(), "src/big.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("raw bytes\x00\xff"), data)
}

func TestGitHubAccessErrors(t *testing.T) {
	var calls int32
	srv := newFakeGitHub(t, &calls)

	src, err := NewGitHub("octo/hello", GitHubOptions{BaseURL: srv.URL})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = src.ListChildren(ctx, "missing")
	var accessErr *AccessError
	require.True(t, errors.As(err, &accessErr))
	assert.Equal(t, "list", accessErr.Op)
	assert.Equal(t, "missing", accessErr.Path)

	_, err = src.ReadFile(ctx, "nope.txt")
	require.True(t, errors.As(err, &accessErr))
	assert.Equal(t, "read", accessErr.Op)
}
