package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/go-github/v66/github"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const (
	listPageSize         = 100
	defaultListCacheSize = 1024
)

// GitHubOptions configures a GitHub source.
type GitHubOptions struct {
	Token      string       // Optional personal access token.
	Ref        string       // Branch, tag or commit; empty means the default branch.
	BaseURL    string       // API root, mainly for tests and GitHub Enterprise.
	HTTPClient *http.Client // Defaults to http.DefaultClient.
	CacheSize  int          // Number of directory listings kept in memory.
	Logger     *zap.Logger
}

// GitHub reads a project through the GitHub contents API.
type GitHub struct {
	Owner string
	Repo  string
	Ref   string

	client *github.Client
	cache  *lru.Cache[string, []Entry]
	logger *zap.Logger
}

// NewGitHub creates a source for the repository named by repoURL.
func NewGitHub(repoURL string, opts GitHubOptions) (*GitHub, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := github.NewClient(opts.HTTPClient)
	if opts.Token != "" {
		client = client.WithAuthToken(opts.Token)
	}
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", opts.BaseURL, err)
		}
		client.BaseURL = u
	}

	size := opts.CacheSize
	if size <= 0 {
		size = defaultListCacheSize
	}
	cache, err := lru.New[string, []Entry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing cache: %w", err)
	}

	return &GitHub{
		Owner:  owner,
		Repo:   repo,
		Ref:    opts.Ref,
		client: client,
		cache:  cache,
		logger: logger.With(zap.String("repo", owner+"/"+repo)),
	}, nil
}

// ParseRepoURL extracts owner and repository name from the last two path
// segments of a repository URL such as https://github.com/owner/repo.git.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	s := strings.TrimSpace(repoURL)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	s = strings.TrimSuffix(strings.Trim(s, "/"), ".git")

	var parts []string
	for _, p := range strings.Split(s, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return "", "", fmt.Errorf("cannot determine owner/repo from %q", repoURL)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}

// ListChildren implements Source. Listings are fetched page by page and
// cached, so the tree pass and the content pass share the API calls.
func (g *GitHub) ListChildren(ctx context.Context, dir string) ([]Entry, error) {
	if cached, ok := g.cache.Get(dir); ok {
		return cached, nil
	}

	var entries []Entry
	page := 1
	for {
		req, err := g.client.NewRequest(http.MethodGet, g.listURL(dir, page), nil)
		if err != nil {
			return nil, &AccessError{Op: "list", Path: dir, Err: err}
		}

		var contents []*github.RepositoryContent
		resp, err := g.client.Do(ctx, req, &contents)
		if err != nil {
			g.logger.Error("Failed to list directory", zap.String("path", dir), zap.Int("page", page), zap.Error(err))
			return nil, &AccessError{Op: "list", Path: dir, Err: err}
		}

		for _, c := range contents {
			entries = append(entries, Entry{
				Name:  c.GetName(),
				Path:  childPath(dir, c.GetName()),
				IsDir: c.GetType() == "dir",
			})
		}
		g.logger.Debug("Listed directory page",
			zap.String("path", dir),
			zap.Int("page", page),
			zap.Int("entries", len(contents)))

		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	sortEntries(entries)
	g.cache.Add(dir, entries)
	return entries, nil
}

// ReadFile implements Source. Transport failures are returned as
// *AccessError; a payload that cannot be decoded is a plain error.
func (g *GitHub) ReadFile(ctx context.Context, path string) ([]byte, error) {
	opts := &github.RepositoryContentGetOptions{Ref: g.Ref}
	file, _, _, err := g.client.Repositories.GetContents(ctx, g.Owner, g.Repo, path, opts)
	if err != nil {
		g.logger.Error("Failed to fetch file", zap.String("path", path), zap.Error(err))
		return nil, &AccessError{Op: "read", Path: path, Err: err}
	}
	if file == nil {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	// Files above 1 MB come back without inline content.
	if file.GetEncoding() == "none" {
		return g.download(ctx, path, opts)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}
	return []byte(content), nil
}

// Label implements Source. Remote files are labelled with their repository path.
func (g *GitHub) Label(path string) string {
	return path
}

func (g *GitHub) download(ctx context.Context, path string, opts *github.RepositoryContentGetOptions) ([]byte, error) {
	rc, _, err := g.client.Repositories.DownloadContents(ctx, g.Owner, g.Repo, path, opts)
	if err != nil {
		return nil, &AccessError{Op: "download", Path: path, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, &AccessError{Op: "download", Path: path, Err: err}
		}
		return nil, err
	}
	return data, nil
}

func (g *GitHub) listURL(dir string, page int) string {
	escaped := (&url.URL{Path: strings.TrimSuffix(dir, "/")}).String()
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(listPageSize))
	q.Set("page", strconv.Itoa(page))
	if g.Ref != "" {
		q.Set("ref", g.Ref)
	}
	return fmt.Sprintf("repos/%s/%s/contents/%s?%s", g.Owner, g.Repo, escaped, q.Encode())
}
