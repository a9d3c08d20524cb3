// File: pkg/combine/policy.go
package combine

import (
	"path"
	"slices"
	"strings"

	"textify/pkg/ignore"
)

// Kind is how a file is rendered in the output document.
type Kind int

const (
	PlainText    Kind = iota // File content section.
	DatabaseFile             // SQLite summary or placeholder.
	Excluded                 // Listed in the tree, left out of the contents.
)

func (k Kind) String() string {
	switch k {
	case PlainText:
		return "plain-text"
	case DatabaseFile:
		return "database"
	case Excluded:
		return "excluded"
	}
	return "unknown"
}

// Policy selects which entries are traversed and how files are rendered.
type Policy interface {
	Name() string
	// Ignored reports whether an entry, and everything below it, is skipped.
	Ignored(relPath string, isDir bool) bool
	// Classify decides the rendering of a file from its name alone.
	Classify(name string) Kind
}

// DefaultIgnorePatterns are used when no patterns are configured.
var DefaultIgnorePatterns = []string{
	".DS_Store", ".git", ".idea", "__pycache__", "*.pyc", "venv", "tests", "*.log", "poetry.lock",
}

// DefaultDatabaseExtensions mark files handled by the database summarizer.
var DefaultDatabaseExtensions = []string{".db"}

// Patterns skips entries matching an ignore pattern set and includes every
// other file.
type Patterns struct {
	Matcher            *ignore.Matcher
	DatabaseExtensions []string
}

// NewPatterns returns a pattern-based policy. Without extensions it falls back
// to DefaultDatabaseExtensions.
func NewPatterns(m *ignore.Matcher, databaseExtensions ...string) *Patterns {
	if len(databaseExtensions) == 0 {
		databaseExtensions = DefaultDatabaseExtensions
	}
	return &Patterns{Matcher: m, DatabaseExtensions: databaseExtensions}
}

func (p *Patterns) Name() string { return "patterns" }

func (p *Patterns) Ignored(relPath string, _ bool) bool {
	return p.Matcher.MatchesPath(relPath)
}

func (p *Patterns) Classify(name string) Kind {
	if hasAnySuffix(name, p.DatabaseExtensions) {
		return DatabaseFile
	}
	return PlainText
}

// Legacy allow-list selection.
var (
	LegacyExcludedDirs    = []string{".git", "venv", "__pycache__", ".idea"}
	LegacyAllowedSuffixes = []string{
		".py", ".txt", ".md", ".yaml", ".yml", "Dockerfile", "docker-compose.yml", "poetry.toml",
	}
)

// AllowList is the legacy selection: a fixed set of directories is never
// entered, and only files with an allowed suffix (plus .db files) get a
// content section. Other files are dropped without a placeholder.
type AllowList struct{}

func (AllowList) Name() string { return "legacy" }

func (AllowList) Ignored(relPath string, isDir bool) bool {
	return isDir && slices.Contains(LegacyExcludedDirs, path.Base(relPath))
}

func (AllowList) Classify(name string) Kind {
	switch {
	case strings.HasSuffix(name, ".db"):
		return DatabaseFile
	case hasAnySuffix(name, LegacyAllowedSuffixes):
		return PlainText
	}
	return Excluded
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
