// Package ignore decides whether a path should be left out of a project dump.
//
// Patterns are shell globs (`*`, `?`, `[...]`) matched against every
// segment of a slash-separated path, so `__pycache__` hides that directory
// wherever it appears and `*.pyc` hides compiled files at any depth.
package ignore

import (
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// IgnorePattern is a single glob together with where it came from.
type IgnorePattern struct {
	Glob   string // Pattern as matched against a path segment.
	Line   string // Original, untrimmed line.
	LineNo int    // Position in the source (1-based).
}

// Matcher holds an ordered set of ignore patterns.
type Matcher struct {
	Patterns []*IgnorePattern
	logger   *zap.Logger
}

// New returns a Matcher compiled from the given pattern lines.
func New(logger *zap.Logger, patterns ...string) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Matcher{logger: logger}
	m.CompileIgnoreLines(patterns...)
	return m
}

// CompileIgnoreLines adds pattern lines. Blank lines and comments are skipped,
// malformed globs are logged and dropped.
func (m *Matcher) CompileIgnoreLines(lines ...string) {
	for _, line := range lines {
		glob := strings.TrimSpace(line)
		if glob == "" || strings.HasPrefix(glob, "#") {
			continue
		}
		if !doublestar.ValidatePattern(glob) {
			m.logger.Warn("Dropping malformed ignore pattern", zap.String("pattern", line))
			continue
		}
		ip := &IgnorePattern{
			Glob:   glob,
			Line:   line,
			LineNo: len(m.Patterns) + 1,
		}
		m.Patterns = append(m.Patterns, ip)
		m.logger.Debug("Compiled ignore pattern", zap.Int("lineNo", ip.LineNo), zap.String("pattern", glob))
	}
}

// CompileIgnoreFile appends the patterns found in an ignore file.
// A file that does not exist is not an error.
func (m *Matcher) CompileIgnoreFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Debug("Ignore file does not exist and will be skipped", zap.String("filePath", path))
			return nil
		}
		m.logger.Error("Failed to read ignore file", zap.String("filePath", path), zap.Error(err))
		return err
	}

	before := len(m.Patterns)
	m.CompileIgnoreLines(strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")...)
	m.logger.Debug("Loaded ignore file",
		zap.String("filePath", path),
		zap.Int("patternCount", len(m.Patterns)-before))
	return nil
}

// Len reports the number of compiled patterns.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Patterns)
}

// MatchesPath reports whether any segment of path matches any pattern.
func (m *Matcher) MatchesPath(path string) bool {
	matches, _ := m.MatchesPathWithPattern(path)
	return matches
}

// MatchesPathWithPattern is MatchesPath that also returns the pattern that hit.
func (m *Matcher) MatchesPathWithPattern(path string) (bool, *IgnorePattern) {
	if m == nil || len(m.Patterns) == 0 {
		return false, nil
	}

	for _, segment := range strings.Split(normalizePath(path), "/") {
		if segment == "" || segment == "." {
			continue
		}
		for _, pattern := range m.Patterns {
			// Globs were validated at compile time, so the error is always nil.
			if ok, _ := doublestar.Match(pattern.Glob, segment); ok {
				return true, pattern
			}
		}
	}
	return false, nil
}

// normalizePath turns backslashes into forward slashes on every OS.
func normalizePath(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}
