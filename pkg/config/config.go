// Package config loads textify settings from defaults, an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"textify/pkg/source"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when it exists and no other file is named.
const DefaultFile = ".textify.yaml"

// Modes select the file selection policy.
const (
	ModePatterns = "patterns"
	ModeLegacy   = "legacy"
)

// Settings is the full configuration of one textify invocation.
type Settings struct {
	Dir                string   `yaml:"dir"`
	Output             string   `yaml:"output" validate:"required"`
	IncludeDB          bool     `yaml:"include_db"`
	IgnorePatterns     []string `yaml:"ignore_patterns"`
	IgnoreFile         string   `yaml:"ignore_file"`
	DatabaseExtensions []string `yaml:"database_extensions" validate:"dive,startswith=."`
	GitHubURL          string   `yaml:"github_url"`
	GitHubToken        string   `yaml:"-"`
	Ref                string   `yaml:"ref"`
	Mode               string   `yaml:"mode" validate:"oneof=patterns legacy"`
	Debug              bool     `yaml:"debug"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Dir:                ".",
		Output:             "project_contents.txt",
		IgnorePatterns:     []string{".DS_Store", ".git", ".idea", "__pycache__", "*.pyc", "venv", "tests", "*.log", "poetry.lock"},
		IgnoreFile:         ".textifyignore",
		DatabaseExtensions: []string{".db"},
		Mode:               ModePatterns,
	}
}

// Load overlays the YAML file at path on the defaults. An empty path means
// DefaultFile, which may be absent; an explicitly named file must exist.
func Load(path string) (Settings, error) {
	s := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return s, nil
}

// LoadEnv reads a .env file when present and applies environment overrides.
func LoadEnv(s *Settings) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	if token := strings.TrimSpace(os.Getenv("GITHUB_TOKEN")); token != "" {
		s.GitHubToken = token
	}
	return nil
}

var validate = validator.New()

// Validate checks the settings for values textify cannot run with.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if s.GitHubURL != "" {
		if _, err := url.Parse(s.GitHubURL); err != nil {
			return fmt.Errorf("invalid settings: github_url: %w", err)
		}
		if _, _, err := source.ParseRepoURL(s.GitHubURL); err != nil {
			return fmt.Errorf("invalid settings: github_url: %w", err)
		}
	} else if s.Dir == "" {
		return errors.New("invalid settings: either dir or github_url is required")
	}
	return nil
}

// Remote reports whether the settings point at a hosted repository.
func (s Settings) Remote() bool {
	return s.GitHubURL != ""
}
