package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"textify/pkg/combine"
	"textify/pkg/config"
	"textify/pkg/ignore"
	"textify/pkg/source"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// resolveSettings layers defaults, the config file, the environment and the
// flags the user actually set, in that order.
func resolveSettings(cmd *cobra.Command, opts *rootOptions) (config.Settings, error) {
	settings, err := config.Load(opts.configFile)
	if err != nil {
		return settings, err
	}
	if err := config.LoadEnv(&settings); err != nil {
		return settings, err
	}

	f := cmd.Flags()
	if f.Changed("dir") {
		settings.Dir = opts.dir
	}
	if f.Changed("output") {
		settings.Output = opts.output
	}
	if f.Changed("include-db") {
		settings.IncludeDB = opts.includeDB
	}
	if f.Changed("ignore-patterns") {
		settings.IgnorePatterns = opts.ignorePatterns
	}
	if f.Changed("ignore-file") {
		settings.IgnoreFile = opts.ignoreFile
	}
	if f.Changed("db-ext") {
		settings.DatabaseExtensions = opts.dbExtensions
	}
	if f.Changed("github-url") {
		settings.GitHubURL = opts.githubURL
	}
	if f.Changed("github-token") {
		settings.GitHubToken = opts.githubToken
	}
	if f.Changed("ref") {
		settings.Ref = opts.ref
	}
	if opts.legacy {
		settings.Mode = config.ModeLegacy
	}
	if opts.debug {
		settings.Debug = true
	}

	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

// runCombine builds the source and policy from settings and writes the document.
func runCombine(ctx context.Context, settings config.Settings, logger *zap.Logger, stdout io.Writer) error {
	src, skip, err := buildSource(settings, logger)
	if err != nil {
		return err
	}

	policy, err := buildPolicy(settings, src, logger)
	if err != nil {
		return err
	}

	report, err := combine.Run(ctx, src, combine.Arguments{
		Output:    settings.Output,
		IncludeDB: settings.IncludeDB,
		Policy:    policy,
		SkipPaths: skip,
	}, logger)
	if err != nil {
		return err
	}

	logger.Debug("Run report",
		zap.Bool("overwritten", report.Overwritten),
		zap.Int("treeEntries", report.TreeEntries),
		zap.Int("databasesSkipped", report.DatabasesSkipped),
		zap.Int("excluded", report.Excluded))
	fmt.Fprintf(stdout, "Project contents written to %s\n", settings.Output)
	return nil
}

// buildSource returns the project source and the root-relative paths that must
// not be serialized, which is the output file when it lives inside the project.
func buildSource(settings config.Settings, logger *zap.Logger) (source.Source, []string, error) {
	if settings.Remote() {
		gh, err := source.NewGitHub(settings.GitHubURL, source.GitHubOptions{
			Token:  settings.GitHubToken,
			Ref:    settings.Ref,
			Logger: logger,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("Using GitHub source", zap.String("owner", gh.Owner), zap.String("repo", gh.Repo), zap.String("ref", gh.Ref))
		return gh, nil, nil
	}

	local, err := source.NewLocal(settings.Dir)
	if err != nil {
		logger.Error("Failed to open project directory", zap.String("dir", settings.Dir), zap.Error(err))
		return nil, nil, fmt.Errorf("failed to open project directory: %w", err)
	}
	logger.Debug("Using local source", zap.String("root", local.Root))

	var skip []string
	if rel, ok := local.Rel(settings.Output); ok {
		skip = append(skip, rel)
	}
	return local, skip, nil
}

// buildPolicy returns the legacy allow-list or a pattern policy assembled from
// the configured patterns and the project's ignore file.
func buildPolicy(settings config.Settings, src source.Source, logger *zap.Logger) (combine.Policy, error) {
	if settings.Mode == config.ModeLegacy {
		return combine.AllowList{}, nil
	}

	matcher := ignore.New(logger, settings.IgnorePatterns...)
	if local, ok := src.(*source.Local); ok && settings.IgnoreFile != "" {
		if err := matcher.CompileIgnoreFile(filepath.Join(local.Root, settings.IgnoreFile)); err != nil {
			return nil, fmt.Errorf("failed to load ignore patterns: %w", err)
		}
	}
	logger.Debug("Loaded ignore patterns", zap.Int("totalPatterns", matcher.Len()))
	return combine.NewPatterns(matcher, settings.DatabaseExtensions...), nil
}
