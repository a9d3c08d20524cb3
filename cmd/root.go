package cmd

import (
	"context"
	"fmt"

	"textify/pkg/config"
	"textify/pkg/logging"
	"textify/pkg/version"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootOptions holds the raw flag values of the root command.
type rootOptions struct {
	configFile     string
	dir            string
	output         string
	includeDB      bool
	ignorePatterns []string
	ignoreFile     string
	dbExtensions   []string
	githubURL      string
	githubToken    string
	ref            string
	legacy         bool
	debug          bool
	quiet          bool
}

// NewRootCmd builds the textify command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	defaults := config.Default()

	rootCmd := &cobra.Command{
		Use:   "textify",
		Short: "textify writes a project tree and its files into one text document",
		Long: `textify serializes a local directory or a GitHub repository into a single
text file: the directory structure first, then the contents of every file
that is not ignored. SQLite databases are summarized (tables, columns, row
counts and sample rows) when --include-db is set.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := resolveSettings(cmd, opts)
			if err != nil {
				return err
			}

			logger, err := logging.Setup(logging.Options{
				Debug:      settings.Debug,
				Quiet:      opts.quiet,
				AppName:    version.AppName,
				AppVersion: version.Version,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			if err := runCombine(cmd.Context(), settings, logger, cmd.OutOrStdout()); err != nil {
				logger.Error("textify execution failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	f := rootCmd.Flags()
	f.StringVar(&opts.configFile, "config", "", fmt.Sprintf("YAML config file (default %s when present)", config.DefaultFile))
	f.StringVar(&opts.dir, "dir", defaults.Dir, "The directory of the project")
	f.StringVarP(&opts.output, "output", "o", defaults.Output, "The name of the output file")
	f.BoolVar(&opts.includeDB, "include-db", false, "Include a summary of database files instead of a placeholder")
	f.StringSliceVar(&opts.ignorePatterns, "ignore-patterns", defaults.IgnorePatterns, "Patterns of files and directories to ignore")
	f.StringVar(&opts.ignoreFile, "ignore-file", defaults.IgnoreFile, "Ignore file in the project root whose patterns are added to --ignore-patterns")
	f.StringSliceVar(&opts.dbExtensions, "db-ext", defaults.DatabaseExtensions, "File extensions treated as SQLite databases")
	f.StringVar(&opts.githubURL, "github-url", "", "URL of the GitHub repository to process instead of --dir")
	f.StringVar(&opts.githubToken, "github-token", "", "GitHub token (default $GITHUB_TOKEN)")
	f.StringVar(&opts.ref, "ref", "", "Branch, tag or commit of the GitHub repository")
	f.BoolVar(&opts.legacy, "legacy", false, "Use the fixed allow-list selection instead of ignore patterns")
	f.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Only log warnings and errors")
	rootCmd.MarkFlagsMutuallyExclusive("dir", "github-url")

	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}
