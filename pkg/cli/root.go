// Package cli provides the rulemerge command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"rulemerge/pkg/config"
	"rulemerge/pkg/logger"
	"rulemerge/pkg/merge"
	"rulemerge/pkg/output"
	"rulemerge/pkg/sources"
	"rulemerge/pkg/version"
)

// NewRootCmd creates the rulemerge command tree. Running the root command
// without a subcommand performs a single merge.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "rulemerge",
		Short: "Merge ad and DNS block lists into one deduplicated list",
		Long: `rulemerge downloads the block lists named in a source list, merges them
into one sorted list without duplicates and writes a report of the rules
that appear in more than one source.`,
		Version:       version.RulemergeVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd, cfgFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default rulemerge.toml or $RULEMERGE_CONFIG)")
	flags.StringP("sources", "s", "", "file listing one source URL per line")
	flags.StringP("aliases", "a", "", "file mapping source URLs to aliases (url=alias)")
	flags.StringP("output", "o", "", "result directory")
	flags.String("prefixes", "", "only accept rules starting with one of these characters, e.g. \"|@\"")
	flags.String("cache-dir", "", "directory for last-good copies of downloaded lists")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-file", "", "log file path or \"stdout\"")

	rootCmd.AddCommand(newRunCmd(&cfgFile), newWatchCmd(&cfgFile), newVersionCmd())
	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, merge.ErrNoSources) {
			fmt.Fprintln(stderr, "no valid sources found, nothing was merged")
		} else {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRunCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Fetch, merge and write the rule lists once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd, *cfgFile)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rulemerge %s\n", version.RulemergeVersion)
		},
	}
}

func runOnce(cmd *cobra.Command, cfgFile string) error {
	runner, _, err := setup(cmd, cfgFile)
	if err != nil {
		return err
	}
	report, err := runner.Run(cmd.Context())
	if report != nil {
		printSummary(cmd.OutOrStdout(), report)
	}
	return err
}

// setup loads configuration, configures logging and builds the runner.
func setup(cmd *cobra.Command, cfgFile string) (*merge.Runner, *config.Config, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	log := logger.Setup(cfg.Logging.Level, cfg.Logging.File)

	opts := merge.Options{
		SourcesFile:     cfg.Sources.File,
		AliasFile:       cfg.Sources.AliasFile,
		Lists:           cfg.Sources.Lists,
		AllowedPrefixes: cfg.Sources.AllowedPrefixes,
		OutputDir:       cfg.Output.Dir,
		MergedFile:      cfg.Output.MergedFile,
		DuplicatesFile:  cfg.Output.DuplicatesFile,
		Fetcher: sources.NewFetcher(sources.FetcherOptions{
			Timeout:     cfg.Sources.Timeout,
			CacheDir:    cfg.Cache.Dir,
			Concurrency: cfg.Sources.Concurrency,
			Log:         log,
		}),
		Log: log,
	}

	if cfg.Publish.Enabled {
		publisher, err := newPublisher(cfg.Publish, log)
		if err != nil {
			return nil, nil, err
		}
		opts.Publisher = publisher
	}

	return merge.New(opts), cfg, nil
}

func newPublisher(cfg config.PublishConfig, log *slog.Logger) (*output.Publisher, error) {
	target := output.PublishConfig{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		Prefix:    cfg.Prefix,
		UseSSL:    cfg.UseSSL,
		Timeout:   cfg.Timeout,
	}
	store, err := output.NewObjectStore(target)
	if err != nil {
		return nil, err
	}
	return output.NewPublisher(store, target, log), nil
}
