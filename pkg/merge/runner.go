// Package merge runs the fetch, aggregate, render and write cycle.
package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"rulemerge/pkg/output"
	"rulemerge/pkg/rules"
	"rulemerge/pkg/sources"
)

// ErrNoSources is returned when no source identifiers are configured. No
// output is written in that case.
var ErrNoSources = errors.New("no sources configured")

// Fetcher supplies the raw lines of every source in order.
type Fetcher interface {
	FetchAll(ctx context.Context, srcs []sources.Source) ([]rules.SourceLines, error)
}

// Publisher uploads rendered artifacts.
type Publisher interface {
	Publish(ctx context.Context, artifacts ...output.Artifact) ([]string, error)
}

// Options configures a Runner.
type Options struct {
	SourcesFile     string
	AliasFile       string
	Lists           map[string]sources.ListConfig
	AllowedPrefixes string

	OutputDir      string
	MergedFile     string
	DuplicatesFile string

	Fetcher   Fetcher
	Publisher Publisher
	Log       *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// Debounce delays a watch-triggered run after a file change.
	Debounce time.Duration
}

// Report describes a finished run.
type Report struct {
	Result      *rules.Result
	Duplicates  []string
	Paths       []string
	Published   []string
	GeneratedAt time.Time
}

// Runner merges the configured sources into the result directory.
type Runner struct {
	opts    Options
	fetcher Fetcher
	writer  *output.Writer
	log     *slog.Logger
	now     func() time.Time
}

// New constructs a Runner. A nil Fetcher uses sources.NewFetcher defaults.
func New(opts Options) *Runner {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = sources.NewFetcher(sources.FetcherOptions{Log: log})
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	return &Runner{
		opts:    opts,
		fetcher: fetcher,
		writer:  output.NewWriter(opts.OutputDir, log),
		log:     log,
		now:     now,
	}
}

// Run performs one full merge. It returns ErrNoSources before fetching
// anything when the source list is empty.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	ids, err := r.readSourceList()
	if err != nil {
		return nil, err
	}

	aliases, err := sources.ReadAliases(r.opts.AliasFile, r.log)
	if err != nil {
		return nil, err
	}

	srcs := sources.BuildSources(ids, r.opts.Lists, aliases)
	if len(srcs) == 0 {
		return nil, ErrNoSources
	}
	sources.CheckHosts(srcs, r.log)

	r.log.Info("fetching sources", "count", len(srcs))
	fetched, err := r.fetcher.FetchAll(ctx, srcs)
	if err != nil {
		return nil, err
	}

	result := rules.Aggregate(fetched, rules.Options{
		Aliases: aliases,
		Allowed: rules.NewPrefixSet(r.opts.AllowedPrefixes),
	})
	for _, id := range result.RepeatedSources() {
		r.log.Warn("source listed more than once, its rules are counted per entry", "source", id)
	}
	for _, stats := range result.Stats {
		r.log.Debug("aggregated source", "source", stats.Source.ID, "alias", stats.Source.Alias,
			"lines", stats.Lines, "rules", stats.Rules, "filtered", stats.Filtered)
	}

	generated := r.now().UTC()
	merged, duplicates := result.Render(generated)
	artifacts := []output.Artifact{
		{Name: r.opts.MergedFile, Content: merged},
		{Name: r.opts.DuplicatesFile, Content: duplicates},
	}

	paths, err := r.writer.Write(artifacts...)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Result:      result,
		Duplicates:  result.Duplicates(),
		Paths:       paths,
		GeneratedAt: generated,
	}

	if r.opts.Publisher != nil {
		keys, err := r.opts.Publisher.Publish(ctx, artifacts...)
		if err != nil {
			r.log.Error("failed to publish artifacts", "error", err)
			return report, fmt.Errorf("publish: %w", err)
		}
		report.Published = keys
	}

	r.log.Info("merge complete", "rules", result.Len(), "duplicates", len(report.Duplicates), "dir", r.writer.Dir())
	return report, nil
}

func (r *Runner) readSourceList() ([]string, error) {
	if r.opts.SourcesFile == "" {
		return nil, nil
	}
	ids, err := sources.ReadList(r.opts.SourcesFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && len(r.opts.Lists) > 0 {
			r.log.Warn("source list not found, using configured lists only", "path", r.opts.SourcesFile)
			return nil, nil
		}
		return nil, err
	}
	return ids, nil
}
