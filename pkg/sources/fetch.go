package sources

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"rulemerge/pkg/rules"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	defaultConcurrency = 4
)

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	Timeout     time.Duration
	CacheDir    string
	Concurrency int
	Log         *slog.Logger
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

// Fetcher downloads block lists. A list that cannot be read yields no lines.
type Fetcher struct {
	client      *http.Client
	cacheDir    string
	concurrency int
	log         *slog.Logger
}

// NewFetcher constructs a Fetcher. The cache directory is created when set.
func NewFetcher(opts FetcherOptions) *Fetcher {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Fetcher{
		client:      client,
		cacheDir:    prepareCacheDir(opts.CacheDir, log),
		concurrency: concurrency,
		log:         log,
	}
}

// prepareCacheDir returns dir once it exists, or "" when caching is off or
// the directory cannot be created.
func prepareCacheDir(dir string, log *slog.Logger) string {
	if dir == "" {
		return ""
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.Error("cache directory unavailable, last-good copies disabled", "dir", dir, "error", err)
		return ""
	}
	return dir
}

// FetchAll fetches every source, at most Concurrency at a time, and returns
// their lines in the order of srcs. It only fails when ctx is cancelled.
func (f *Fetcher) FetchAll(ctx context.Context, srcs []Source) ([]rules.SourceLines, error) {
	out := make([]rules.SourceLines, len(srcs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, src := range srcs {
		g.Go(func() error {
			out[i] = rules.SourceLines{ID: src.ID, Lines: f.Fetch(gctx, src)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch sources: %w", err)
	}
	return out, nil
}

// Fetch returns the lines of one source. Download failures fall back to the
// cached copy; when that is missing too the failure is logged and nil returned.
func (f *Fetcher) Fetch(ctx context.Context, src Source) []string {
	data, fromCache, err := f.read(ctx, src)
	if err != nil {
		f.log.Warn("failed to fetch source", "source", src.ID, "error", err)
		return nil
	}

	lines := splitLines(data)

	if !fromCache && f.cacheDir != "" && isRemote(src.ID) {
		if err := os.WriteFile(f.cachePath(src), data, 0o600); err != nil {
			f.log.Warn("failed to store last-good copy", "source", src.ID, "error", err)
		}
	}

	f.log.Debug("fetched source", "source", src.ID, "lines", len(lines), "cached", fromCache)
	return lines
}

func (f *Fetcher) read(ctx context.Context, src Source) ([]byte, bool, error) {
	if isRemote(src.ID) {
		data, err := f.download(ctx, src)
		if err == nil {
			return data, false, nil
		}
		if f.cacheDir == "" {
			return nil, false, err
		}
		// #nosec G304 -- the path is built from the cache directory and a hash.
		cached, cacheErr := os.ReadFile(f.cachePath(src))
		if cacheErr != nil {
			return nil, false, fmt.Errorf("download failed: %w; no last-good copy: %v", err, cacheErr)
		}
		f.log.Warn("download failed, using cached list", "source", src.ID, "error", err)
		return cached, true, nil
	}

	data, err := os.ReadFile(src.ID)
	if err != nil {
		return nil, false, fmt.Errorf("read file: %w", err)
	}
	return data, false, nil
}

func (f *Fetcher) download(ctx context.Context, src Source) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.ID, nil)
	if err != nil {
		return nil, err
	}
	src.Auth.apply(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.log.Warn("failed to close response body", "source", src.ID, "error", err)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// apply sets basic auth and a token header on req. Both may be present.
func (a AuthConfig) apply(req *http.Request) {
	if a.Username != "" || a.Password != "" {
		req.SetBasicAuth(a.Username, a.Password)
	}
	if a.Token == "" {
		return
	}
	header, scheme := a.Header, a.Scheme
	if header == "" {
		header = "Authorization"
	}
	if scheme == "" {
		scheme = "Bearer"
	}
	req.Header.Set(header, strings.TrimSpace(scheme+" "+a.Token))
}

// cachePath keys the last-good copy by location so two lists on one host
// never collide.
func (f *Fetcher) cachePath(src Source) string {
	sum := sha256.Sum256([]byte(src.ID))
	name := strings.Map(cacheRune, strings.ToLower(rules.ResolveAlias(src.ID, nil)))
	if name == "" {
		name = "list"
	}
	return filepath.Join(f.cacheDir, name+"-"+hex.EncodeToString(sum[:8])+".txt")
}

func cacheRune(r rune) rune {
	if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
		return r
	}
	return '_'
}

func isRemote(id string) bool {
	scheme, _, found := strings.Cut(id, "://")
	return found && (strings.EqualFold(scheme, "http") || strings.EqualFold(scheme, "https"))
}
