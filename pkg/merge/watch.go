package merge

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch runs a merge immediately, then again every interval and whenever the
// source list or alias file changes. It blocks until ctx is cancelled. Failed
// runs are logged and do not stop the loop. onRun, when set, receives every
// successful report.
func (r *Runner) Watch(ctx context.Context, interval time.Duration, onRun func(*Report)) error {
	run := func(reason string) {
		r.log.Info("starting merge", "reason", reason)
		report, err := r.Run(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			r.log.Error("merge failed", "error", err)
			return
		}
		if onRun != nil {
			onRun(report)
		}
	}

	watcher, watched := r.newWatcher()
	if watcher != nil {
		defer func() {
			if err := watcher.Close(); err != nil {
				r.log.Warn("failed to close file watcher", "error", err)
			}
		}()
	}

	run("startup")

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if watcher != nil {
		events = watcher.Events
		watchErrs = watcher.Errors
	}

	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			r.log.Info("watch stopped")
			return nil
		case <-tick:
			run("interval")
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !relevant(event, watched) {
				continue
			}
			r.log.Debug("watched file changed", "path", event.Name, "op", event.Op.String())
			pending = time.After(r.opts.Debounce)
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			r.log.Warn("file watcher error", "error", err)
		case <-pending:
			pending = nil
			run("file change")
		}
	}
}

// newWatcher watches the directories holding the source list and alias file.
// Directories are watched instead of the files so editors that replace files
// by rename are still noticed.
func (r *Runner) newWatcher() (*fsnotify.Watcher, map[string]bool) {
	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, path := range []string{r.opts.SourcesFile, r.opts.AliasFile} {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			r.log.Warn("cannot resolve watched path", "path", path, "error", err)
			continue
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	if len(watched) == 0 {
		return nil, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		r.log.Warn("file watching disabled", "error", err)
		return nil, nil
	}
	added := 0
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			r.log.Warn("failed to watch directory", "dir", dir, "error", err)
			continue
		}
		added++
	}
	if added == 0 {
		_ = watcher.Close()
		return nil, nil
	}
	return watcher, watched
}

func relevant(event fsnotify.Event, watched map[string]bool) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return watched[abs]
}
