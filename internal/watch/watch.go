// Package watch re-runs a handler whenever one of a set of files changes.
//
// The parent directory of each file is watched rather than the file itself,
// so editors that save through a rename are still seen. Bursts of events
// for the same file are collapsed into one call after a quiet period.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 100 * time.Millisecond

// Handler is called with the path of a changed file. A returned error is
// logged and watching continues.
type Handler func(ctx context.Context, path string) error

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
}

// Watcher calls a Handler for changed files.
type Watcher struct {
	files    map[string]bool
	handler  Handler
	debounce time.Duration
	log      *slog.Logger
	fsw      *fsnotify.Watcher
}

// New watches files. Paths are made absolute; events for other files in
// the same directories are ignored.
func New(files []string, handler Handler, opts Options, log *slog.Logger) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("watch: no files given")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if log == nil {
		log = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		handler:  handler,
		debounce: opts.Debounce,
		log:      log,
		fsw:      fsw,
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("resolving path %s: %w", f, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run delivers changes until ctx is done, then releases the watcher.
// Pending changes are dropped on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			pending[filepath.Clean(event.Name)] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer, timerC = nil, nil
			w.flush(ctx, pending)
			clear(pending)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return w.files[filepath.Clean(event.Name)]
}

func (w *Watcher) flush(ctx context.Context, pending map[string]bool) {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		w.log.Debug("file changed", slog.String("path", p))
		if err := w.handler(ctx, p); err != nil {
			w.log.Error("rebuild failed", slog.String("path", p), slog.String("error", err.Error()))
		}
	}
}
