// Package watch re-runs work when input files change.
//
// Editors rarely write a file in place: most write a temporary file and
// rename it over the original, which drops a watch placed on the file
// itself. Watcher therefore watches each file's directory and filters events
// by name, and it batches bursts of events into one callback after a quiet
// period.
package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultQuiet is the default quiet period.
const DefaultQuiet = 200 * time.Millisecond

// Watcher watches a fixed set of files.
type Watcher struct {
	fsw    *fsnotify.Watcher
	files  map[string]bool
	quiet  time.Duration
	logger *log.Logger
}

// New watches paths. A zero quiet period uses DefaultQuiet; a nil logger
// discards output.
func New(paths []string, quiet time.Duration, logger *log.Logger) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("watch: no paths")
	}
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{fsw: fsw, files: make(map[string]bool), quiet: quiet, logger: logger}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run calls fn with the changed files after each burst of changes, until ctx
// is done or the watcher is closed. Errors from fn are logged and do not
// stop the watcher. Run returns nil when ctx ends.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context, changed []string) error) error {
	timer := time.NewTimer(w.quiet)
	timer.Stop()
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("file changed", "path", ev.Name, "op", ev.Op.String())
			pending[filepath.Clean(ev.Name)] = true
			timer.Reset(w.quiet)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			slices.Sort(changed)
			clear(pending)
			if err := fn(ctx, changed); err != nil {
				w.logger.Error("rebuild failed", "error", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return w.files[filepath.Clean(ev.Name)]
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
