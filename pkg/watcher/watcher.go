// Package watcher re-runs a callback when files under a directory tree
// change.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/jingkaihe/plugincheck/pkg/logger"
)

// DefaultDebounce is how long the watcher waits for a burst of changes to settle
const DefaultDebounce = 300 * time.Millisecond

// DefaultIgnoreDirs are directory names never watched
var DefaultIgnoreDirs = []string{".git", "node_modules", "dist"}

// Watcher watches a directory tree
type Watcher struct {
	root     string
	debounce time.Duration
	ignore   map[string]bool
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets the debounce interval
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithIgnoreDirs replaces the ignored directory names
func WithIgnoreDirs(dirs ...string) Option {
	return func(w *Watcher) {
		w.ignore = make(map[string]bool, len(dirs))
		for _, d := range dirs {
			w.ignore[d] = true
		}
	}
}

// New creates a watcher for root
func New(root string, opts ...Option) *Watcher {
	w := &Watcher{
		root:     root,
		debounce: DefaultDebounce,
	}
	WithIgnoreDirs(DefaultIgnoreDirs...)(w)

	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch calls fn once, then again after every settled burst of changes
// until ctx is cancelled. fn runs on the calling goroutine.
func (w *Watcher) Watch(ctx context.Context, fn func(ctx context.Context)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}

	log := logger.G(ctx).WithField("root", w.root)
	fn(ctx)

	var (
		timer  *time.Timer
		settle <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) {
				continue
			}
			log.WithField("path", event.Name).WithField("op", event.Op.String()).Debug("change detected")

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(fw, event.Name); err != nil {
						log.WithError(err).Warn("failed to watch new directory")
					}
				}
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			settle = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("file watcher error")

		case <-settle:
			settle = nil
			fn(ctx)
		}
	}
}

// addTree watches dir and every directory below it that is not ignored
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "failed to walk %s", path)
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.ignore[d.Name()] {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return errors.Wrapf(err, "failed to watch %s", path)
		}
		return nil
	})
}

func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if w.ignore[part] {
			return true
		}
	}
	return false
}
