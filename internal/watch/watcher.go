package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/tslens/internal/census"
	"github.com/rohankatakam/tslens/internal/logging"
)

// SkippedDirs are never watched.
var SkippedDirs = []string{"node_modules", "dist", ".git"}

// Notifier receives change signals. Aggregator satisfies it.
type Notifier interface {
	Notify()
}

// Watcher forwards filesystem changes to source files under a root.
type Watcher struct {
	root     string
	notifier Notifier
	fsw      *fsnotify.Watcher
	logger   *logrus.Logger

	mu   sync.Mutex
	dirs map[string]struct{}
}

// New registers every directory under root and returns a watcher that is
// not yet running.
func New(root string, notifier Notifier, logger *logrus.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	// Event paths are reported under the resolved root
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		root:     abs,
		notifier: notifier,
		fsw:      fsw,
		logger:   logger,
		dirs:     make(map[string]struct{}),
	}
	if err := w.addTree(abs); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and every non-skipped directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A directory can vanish between the event and the walk
			if path != dir && os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && skipped(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		w.mu.Lock()
		w.dirs[path] = struct{}{}
		w.mu.Unlock()
		return nil
	})
}

// Run forwards events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.WithFields(logrus.Fields{
		"root": w.root,
		"dirs": w.watchedCount(),
	}).Info("Watching for changes")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("Watcher error")
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if skipped(filepath.Base(event.Name)) {
				return
			}
			if err := w.addTree(event.Name); err != nil {
				w.logger.WithError(err).WithField("dir", event.Name).Warn("Failed to watch new directory")
			}
			w.notify(event)
			return
		}
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if w.forget(event.Name) {
			w.notify(event)
			return
		}
	}

	if census.FamilyOf(filepath.Base(event.Name)) != census.FamilyNone {
		w.notify(event)
	}
}

func (w *Watcher) notify(event fsnotify.Event) {
	w.logger.WithFields(logrus.Fields{
		"path": event.Name,
		"op":   event.Op.String(),
	}).Debug("Change detected")
	w.notifier.Notify()
}

// forget drops a removed directory and its descendants, reporting whether
// path was watched.
func (w *Watcher) forget(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, ok := w.dirs[path]
	if !ok {
		return false
	}
	prefix := path + string(filepath.Separator)
	for dir := range w.dirs {
		if dir == path || strings.HasPrefix(dir, prefix) {
			delete(w.dirs, dir)
			// inotify drops removed watches itself
			w.fsw.Remove(dir)
		}
	}
	return true
}

func (w *Watcher) watching(dir string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.dirs[dir]
	return ok
}

func (w *Watcher) watchedCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.dirs)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func skipped(name string) bool {
	for _, s := range SkippedDirs {
		if name == s {
			return true
		}
	}
	return false
}
