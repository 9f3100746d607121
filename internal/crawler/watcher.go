package crawler

import (
	"fmt"
	"hotbackup/internal/logger"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reports paths changed below the hot folder. It only shortens the
// wait for the next pass; the walk stays authoritative, so a dropped
// notification costs at most one poll interval.
type Watcher struct {
	fw      *fsnotify.Watcher
	skip    func(path string) bool
	changes chan string
	done    chan struct{}
	once    sync.Once
}

// NewWatcher buffers up to bufferSize changed paths. Paths for which skip
// returns true are neither watched nor reported; skip may be nil.
func NewWatcher(bufferSize int, skip func(path string) bool) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if skip == nil {
		skip = func(string) bool { return false }
	}

	return &Watcher{
		fw:      fw,
		skip:    skip,
		changes: make(chan string, bufferSize),
		done:    make(chan struct{}),
	}, nil
}

// Watch subscribes to root and every directory below it, then starts
// forwarding changes.
func (w *Watcher) Watch(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("failed to watch %s: not a directory", root)
	}

	if err := w.subscribe(root); err != nil {
		return err
	}

	go w.forward()

	logger.Log.Info("watcher started",
		zap.String("dir", root))
	return nil
}

func (w *Watcher) subscribe(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.skip(path) {
			return filepath.SkipDir
		}

		if err := w.fw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) forward() {
	defer close(w.changes)

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logger.Log.Warn("watcher error",
				zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod || w.skip(ev.Name) {
		return
	}

	// New directories are not covered by the existing subscriptions.
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.subscribe(ev.Name); err != nil {
				logger.Log.Warn("failed to watch new directory",
					zap.String("path", ev.Name),
					zap.Error(err))
			}
		}
	}

	select {
	case w.changes <- ev.Name:
	default:
	}
}

// Changes is closed once the watcher stops.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
		_ = w.fw.Close()
	})
}
