// Package crawler walks the hot folder on a fixed interval and hands every
// entry it finds to a Handler.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"hotbackup/internal/logger"
	"hotbackup/internal/model"
	"hotbackup/internal/paths"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const DefaultInterval = time.Second

var errPassStopped = errors.New("pass stopped")

type Handler interface {
	Handle(entry model.Entry) model.SyncResult
}

type PassSummary struct {
	StartedAt time.Time
	Duration  time.Duration
	Entries   int
	Actions   map[model.Action]int
	Failed    int
	Stopped   bool
}

func (s *PassSummary) add(result model.SyncResult) {
	s.Entries++
	if result.Err != nil {
		s.Failed++
		return
	}
	s.Actions[result.Action]++
}

type Crawler struct {
	cfg      paths.Config
	handler  Handler
	interval time.Duration
	ignore   []string
	skip     func(path string) bool
	wake     <-chan struct{}
	onPass   func(PassSummary)
}

type Option func(*Crawler)

func WithInterval(d time.Duration) Option {
	return func(c *Crawler) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithIgnoreList skips any path with a component matching one of the glob
// patterns. Delete markers are never skipped.
func WithIgnoreList(patterns []string) Option {
	return func(c *Crawler) {
		c.ignore = patterns
	}
}

// WithSkip leaves out paths the caller writes to itself. A skipped directory
// is not descended into.
func WithSkip(fn func(path string) bool) Option {
	return func(c *Crawler) {
		c.skip = fn
	}
}

// WithWakeup lets ch end the sleep between passes early.
func WithWakeup(ch <-chan struct{}) Option {
	return func(c *Crawler) {
		c.wake = ch
	}
}

func WithPassHook(fn func(PassSummary)) Option {
	return func(c *Crawler) {
		c.onPass = fn
	}
}

func New(cfg paths.Config, handler Handler, opts ...Option) *Crawler {
	c := &Crawler{
		cfg:      cfg,
		handler:  handler,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run repeats passes until ctx is cancelled. Cancellation is checked before
// each pass and before each entry; an entry being handled is always finished.
func (c *Crawler) Run(ctx context.Context) error {
	logger.Log.Info("crawler started",
		zap.String("hot", c.cfg.HotDir()),
		zap.Duration("interval", c.interval))

	for {
		if ctx.Err() != nil {
			logger.Log.Info("crawler stopping")
			return nil
		}

		if _, err := c.RunOnce(ctx); err != nil {
			logger.Log.Error("crawl pass failed",
				zap.String("hot", c.cfg.HotDir()),
				zap.Error(err))
		}

		if ctx.Err() != nil {
			logger.Log.Info("crawler stopping")
			return nil
		}

		c.sleep(ctx)
	}
}

// RunOnce walks the hot folder once.
func (c *Crawler) RunOnce(ctx context.Context) (PassSummary, error) {
	summary := PassSummary{
		StartedAt: time.Now(),
		Actions:   make(map[model.Action]int),
	}

	root := c.cfg.HotDir()
	err := afero.Walk(c.cfg.Fs(), root, func(path string, info os.FileInfo, err error) error {
		if ctx.Err() != nil {
			return errPassStopped
		}

		if err != nil {
			if path == root {
				return err
			}
			logger.Log.Warn("failed to list entry",
				zap.String("path", path),
				zap.Error(err))
			return nil
		}

		if path == root {
			return nil
		}

		// A backup folder nested in the hot folder must not back itself up.
		if info.IsDir() && c.cfg.InBackupDir(path) {
			return filepath.SkipDir
		}

		if c.skip != nil && c.skip(path) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if pattern, ok := c.ignored(path, info); ok {
			logger.Log.Debug("ignored",
				zap.String("path", path),
				zap.String("pattern", pattern))
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		entry, err := c.cfg.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Log.Debug("entry vanished before processing",
					zap.String("path", path))
			} else {
				logger.Log.Warn("failed to stat entry",
					zap.String("path", path),
					zap.Error(err))
			}
			return nil
		}

		summary.add(c.handler.Handle(entry))
		return nil
	})

	summary.Duration = time.Since(summary.StartedAt)
	if errors.Is(err, errPassStopped) {
		summary.Stopped = true
		err = nil
	}

	if c.onPass != nil {
		c.onPass(summary)
	}

	if err != nil {
		return summary, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	logger.Log.Debug("pass complete",
		zap.Int("entries", summary.Entries),
		zap.Int("failed", summary.Failed),
		zap.Duration("took", summary.Duration))

	return summary, nil
}

func (c *Crawler) ignored(path string, info os.FileInfo) (string, bool) {
	if len(c.ignore) == 0 {
		return "", false
	}

	if info.Mode().IsRegular() && c.cfg.IsDeleteMarker(info.Name()) {
		return "", false
	}

	rel, err := filepath.Rel(c.cfg.HotDir(), path)
	if err != nil {
		rel = path
	}

	return matchIgnore(rel, c.ignore)
}

func (c *Crawler) sleep(ctx context.Context) {
	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			return
		case _, ok := <-c.wake:
			if !ok {
				c.wake = nil
				continue
			}
			logger.Log.Debug("change detected, starting pass early")
			return
		}
	}
}
