// Package logwriter persists queued log lines to the append-only log file.
package logwriter

import (
	"context"
	"fmt"
	"hotbackup/internal/logger"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	DefaultIdleWait  = 5 * time.Millisecond
	DefaultRetryWait = time.Millisecond
)

type Source interface {
	TryDequeue() (string, bool)
	Ready() <-chan struct{}
	Len() int
}

// Writer is the only consumer of its Source. Run and Drain must not be called
// concurrently.
type Writer struct {
	fs        afero.Fs
	path      string
	src       Source
	lock      *sync.RWMutex
	idleWait  time.Duration
	retryWait time.Duration

	// pending holds dequeued lines that could not be written before the
	// writer was stopped. It is written first on the next Run or Drain.
	pending []string
	written atomic.Int64
}

type Option func(*Writer)

func WithFs(fs afero.Fs) Option {
	return func(w *Writer) {
		w.fs = fs
	}
}

func WithIdleWait(d time.Duration) Option {
	return func(w *Writer) {
		if d > 0 {
			w.idleWait = d
		}
	}
}

func WithRetryWait(d time.Duration) Option {
	return func(w *Writer) {
		if d > 0 {
			w.retryWait = d
		}
	}
}

// New creates a writer appending to path. lock guards the log file and must be
// shared with every reader of the same file.
func New(path string, src Source, lock *sync.RWMutex, opts ...Option) *Writer {
	w := &Writer{
		fs:        afero.NewOsFs(),
		path:      path,
		src:       src,
		lock:      lock,
		idleWait:  DefaultIdleWait,
		retryWait: DefaultRetryWait,
	}
	for _, opt := range opts {
		opt(w)
	}

	return w
}

func (w *Writer) Path() string {
	return w.path
}

func (w *Writer) Written() int64 {
	return w.written.Load()
}

// Pending returns the number of lines not yet written. Like Drain, it must
// not be called while Run is active.
func (w *Writer) Pending() int {
	return len(w.pending) + w.src.Len()
}

// Run writes lines until ctx is cancelled. Cancellation is observed between
// lines and between retries, never in the middle of a write.
func (w *Writer) Run(ctx context.Context) error {
	logger.Log.Info("log writer started",
		zap.String("path", w.path))

	for {
		if ctx.Err() != nil {
			logger.Log.Info("log writer stopping",
				zap.Int("pending", w.Pending()))
			return nil
		}

		line, ok := w.next()
		if !ok {
			w.idle(ctx)
			continue
		}

		if !w.deliver(ctx, line) {
			w.requeue(line)
		}
	}
}

// Drain writes everything still queued, retrying each line like Run does,
// until the queue is empty or ctx is done. It returns the number of lines
// left unwritten.
func (w *Writer) Drain(ctx context.Context) (int, error) {
	for {
		line, ok := w.next()
		if !ok {
			return 0, nil
		}

		if !w.deliver(ctx, line) {
			w.requeue(line)
			return w.Pending(), ctx.Err()
		}
	}
}

func (w *Writer) next() (string, bool) {
	if len(w.pending) > 0 {
		line := w.pending[0]
		w.pending = w.pending[1:]
		return line, true
	}

	return w.src.TryDequeue()
}

func (w *Writer) requeue(line string) {
	w.pending = append([]string{line}, w.pending...)
}

func (w *Writer) idle(ctx context.Context) {
	timer := time.NewTimer(w.idleWait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-w.src.Ready():
	case <-timer.C:
	}
}

// deliver retries line until it is written or ctx is done. The line is never
// dropped: a false return leaves it with the caller.
func (w *Writer) deliver(ctx context.Context, line string) bool {
	for attempt := 1; ; attempt++ {
		appended, err := w.writeLine(line)
		if appended {
			// Retrying would append the line a second time.
			if err != nil {
				logger.Log.Warn("log line appended but not flushed",
					zap.String("path", w.path),
					zap.Error(err))
			}
			w.written.Add(1)
			return true
		}

		logger.Log.Debug("log write failed, retrying",
			zap.String("path", w.path),
			zap.Int("attempt", attempt),
			zap.Error(err))

		timer := time.NewTimer(w.retryWait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}

// writeLine opens, appends, syncs and closes the log file for a single line,
// so a crash loses at most the lines still queued. appended reports whether
// the line reached the file, even when a later sync or close failed.
func (w *Writer) writeLine(line string) (appended bool, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	f, err := w.fs.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, fmt.Errorf("failed to open log file: %w", err)
	}

	if _, err := f.WriteString(line + "\n"); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("failed to append log line: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		return true, fmt.Errorf("failed to sync log file: %w", err)
	}

	if err := f.Close(); err != nil {
		return true, fmt.Errorf("failed to close log file: %w", err)
	}

	return true, nil
}
