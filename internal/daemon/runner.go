package daemon

import (
	"context"
	"errors"
	"fmt"
	"hotbackup/internal/config"
	"hotbackup/internal/crawler"
	"hotbackup/internal/logger"
	"hotbackup/internal/logqueue"
	"hotbackup/internal/logwriter"
	"hotbackup/internal/metrics"
	"hotbackup/internal/model"
	"hotbackup/internal/paths"
	"hotbackup/internal/syncer"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrAlreadyStarted = errors.New("runner already started")

// Runner owns the two background workers: the crawler feeding the engine and
// the log writer draining the queue.
type Runner struct {
	cfg       *config.Config
	paths     paths.Config
	queue     *logqueue.Queue
	writer    *logwriter.Writer
	engine    *syncer.Engine
	state     *State
	metrics   *metrics.Metrics
	recorders syncer.Recorders

	mu          sync.Mutex
	started     bool
	watcher     *crawler.Watcher
	crawlGroup  errgroup.Group
	writerGroup errgroup.Group
	stopCrawl   context.CancelFunc
	stopWriter  context.CancelFunc
}

type Option func(*Runner)

// WithRecorder adds r to the receivers of engine outcomes.
func WithRecorder(r syncer.Recorder) Option {
	return func(rn *Runner) {
		rn.recorders = append(rn.recorders, r)
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(rn *Runner) {
		rn.metrics = m
	}
}

// NewRunner wires the engine, crawler and writer. fileLock guards the log
// file and must be shared with any log reader.
func NewRunner(cfg *config.Config, pc paths.Config, q *logqueue.Queue, fileLock *sync.RWMutex, opts ...Option) *Runner {
	r := &Runner{
		cfg:   cfg,
		paths: pc,
		queue: q,
		state: NewState(pc.HotDir(), pc.BackupDir()),
	}
	r.recorders = syncer.Recorders{r.state}
	for _, opt := range opts {
		opt(r)
	}

	if r.metrics != nil {
		r.recorders = append(r.recorders, r.metrics)
	}

	r.writer = logwriter.New(cfg.LogFile, q, fileLock,
		logwriter.WithFs(pc.Fs()),
		logwriter.WithIdleWait(cfg.WriterIdleWait),
		logwriter.WithRetryWait(cfg.WriterRetryWait))

	r.engine = syncer.New(pc, logqueue.NewEmitter(q), syncer.WithRecorder(r.recorders))

	if r.metrics != nil {
		r.metrics.WatchLogPipeline(q.Len, r.writer.Written)
	}

	return r
}

func (r *Runner) newCrawler(wake <-chan struct{}) *crawler.Crawler {
	return crawler.New(r.paths, r.engine,
		crawler.WithInterval(r.cfg.PollInterval),
		crawler.WithIgnoreList(r.cfg.IgnoreList),
		crawler.WithSkip(r.unwatched),
		crawler.WithWakeup(wake),
		crawler.WithPassHook(r.onPass))
}

func (r *Runner) onPass(summary crawler.PassSummary) {
	r.state.RecordPass(summary)
	if r.metrics != nil {
		r.metrics.ObservePass(summary.Duration)
	}
}

// Start launches the log writer and the crawler in the background.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true

	r.startWriter(ctx)

	var wake <-chan struct{}
	if r.cfg.Watch {
		wake = r.startWatcher()
	}

	c := r.newCrawler(wake)
	crawlCtx, cancel := context.WithCancel(ctx)
	r.stopCrawl = cancel
	r.crawlGroup.Go(func() error {
		return c.Run(crawlCtx)
	})

	logger.Log.Info("backup started",
		zap.String("hot", r.paths.HotDir()),
		zap.String("backup", r.paths.BackupDir()),
		zap.String("log", r.writer.Path()))

	return nil
}

func (r *Runner) startWatcher() <-chan struct{} {
	w, err := crawler.NewWatcher(r.cfg.BufferSize, r.unwatched)
	if err != nil {
		logger.Log.Warn("watcher unavailable, polling only",
			zap.Error(err))
		return nil
	}

	if err := w.Watch(r.paths.HotDir()); err != nil {
		w.Stop()
		logger.Log.Warn("watcher unavailable, polling only",
			zap.Error(err))
		return nil
	}

	r.watcher = w
	return crawler.Debounce(w.Changes(), r.cfg.Debounce)
}

// unwatched keeps the runner's own writes out of the crawl and from waking
// the crawler when the backup folder or the log file sits inside the hot
// folder.
func (r *Runner) unwatched(path string) bool {
	if r.paths.InBackupDir(path) {
		return true
	}

	logPath, err := filepath.Abs(r.writer.Path())
	return err == nil && path == logPath
}

func (r *Runner) startWriter(ctx context.Context) {
	writerCtx, cancel := context.WithCancel(ctx)
	r.stopWriter = cancel
	r.writerGroup.Go(func() error {
		return r.writer.Run(writerCtx)
	})
}

// Stop cancels the crawler and waits for the entry in progress to finish,
// then stops the writer. With drain_on_shutdown set, every line still queued
// is written before Stop returns, bounded by drain_timeout and ctx.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return nil
	}
	r.started = false

	if r.stopCrawl != nil {
		r.stopCrawl()
	}
	if r.watcher != nil {
		r.watcher.Stop()
		r.watcher = nil
	}
	crawlErr := r.crawlGroup.Wait()

	return errors.Join(crawlErr, r.finishWriter(ctx))
}

func (r *Runner) finishWriter(ctx context.Context) error {
	r.stopWriter()
	if err := r.writerGroup.Wait(); err != nil {
		return err
	}

	if !r.cfg.DrainOnShutdown {
		if left := r.writer.Pending(); left > 0 {
			logger.Log.Warn("log lines not written, drain disabled",
				zap.Int("lines", left))
		}
		return nil
	}

	drainCtx, cancel := context.WithTimeout(ctx, r.cfg.DrainTimeout)
	defer cancel()

	left, err := r.writer.Drain(drainCtx)
	if err != nil {
		logger.Log.Warn("log drain incomplete",
			zap.Int("lines", left),
			zap.Error(err))
		return fmt.Errorf("%d log lines not written: %w", left, err)
	}

	return nil
}

// RunOnce performs a single pass with the writer running, then finishes the
// writer the same way Stop does.
func (r *Runner) RunOnce(ctx context.Context) (crawler.PassSummary, error) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return crawler.PassSummary{}, ErrAlreadyStarted
	}
	r.started = true
	r.startWriter(ctx)
	r.mu.Unlock()

	summary, passErr := r.newCrawler(nil).RunOnce(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = false

	return summary, errors.Join(passErr, r.finishWriter(ctx))
}

func (r *Runner) Snapshot() model.RunSnapshot {
	snap := r.state.Snapshot()
	snap.QueueDepth = r.queue.Len()
	snap.LinesWritten = r.writer.Written()
	return snap
}
