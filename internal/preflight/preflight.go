// Package preflight validates the hot and backup directories before any
// background worker starts.
package preflight

import (
	"errors"
	"fmt"
	"hotbackup/internal/logger"
	"hotbackup/internal/model"
	"hotbackup/internal/paths"
	"time"

	"go.uber.org/zap"
)

var (
	ErrHotDirMissing        = errors.New("hot folder does not exist, or is not a directory")
	ErrSameDirectory        = errors.New("hot folder is the same as backup folder")
	ErrBackupDirUncreatable = errors.New("unable to create backup folder")
)

const (
	DefaultCreateTimeout = 10 * time.Second
	createPollInterval   = 10 * time.Millisecond
	backupDirMode        = 0777
)

type Emitter interface {
	Emit(event model.LogEvent)
}

type options struct {
	createTimeout time.Duration
}

type Option func(*options)

// WithCreateTimeout bounds the wait for a freshly created backup folder to
// become visible.
func WithCreateTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.createTimeout = d
		}
	}
}

// Init checks that the hot folder exists, that it differs from the backup
// folder, and that the backup folder exists or can be created. A created
// backup folder is logged through emitter and opened up to all users.
func Init(cfg paths.Config, emitter Emitter, opts ...Option) error {
	o := options{createTimeout: DefaultCreateTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	if !cfg.HotDirExists() {
		return fmt.Errorf("%w: %s", ErrHotDirMissing, cfg.HotDir())
	}

	if cfg.SameDirectory() {
		return fmt.Errorf("%w: hot %s, backup %s", ErrSameDirectory, cfg.HotDir(), cfg.BackupDir())
	}

	return ensureBackupDir(cfg, emitter, o)
}

func ensureBackupDir(cfg paths.Config, emitter Emitter, o options) error {
	if cfg.BackupDirExists() {
		return nil
	}

	dir := cfg.BackupDir()
	if _, err := cfg.Stat(dir); err == nil {
		return fmt.Errorf("%w: %s exists and is not a directory", ErrBackupDirUncreatable, dir)
	}

	if err := cfg.Fs().MkdirAll(dir, backupDirMode); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBackupDirUncreatable, dir, err)
	}

	if !waitForDirectory(cfg, dir, o.createTimeout) {
		return fmt.Errorf("%w: %s did not appear after creation", ErrBackupDirUncreatable, dir)
	}

	emitter.Emit(model.NewCreatedEvent(dir))
	logger.Log.Info("backup folder created",
		zap.String("path", dir))

	// MkdirAll is subject to the umask.
	if err := cfg.Fs().Chmod(dir, backupDirMode); err != nil {
		logger.Log.Warn("failed to apply backup folder permissions",
			zap.String("path", dir),
			zap.Error(err))
	}

	return nil
}

func waitForDirectory(cfg paths.Config, dir string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if cfg.DirExists(dir) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(createPollInterval)
	}
}
