package cmd

import (
	"hotbackup/internal/db"
	"hotbackup/internal/logger"
	"hotbackup/internal/logqueue"
	"hotbackup/internal/logreader"
	"hotbackup/internal/paths"
	"hotbackup/internal/preflight"
	"hotbackup/internal/repository"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// environment is everything a run needs once the folders have been checked.
type environment struct {
	paths  paths.Config
	queue  *logqueue.Queue
	lock   *sync.RWMutex
	reader *logreader.Reader
}

func prepare(fs afero.Fs, hot, backup string) (*environment, error) {
	pc, err := paths.New(fs, hot, backup,
		paths.WithBackupSuffix(cfg.BackupSuffix),
		paths.WithDeletePrefix(cfg.DeletePrefix))
	if err != nil {
		return nil, envFailure(err)
	}

	q := logqueue.New()
	if err := preflight.Init(pc, logqueue.NewEmitter(q),
		preflight.WithCreateTimeout(cfg.CreateTimeout)); err != nil {
		return nil, envFailure(err)
	}

	lock := &sync.RWMutex{}
	return &environment{
		paths:  pc,
		queue:  q,
		lock:   lock,
		reader: logreader.New(fs, cfg.LogFile, lock),
	}, nil
}

// openHistory opens the history store. Backups run without it when db_path
// is empty or the store cannot be opened.
func openHistory() (*repository.HistoryRepository, func()) {
	if cfg.DBPath == "" {
		return nil, func() {}
	}

	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Log.Warn("history disabled",
			zap.String("path", cfg.DBPath),
			zap.Error(err))
		return nil, func() {}
	}

	return repository.NewHistoryRepository(conn), func() {
		if err := db.Close(conn); err != nil {
			logger.Log.Warn("failed to close history db",
				zap.Error(err))
		}
	}
}
