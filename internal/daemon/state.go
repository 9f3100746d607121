package daemon

import (
	"hotbackup/internal/crawler"
	"hotbackup/internal/model"
	"sync"
	"time"
)

type State struct {
	mu        sync.RWMutex
	hotDir    string
	backupDir string
	startedAt time.Time
	passes    int
	backedUp  int
	updated   int
	deleted   int
	failed    int
	lastPass  *time.Time
	lastSync  *time.Time
}

func NewState(hotDir, backupDir string) *State {
	return &State{
		hotDir:    hotDir,
		backupDir: backupDir,
		startedAt: time.Now(),
	}
}

func (s *State) Record(result model.SyncResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSync = new(time.Now())
	if result.Err != nil {
		s.failed++
		return
	}

	switch result.Action {
	case model.ActionBackup:
		s.backedUp++
	case model.ActionUpdate:
		s.updated++
	case model.ActionDelete:
		s.deleted++
	}
}

func (s *State) RecordPass(summary crawler.PassSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.passes++
	s.lastPass = new(summary.StartedAt.Add(summary.Duration))
}

func (s *State) Snapshot() model.RunSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return model.RunSnapshot{
		HotDir:    s.hotDir,
		BackupDir: s.backupDir,
		StartedAt: s.startedAt,
		Passes:    s.passes,
		BackedUp:  s.backedUp,
		Updated:   s.updated,
		Deleted:   s.deleted,
		Failed:    s.failed,
		LastPass:  s.lastPass,
		LastSync:  s.lastSync,
	}
}
