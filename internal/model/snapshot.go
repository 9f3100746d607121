package model

import "time"

type RunSnapshot struct {
	HotDir       string     `json:"hot_dir"`
	BackupDir    string     `json:"backup_dir"`
	StartedAt    time.Time  `json:"started_at"`
	Passes       int        `json:"passes"`
	BackedUp     int        `json:"backed_up"`
	Updated      int        `json:"updated"`
	Deleted      int        `json:"deleted"`
	Failed       int        `json:"failed"`
	LastPass     *time.Time `json:"last_pass"`
	LastSync     *time.Time `json:"last_sync"`
	QueueDepth   int        `json:"queue_depth"`
	LinesWritten int64      `json:"lines_written"`
}
