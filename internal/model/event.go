package model

import (
	"strings"
	"time"
)

type Action string

const (
	ActionSkip    Action = "SKIP"
	ActionCreated Action = "CREATED"
	ActionBackup  Action = "BACKUP"
	ActionUpdate  Action = "UPDATE"
	ActionDelete  Action = "DELETE"
)

// TimeLayout is used for every log line. Timestamps are rendered in UTC, so
// the offset is always +00:00.
const TimeLayout = "2006-01-02T15:04:05-07:00"

var phrases = map[Action]string{
	ActionCreated: " was created",
	ActionBackup:  " was backed up to: ",
	ActionUpdate:  " was updated",
	ActionDelete:  " was deleted",
}

func (a Action) Phrase() string {
	return phrases[a]
}

// LogEvent is one durable record of a state-changing action.
// Target is only rendered for ActionBackup.
type LogEvent struct {
	Timestamp time.Time
	Action    Action
	Subject   string
	Target    string
}

func NewBackupEvent(src, dst string) LogEvent {
	return LogEvent{Action: ActionBackup, Subject: src, Target: dst}
}

// NewUpdateEvent names the refreshed backup copy, not the source file.
func NewUpdateEvent(dst string) LogEvent {
	return LogEvent{Action: ActionUpdate, Subject: dst}
}

func NewDeleteEvent(path string) LogEvent {
	return LogEvent{Action: ActionDelete, Subject: path}
}

func NewCreatedEvent(path string) LogEvent {
	return LogEvent{Action: ActionCreated, Subject: path}
}

func (e LogEvent) Line() string {
	var b strings.Builder
	b.WriteString(e.Timestamp.UTC().Format(TimeLayout))
	b.WriteByte(' ')
	b.WriteString(e.Subject)
	b.WriteString(e.Action.Phrase())
	if e.Action == ActionBackup {
		b.WriteString(e.Target)
	}

	return b.String()
}

// SyncResult is the outcome of one engine decision.
type SyncResult struct {
	Entry   Entry
	Action  Action
	SrcPath string
	DstPath string
	Err     error
}

func (r SyncResult) Skipped() bool {
	return r.Action == ActionSkip && r.Err == nil
}
