package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogEventLine(t *testing.T) {
	ts := time.Date(2024, 2, 12, 12, 20, 55, 0, time.UTC)

	tests := []struct {
		name  string
		event LogEvent
		want  string
	}{
		{
			name:  "backup names source and destination",
			event: NewBackupEvent("/hot/a.txt", "/backup/a.txt.bak"),
			want:  "2024-02-12T12:20:55+00:00 /hot/a.txt was backed up to: /backup/a.txt.bak",
		},
		{
			name:  "update names the backup copy",
			event: NewUpdateEvent("/backup/a.txt.bak"),
			want:  "2024-02-12T12:20:55+00:00 /backup/a.txt.bak was updated",
		},
		{
			name:  "delete",
			event: NewDeleteEvent("/hot/delete_a.txt"),
			want:  "2024-02-12T12:20:55+00:00 /hot/delete_a.txt was deleted",
		},
		{
			name:  "created",
			event: NewCreatedEvent("/backup"),
			want:  "2024-02-12T12:20:55+00:00 /backup was created",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.event.Timestamp = ts
			assert.Equal(t, tt.want, tt.event.Line())
		})
	}
}

func TestLogEventLineRendersUTC(t *testing.T) {
	zone := time.FixedZone("CET", 3600)
	event := NewDeleteEvent("/hot/delete_x")
	event.Timestamp = time.Date(2024, 2, 12, 13, 20, 55, 0, zone)

	assert.Equal(t, "2024-02-12T12:20:55+00:00 /hot/delete_x was deleted", event.Line())
}

func TestSyncResultSkipped(t *testing.T) {
	assert.True(t, SyncResult{Action: ActionSkip}.Skipped())
	assert.False(t, SyncResult{Action: ActionSkip, Err: assert.AnError}.Skipped())
	assert.False(t, SyncResult{Action: ActionBackup}.Skipped())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "dir", KindDir.String())
	assert.Equal(t, "other", KindOther.String())
}
