// Package syncer decides, per hot folder entry, whether to skip it, delete
// it together with its backup, or create or refresh its backup copy.
package syncer

import (
	"errors"
	"hotbackup/internal/model"
)

var ErrDestinationExists = errors.New("backup destination already exists")

// Emitter receives one log event per state-changing action.
type Emitter interface {
	Emit(event model.LogEvent)
}

// Recorder receives every outcome that is not a plain skip.
type Recorder interface {
	Record(result model.SyncResult)
}

type Recorders []Recorder

func (rs Recorders) Record(result model.SyncResult) {
	for _, r := range rs {
		r.Record(result)
	}
}
