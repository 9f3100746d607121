package logqueue

import (
	"hotbackup/internal/logger"
	"hotbackup/internal/model"
	"time"

	"go.uber.org/zap"
)

// Emitter renders log events and enqueues them.
type Emitter struct {
	q   *Queue
	now func() time.Time
}

type EmitterOption func(*Emitter)

func WithClock(now func() time.Time) EmitterOption {
	return func(e *Emitter) {
		e.now = now
	}
}

func NewEmitter(q *Queue, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		q:   q,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Emitter) Emit(event model.LogEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now()
	}

	line := event.Line()
	e.q.Enqueue(line)

	logger.Log.Debug("log event queued",
		zap.String("action", string(event.Action)),
		zap.String("line", line))
}
