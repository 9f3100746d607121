// Package logqueue hands rendered log lines from any number of producers to
// the single log writer.
package logqueue

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO of log lines. Producers never block on file I/O:
// the queue lock is independent of the log file lock.
type Queue struct {
	mu    sync.Mutex
	lines []string
	ready chan struct{}
}

func New() *Queue {
	return &Queue{
		ready: make(chan struct{}, 1),
	}
}

// Enqueue appends line. It never drops a line.
func (q *Queue) Enqueue(line string) {
	q.mu.Lock()
	q.lines = append(q.lines, line)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// TryDequeue removes and returns the oldest line, or false when the queue is
// empty. It does not wait for new lines.
func (q *Queue) TryDequeue() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.lines) == 0 {
		return "", false
	}

	line := q.lines[0]
	q.lines[0] = ""
	q.lines = q.lines[1:]
	if len(q.lines) == 0 {
		q.lines = nil
	}

	return line, true
}

// Dequeue waits until a line is available or ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (string, error) {
	for {
		if line, ok := q.TryDequeue(); ok {
			return line, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-q.ready:
		}
	}
}

// Ready is signalled after an Enqueue. A single signal may stand for several
// lines, so consumers drain with TryDequeue until it reports empty.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lines)
}
