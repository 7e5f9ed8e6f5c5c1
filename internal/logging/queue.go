package logging

import (
	"context"
	"sync"
)

// entry is one queued log line.
type entry struct {
	level Level
	msg   string
	args  []any
}

// Queue decouples log producers from the goroutine that owns the
// destination handle, the way original_source's func/logger.py pairs a
// QueueHandler (never blocks on I/O) with a QueueListener goroutine that
// drains it. Close is this pipeline's log-queue shutdown sentinel: it
// stops accepting new records, drains whatever is already buffered, and
// only then returns, so no line queued before shutdown is lost.
type Queue struct {
	logger *Logger
	ch     chan entry
	done   chan struct{}
	once   sync.Once
}

// NewQueue starts a Queue backed by logger, buffering up to size records.
func NewQueue(logger *Logger, size int) *Queue {
	if size <= 0 {
		size = 256
	}
	q := &Queue{
		logger: logger,
		ch:     make(chan entry, size),
		done:   make(chan struct{}),
	}
	go q.drain()
	return q
}

func (q *Queue) drain() {
	defer close(q.done)
	for e := range q.ch {
		switch e.level {
		case LevelDebug:
			q.logger.Debug(e.msg, e.args...)
		case LevelWarn:
			q.logger.Warn(e.msg, e.args...)
		case LevelError:
			q.logger.Error(e.msg, e.args...)
		default:
			q.logger.Info(e.msg, e.args...)
		}
	}
}

func (q *Queue) enqueue(level Level, msg string, args ...any) {
	select {
	case q.ch <- entry{level: level, msg: msg, args: args}:
	default:
		// Queue full: drop rather than block the caller's hot path. The
		// listener is the only consumer; logging must never become a
		// back-pressure source for the encode pipeline.
	}
}

// Debug enqueues a debug-level record.
func (q *Queue) Debug(msg string, args ...any) { q.enqueue(LevelDebug, msg, args...) }

// Info enqueues an info-level record.
func (q *Queue) Info(msg string, args ...any) { q.enqueue(LevelInfo, msg, args...) }

// Warn enqueues a warn-level record.
func (q *Queue) Warn(msg string, args ...any) { q.enqueue(LevelWarn, msg, args...) }

// Error enqueues an error-level record.
func (q *Queue) Error(msg string, args ...any) { q.enqueue(LevelError, msg, args...) }

// Close stops accepting new records and blocks until the listener has
// drained everything already buffered, or ctx is done first.
func (q *Queue) Close(ctx context.Context) {
	q.once.Do(func() { close(q.ch) })
	select {
	case <-q.done:
	case <-ctx.Done():
	}
}

// Global queue instance, returned by GlobalQueue. The package-level
// Debug/Info/Warn/Error helpers in logger.go do not go through it; they
// log directly via Global(). Callers that log through this queue enqueue
// without blocking on the shared stderr handle.
var (
	globalQueue     *Queue
	globalQueueOnce sync.Once
)

// GlobalQueue returns the process-wide log queue, creating it from the
// current Global logger on first use.
func GlobalQueue() *Queue {
	globalQueueOnce.Do(func() {
		globalQueue = NewQueue(Global(), 256)
	})
	return globalQueue
}

// CloseGlobalQueue drains and stops the process-wide log queue. Safe to
// call even if GlobalQueue was never touched.
func CloseGlobalQueue(ctx context.Context) {
	if globalQueue != nil {
		globalQueue.Close(ctx)
	}
}
