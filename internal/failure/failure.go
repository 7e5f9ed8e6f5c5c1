// Package failure implements the process-wide failure flag that every
// pipeline stage watches at its blocking points (spec.md §4.L).
package failure

import (
	"sync"
	"sync/atomic"
)

// Flag is a shared, concurrency-safe failure signal. The first error set
// wins; later Set calls are no-ops so the original cause survives.
type Flag struct {
	err  atomic.Pointer[error]
	once sync.Once
	done chan struct{}
}

// New returns a ready-to-use Flag.
func New() *Flag {
	return &Flag{done: make(chan struct{})}
}

// Set records err as the failure cause, if none is set yet, and
// broadcasts to any Done() waiters. Safe to call from any goroutine.
func (f *Flag) Set(err error) {
	if err == nil {
		return
	}
	f.err.CompareAndSwap(nil, &err)
	f.once.Do(func() { close(f.done) })
}

// IsSet reports whether a failure has been recorded.
func (f *Flag) IsSet() bool {
	return f.err.Load() != nil
}

// Err returns the first recorded failure, or nil if none.
func (f *Flag) Err() error {
	if p := f.err.Load(); p != nil {
		return *p
	}
	return nil
}

// Done returns a channel that closes the first time Set is called,
// for use in select alongside queue sends/receives.
func (f *Flag) Done() <-chan struct{} {
	return f.done
}
