package services

import (
	"context"
	"sync"
)

// inflight counts running background work. Waiters block on a channel that
// is closed whenever the count drops to zero and replaced when work starts
// again, so starting work never races with a waiter.
type inflight struct {
	mu     sync.Mutex
	n      int
	idle   chan struct{}
	closed bool
}

func newInflight() *inflight {
	idle := make(chan struct{})
	close(idle)
	return &inflight{idle: idle}
}

// start registers one unit of work. Returns false once close has been called.
func (f *inflight) start() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	if f.n == 0 {
		f.idle = make(chan struct{})
	}
	f.n++
	return true
}

// finish marks one unit of work done.
func (f *inflight) finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n--
	if f.n == 0 {
		close(f.idle)
	}
}

// count returns the number of running units.
func (f *inflight) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

// wait blocks until no work is running or ctx is done.
func (f *inflight) wait(ctx context.Context) error {
	f.mu.Lock()
	idle := f.idle
	f.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close refuses new work and waits for running work to finish.
func (f *inflight) close() {
	f.mu.Lock()
	f.closed = true
	idle := f.idle
	f.mu.Unlock()
	<-idle
}
