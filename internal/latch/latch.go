// Package latch provides a resettable countdown latch.
//
// A Latch gates waiters until its count reaches zero. Unlike sync.WaitGroup
// it can be re-armed for a new round with Reset, and waiters can select on
// Done alongside a context.
package latch

import (
	"errors"
	"sync"
)

// ErrNegativeCount is returned by New and Reset for counts below zero.
var ErrNegativeCount = errors.New("latch: negative count")

// Latch is a counter that releases waiters when it reaches zero.
// Thread-safe: all methods may be called from any goroutine.
type Latch struct {
	mu    sync.Mutex
	count int
	done  chan struct{}
}

// New creates a latch armed with count. A zero count is already released.
func New(count int) (*Latch, error) {
	l := &Latch{}
	if err := l.Reset(count); err != nil {
		return nil, err
	}
	return l, nil
}

// Reset re-arms the latch with count and replaces the Done channel.
//
// Callers must only reset when no party from the previous round can still
// call CountDown; a late decrement would otherwise be charged to the new round.
func (l *Latch) Reset(count int) error {
	if count < 0 {
		return ErrNegativeCount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.count = count
	l.done = make(chan struct{})
	if count == 0 {
		close(l.done)
	}
	return nil
}

// CountDown decrements the count by one and releases waiters when it hits zero.
// Returns false if the latch was already released (extra decrements are ignored).
func (l *Latch) CountDown() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count == 0 {
		return false
	}
	l.count--
	if l.count == 0 {
		close(l.done)
	}
	return true
}

// Count returns the number of outstanding decrements.
func (l *Latch) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Done returns a channel closed when the current round reaches zero.
// The channel belongs to the round that was armed when Done was called.
func (l *Latch) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}

// Wait blocks until the current round reaches zero.
func (l *Latch) Wait() {
	<-l.Done()
}
