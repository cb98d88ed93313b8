// Package waitqueue implements the ordered set of callers blocked on an
// exhausted pool. Waiters are woken in registration order, and cancelling a
// waiter is O(1): the caller flips a flag on its own record and the queue
// discards dead entries lazily the next time it pops.
package waitqueue

import (
	"sync/atomic"
	"time"
)

// Waiter states. A waiter moves from pending to exactly one of notified or
// cancelled; the transition is decided by a single compare-and-swap.
const (
	statePending int32 = iota
	stateNotified
	stateCancelled
)

// Waiter is the parking record for one blocked caller. It is shared by
// reference between the queue (for ordered wakeup) and the caller's own stack
// frame (for cancellation); both sides observe the same state word.
type Waiter struct {
	seq        uint64
	enqueuedAt time.Time
	state      atomic.Int32
	ready      chan struct{}
}

// Sequence returns the waiter's registration order within its queue.
func (w *Waiter) Sequence() uint64 { return w.seq }

// EnqueuedAt returns the time the waiter was pushed onto the queue.
func (w *Waiter) EnqueuedAt() time.Time { return w.enqueuedAt }

// Ready returns the channel closed when the waiter is notified. The close is
// a hint that capacity may be available, not a guarantee: a racing caller may
// have taken the slot already.
func (w *Waiter) Ready() <-chan struct{} { return w.ready }

// Notify marks the waiter as woken and closes its ready channel. It reports
// false if the waiter was already notified or cancelled, in which case the
// wakeup should be given to another waiter.
func (w *Waiter) Notify() bool {
	if !w.state.CompareAndSwap(statePending, stateNotified) {
		return false
	}
	close(w.ready)
	return true
}

// Cancel marks the waiter as abandoned without touching the queue. It reports
// false if a notification won the race, meaning the caller consumed a wakeup
// it no longer wants and must pass it on.
func (w *Waiter) Cancel() bool {
	return w.state.CompareAndSwap(statePending, stateCancelled)
}

// Cancelled reports whether the waiter was cancelled.
func (w *Waiter) Cancelled() bool { return w.state.Load() == stateCancelled }

// Queue holds waiters in registration order. It is not synchronized; the
// owning pool guards it with its own mutex, the same way container/heap
// leaves locking to the caller.
type Queue struct {
	waiters []*Waiter
	nextSeq uint64
}

// Push registers a new waiter at the tail of the queue and returns it.
func (q *Queue) Push() *Waiter {
	q.nextSeq++
	w := &Waiter{
		seq:        q.nextSeq,
		enqueuedAt: time.Now(),
		ready:      make(chan struct{}),
	}
	q.waiters = append(q.waiters, w)
	return w
}

// Len returns the number of entries still in the queue, including entries
// whose waiter has been cancelled but not yet popped.
func (q *Queue) Len() int { return len(q.waiters) }

// NotifyOne pops entries in sequence order until one accepts the wakeup,
// discarding cancelled entries without notification. It reports whether a
// live waiter was woken. Each entry is popped at most once over its lifetime,
// so the cost is amortized O(1) per wakeup regardless of how many waiters
// have timed out in the meantime.
func (q *Queue) NotifyOne() bool {
	for len(q.waiters) > 0 {
		w := q.pop()
		if w.Notify() {
			return true
		}
	}
	return false
}

// NotifyAll wakes every remaining live waiter and empties the queue. It
// returns the number of waiters actually woken.
func (q *Queue) NotifyAll() int {
	var woken int
	for len(q.waiters) > 0 {
		if q.pop().Notify() {
			woken++
		}
	}
	return woken
}

func (q *Queue) pop() *Waiter {
	w := q.waiters[0]
	q.waiters[0] = nil
	q.waiters = q.waiters[1:]
	if len(q.waiters) == 0 {
		q.waiters = nil
	}
	return w
}
