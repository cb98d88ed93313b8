// Package pool implements a bounded pool of database connections with a
// spin-then-park acquire protocol and O(1) lazy cancellation of waiters.
//
// All slot and queue bookkeeping happens inside one short critical section;
// blocking work (connect, validate, close) always runs outside it so a slow
// backend cannot starve unrelated callers.
package pool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/yuku/dbpool/driver"
	"github.com/yuku/dbpool/internal/waitqueue"
	"go.uber.org/zap"
)

const (
	// spinAttempts bounds how many times a contended acquire retries the
	// fast path before parking. Spinning resolves the common race where a
	// slot is about to be released without paying a suspend/resume cost,
	// at the price of letting a late arrival occasionally beat an older,
	// already-parked waiter. Ordering is approximate FIFO, not a guarantee.
	spinAttempts = 4

	// connectRetries bounds the exponential backoff applied to each initial
	// connection at construction time. Growth during Acquire never retries:
	// that failure belongs to the caller that triggered it.
	connectRetries = 2
)

// Pool is a bounded pool of driver connections. It is safe for concurrent
// use. Each instance is self-contained and independently closable.
type Pool struct {
	conf Config
	log  *zap.Logger

	// mu guards slots, reserved, queue, and closed. It is only ever held
	// for pure metadata mutation.
	mu       sync.Mutex
	slots    []*slot
	reserved int
	queue    waitqueue.Queue
	closed   bool

	metrics metrics
}

// New creates a pool and eagerly establishes MinConns connections. Initial
// connects are retried with exponential backoff before the constructor gives
// up and returns a ConnectError.
func New(ctx context.Context, conf Config) (*Pool, error) {
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pool configuration: %w", err)
	}

	log := conf.Logger
	if log == nil {
		log = zap.NewNop()
	}

	p := &Pool{conf: conf, log: log}
	for i := 0; i < conf.MinConns; i++ {
		conn, err := p.connectWithRetry(ctx)
		if err != nil {
			p.Close()
			return nil, &ConnectError{Err: err}
		}
		p.slots = append(p.slots, newSlot(conn))
	}
	return p, nil
}

func (p *Pool) connectWithRetry(ctx context.Context) (driver.Conn, error) {
	var conn driver.Conn
	op := func() error {
		c, err := p.conf.Driver.Connect(ctx, p.conf.DSN)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), connectRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}
	return conn, nil
}

// Acquire checks a connection out of the pool. It blocks until a connection
// is available, the context is done, or the pool closes. When ctx carries no
// deadline and the pool has a default acquire timeout, that timeout applies.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	if p.conf.AcquireTimeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.conf.AcquireTimeout)
			defer cancel()
		}
	}

	c, _, err := p.tryAcquire(ctx, false)
	if err != nil {
		return nil, err
	}
	if c != nil {
		p.metrics.acquires.Add(1)
		return c, nil
	}
	return p.acquireSlow(ctx)
}

// tryAcquire is the fast path: hand out the first idle slot, validating it
// first when it has been idle past the health check interval, or grow the
// pool by one reserved connection when capacity remains. With enqueue set, a
// definitive miss atomically registers a waiter under the same lock so a
// release racing with registration can never be lost.
//
// It returns exactly one of: a connection, a registered waiter (only when
// enqueue is set), an error, or nothing (miss with enqueue unset).
func (p *Pool) tryAcquire(ctx context.Context, enqueue bool) (*Conn, *waitqueue.Waiter, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, nil, ErrClosed
		}

		if s := p.idleSlotLocked(); s != nil {
			s.inUse = true
			s.gen++
			gen := s.gen
			stale := p.conf.HealthCheckInterval > 0 &&
				time.Since(s.lastUsedAt) > p.conf.HealthCheckInterval &&
				time.Since(s.lastValidatedAt) > p.conf.HealthCheckInterval
			p.mu.Unlock()

			if stale {
				if !s.conn.Validate(ctx) {
					p.discardSlot(s)
					continue
				}
				s.lastValidatedAt = time.Now()
			}
			return &Conn{pool: p, slot: s, gen: gen}, nil, nil
		}

		if len(p.slots)+p.reserved < p.conf.MaxConns {
			p.reserved++
			p.mu.Unlock()
			c, err := p.grow(ctx)
			return c, nil, err
		}

		if !enqueue {
			p.mu.Unlock()
			return nil, nil, nil
		}
		w := p.queue.Push()
		p.mu.Unlock()
		return nil, w, nil
	}
}

func (p *Pool) idleSlotLocked() *slot {
	for _, s := range p.slots {
		if !s.inUse {
			return s
		}
	}
	return nil
}

// grow establishes one new connection against a reservation taken by
// tryAcquire. The reservation keeps concurrent growth within MaxConns while
// the slow connect runs outside the lock. On failure the reservation is
// released and one waiter is woken, since capacity is available again.
func (p *Pool) grow(ctx context.Context) (*Conn, error) {
	conn, err := p.conf.Driver.Connect(ctx, p.conf.DSN)

	p.mu.Lock()
	p.reserved--
	if err != nil {
		p.queue.NotifyOne()
		p.mu.Unlock()
		return nil, &ConnectError{Err: err}
	}
	if p.closed {
		p.mu.Unlock()
		p.closeConn(conn)
		return nil, ErrClosed
	}
	s := newSlot(conn)
	s.inUse = true
	s.gen++
	p.slots = append(p.slots, s)
	p.mu.Unlock()

	return &Conn{pool: p, slot: s, gen: s.gen}, nil
}

// discardSlot removes a slot whose connection failed validation. Removing a
// slot frees capacity, so one waiter is woken.
func (p *Pool) discardSlot(s *slot) {
	p.mu.Lock()
	if i := slices.Index(p.slots, s); i >= 0 {
		p.slots = slices.Delete(p.slots, i, i+1)
	}
	p.queue.NotifyOne()
	p.mu.Unlock()

	p.log.Warn("discarding connection that failed validation",
		zap.String("slot_id", s.id.String()),
		zap.Duration("age", time.Since(s.createdAt)),
	)
	p.closeConn(s.conn)
}

// acquireSlow handles a fast-path miss: spin briefly, then register a waiter
// and park until notified, timed out, or closed. A notification is a hint
// only; the fast path is re-run and may miss again, in which case a fresh
// waiter is registered.
func (p *Pool) acquireSlow(ctx context.Context) (*Conn, error) {
	start := time.Now()

	for i := 0; i < spinAttempts; i++ {
		runtime.Gosched()
		if ctx.Err() != nil {
			return nil, p.waitAborted(ctx, start, false)
		}
		c, _, err := p.tryAcquire(ctx, false)
		if err != nil {
			return nil, err
		}
		if c != nil {
			return p.waitDone(c, start, false), nil
		}
	}

	parked := false
	for {
		c, w, err := p.tryAcquire(ctx, true)
		if err != nil {
			return nil, err
		}
		if c != nil {
			return p.waitDone(c, start, parked), nil
		}

		parked = true
		select {
		case <-w.Ready():
			// Hint that capacity may be free; loop and retry.
		case <-ctx.Done():
			if !w.Cancel() {
				// A notification won the race for this waiter, so the
				// wakeup it carried must be handed to the next one.
				p.mu.Lock()
				p.queue.NotifyOne()
				p.mu.Unlock()
			}
			return nil, p.waitAborted(ctx, start, true)
		}
	}
}

func (p *Pool) waitDone(c *Conn, start time.Time, parked bool) *Conn {
	p.metrics.recordWait(start, parked)
	p.metrics.acquires.Add(1)
	return c
}

func (p *Pool) waitAborted(ctx context.Context, start time.Time, parked bool) error {
	p.metrics.recordWait(start, parked)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		p.metrics.timeouts.Add(1)
		return ErrAcquireTimeout
	}
	return ctx.Err()
}

// release returns a slot to the pool and wakes at most one live waiter.
// Releasing a slot twice or releasing a connection the pool does not own is
// a logged warning, never an error.
func (p *Pool) release(s *slot, gen uint64) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		// Close already destroyed every slot, including held ones.
		return
	}
	if !slices.Contains(p.slots, s) {
		p.mu.Unlock()
		p.log.Warn("release of a connection this pool does not own",
			zap.String("slot_id", s.id.String()),
		)
		return
	}
	if !s.inUse || s.gen != gen {
		p.mu.Unlock()
		p.log.Warn("connection released twice",
			zap.String("slot_id", s.id.String()),
		)
		return
	}
	s.inUse = false
	s.lastUsedAt = time.Now()
	p.queue.NotifyOne()
	p.mu.Unlock()

	p.metrics.releases.Add(1)
}

// WithConn acquires a connection, passes it to fn, and releases it on every
// exit path, including a panic inside fn.
func (p *Pool) WithConn(ctx context.Context, fn func(driver.Conn) error) error {
	c, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer c.Release()
	return fn(c.Conn())
}

// Close destroys every slot best-effort and wakes every remaining waiter,
// which then observe ErrClosed. It is idempotent, and subsequent Acquire
// calls fail immediately.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	slots := p.slots
	p.slots = nil
	woken := p.queue.NotifyAll()
	p.mu.Unlock()

	if woken > 0 {
		p.log.Debug("woke waiters on close", zap.Int("waiters", woken))
	}
	for _, s := range slots {
		p.closeConn(s.conn)
	}
}

func (p *Pool) closeConn(conn driver.Conn) {
	if err := conn.Close(); err != nil {
		p.log.Warn("error closing connection", zap.Error(err))
	}
}

// Stats returns a snapshot of the pool's contention counters. It neither
// blocks nor is blocked by concurrent Acquire and Release calls.
func (p *Pool) Stats() Stats {
	return p.metrics.stats()
}

// Size returns the current number of slots, checked out or idle. It does not
// include reservations for connections still being established.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slots)
}
