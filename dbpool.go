package dbpool

import (
	"context"

	"github.com/yuku/dbpool/internal/pool"
)

// Pool is a bounded pool of driver connections.
// This is a wrapper around the internal implementation.
type Pool = pool.Pool

// Conn is a connection checked out from a Pool.
// This is a wrapper around the internal implementation.
type Conn = pool.Conn

// Config holds the configuration for creating a pool.
type Config = pool.Config

// Stats is a snapshot of a pool's contention counters.
type Stats = pool.Stats

// ConnectError wraps a driver failure during pool growth or connection
// replacement.
type ConnectError = pool.ConnectError

var (
	// ErrClosed is returned by Acquire after the pool has been closed.
	ErrClosed = pool.ErrClosed

	// ErrAcquireTimeout is returned when an acquire could not be satisfied
	// before its deadline.
	ErrAcquireTimeout = pool.ErrAcquireTimeout
)

// New creates a pool from conf and eagerly establishes Config.MinConns
// connections.
func New(ctx context.Context, conf Config) (*Pool, error) {
	return pool.New(ctx, conf)
}
