package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by Acquire after Close. It is terminal for the
	// pool instance.
	ErrClosed = errors.New("dbpool: pool is closed")

	// ErrAcquireTimeout is returned when an acquire could not be satisfied
	// before its deadline. Retrying is legitimate.
	ErrAcquireTimeout = errors.New("dbpool: timed out waiting for a connection")
)

// ConnectError wraps a driver failure during pool growth or connection
// replacement. It is only returned to the caller whose acquire triggered the
// connect; the pool itself stays usable.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("dbpool: failed to establish connection: %v", e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }
