package pool

import "github.com/yuku/dbpool/driver"

// Conn is a connection checked out from the pool. The caller owns the
// underlying connection's I/O state until Release returns it.
type Conn struct {
	pool *Pool
	slot *slot
	gen  uint64
}

// Conn returns the pooled driver connection.
func (c *Conn) Conn() driver.Conn { return c.slot.conn }

// Raw returns the backend-specific handle, shorthand for c.Conn().Raw().
func (c *Conn) Raw() any { return c.slot.conn.Raw() }

// Release returns the connection to the pool and wakes at most one waiter.
// Releasing twice is a no-op beyond a logged warning, so both
// defer c.Release() and explicit release paths are safe.
func (c *Conn) Release() {
	c.pool.release(c.slot, c.gen)
}

// Close is an alias for Release, provided for convenience with defer
// statements and io.Closer-shaped helpers.
func (c *Conn) Close() {
	c.Release()
}
