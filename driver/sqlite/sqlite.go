// Package sqlite provides the SQLite backend for dbpool, built on
// github.com/mattn/go-sqlite3. Importing it registers the "sqlite3" driver.
package sqlite

import (
	"context"
	sqldriver "database/sql/driver"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/yuku/dbpool/driver"
)

func init() {
	driver.Register("sqlite3", &Driver{})
}

// Driver opens SQLite database files. The DSN is a file path or ":memory:",
// with optional go-sqlite3 query parameters such as "file.db?mode=ro".
//
// Note that every ":memory:" connection is its own private database, so a
// pool larger than one does not share state between slots.
type Driver struct {
	d sqlite3.SQLiteDriver
}

func (d *Driver) Connect(_ context.Context, dsn string) (driver.Conn, error) {
	raw, err := d.d.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open %q: %w", dsn, err)
	}
	return &Conn{conn: raw}, nil
}

// Conn wraps a single *sqlite3.SQLiteConn.
type Conn struct {
	conn sqldriver.Conn
}

func (c *Conn) Validate(ctx context.Context) bool {
	p, ok := c.conn.(sqldriver.Pinger)
	if !ok {
		return true
	}
	return p.Ping(ctx) == nil
}

func (c *Conn) Close() error { return c.conn.Close() }

// Raw returns the underlying connection, normally a *sqlite3.SQLiteConn.
func (c *Conn) Raw() any { return c.conn }
