// Package mysql provides the MySQL backend for dbpool, built on
// github.com/go-sql-driver/mysql. Importing it registers the "mysql" driver.
//
// Connections are established through the driver's Connector rather than
// database/sql so the pool owns exactly one wire connection per slot instead
// of wrapping a second pool.
package mysql

import (
	"context"
	sqldriver "database/sql/driver"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/yuku/dbpool/driver"
)

func init() {
	driver.Register("mysql", Driver{})
}

// Driver connects to MySQL using go-sql-driver DSNs, e.g.
// "user:pass@tcp(localhost:3306)/mydb".
type Driver struct{}

func (Driver) Connect(ctx context.Context, dsn string) (driver.Conn, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: invalid DSN: %w", err)
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql: failed to create connector: %w", err)
	}
	raw, err := connector.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("mysql: failed to connect: %w", err)
	}
	return &Conn{conn: raw}, nil
}

// Conn wraps a single database/sql/driver connection to MySQL.
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

// Raw returns the underlying database/sql/driver.Conn.
func (c *Conn) Raw() any { return c.conn }
