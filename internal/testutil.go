// Package internal holds test helpers shared across the module: environment
// plumbing for integration tests and an in-memory stub driver for exercising
// the pool without a database server.
package internal

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/yuku/dbpool/driver"
)

var loadEnvOnce sync.Once

// LoadEnv loads a .env file once, if present. Missing files are fine; the
// environment may already be populated by the caller.
func LoadEnv() {
	loadEnvOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// PostgresDSN returns the DSN for integration tests against PostgreSQL,
// skipping the test when none is configured.
func PostgresDSN(t *testing.T) string {
	t.Helper()
	return dsnFromEnv(t, "DBPOOL_POSTGRES_DSN")
}

// MySQLDSN returns the DSN for integration tests against MySQL, skipping the
// test when none is configured.
func MySQLDSN(t *testing.T) string {
	t.Helper()
	return dsnFromEnv(t, "DBPOOL_MYSQL_DSN")
}

func dsnFromEnv(t *testing.T, key string) string {
	t.Helper()
	LoadEnv()
	dsn := os.Getenv(key)
	if dsn == "" {
		t.Skipf("skipping: %s is not set", key)
	}
	return dsn
}

// StubDriver is an in-memory driver.Driver. Connections are numbered in
// connect order and can be made to fail validation, so tests can observe
// exactly which connection a pool hands out and when it replaces one.
type StubDriver struct {
	// ConnectErr, when set, is consulted with the 1-based connect ordinal
	// and may fail that connect.
	ConnectErr func(n int) error

	// ConnectDelay makes every connect take this long, for tests that need
	// the connect to run while other callers touch the pool.
	ConnectDelay time.Duration

	mu       sync.Mutex
	connects int
	closes   int
}

var _ driver.Driver = (*StubDriver)(nil)

func (d *StubDriver) Connect(ctx context.Context, _ string) (driver.Conn, error) {
	d.mu.Lock()
	d.connects++
	n := d.connects
	d.mu.Unlock()

	if d.ConnectErr != nil {
		if err := d.ConnectErr(n); err != nil {
			return nil, err
		}
	}
	if d.ConnectDelay > 0 {
		select {
		case <-time.After(d.ConnectDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &StubConn{ID: n, driver: d}, nil
}

// Connects returns how many times Connect has been called, counting
// failures.
func (d *StubDriver) Connects() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connects
}

// Closes returns how many connections have been closed.
func (d *StubDriver) Closes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closes
}

// StubConn is a connection handed out by StubDriver.
type StubConn struct {
	// ID is the 1-based connect ordinal of this connection.
	ID int

	// CloseErr, when set, is returned by Close after the close is recorded.
	CloseErr error

	driver *StubDriver
	broken atomic.Bool
	closed atomic.Bool
}

var _ driver.Conn = (*StubConn)(nil)

// Break makes all subsequent Validate calls report failure.
func (c *StubConn) Break() { c.broken.Store(true) }

// Closed reports whether Close has been called.
func (c *StubConn) Closed() bool { return c.closed.Load() }

func (c *StubConn) Validate(context.Context) bool {
	return !c.broken.Load() && !c.closed.Load()
}

func (c *StubConn) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.driver.mu.Lock()
		c.driver.closes++
		c.driver.mu.Unlock()
	}
	return c.CloseErr
}

func (c *StubConn) Raw() any { return c }
