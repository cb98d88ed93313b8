package pool

import (
	"fmt"
	"time"

	"github.com/yuku/dbpool/driver"
	"go.uber.org/zap"
)

// Config holds the configuration for creating a pool. It is immutable after
// the pool is constructed.
type Config struct {
	// Driver establishes connections to the backend. Required.
	Driver driver.Driver

	// DSN is passed verbatim to the driver on every connect.
	DSN string

	// MinConns is the number of connections established eagerly at
	// construction time. Must be >= 0.
	MinConns int

	// MaxConns bounds the total number of connections the pool will hold.
	// Must be >= MinConns.
	MaxConns int

	// HealthCheckInterval is how long a connection may sit idle before it is
	// validated at acquire time. Zero disables health checking. There is no
	// background sweep: validation only happens for the candidate slot of an
	// acquire.
	HealthCheckInterval time.Duration

	// AcquireTimeout is applied to Acquire calls whose context carries no
	// deadline. Zero means such calls wait indefinitely.
	AcquireTimeout time.Duration

	// Logger receives non-fatal warnings such as double releases and close
	// errors. Defaults to a no-op logger.
	Logger *zap.Logger
}

func (c Config) Validate() error {
	if c.Driver == nil {
		return fmt.Errorf("driver cannot be nil")
	}
	if c.MinConns < 0 {
		return fmt.Errorf("min conns cannot be negative: given %d", c.MinConns)
	}
	if c.MaxConns < c.MinConns {
		return fmt.Errorf("max conns must be at least min conns: given %d < %d",
			c.MaxConns, c.MinConns,
		)
	}
	if c.HealthCheckInterval < 0 {
		return fmt.Errorf("health check interval cannot be negative: given %s", c.HealthCheckInterval)
	}
	if c.AcquireTimeout < 0 {
		return fmt.Errorf("acquire timeout cannot be negative: given %s", c.AcquireTimeout)
	}
	return nil
}
