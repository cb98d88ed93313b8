package dbpool

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yuku/dbpool/driver"
	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML representation of a pool configuration. Durations
// are strings in time.ParseDuration format ("30s", "1m30s"). The driver is
// resolved by its registered name, so the corresponding backend package must
// be imported.
//
// Example:
//
//	driver: postgres
//	dsn: postgres://localhost:5432/mydb
//	min_conns: 2
//	max_conns: 10
//	health_check_interval: 30s
//	acquire_timeout: 5s
type FileConfig struct {
	Driver              string `yaml:"driver"`
	DSN                 string `yaml:"dsn"`
	MinConns            int    `yaml:"min_conns"`
	MaxConns            int    `yaml:"max_conns"`
	HealthCheckInterval string `yaml:"health_check_interval"`
	AcquireTimeout      string `yaml:"acquire_timeout"`
}

// LoadFile reads a pool configuration from a YAML file.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// PoolConfig resolves the file configuration into a Config ready for New.
func (fc *FileConfig) PoolConfig() (Config, error) {
	d, ok := driver.Lookup(fc.Driver)
	if !ok {
		return Config{}, fmt.Errorf("unknown driver %q (registered: %s)",
			fc.Driver, strings.Join(driver.Drivers(), ", "),
		)
	}

	healthCheckInterval, err := parseDuration(fc.HealthCheckInterval)
	if err != nil {
		return Config{}, fmt.Errorf("invalid health_check_interval: %w", err)
	}
	acquireTimeout, err := parseDuration(fc.AcquireTimeout)
	if err != nil {
		return Config{}, fmt.Errorf("invalid acquire_timeout: %w", err)
	}

	return Config{
		Driver:              d,
		DSN:                 fc.DSN,
		MinConns:            fc.MinConns,
		MaxConns:            fc.MaxConns,
		HealthCheckInterval: healthCheckInterval,
		AcquireTimeout:      acquireTimeout,
	}, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
