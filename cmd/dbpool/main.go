// Command dbpool provides CLI utilities for checking a pool configuration
// against a live backend.
//
// Usage:
//
//	dbpool <command> [config.yaml]
//
// Commands:
//
//	ping     Open the pool, acquire and validate one connection, and exit
//	bench    Run concurrent acquire/release cycles and print pool stats
//
// Without a config file argument, configuration is read from the
// environment:
//   - DBPOOL_DRIVER: registered driver name (postgres, mysql, sqlite3)
//   - DBPOOL_DSN: backend connection string
//
// Example:
//
//	DBPOOL_DRIVER=postgres DBPOOL_DSN=postgres://localhost:5432/db dbpool ping
//	dbpool bench config.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yuku/dbpool"
	"github.com/yuku/dbpool/driver"
	_ "github.com/yuku/dbpool/driver/mysql"
	_ "github.com/yuku/dbpool/driver/postgres"
	_ "github.com/yuku/dbpool/driver/sqlite"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [config.yaml]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  ping     Open the pool and validate one connection\n")
		fmt.Fprintf(os.Stderr, "  bench    Run concurrent acquire/release cycles\n")
		os.Exit(1)
	}

	command := os.Args[1]
	var configPath string
	if len(os.Args) > 2 {
		configPath = os.Args[2]
	}

	var err error
	switch command {
	case "ping":
		err = runPing(configPath)
	case "bench":
		err = runBench(configPath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig builds a pool configuration from the given YAML file, or from
// DBPOOL_DRIVER and DBPOOL_DSN when no file is given.
func loadConfig(path string) (dbpool.Config, error) {
	if path != "" {
		fc, err := dbpool.LoadFile(path)
		if err != nil {
			return dbpool.Config{}, err
		}
		return fc.PoolConfig()
	}

	name := os.Getenv("DBPOOL_DRIVER")
	dsn := os.Getenv("DBPOOL_DSN")
	if name == "" || dsn == "" {
		return dbpool.Config{}, fmt.Errorf("DBPOOL_DRIVER and DBPOOL_DSN must be set when no config file is given")
	}
	d, ok := driver.Lookup(name)
	if !ok {
		return dbpool.Config{}, fmt.Errorf("unknown driver %q", name)
	}
	return dbpool.Config{Driver: d, DSN: dsn, MinConns: 1, MaxConns: 4}, nil
}

func runPing(configPath string) error {
	conf, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	conf.Logger = logger

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := dbpool.New(ctx, conf)
	if err != nil {
		return fmt.Errorf("failed to open pool: %w", err)
	}
	defer pool.Close()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	if !conn.Conn().Validate(ctx) {
		return fmt.Errorf("connection failed validation")
	}
	fmt.Println("OK")
	return nil
}

func runBench(configPath string) error {
	const (
		workers = 16
		cycles  = 200
	)

	conf, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if conf.AcquireTimeout == 0 {
		conf.AcquireTimeout = 10 * time.Second
	}

	ctx := context.Background()
	pool, err := dbpool.New(ctx, conf)
	if err != nil {
		return fmt.Errorf("failed to open pool: %w", err)
	}
	defer pool.Close()

	start := time.Now()
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := 0; c < cycles; c++ {
				conn, err := pool.Acquire(ctx)
				if err != nil {
					errs <- err
					return
				}
				conn.Release()
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		return fmt.Errorf("bench worker failed: %w", err)
	}

	elapsed := time.Since(start)
	stats := pool.Stats()
	fmt.Printf("%d acquires in %s (%.0f/s)\n",
		stats.TotalAcquires, elapsed.Round(time.Millisecond),
		float64(stats.TotalAcquires)/elapsed.Seconds(),
	)
	fmt.Printf("waits: %d (spin %d, park %d), timeouts: %d, avg wait: %s\n",
		stats.TotalWaits, stats.SpinWaits, stats.ParkWaits,
		stats.TotalTimeouts, stats.AvgWaitTime.Round(time.Microsecond),
	)
	return nil
}
