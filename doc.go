// Package dbpool provides a bounded, reusable pool of database connections.
// It amortizes connection-establishment cost across many short-lived queries
// while capping the number of concurrent connections to a backend.
//
// A contended acquire first spins briefly, retrying the fast path, then parks
// on a wait queue until a release wakes it. Cancelling a parked acquire is
// O(1) regardless of how many other callers are waiting, so high-churn
// workloads against a small pool do not degrade super-linearly.
//
// Backends are pluggable: the pool only needs a driver that can connect,
// validate, and close connections. Importing one of the backend packages
// registers it by name:
//
//	import (
//		"github.com/yuku/dbpool"
//		"github.com/yuku/dbpool/driver/postgres"
//	)
//
// Basic usage:
//
//	pool, err := dbpool.New(ctx, dbpool.Config{
//		Driver:   postgres.Driver{},
//		DSN:      "postgres://localhost:5432/mydb",
//		MinConns: 2,
//		MaxConns: 10,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	conn, err := pool.Acquire(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer conn.Release()
//
//	pgconn := conn.Raw().(*pgx.Conn)
//	// ... run queries ...
//
// Or scoped, releasing on every exit path:
//
//	err = pool.WithConn(ctx, func(c driver.Conn) error {
//		return doWork(c.Raw().(*pgx.Conn))
//	})
package dbpool
