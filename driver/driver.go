// Package driver defines the capability a database backend must supply for
// its connections to be pooled, along with a name-based registry in the
// manner of database/sql.
//
// The pool treats connections as opaque: it only ever connects, validates,
// and closes them. Everything else — queries, transactions, the wire
// protocol — is between the caller and the backend handle exposed by Raw.
package driver

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Driver establishes connections to one kind of backend.
type Driver interface {
	// Connect establishes a new connection. Implementations should honor
	// cancellation of ctx where the underlying client allows it.
	Connect(ctx context.Context, dsn string) (Conn, error)
}

// Conn is a single pooled connection.
type Conn interface {
	// Validate reports whether the connection is still usable. It never
	// returns an error: any failure is reported as false.
	Validate(ctx context.Context) bool

	// Close tears the connection down. Pools treat close errors as
	// best-effort and only log them.
	Close() error

	// Raw returns the backend-specific handle for running queries.
	Raw() any
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register makes a driver available under the given name, typically from the
// backend package's init function. It panics if the name is already taken or
// the driver is nil.
func Register(name string, d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if d == nil {
		panic("driver: Register driver is nil")
	}
	if _, dup := drivers[name]; dup {
		panic(fmt.Sprintf("driver: Register called twice for driver %q", name))
	}
	drivers[name] = d
}

// Lookup returns the driver registered under name.
func Lookup(name string) (Driver, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	return d, ok
}

// Drivers returns a sorted list of registered driver names.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
