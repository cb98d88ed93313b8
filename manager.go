package dbpool

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Manager tracks a set of pools, typically one per backend host, so they can
// be torn down together at shutdown. Pools remain independently closable;
// the manager never outlives its caller's control of them.
type Manager struct {
	mu     sync.RWMutex
	pools  []*Pool
	closed bool
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{}
}

// Open creates a pool from conf and tracks it for Close.
func (m *Manager) Open(ctx context.Context, conf Config) (*Pool, error) {
	if m.Closed() {
		return nil, fmt.Errorf("manager is closed")
	}

	p, err := New(ctx, conf)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		p.Close()
		return nil, fmt.Errorf("manager is closed")
	}
	m.pools = append(m.pools, p)
	m.mu.Unlock()

	return p, nil
}

// Pools returns the pools currently tracked by the manager.
func (m *Manager) Pools() []*Pool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.pools)
}

// Close closes every tracked pool. It is idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true

	for _, p := range m.pools {
		p.Close()
	}
	m.pools = nil
}

// Closed returns if the manager is closed.
func (m *Manager) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
