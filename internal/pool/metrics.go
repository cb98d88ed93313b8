package pool

import (
	"sync/atomic"
	"time"
)

// metrics holds the pool's contention counters. Every field is updated with
// atomic increments so a stats snapshot never takes the pool mutex.
type metrics struct {
	acquires  atomic.Int64
	releases  atomic.Int64
	waits     atomic.Int64
	spinWaits atomic.Int64
	parkWaits atomic.Int64
	timeouts  atomic.Int64
	waitNanos atomic.Int64
}

// Stats is a point-in-time snapshot of the pool's contention counters.
type Stats struct {
	// TotalAcquires is the number of successful Acquire calls.
	TotalAcquires int64

	// TotalReleases is the number of connections returned to the pool.
	TotalReleases int64

	// TotalWaits is the number of Acquire calls that missed the fast path.
	// It always equals SpinWaits + ParkWaits.
	TotalWaits int64

	// SpinWaits counts contended acquires resolved during the spin phase,
	// without suspending the caller.
	SpinWaits int64

	// ParkWaits counts contended acquires that had to park at least once.
	ParkWaits int64

	// TotalTimeouts is the number of Acquire calls that gave up at their
	// deadline.
	TotalTimeouts int64

	// AvgWaitTime is the mean time contended acquires spent waiting.
	AvgWaitTime time.Duration
}

// recordWait classifies one finished contention episode. Exactly one of the
// spin/park counters is bumped per contended acquire, success or not.
func (m *metrics) recordWait(start time.Time, parked bool) {
	m.waits.Add(1)
	if parked {
		m.parkWaits.Add(1)
	} else {
		m.spinWaits.Add(1)
	}
	m.waitNanos.Add(int64(time.Since(start)))
}

func (m *metrics) stats() Stats {
	s := Stats{
		TotalAcquires: m.acquires.Load(),
		TotalReleases: m.releases.Load(),
		TotalWaits:    m.waits.Load(),
		SpinWaits:     m.spinWaits.Load(),
		ParkWaits:     m.parkWaits.Load(),
		TotalTimeouts: m.timeouts.Load(),
	}
	if s.TotalWaits > 0 {
		s.AvgWaitTime = time.Duration(m.waitNanos.Load() / s.TotalWaits)
	}
	return s
}
