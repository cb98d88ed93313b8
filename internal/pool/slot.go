package pool

import (
	"time"

	"github.com/google/uuid"
	"github.com/yuku/dbpool/driver"
)

// slot pairs one pooled connection with its usage bookkeeping. The connection
// is owned by the pool while idle and by the current holder while inUse;
// nobody else may touch its I/O state in between.
type slot struct {
	// id identifies the slot in log output.
	id uuid.UUID

	conn      driver.Conn
	createdAt time.Time

	// The fields below are guarded by the pool mutex, except that the caller
	// holding the slot (inUse == true) may update lastValidatedAt after a
	// successful validation.
	inUse           bool
	lastUsedAt      time.Time
	lastValidatedAt time.Time

	// gen increments on every checkout. A release carrying a stale
	// generation is a late double release and must not free the lease the
	// slot's current holder has.
	gen uint64
}

func newSlot(conn driver.Conn) *slot {
	now := time.Now()
	return &slot{
		id:              uuid.New(),
		conn:            conn,
		createdAt:       now,
		lastUsedAt:      now,
		lastValidatedAt: now,
	}
}
