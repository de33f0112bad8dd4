package ports

import (
	"context"

	"github.com/google/uuid"
)

// ReleaseFunc releases a previously acquired seat lock.
type ReleaseFunc func(ctx context.Context) error

// SeatLocker grants an exclusive lock on a single seat for the pessimistic
// hold strategy. Acquire blocks until the lock is granted or ctx ends:
// a deadline hit maps to KindLockTimeout, a plain cancellation returns
// ctx.Err(), so callers that give up stop queueing immediately.
type SeatLocker interface {
	Acquire(ctx context.Context, seatID uuid.UUID) (ReleaseFunc, error)
}
