// Package redis implements the exclusive per-seat lock behind the
// pessimistic hold strategy on a single Redis instance.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ticketcore/internal/core/domain"
	"ticketcore/internal/core/ports"
)

const (
	defaultLockTTL       = 10 * time.Second
	defaultRetryInterval = 25 * time.Millisecond
)

// releaseScript deletes the lock only when the stored token matches, so a
// slow holder can never release a lock that has since expired and been
// re-acquired by someone else.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker acquires seat locks with SET NX PX and a polling wait. The lock
// TTL bounds how long a crashed holder can block a seat; callers bound
// their own wait through the context deadline.
type Locker struct {
	client        *redis.Client
	lockTTL       time.Duration
	retryInterval time.Duration
}

func NewLocker(client *redis.Client) *Locker {
	return &Locker{
		client:        client,
		lockTTL:       defaultLockTTL,
		retryInterval: defaultRetryInterval,
	}
}

func (l *Locker) Acquire(ctx context.Context, seatID uuid.UUID) (ports.ReleaseFunc, error) {
	key := lockKey(seatID)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire seat lock: %w", err)
		}
		if ok {
			return func(ctx context.Context) error {
				return l.client.Eval(ctx, releaseScript, []string{key}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return nil, domain.NewError(domain.KindLockTimeout, "seat", seatID.String(), "timed out waiting for seat lock")
			}
			return nil, ctx.Err()
		case <-time.After(l.retryInterval):
		}
	}
}

func lockKey(seatID uuid.UUID) string {
	return fmt.Sprintf("seat_lock:%s", seatID)
}

var _ ports.SeatLocker = (*Locker)(nil)
