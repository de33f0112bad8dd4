package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ticketcore/internal/core/domain"
	"ticketcore/internal/core/ports"
)

// changePublisher fans a committed seat transition out to the change
// notifier and invalidates the cached seat map for the event. Both sides
// are best-effort: failures are logged, never propagated, so notification
// stays outside the transactional boundary.
type changePublisher struct {
	notifier ports.ChangeNotifier
	cache    *redis.Client
	log      *zap.Logger
}

func newChangePublisher(notifier ports.ChangeNotifier, cache *redis.Client, log *zap.Logger) *changePublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &changePublisher{notifier: notifier, cache: cache, log: log}
}

func (p *changePublisher) seatChanged(ctx context.Context, change domain.SeatChange) {
	if p.notifier != nil {
		if err := p.notifier.PublishSeatChange(ctx, change); err != nil {
			p.log.Warn("seat change publish failed",
				zap.String("seat_id", change.SeatID.String()),
				zap.String("reason", change.Reason),
				zap.Error(err),
			)
		}
	}
	p.invalidateSeatCache(ctx, change.EventID)
}

func (p *changePublisher) invalidateSeatCache(ctx context.Context, eventID uuid.UUID) {
	if p.cache == nil {
		return
	}
	key := fmt.Sprintf("seats:%s", eventID)
	if err := p.cache.Del(ctx, key).Err(); err != nil {
		p.log.Warn("seat cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
