package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ticketcore/internal/core/domain"
	"ticketcore/internal/core/ports"
)

const seatCacheTTL = 30 * time.Second

// CatalogService serves the seat map for an event, cache-aside over Redis.
// Every seat transition invalidates the event's entry, so staleness is
// bounded by the TTL only when invalidation itself fails.
type CatalogService struct {
	store ports.Stores
	cache *redis.Client
	log   *zap.Logger
}

func NewCatalogService(store ports.Stores, cache *redis.Client, log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{store: store, cache: cache, log: log}
}

func (s *CatalogService) ListSeats(ctx context.Context, eventID uuid.UUID) ([]domain.Seat, error) {
	key := fmt.Sprintf("seats:%s", eventID)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Result(); err == nil {
			var seats []domain.Seat
			if err := json.Unmarshal([]byte(raw), &seats); err == nil {
				return seats, nil
			}
			s.log.Warn("seat cache entry unreadable, falling through", zap.String("key", key))
		}
	}

	seats, err := s.store.Seats().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(seats); err == nil {
			if err := s.cache.Set(ctx, key, raw, seatCacheTTL).Err(); err != nil {
				s.log.Warn("seat cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return seats, nil
}
